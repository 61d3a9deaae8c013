package tasks

import "fmt"

// ProgressUpdate represents a progress event during a curation run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within the run
	Total   int    // Total steps in the run
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	SelectArtists Phase = iota
	FetchAlbums
	SelectTracks
	NamePlaylist
	AssemblePlaylist
	Done
)

func (p Phase) String() string {
	switch p {
	case SelectArtists:
		return "select_artists"
	case FetchAlbums:
		return "fetch_albums"
	case SelectTracks:
		return "select_tracks"
	case NamePlaylist:
		return "name_playlist"
	case AssemblePlaylist:
		return "assemble_playlist"
	case Done:
		return "done"
	default:
		return ""
	}
}

const totalSteps = 5

func selectArtistsUpdate(catalogSize int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SelectArtists,
		Step:    1,
		Total:   totalSteps,
		Message: fmt.Sprintf("Selecting artists from %d in your library...", catalogSize),
	}
}

func fetchAlbumsUpdate(artistCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbums,
		Step:    2,
		Total:   totalSteps,
		Message: fmt.Sprintf("Fetching albums for %d artists...", artistCount),
	}
}

func selectTracksUpdate(minTracks, maxTracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SelectTracks,
		Step:    3,
		Total:   totalSteps,
		Message: fmt.Sprintf("Selecting %d-%d tracks...", minTracks, maxTracks),
	}
}

func namePlaylistUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   NamePlaylist,
		Step:    4,
		Total:   totalSteps,
		Message: "Naming the playlist...",
	}
}

func assemblePlaylistUpdate(trackCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AssemblePlaylist,
		Step:    5,
		Total:   totalSteps,
		Message: fmt.Sprintf("Resolving %d recommendations against the library...", trackCount),
	}
}

func doneUpdate(name string, resolved, requested int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    totalSteps,
		Total:   totalSteps,
		Message: fmt.Sprintf("Created %q with %d of %d tracks", name, resolved, requested),
	}
}
