package plex

import (
	"context"

	"github.com/plexmuse/plexmuse/internal/models"
)

// ArtistEntry is a live artist handle from the Plex library.
type ArtistEntry struct {
	RatingKey string
	Name      string
	Genres    []string
}

// AlbumEntry is a live album handle from the Plex library.
type AlbumEntry struct {
	RatingKey  string
	Name       string
	Year       int
	TrackCount int
}

// TrackEntry is a live track handle from the Plex library.
//
// The core never mutates tracks; it only reads titles for matching and
// passes rating keys back when creating playlists.
type TrackEntry struct {
	RatingKey  string
	Title      string
	ArtistName string
	AlbumName  string
}

// PlaylistEntry describes a playlist on the Plex server.
type PlaylistEntry struct {
	RatingKey  string
	Title      string
	TrackCount int
}

// Library defines the capability surface the curation core needs from the
// backing media server. Implementations must be safe for concurrent use.
type Library interface {
	// MachineID returns the server's machine identifier.
	MachineID(ctx context.Context) (string, error)

	// SectionUpdatedAt returns an opaque freshness token for the music
	// section. The token changes whenever the catalog changes.
	SectionUpdatedAt(ctx context.Context) (string, error)

	// AllArtists enumerates every artist in the music section.
	AllArtists(ctx context.Context) ([]ArtistEntry, error)

	// Counts returns total album and track counts for the music section.
	Counts(ctx context.Context) (albums, tracks int, err error)

	// SearchArtist searches the music section for artists by name.
	SearchArtist(ctx context.Context, name string) ([]ArtistEntry, error)

	// ArtistAlbums enumerates an artist's albums.
	ArtistAlbums(ctx context.Context, artistKey string) ([]AlbumEntry, error)

	// ArtistTracks enumerates every track across all of an artist's albums.
	ArtistTracks(ctx context.Context, artistKey string) ([]TrackEntry, error)

	// SearchTracks performs a catalog-wide track search by title.
	SearchTracks(ctx context.Context, title string) ([]TrackEntry, error)

	// CreatePlaylist creates an audio playlist from an ordered list of
	// track rating keys.
	CreatePlaylist(ctx context.Context, name string, trackKeys []string) (*PlaylistEntry, error)
}

// snapshot converts a live artist handle into the immutable cache record.
func (a ArtistEntry) snapshot() models.Artist {
	genres := make([]string, len(a.Genres))
	copy(genres, a.Genres)
	return models.Artist{ID: a.RatingKey, Name: a.Name, Genres: genres}
}
