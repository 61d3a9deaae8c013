package plex

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/plexmuse/plexmuse/internal/match"
	"github.com/plexmuse/plexmuse/internal/models"
	"github.com/plexmuse/plexmuse/internal/shared"
	"golang.org/x/time/rate"
)

// Service layers the curation operations on top of the library and its
// artist cache: bulk album resolution for LLM context and fuzzy playlist
// assembly from untrusted recommendations.
type Service struct {
	library Library
	cache   *LibraryCache
	logger  *log.Logger
	limiter *rate.Limiter
}

// NewService creates a Service. requestsPerSecond bounds the sequential
// per-artist round-trips during bulk album resolution; zero or negative
// disables rate limiting.
func NewService(library Library, cache *LibraryCache, logger *log.Logger, requestsPerSecond float64) *Service {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}

	return &Service{
		library: library,
		cache:   cache,
		logger:  logger.With("component", "plex_service"),
		limiter: limiter,
	}
}

// Cache exposes the underlying artist cache.
func (s *Service) Cache() *LibraryCache {
	return s.cache
}

// MachineID returns the Plex server's machine identifier.
func (s *Service) MachineID(ctx context.Context) (string, error) {
	return s.library.MachineID(ctx)
}

func (s *Service) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

// BulkAlbums resolves each requested artist name to a catalog artist and
// returns its album metadata in one batched pass.
//
// Names are matched case-insensitively against the cache; a cache hit is
// followed by one exact-name library query to obtain the live handle.
// Unknown names are logged and omitted from the result without aborting
// the batch. The returned map is keyed by the library's canonical display
// name, which may differ in case from the request.
func (s *Service) BulkAlbums(ctx context.Context, artistNames []string) (map[string][]models.Album, error) {
	result := make(map[string][]models.Album)

	var handles []ArtistEntry
	for _, name := range artistNames {
		cached, ok := s.cache.FindByName(name)
		if !ok {
			s.logger.Warn("artist not found in cache", "artist", name)
			continue
		}

		if err := s.wait(ctx); err != nil {
			return nil, err
		}

		matches, err := s.library.SearchArtist(ctx, cached.Name)
		if err != nil {
			return nil, fmt.Errorf("artist search failed for %q: %w", cached.Name, err)
		}
		if len(matches) == 0 {
			s.logger.Warn("cached artist missing from library", "artist", cached.Name)
			continue
		}

		handles = append(handles, matches[0])
	}

	for _, handle := range handles {
		if err := s.wait(ctx); err != nil {
			return nil, err
		}

		entries, err := s.library.ArtistAlbums(ctx, handle.RatingKey)
		if err != nil {
			return nil, fmt.Errorf("album lookup failed for %q: %w", handle.Name, err)
		}

		albums := make([]models.Album, 0, len(entries))
		for _, entry := range entries {
			albums = append(albums, models.Album{
				Name:       entry.Name,
				Year:       entry.Year,
				TrackCount: entry.TrackCount,
			})
		}
		result[handle.Name] = albums
	}

	return result, nil
}

// artistGroup is one artist's requested titles in original order.
type artistGroup struct {
	name   string
	titles []string
}

// groupRecommendations buckets recommendations by artist name, preserving
// per-artist title order; group order is first-seen order.
func groupRecommendations(recs []models.TrackRecommendation) []artistGroup {
	index := make(map[string]int, len(recs))
	var groups []artistGroup

	for _, rec := range recs {
		i, ok := index[rec.Artist]
		if !ok {
			i = len(groups)
			index[rec.Artist] = i
			groups = append(groups, artistGroup{name: rec.Artist})
		}
		groups[i].titles = append(groups[i].titles, rec.Title)
	}

	return groups
}

// CreateCuratedPlaylist resolves each recommendation to a concrete library
// track and creates a playlist from everything it could resolve.
//
// Recommendations are grouped by artist so each artist's full track set is
// enumerated exactly once and reused for every requested title in the
// group. Titles that miss the per-artist pool fall back to a catalog-wide
// search at a looser threshold, accepted only when the matched track's
// artist equals the requested artist case-insensitively. Unresolvable
// artists and titles are logged and dropped; resolving zero tracks overall
// fails with [shared.ErrNoMatch] and no playlist is created.
//
// The returned count is the number of resolved tracks; callers can infer
// drops from len(recs) minus the count.
func (s *Service) CreateCuratedPlaylist(ctx context.Context, name string, recs []models.TrackRecommendation) (*PlaylistEntry, int, error) {
	var matchedKeys []string

	for _, group := range groupRecommendations(recs) {
		artists, err := s.library.SearchArtist(ctx, group.name)
		if err != nil {
			return nil, 0, fmt.Errorf("artist search failed for %q: %w", group.name, err)
		}
		if len(artists) == 0 {
			s.logger.Warn("dropping recommendation group",
				"artist", group.name, "titles", len(group.titles), "error", shared.ErrArtistNotFound)
			continue
		}

		pool, err := s.library.ArtistTracks(ctx, artists[0].RatingKey)
		if err != nil {
			return nil, 0, fmt.Errorf("track enumeration failed for %q: %w", group.name, err)
		}

		poolTitles := make([]string, len(pool))
		for i, track := range pool {
			poolTitles[i] = track.Title
		}

		for _, title := range group.titles {
			res := match.FindBestMatch(poolTitles, title, match.DefaultThreshold)
			if res.Index >= 0 {
				s.logger.Debug("matched track",
					"requested", title, "matched", pool[res.Index].Title, "score", fmt.Sprintf("%.2f", res.Score))
				matchedKeys = append(matchedKeys, pool[res.Index].RatingKey)
				continue
			}

			key, ok, err := s.globalFallback(ctx, group.name, title)
			if err != nil {
				return nil, 0, err
			}
			if ok {
				matchedKeys = append(matchedKeys, key)
			} else {
				s.logger.Warn("no matching track found", "title", title, "artist", group.name)
			}
		}
	}

	if len(matchedKeys) == 0 {
		return nil, 0, fmt.Errorf("%w: from %d recommendations", shared.ErrNoMatch, len(recs))
	}

	playlist, err := s.library.CreatePlaylist(ctx, name, matchedKeys)
	if err != nil {
		return nil, 0, fmt.Errorf("playlist creation failed: %w", err)
	}

	return playlist, len(matchedKeys), nil
}

// globalFallback retries a missed title against a catalog-wide search at
// the looser threshold. The global search already narrowed candidates by
// title, so the artist guard carries the remaining weight: a match is
// accepted only when its artist equals the requested artist
// case-insensitively.
func (s *Service) globalFallback(ctx context.Context, artistName, title string) (string, bool, error) {
	candidates, err := s.library.SearchTracks(ctx, title)
	if err != nil {
		return "", false, fmt.Errorf("global track search failed for %q: %w", title, err)
	}
	if len(candidates) == 0 {
		return "", false, nil
	}

	titles := make([]string, len(candidates))
	for i, track := range candidates {
		titles[i] = track.Title
	}

	res := match.FindBestMatch(titles, title, match.FallbackThreshold)
	if res.Index < 0 {
		return "", false, nil
	}

	winner := candidates[res.Index]
	if !strings.EqualFold(winner.ArtistName, artistName) {
		return "", false, nil
	}

	s.logger.Debug("matched track via global search",
		"requested", title, "matched", winner.Title, "score", fmt.Sprintf("%.2f", res.Score))
	return winner.RatingKey, true, nil
}
