package plex

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/plexmuse/plexmuse/internal/models"
	"github.com/plexmuse/plexmuse/internal/shared"
)

// LibraryCache is an in-memory snapshot of the artist catalog plus
// aggregate counts, keyed by the music section's freshness token.
//
// Readers see a consistent snapshot: rebuilds assemble fresh state off to
// the side and swap it in wholesale under the lock, so no caller ever
// observes a partially rebuilt catalog.
type LibraryCache struct {
	library Library
	logger  *log.Logger

	// rebuildMu serializes Initialize/RefreshIfStale so concurrent
	// refreshes cannot interleave their load-then-swap sequences.
	rebuildMu sync.Mutex

	mu        sync.RWMutex
	artists   map[string]models.Artist
	order     []string
	stats     *models.LibraryStats
	updatedAt string
}

// NewLibraryCache creates an empty cache backed by the given library.
func NewLibraryCache(library Library, logger *log.Logger) *LibraryCache {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &LibraryCache{
		library: library,
		logger:  logger.With("component", "library_cache"),
		artists: make(map[string]models.Artist),
	}
}

// Initialize loads every artist, computes aggregate counts, and records
// the library's current freshness token.
//
// Failure is fatal to startup and is not retried internally; an
// unreachable server surfaces as [shared.ErrConnection].
func (c *LibraryCache) Initialize(ctx context.Context) error {
	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	c.logger.Info("initializing artist cache")

	token, err := c.library.SectionUpdatedAt(ctx)
	if err != nil {
		return fmt.Errorf("failed to read library freshness token: %w", err)
	}

	if err := c.rebuild(ctx, token); err != nil {
		return err
	}

	stats := c.Stats()
	c.logger.Info("artist cache ready",
		"artists", stats.Artists, "albums", stats.Albums, "tracks", stats.Tracks,
		"updated_at", token)
	return nil
}

// RefreshIfStale re-reads the library's freshness token and performs a
// full rebuild when it changed. Returns true iff the cache was rebuilt.
//
// An unchanged token costs one round-trip and leaves cache state
// untouched. The rebuild is wholesale, not an incremental diff: artist
// catalogs are small relative to request volume and staleness matters
// more than refresh cost.
func (c *LibraryCache) RefreshIfStale(ctx context.Context) (bool, error) {
	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	current, err := c.library.SectionUpdatedAt(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read library freshness token: %w", err)
	}

	c.mu.RLock()
	previous := c.updatedAt
	c.mu.RUnlock()

	if current == previous {
		c.logger.Info("library unchanged, cache is up to date", "updated_at", current)
		return false, nil
	}

	c.logger.Info("library updated, refreshing cache", "was", previous, "now", current)

	if err := c.rebuild(ctx, current); err != nil {
		return false, err
	}

	stats := c.Stats()
	c.logger.Info("cache refreshed",
		"artists", stats.Artists, "albums", stats.Albums, "tracks", stats.Tracks)
	return true, nil
}

// rebuild loads a complete new snapshot and swaps it in atomically.
// Callers must hold rebuildMu.
func (c *LibraryCache) rebuild(ctx context.Context, token string) error {
	entries, err := c.library.AllArtists(ctx)
	if err != nil {
		return fmt.Errorf("failed to load artists: %w", err)
	}

	artists := make(map[string]models.Artist, len(entries))
	order := make([]string, 0, len(entries))
	for _, entry := range entries {
		if _, exists := artists[entry.RatingKey]; exists {
			continue
		}
		artists[entry.RatingKey] = entry.snapshot()
		order = append(order, entry.RatingKey)
	}

	albums, tracks, err := c.library.Counts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load library counts: %w", err)
	}

	stats := &models.LibraryStats{
		Artists: len(artists),
		Albums:  albums,
		Tracks:  tracks,
	}

	c.mu.Lock()
	c.artists = artists
	c.order = order
	c.stats = stats
	c.updatedAt = token
	c.mu.Unlock()

	return nil
}

// AllArtists returns the current snapshot in insertion order from the last
// rebuild. The returned slice is owned by the caller.
func (c *LibraryCache) AllArtists() []models.Artist {
	c.mu.RLock()
	defer c.mu.RUnlock()

	artists := make([]models.Artist, 0, len(c.order))
	for _, key := range c.order {
		artists = append(artists, c.artists[key])
	}
	return artists
}

// FindByName looks up a cached artist case-insensitively by display name.
//
// Artist names are not guaranteed unique; the first match in snapshot
// order wins.
func (c *LibraryCache) FindByName(name string) (models.Artist, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, key := range c.order {
		artist := c.artists[key]
		if strings.EqualFold(artist.Name, name) {
			return artist, true
		}
	}
	return models.Artist{}, false
}

// Size returns the number of artists in the cache.
func (c *LibraryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.artists)
}

// Stats returns the cached aggregate counts, or an all-zero record before
// the first successful load.
func (c *LibraryCache) Stats() models.LibraryStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.stats == nil {
		return models.LibraryStats{}
	}
	return *c.stats
}

// UpdatedAt returns the freshness token recorded at the last rebuild.
func (c *LibraryCache) UpdatedAt() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}
