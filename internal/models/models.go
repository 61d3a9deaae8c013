// package models defines the data model for the playlist curation service
package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models in the curation service.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Artist is an immutable snapshot of a library artist held by the cache.
//
// ID is the Plex rating key (stable catalog key). Name is the display name,
// which is not guaranteed unique across the library.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// Album is transient album metadata produced by the bulk album resolver.
// Albums are never cached; they exist only as context for track selection.
type Album struct {
	Name       string `json:"name"`
	Year       int    `json:"year,omitempty"`
	TrackCount int    `json:"track_count"`
}

// LibraryStats holds aggregate counts for the music library.
type LibraryStats struct {
	Artists int `json:"artists"`
	Albums  int `json:"albums"`
	Tracks  int `json:"tracks"`
}

// TrackRecommendation is an untrusted (artist, title) pair produced by the
// LLM. It may not correspond to any real catalog entry.
type TrackRecommendation struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// PlaylistRequest is the input for a curation run.
type PlaylistRequest struct {
	Prompt    string `json:"prompt"`
	Model     string `json:"model"`
	MinTracks int    `json:"min_tracks"`
	MaxTracks int    `json:"max_tracks"`
}

// Normalize applies defaults and bounds to the request in place.
func (r *PlaylistRequest) Normalize() {
	if r.MinTracks <= 0 {
		r.MinTracks = 30
	}
	if r.MaxTracks <= 0 {
		r.MaxTracks = 50
	}
	if r.MinTracks > 100 {
		r.MinTracks = 100
	}
	if r.MaxTracks > 200 {
		r.MaxTracks = 200
	}
	if r.MaxTracks < r.MinTracks {
		r.MaxTracks = r.MinTracks
	}
}

// Validate checks that the request can be processed.
func (r *PlaylistRequest) Validate() error {
	if r.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}
	return nil
}

// PlaylistResponse describes a created playlist.
//
// ID and MachineIdentifier are surfaced verbatim from the Plex server so
// clients can build deep links.
type PlaylistResponse struct {
	Name              string                `json:"name"`
	TrackCount        int                   `json:"track_count"`
	Tracks            []TrackRecommendation `json:"tracks"`
	ID                string                `json:"id,omitempty"`
	MachineIdentifier string                `json:"machine_identifier,omitempty"`
}

// Provider describes an available LLM provider.
type Provider struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Model       string `json:"model"`
	Description string `json:"description"`
}

// PersistedPlaylist records a curated playlist created on the Plex server.
type PersistedPlaylist struct {
	id        string
	sequence  int
	ratingKey string
	name      string
	prompt    string
	model     string
	requested int
	resolved  int
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedPlaylist creates a playlist record from a finished curation run.
func NewPersistedPlaylist(ratingKey, name, prompt, model string, requested, resolved int) *PersistedPlaylist {
	now := time.Now()
	return &PersistedPlaylist{
		ratingKey: ratingKey,
		name:      name,
		prompt:    prompt,
		model:     model,
		requested: requested,
		resolved:  resolved,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *PersistedPlaylist) ID() string            { return p.id }
func (p *PersistedPlaylist) Sequence() int         { return p.sequence }
func (p *PersistedPlaylist) RatingKey() string     { return p.ratingKey }
func (p *PersistedPlaylist) Name() string          { return p.name }
func (p *PersistedPlaylist) Prompt() string        { return p.prompt }
func (p *PersistedPlaylist) Model() string         { return p.model }
func (p *PersistedPlaylist) Requested() int        { return p.requested }
func (p *PersistedPlaylist) Resolved() int         { return p.resolved }
func (p *PersistedPlaylist) CreatedAt() time.Time  { return p.createdAt }
func (p *PersistedPlaylist) UpdatedAt() time.Time  { return p.updatedAt }
func (p *PersistedPlaylist) DeletedAt() *time.Time { return p.deletedAt }

func (p *PersistedPlaylist) SetID(id string)           { p.id = id }
func (p *PersistedPlaylist) SetSequence(seq int)       { p.sequence = seq }
func (p *PersistedPlaylist) SetRatingKey(key string)   { p.ratingKey = key }
func (p *PersistedPlaylist) SetCreatedAt(t time.Time)  { p.createdAt = t }
func (p *PersistedPlaylist) SetUpdatedAt(t time.Time)  { p.updatedAt = t }
func (p *PersistedPlaylist) SetDeletedAt(t *time.Time) { p.deletedAt = t }

// Validate checks the record's required fields.
func (p *PersistedPlaylist) Validate() error {
	if p.name == "" {
		return fmt.Errorf("playlist name is required")
	}
	if p.prompt == "" {
		return fmt.Errorf("playlist prompt is required")
	}
	if p.resolved <= 0 {
		return fmt.Errorf("playlist must have at least one resolved track")
	}
	return nil
}
