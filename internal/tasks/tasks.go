// package tasks implements the prompt-to-playlist curation pipeline.
//
// The core abstraction is CurationEngine, which orchestrates the LLM
// selection steps and the Plex resolution steps into a single run.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/plexmuse/plexmuse/internal/llm"
	"github.com/plexmuse/plexmuse/internal/models"
	"github.com/plexmuse/plexmuse/internal/plex"
	"github.com/plexmuse/plexmuse/internal/shared"
)

// PlaylistRecorder persists finished curation runs.
//
// Implementations must tolerate being called once per run; record
// failures are logged and never fail the curation itself.
type PlaylistRecorder interface {
	Record(playlist *models.PersistedPlaylist) error
}

// CurationResult contains all data from a finished curation run.
type CurationResult struct {
	Response        models.PlaylistResponse      // API response for the created playlist
	Artists         []string                     // Artist names the LLM selected
	Recommendations []models.TrackRecommendation // Raw LLM track recommendations
	RequestedTracks int                          // Number of recommendations received
	ResolvedTracks  int                          // Number of tracks resolved to the library
}

// Dropped returns how many recommendations could not be resolved.
func (r *CurationResult) Dropped() int {
	return r.RequestedTracks - r.ResolvedTracks
}

// CurationEngine runs the curation pipeline.
// Contains dependencies on the Plex resolution service and the LLM
// selection service.
type CurationEngine struct {
	plex         *plex.Service
	llm          *llm.Service
	recorder     PlaylistRecorder
	defaultModel string
	logger       *log.Logger
}

// NewCurationEngine creates a CurationEngine with the provided services.
// recorder may be nil to disable history persistence.
func NewCurationEngine(plexSvc *plex.Service, llmSvc *llm.Service, recorder PlaylistRecorder, logger *log.Logger) *CurationEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &CurationEngine{
		plex:     plexSvc,
		llm:      llmSvc,
		recorder: recorder,
		logger:   logger.With("component", "curation_engine"),
	}
}

// WithDefaultModel sets the model used when a request does not name one.
func (e *CurationEngine) WithDefaultModel(model string) *CurationEngine {
	e.defaultModel = model
	return e
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *CurationEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Curate runs the full prompt-to-playlist pipeline.
//
// Each failure propagates to the caller unretried; per-item skips inside
// playlist assembly are handled (and logged) by the Plex service.
func (e *CurationEngine) Curate(ctx context.Context, progress chan<- ProgressUpdate, req models.PlaylistRequest) (*CurationResult, error) {
	if e.plex == nil || e.llm == nil {
		return nil, fmt.Errorf("%w: curation services not initialized", shared.ErrServiceUnavailable)
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	req.Normalize()
	if req.Model == "" {
		req.Model = e.defaultModel
	}

	catalog := e.plex.Cache().AllArtists()
	if len(catalog) == 0 {
		return nil, fmt.Errorf("%w: artist cache is empty", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, selectArtistsUpdate(len(catalog)))
	artists, err := e.llm.SelectArtists(ctx, req.Prompt, catalog, req.Model)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, fetchAlbumsUpdate(len(artists)))
	albums, err := e.plex.BulkAlbums(ctx, artists)
	if err != nil {
		return nil, err
	}
	if len(albums) == 0 {
		return nil, fmt.Errorf("%w: none of the selected artists exist in the library", shared.ErrEmptyResult)
	}

	e.sendProgress(progress, selectTracksUpdate(req.MinTracks, req.MaxTracks))
	recommendations, err := e.llm.SelectTracks(ctx, req.Prompt, albums, req.Model, req.MinTracks, req.MaxTracks)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, namePlaylistUpdate())
	name, err := e.llm.PlaylistName(ctx, req.Prompt, req.Model)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, assemblePlaylistUpdate(len(recommendations)))
	playlist, resolved, err := e.plex.CreateCuratedPlaylist(ctx, name, recommendations)
	if err != nil {
		return nil, err
	}

	machineID, err := e.plex.MachineID(ctx)
	if err != nil {
		// The playlist already exists; a failed identifier lookup only
		// costs the deep link.
		e.logger.Warn("failed to read machine identifier", "error", err)
		machineID = ""
	}

	result := &CurationResult{
		Response: models.PlaylistResponse{
			Name:              playlist.Title,
			TrackCount:        resolved,
			Tracks:            recommendations,
			ID:                playlist.RatingKey,
			MachineIdentifier: machineID,
		},
		Artists:         artists,
		Recommendations: recommendations,
		RequestedTracks: len(recommendations),
		ResolvedTracks:  resolved,
	}

	e.record(req, playlist, result)

	e.sendProgress(progress, doneUpdate(playlist.Title, resolved, len(recommendations)))
	e.logger.Info("curation complete",
		"playlist", playlist.Title, "resolved", resolved, "requested", len(recommendations))

	return result, nil
}

// record persists the run when a recorder is configured. Failures are
// logged and swallowed so history bookkeeping cannot fail a curation.
func (e *CurationEngine) record(req models.PlaylistRequest, playlist *plex.PlaylistEntry, result *CurationResult) {
	if e.recorder == nil {
		return
	}

	entry := models.NewPersistedPlaylist(
		playlist.RatingKey,
		playlist.Title,
		req.Prompt,
		req.Model,
		result.RequestedTracks,
		result.ResolvedTracks,
	)

	if err := e.recorder.Record(entry); err != nil {
		e.logger.Warn("failed to record playlist history", "error", err)
	}
}
