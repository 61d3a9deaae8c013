package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/plexmuse/plexmuse/internal/models"
	"github.com/plexmuse/plexmuse/internal/plex"
	"github.com/plexmuse/plexmuse/internal/shared"
	"github.com/plexmuse/plexmuse/internal/tasks"
)

// Engine abstracts the curation pipeline for the HTTP layer.
type Engine interface {
	Curate(ctx context.Context, progress chan<- tasks.ProgressUpdate, req models.PlaylistRequest) (*tasks.CurationResult, error)
}

// History abstracts curation history access for the HTTP layer.
type History interface {
	List(criteria map[string]any) ([]*models.PersistedPlaylist, error)
}

// API holds the handlers for the curation endpoints.
type API struct {
	engine    Engine
	plex      *plex.Service
	providers []models.Provider
	history   History
	logger    *log.Logger
}

// NewAPI creates the API handler set. history may be nil, in which case
// GET /playlists reports an empty list.
func NewAPI(engine Engine, plexSvc *plex.Service, providers []models.Provider, history History, logger *log.Logger) *API {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &API{
		engine:    engine,
		plex:      plexSvc,
		providers: providers,
		history:   history,
		logger:    logger.With("component", "api"),
	}
}

// Register attaches all API routes to the router.
func (a *API) Register(r Router) {
	r.Handle(http.MethodGet, "/health", http.HandlerFunc(a.handleHealth))
	r.Handle(http.MethodGet, "/artists", http.HandlerFunc(a.handleArtists))
	r.Handle(http.MethodGet, "/stats", http.HandlerFunc(a.handleStats))
	r.Handle(http.MethodGet, "/providers", http.HandlerFunc(a.handleProviders))
	r.Handle(http.MethodGet, "/playlists", http.HandlerFunc(a.handlePlaylists))
	r.Handle(http.MethodPost, "/cache/refresh", http.HandlerFunc(a.handleCacheRefresh))
	r.Handle(http.MethodPost, "/recommendations", http.HandlerFunc(a.handleRecommendations))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError mirrors FastAPI's {"detail": ...} error body so existing
// clients keep working.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"cache_size": a.plex.Cache().Size(),
	})
}

func (a *API) handleArtists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.plex.Cache().AllArtists())
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.plex.Cache().Stats())
}

func (a *API) handleProviders(w http.ResponseWriter, r *http.Request) {
	providers := a.providers
	if providers == nil {
		providers = []models.Provider{}
	}
	writeJSON(w, http.StatusOK, providers)
}

type playlistRecord struct {
	ID        string    `json:"id"`
	RatingKey string    `json:"rating_key,omitempty"`
	Name      string    `json:"name"`
	Prompt    string    `json:"prompt"`
	Model     string    `json:"model,omitempty"`
	Requested int       `json:"requested"`
	Resolved  int       `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *API) handlePlaylists(w http.ResponseWriter, r *http.Request) {
	records := []playlistRecord{}

	if a.history != nil {
		playlists, err := a.history.List(map[string]any{})
		if err != nil {
			a.logger.Error("failed to list playlist history", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to read playlist history")
			return
		}

		for _, p := range playlists {
			records = append(records, playlistRecord{
				ID:        p.ID(),
				RatingKey: p.RatingKey(),
				Name:      p.Name(),
				Prompt:    p.Prompt(),
				Model:     p.Model(),
				Requested: p.Requested(),
				Resolved:  p.Resolved(),
				CreatedAt: p.CreatedAt(),
			})
		}
	}

	writeJSON(w, http.StatusOK, records)
}

func (a *API) handleCacheRefresh(w http.ResponseWriter, r *http.Request) {
	refreshed, err := a.plex.Cache().RefreshIfStale(r.Context())
	if err != nil {
		a.logger.Error("cache refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"refreshed":  refreshed,
		"cache_size": a.plex.Cache().Size(),
	})
}

func (a *API) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req models.PlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid JSON payload")
		return
	}

	result, err := a.engine.Curate(r.Context(), nil, req)
	if err != nil {
		a.logger.Error("error creating playlist", "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result.Response)
}

// statusForError maps pipeline failures to HTTP statuses: invalid input is
// the client's fault, selection failures are the upstream model's, and the
// rest is ours.
func statusForError(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrEmptyResult),
		errors.Is(err, shared.ErrMalformedResponse),
		errors.Is(err, shared.ErrAPIRequest):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
