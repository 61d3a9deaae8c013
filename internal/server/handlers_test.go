package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/plexmuse/plexmuse/internal/models"
	"github.com/plexmuse/plexmuse/internal/plex"
	"github.com/plexmuse/plexmuse/internal/server"
	"github.com/plexmuse/plexmuse/internal/shared"
	"github.com/plexmuse/plexmuse/internal/tasks"
	th "github.com/plexmuse/plexmuse/internal/testing"
)

// stubEngine returns a canned result or error for POST /recommendations.
type stubEngine struct {
	result *tasks.CurationResult
	err    error

	requests []models.PlaylistRequest
}

func (s *stubEngine) Curate(ctx context.Context, progress chan<- tasks.ProgressUpdate, req models.PlaylistRequest) (*tasks.CurationResult, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

// stubHistory returns canned playlist records for GET /playlists.
type stubHistory struct {
	playlists []*models.PersistedPlaylist
	err       error
}

func (s *stubHistory) List(criteria map[string]any) ([]*models.PersistedPlaylist, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.playlists, nil
}

func apiLibrary() *th.FakeLibrary {
	return &th.FakeLibrary{
		MachineIdentifier: "machine-1",
		UpdatedAt:         "1000",
		Artists: []plex.ArtistEntry{
			{RatingKey: "a1", Name: "Queen", Genres: []string{"rock"}},
			{RatingKey: "a2", Name: "Muse", Genres: []string{"alt rock"}},
		},
		AlbumCount: 4,
		TrackCount: 40,
	}
}

func newTestAPI(t *testing.T, library *th.FakeLibrary, engine server.Engine, providers []models.Provider, history server.History) http.Handler {
	t.Helper()

	cache := plex.NewLibraryCache(library, nil)
	if err := cache.Initialize(context.Background()); err != nil {
		t.Fatalf("failed to initialize cache: %v", err)
	}
	plexSvc := plex.NewService(library, cache, nil, 0)

	router := server.NewBasicRouter()
	server.NewAPI(engine, plexSvc, providers, history, nil).Register(router)
	return router
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestHandleHealth(t *testing.T) {
	handler := newTestAPI(t, apiLibrary(), &stubEngine{}, nil, nil)

	rec := doRequest(t, handler, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var body map[string]any
	decodeBody(t, rec, &body)
	if body["status"] != "healthy" {
		t.Errorf("unexpected status %v", body["status"])
	}
	if body["cache_size"] != float64(2) {
		t.Errorf("expected cache_size 2, got %v", body["cache_size"])
	}
}

func TestHandleArtists(t *testing.T) {
	handler := newTestAPI(t, apiLibrary(), &stubEngine{}, nil, nil)

	rec := doRequest(t, handler, http.MethodGet, "/artists", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var artists []models.Artist
	decodeBody(t, rec, &artists)
	if len(artists) != 2 {
		t.Fatalf("expected 2 artists, got %d", len(artists))
	}
	if artists[0].Name != "Queen" || artists[0].ID != "a1" {
		t.Errorf("unexpected first artist: %+v", artists[0])
	}
}

func TestHandleStats(t *testing.T) {
	handler := newTestAPI(t, apiLibrary(), &stubEngine{}, nil, nil)

	rec := doRequest(t, handler, http.MethodGet, "/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats models.LibraryStats
	decodeBody(t, rec, &stats)
	if stats.Artists != 2 || stats.Albums != 4 || stats.Tracks != 40 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestHandleProviders(t *testing.T) {
	t.Run("returns configured providers", func(t *testing.T) {
		providers := []models.Provider{
			{ID: "openai", Name: "OpenAI", Model: "gpt-4o-mini"},
		}
		handler := newTestAPI(t, apiLibrary(), &stubEngine{}, providers, nil)

		rec := doRequest(t, handler, http.MethodGet, "/providers", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var got []models.Provider
		decodeBody(t, rec, &got)
		if len(got) != 1 || got[0].ID != "openai" {
			t.Errorf("unexpected providers: %+v", got)
		}
	})

	t.Run("nil providers serializes as empty list", func(t *testing.T) {
		handler := newTestAPI(t, apiLibrary(), &stubEngine{}, nil, nil)

		rec := doRequest(t, handler, http.MethodGet, "/providers", "")
		if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
			t.Errorf("expected empty JSON array, got %q", body)
		}
	})
}

func TestHandlePlaylists(t *testing.T) {
	t.Run("returns history records", func(t *testing.T) {
		playlist := models.NewPersistedPlaylist("42", "Stadium Nights", "stadium anthems", "gpt-4o-mini", 3, 2)
		playlist.SetID("id-1")
		history := &stubHistory{playlists: []*models.PersistedPlaylist{playlist}}
		handler := newTestAPI(t, apiLibrary(), &stubEngine{}, nil, history)

		rec := doRequest(t, handler, http.MethodGet, "/playlists", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var records []map[string]any
		decodeBody(t, rec, &records)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		record := records[0]
		if record["name"] != "Stadium Nights" || record["rating_key"] != "42" {
			t.Errorf("unexpected record: %+v", record)
		}
		if record["requested"] != float64(3) || record["resolved"] != float64(2) {
			t.Errorf("unexpected counts: %+v", record)
		}
	})

	t.Run("nil history yields empty list", func(t *testing.T) {
		handler := newTestAPI(t, apiLibrary(), &stubEngine{}, nil, nil)

		rec := doRequest(t, handler, http.MethodGet, "/playlists", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
			t.Errorf("expected empty JSON array, got %q", body)
		}
	})

	t.Run("history failure returns 500", func(t *testing.T) {
		history := &stubHistory{err: errors.New("db locked")}
		handler := newTestAPI(t, apiLibrary(), &stubEngine{}, nil, history)

		rec := doRequest(t, handler, http.MethodGet, "/playlists", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}

		var body map[string]string
		decodeBody(t, rec, &body)
		if body["detail"] == "" {
			t.Error("expected detail in error body")
		}
	})
}

func TestHandleCacheRefresh(t *testing.T) {
	t.Run("reports refresh result", func(t *testing.T) {
		library := apiLibrary()
		handler := newTestAPI(t, library, &stubEngine{}, nil, nil)

		rec := doRequest(t, handler, http.MethodPost, "/cache/refresh", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var body map[string]any
		decodeBody(t, rec, &body)
		if body["refreshed"] != false {
			t.Errorf("expected no refresh for unchanged library, got %v", body["refreshed"])
		}
		if body["cache_size"] != float64(2) {
			t.Errorf("expected cache_size 2, got %v", body["cache_size"])
		}
	})

	t.Run("refresh failure returns 500", func(t *testing.T) {
		library := apiLibrary()
		handler := newTestAPI(t, library, &stubEngine{}, nil, nil)
		library.Err = errors.New("connection reset")

		rec := doRequest(t, handler, http.MethodPost, "/cache/refresh", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("rejects GET", func(t *testing.T) {
		handler := newTestAPI(t, apiLibrary(), &stubEngine{}, nil, nil)

		rec := doRequest(t, handler, http.MethodGet, "/cache/refresh", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}

func TestHandleRecommendations(t *testing.T) {
	t.Run("returns playlist response", func(t *testing.T) {
		engine := &stubEngine{result: &tasks.CurationResult{
			Response: models.PlaylistResponse{
				Name:       "Stadium Nights",
				TrackCount: 2,
				Tracks: []models.TrackRecommendation{
					{Artist: "Queen", Title: "Innuendo"},
					{Artist: "Muse", Title: "Starlight"},
				},
				ID:                "99",
				MachineIdentifier: "machine-1",
			},
			RequestedTracks: 2,
			ResolvedTracks:  2,
		}}
		handler := newTestAPI(t, apiLibrary(), engine, nil, nil)

		rec := doRequest(t, handler, http.MethodPost, "/recommendations", `{"prompt": "stadium anthems", "model": "gpt-4o-mini"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp models.PlaylistResponse
		decodeBody(t, rec, &resp)
		if resp.Name != "Stadium Nights" || resp.TrackCount != 2 {
			t.Errorf("unexpected response: %+v", resp)
		}

		if len(engine.requests) != 1 {
			t.Fatalf("expected one engine call, got %d", len(engine.requests))
		}
		if engine.requests[0].Prompt != "stadium anthems" || engine.requests[0].Model != "gpt-4o-mini" {
			t.Errorf("unexpected request: %+v", engine.requests[0])
		}
	})

	t.Run("invalid JSON returns 422", func(t *testing.T) {
		handler := newTestAPI(t, apiLibrary(), &stubEngine{}, nil, nil)

		rec := doRequest(t, handler, http.MethodPost, "/recommendations", "{not json")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}

		var body map[string]string
		decodeBody(t, rec, &body)
		if body["detail"] != "invalid JSON payload" {
			t.Errorf("unexpected detail %q", body["detail"])
		}
	})

	t.Run("maps pipeline errors to statuses", func(t *testing.T) {
		cases := []struct {
			name string
			err  error
			want int
		}{
			{"invalid input", fmt.Errorf("%w: prompt is required", shared.ErrInvalidInput), http.StatusUnprocessableEntity},
			{"empty result", fmt.Errorf("%w: no artists selected", shared.ErrEmptyResult), http.StatusBadGateway},
			{"malformed response", fmt.Errorf("%w: bad JSON", shared.ErrMalformedResponse), http.StatusBadGateway},
			{"api request", fmt.Errorf("%w: upstream 500", shared.ErrAPIRequest), http.StatusBadGateway},
			{"anything else", errors.New("boom"), http.StatusInternalServerError},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				handler := newTestAPI(t, apiLibrary(), &stubEngine{err: tc.err}, nil, nil)

				rec := doRequest(t, handler, http.MethodPost, "/recommendations", `{"prompt": "anything"}`)
				if rec.Code != tc.want {
					t.Errorf("expected %d, got %d", tc.want, rec.Code)
				}

				var body map[string]string
				decodeBody(t, rec, &body)
				if body["detail"] == "" {
					t.Error("expected detail in error body")
				}
			})
		}
	})
}
