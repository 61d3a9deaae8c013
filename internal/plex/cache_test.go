package plex_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/plexmuse/plexmuse/internal/plex"
	th "github.com/plexmuse/plexmuse/internal/testing"
)

func testLibrary() *th.FakeLibrary {
	return &th.FakeLibrary{
		MachineIdentifier: "machine-1",
		UpdatedAt:         "1000",
		Artists: []plex.ArtistEntry{
			{RatingKey: "a1", Name: "Queen", Genres: []string{"rock"}},
			{RatingKey: "a2", Name: "Muse", Genres: []string{"alt rock"}},
			{RatingKey: "a3", Name: "Daft Punk"},
		},
		AlbumCount: 12,
		TrackCount: 150,
	}
}

func TestLibraryCacheInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("loads artists and stats", func(t *testing.T) {
		library := testLibrary()
		cache := plex.NewLibraryCache(library, nil)

		if err := cache.Initialize(ctx); err != nil {
			t.Fatalf("failed to initialize: %v", err)
		}

		if cache.Size() != 3 {
			t.Errorf("expected 3 artists, got %d", cache.Size())
		}

		stats := cache.Stats()
		if stats.Artists != 3 || stats.Albums != 12 || stats.Tracks != 150 {
			t.Errorf("unexpected stats: %+v", stats)
		}

		if cache.UpdatedAt() != "1000" {
			t.Errorf("expected freshness token 1000, got %s", cache.UpdatedAt())
		}
	})

	t.Run("preserves library order", func(t *testing.T) {
		library := testLibrary()
		cache := plex.NewLibraryCache(library, nil)

		if err := cache.Initialize(ctx); err != nil {
			t.Fatalf("failed to initialize: %v", err)
		}

		artists := cache.AllArtists()
		if len(artists) != 3 {
			t.Fatalf("expected 3 artists, got %d", len(artists))
		}
		if artists[0].Name != "Queen" || artists[2].Name != "Daft Punk" {
			t.Errorf("unexpected order: %v", artists)
		}
	})

	t.Run("deduplicates rating keys", func(t *testing.T) {
		library := testLibrary()
		library.Artists = append(library.Artists, plex.ArtistEntry{RatingKey: "a1", Name: "Queen"})
		cache := plex.NewLibraryCache(library, nil)

		if err := cache.Initialize(ctx); err != nil {
			t.Fatalf("failed to initialize: %v", err)
		}
		if cache.Size() != 3 {
			t.Errorf("expected duplicates dropped, got %d artists", cache.Size())
		}
	})

	t.Run("load failure propagates", func(t *testing.T) {
		library := testLibrary()
		library.Err = errors.New("server unreachable")
		cache := plex.NewLibraryCache(library, nil)

		if err := cache.Initialize(ctx); err == nil {
			t.Error("expected initialization error")
		}
		if cache.Size() != 0 {
			t.Errorf("expected empty cache after failure, got %d", cache.Size())
		}
	})
}

func TestLibraryCacheRefreshIfStale(t *testing.T) {
	ctx := context.Background()

	t.Run("unchanged token is a no-op", func(t *testing.T) {
		library := testLibrary()
		cache := plex.NewLibraryCache(library, nil)
		if err := cache.Initialize(ctx); err != nil {
			t.Fatalf("failed to initialize: %v", err)
		}

		// Mutate the backing catalog without bumping the token; the
		// cache must not notice.
		library.Artists = library.Artists[:1]

		refreshed, err := cache.RefreshIfStale(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if refreshed {
			t.Error("expected no refresh for unchanged token")
		}
		if cache.Size() != 3 {
			t.Errorf("expected snapshot untouched, got %d artists", cache.Size())
		}
	})

	t.Run("changed token triggers rebuild", func(t *testing.T) {
		library := testLibrary()
		cache := plex.NewLibraryCache(library, nil)
		if err := cache.Initialize(ctx); err != nil {
			t.Fatalf("failed to initialize: %v", err)
		}

		library.UpdatedAt = "2000"
		library.Artists = append(library.Artists, plex.ArtistEntry{RatingKey: "a4", Name: "Boards of Canada"})

		refreshed, err := cache.RefreshIfStale(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !refreshed {
			t.Error("expected refresh for changed token")
		}
		if cache.Size() != 4 {
			t.Errorf("expected 4 artists after refresh, got %d", cache.Size())
		}
		if cache.UpdatedAt() != "2000" {
			t.Errorf("expected new token, got %s", cache.UpdatedAt())
		}
	})

	t.Run("readers stay safe during refresh", func(t *testing.T) {
		library := testLibrary()
		cache := plex.NewLibraryCache(library, nil)
		if err := cache.Initialize(ctx); err != nil {
			t.Fatalf("failed to initialize: %v", err)
		}

		library.UpdatedAt = "2000"

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					if artists := cache.AllArtists(); len(artists) == 0 {
						t.Error("reader observed an empty snapshot")
						return
					}
					cache.Stats()
					cache.FindByName("Queen")
					cache.UpdatedAt()
				}
			}()
		}
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := cache.RefreshIfStale(ctx); err != nil {
					t.Errorf("refresh failed: %v", err)
				}
			}()
		}
		wg.Wait()

		if cache.UpdatedAt() != "2000" {
			t.Errorf("expected refreshed token, got %s", cache.UpdatedAt())
		}
	})

	t.Run("token read failure leaves cache intact", func(t *testing.T) {
		library := testLibrary()
		cache := plex.NewLibraryCache(library, nil)
		if err := cache.Initialize(ctx); err != nil {
			t.Fatalf("failed to initialize: %v", err)
		}

		library.Err = errors.New("server unreachable")

		if _, err := cache.RefreshIfStale(ctx); err == nil {
			t.Error("expected refresh error")
		}
		if cache.Size() != 3 {
			t.Errorf("expected snapshot untouched, got %d artists", cache.Size())
		}
	})
}

func TestLibraryCacheFindByName(t *testing.T) {
	ctx := context.Background()
	library := testLibrary()
	cache := plex.NewLibraryCache(library, nil)
	if err := cache.Initialize(ctx); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}

	t.Run("case insensitive", func(t *testing.T) {
		artist, ok := cache.FindByName("qUeEn")
		if !ok {
			t.Fatal("expected a match")
		}
		if artist.Name != "Queen" {
			t.Errorf("expected canonical name Queen, got %s", artist.Name)
		}
	})

	t.Run("missing artist", func(t *testing.T) {
		if _, ok := cache.FindByName("Nonexistent"); ok {
			t.Error("expected no match")
		}
	})
}

func TestLibraryCacheBeforeLoad(t *testing.T) {
	cache := plex.NewLibraryCache(testLibrary(), nil)

	if cache.Size() != 0 {
		t.Errorf("expected empty cache, got %d", cache.Size())
	}

	stats := cache.Stats()
	if stats.Artists != 0 || stats.Albums != 0 || stats.Tracks != 0 {
		t.Errorf("expected zero stats before load, got %+v", stats)
	}

	if artists := cache.AllArtists(); len(artists) != 0 {
		t.Errorf("expected no artists before load, got %d", len(artists))
	}
}
