package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/plexmuse/plexmuse/internal/llm"
	"github.com/plexmuse/plexmuse/internal/repositories"
	"github.com/plexmuse/plexmuse/internal/shared"
	"github.com/urfave/cli/v3"
)

// Artists lists the cached artist catalog.
func (r *Runner) Artists(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	plexSvc, err := r.ensurePlex(ctx)
	if err != nil {
		return err
	}

	artists := plexSvc.Cache().AllArtists()

	if cmd.Bool("json") {
		return r.writeJSON(artists, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Library Artists (%d)", len(artists)))
	for _, artist := range artists {
		if len(artist.Genres) > 0 {
			r.writePlain("%s - %s\n", artist.Name, strings.Join(artist.Genres, ", "))
		} else {
			r.writePlain("%s\n", artist.Name)
		}
	}

	return nil
}

// CacheStats prints library statistics from the artist cache.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	plexSvc, err := r.ensurePlex(ctx)
	if err != nil {
		return err
	}

	stats := plexSvc.Cache().Stats()

	r.writePlainHeader("Library Statistics")
	r.writePlain("Artists: %d\n", stats.Artists)
	r.writePlain("Albums:  %d\n", stats.Albums)
	r.writePlain("Tracks:  %d\n", stats.Tracks)
	if updatedAt := plexSvc.Cache().UpdatedAt(); updatedAt != "" {
		r.writePlain("Library updated at: %s\n", updatedAt)
	}

	return nil
}

// CacheRefresh rebuilds the artist cache when the library has changed.
func (r *Runner) CacheRefresh(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	plexSvc, err := r.ensurePlex(ctx)
	if err != nil {
		return err
	}

	refreshed, err := plexSvc.Cache().RefreshIfStale(ctx)
	if err != nil {
		return fmt.Errorf("cache refresh failed: %w", err)
	}

	if refreshed {
		r.writePlainln("✓ Cache refreshed: %d artists", plexSvc.Cache().Size())
	} else {
		r.writePlainln("Cache is up to date: %d artists", plexSvc.Cache().Size())
	}

	return nil
}

// Providers lists the LLM providers usable with the configured API keys.
func (r *Runner) Providers(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	providers := llm.Providers(r.config.LLM)
	if len(providers) == 0 {
		return fmt.Errorf("%w: no LLM API key configured", shared.ErrMissingCredentials)
	}

	return r.writeJSON(providers, cmd.Bool("pretty"))
}

// History lists previously curated playlists from the local database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	criteria := map[string]any{}
	if model := cmd.String("model"); model != "" {
		criteria["model"] = model
	}
	if limit := int(cmd.Int("limit")); limit > 0 {
		criteria["limit"] = limit
	}

	playlists, err := repositories.NewPlaylistRepository(db).List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if cmd.Bool("json") {
		records := make([]map[string]any, 0, len(playlists))
		for _, p := range playlists {
			records = append(records, map[string]any{
				"id":         p.ID(),
				"sequence":   p.Sequence(),
				"rating_key": p.RatingKey(),
				"name":       p.Name(),
				"prompt":     p.Prompt(),
				"model":      p.Model(),
				"requested":  p.Requested(),
				"resolved":   p.Resolved(),
				"created_at": p.CreatedAt(),
			})
		}
		return r.writeJSON(records, true)
	}

	if len(playlists) == 0 {
		r.writePlainln("No curated playlists yet. Run 'plexmuse curate \"your mood\"' to create one.")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Curation History (%d)", len(playlists)))
	for _, p := range playlists {
		r.writePlain("#%d %s\n", p.Sequence(), p.Name())
		r.writePlain("    prompt: %s\n", p.Prompt())
		r.writePlain("    tracks: %d/%d", p.Resolved(), p.Requested())
		if p.Model() != "" {
			r.writePlain("  model: %s", p.Model())
		}
		r.writePlain("  created: %s\n", p.CreatedAt().Format("2006-01-02 15:04"))
	}

	return nil
}
