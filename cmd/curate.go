package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/plexmuse/plexmuse/internal/formatter"
	"github.com/plexmuse/plexmuse/internal/models"
	"github.com/plexmuse/plexmuse/internal/repositories"
	"github.com/plexmuse/plexmuse/internal/shared"
	"github.com/plexmuse/plexmuse/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Curate runs the full prompt-to-playlist pipeline from the command line.
//
// Progress updates are drained into log lines; the final track list is
// printed as JSON or an exported format.
func (r *Runner) Curate(ctx context.Context, cmd *cli.Command) error {
	prompt := strings.TrimSpace(cmd.StringArg("prompt"))
	if prompt == "" {
		return fmt.Errorf("%w: prompt", shared.ErrMissingArgument)
	}

	r.reloadConfig(cmd)

	if r.recorder == nil {
		if db, err := shared.OpenDatabase(r.config.Database); err != nil {
			r.logger.Debug("history database unavailable, skipping history", "error", err)
		} else {
			defer db.Close()
			if err := shared.RunMigrations(db); err == nil {
				r.recorder = repositories.NewRecorderAdapter(repositories.NewPlaylistRepository(db))
			}
		}
	}

	engine, err := r.ensureEngine(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize curation services: %w", err)
	}

	req := models.PlaylistRequest{
		Prompt:    prompt,
		Model:     cmd.String("model"),
		MinTracks: int(cmd.Int("min-tracks")),
		MaxTracks: int(cmd.Int("max-tracks")),
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
		}
	}()

	result, err := engine.Curate(ctx, progress, req)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Response, cmd.Bool("pretty"))
	}

	if format := cmd.String("format"); format != "" {
		data, err := formatter.Export(&result.Response, prompt, format)
		if err != nil {
			return err
		}

		if outputPath := cmd.String("output"); outputPath != "" {
			if err := os.WriteFile(outputPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			r.writePlainln("✓ Track list written to %s", outputPath)
			return nil
		}

		return r.writePlain("%s", string(data))
	}

	r.writePlainHeader(result.Response.Name)
	for i, track := range result.Response.Tracks {
		r.writePlain("%3d. %s - %s\n", i+1, track.Artist, track.Title)
	}
	r.writePlainln("✓ Playlist created: %s", result.Response.Name)
	r.writePlain("  Matched %d of %d recommended tracks\n", result.ResolvedTracks, result.RequestedTracks)
	if result.Response.MachineIdentifier != "" && result.Response.ID != "" {
		r.writePlain("  https://app.plex.tv/desktop/#!/server/%s/playlist?key=/playlists/%s\n",
			result.Response.MachineIdentifier, result.Response.ID)
	}

	return nil
}
