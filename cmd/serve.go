package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/plexmuse/plexmuse/internal/llm"
	"github.com/plexmuse/plexmuse/internal/repositories"
	"github.com/plexmuse/plexmuse/internal/server"
	"github.com/plexmuse/plexmuse/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the curation HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	host := r.config.Server.Host
	if cmd.String("host") != "" {
		host = cmd.String("host")
	}
	port := r.config.Server.Port
	if cmd.Int("port") != 0 {
		port = int(cmd.Int("port"))
	}

	// History is best effort; the API serves curation without it.
	var history server.History
	if db, err := shared.OpenDatabase(r.config.Database); err != nil {
		r.logger.Warn("history database unavailable, serving without history", "error", err)
	} else {
		defer db.Close()
		if err := shared.RunMigrations(db); err != nil {
			r.logger.Warn("migrations failed, serving without history", "error", err)
		} else {
			repo := repositories.NewPlaylistRepository(db)
			history = repo
			r.recorder = repositories.NewRecorderAdapter(repo)
		}
	}

	engine, err := r.ensureEngine(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize curation services: %w", err)
	}

	plexSvc, err := r.ensurePlex(ctx)
	if err != nil {
		return err
	}

	api := server.NewAPI(engine, plexSvc, llm.Providers(r.config.LLM), history, r.logger)

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger), server.CORS())
	api.Register(router)

	addr := fmt.Sprintf("%s:%d", host, port)
	r.logger.Info("starting curation API",
		"addr", addr, "cache_size", plexSvc.Cache().Size())

	serveCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Serve(serveCtx, addr, router, r.logger)
}
