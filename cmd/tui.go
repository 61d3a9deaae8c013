package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/plexmuse/plexmuse/internal/shared"
	"github.com/plexmuse/plexmuse/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for playlist curation.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/plexmuse-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(shared.WithLogger(fileLogger, "component", "tui"))

	engine, err := r.ensureEngine(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize curation services: %w", err)
	}

	plexSvc, err := r.ensurePlex(ctx)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, engine, plexSvc.Cache().Size(), cmd.String("model"))
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
