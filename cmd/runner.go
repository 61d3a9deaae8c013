package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/plexmuse/plexmuse/internal/llm"
	"github.com/plexmuse/plexmuse/internal/plex"
	"github.com/plexmuse/plexmuse/internal/shared"
	"github.com/plexmuse/plexmuse/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	plex       *plex.Service
	llm        *llm.Service
	engine     *tasks.CurationEngine
	recorder   tasks.PlaylistRecorder
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Plex, LLM, and Engine are optional; when nil they are built on demand
// from the configuration the first time a command needs them.
type RunnerOpts struct {
	Config     *shared.Config
	Plex       *plex.Service
	LLM        *llm.Service
	Engine     *tasks.CurationEngine
	Recorder   tasks.PlaylistRecorder
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		plex:       opts.Plex,
		llm:        opts.LLM,
		engine:     opts.Engine,
		recorder:   opts.Recorder,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, migrateCommand, serveCommand, curateCommand, artistsCommand, cacheCommand, providersCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// ensurePlex lazily builds the Plex service and warms the artist cache.
// Connecting and the initial catalog fetch only happen for commands that
// actually talk to the server.
func (r *Runner) ensurePlex(ctx context.Context) (*plex.Service, error) {
	if r.plex != nil {
		return r.plex, nil
	}

	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	client := plex.NewClient(r.config.Plex.BaseURL, r.config.Plex.Token, r.config.Plex.Section, r.httpClient)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	cache := plex.NewLibraryCache(client, r.logger)
	if err := cache.Initialize(ctx); err != nil {
		return nil, err
	}

	r.plex = plex.NewService(client, cache, r.logger, r.config.LLM.RateLimit)
	return r.plex, nil
}

// ensureLLM lazily builds the selection service from the configured keys.
func (r *Runner) ensureLLM() (*llm.Service, error) {
	if r.llm != nil {
		return r.llm, nil
	}

	client, err := llm.NewClientFromConfig(r.config.LLM)
	if err != nil {
		return nil, err
	}

	r.llm = llm.NewService(client, r.logger, r.config.LLM.Temperature)
	return r.llm, nil
}

// ensureEngine lazily builds the curation engine and its dependencies.
func (r *Runner) ensureEngine(ctx context.Context) (*tasks.CurationEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	plexSvc, err := r.ensurePlex(ctx)
	if err != nil {
		return nil, err
	}

	llmSvc, err := r.ensureLLM()
	if err != nil {
		return nil, err
	}

	r.engine = tasks.NewCurationEngine(plexSvc, llmSvc, r.recorder, r.logger).
		WithDefaultModel(r.config.LLM.DefaultModel)
	return r.engine, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
