package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/plexmuse/plexmuse/internal/llm"
	"github.com/plexmuse/plexmuse/internal/plex"
	"github.com/plexmuse/plexmuse/internal/shared"
	"github.com/plexmuse/plexmuse/internal/tasks"
	tu "github.com/plexmuse/plexmuse/internal/testing"
	"github.com/urfave/cli/v3"
)

// fakeEngine builds a curation engine from in-memory fakes so command
// actions can run without a Plex server or LLM provider.
func fakeEngine(t *testing.T, library *tu.FakeLibrary, completer *tu.FakeCompleter, recorder tasks.PlaylistRecorder) *tasks.CurationEngine {
	t.Helper()

	cache := plex.NewLibraryCache(library, nil)
	if err := cache.Initialize(context.Background()); err != nil {
		t.Fatalf("failed to initialize cache: %v", err)
	}
	plexSvc := plex.NewService(library, cache, nil, 0)
	llmSvc := llm.NewService(completer, nil, 0)

	return tasks.NewCurationEngine(plexSvc, llmSvc, recorder, nil).WithDefaultModel("gpt-4o-mini")
}

func curationLibrary() *tu.FakeLibrary {
	return &tu.FakeLibrary{
		MachineIdentifier: "machine-1",
		UpdatedAt:         "1000",
		Artists: []plex.ArtistEntry{
			{RatingKey: "a1", Name: "Queen", Genres: []string{"rock"}},
		},
		AlbumsByKey: map[string][]plex.AlbumEntry{
			"a1": {{RatingKey: "al1", Name: "Innuendo", Year: 1991, TrackCount: 12}},
		},
		TracksByKey: map[string][]plex.TrackEntry{
			"a1": {{RatingKey: "t1", Title: "Innuendo", ArtistName: "Queen"}},
		},
		AlbumCount: 1,
		TrackCount: 1,
	}
}

func newTestApp(runner *Runner) *cli.Command {
	return &cli.Command{
		Name:     "plexmuse",
		Commands: runner.register(),
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			recorder := &tu.FakeRecorder{}
			engine := fakeEngine(t, curationLibrary(), &tu.FakeCompleter{}, recorder)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Engine:     engine,
				Recorder:   recorder,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.engine != engine {
				t.Error("expected engine to be set")
			}
			if runner.recorder != recorder {
				t.Error("expected recorder to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlainln", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlainln("done: %d", 3); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result := output.String(); result != "\ndone: 3\n" {
			t.Errorf("expected surrounding newlines, got %q", result)
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 9 {
			t.Errorf("expected 9 commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "migrate", "serve", "curate", "artists", "cache", "providers", "history", "tui"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})
}

func TestCurateCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("creates playlist and prints summary", func(t *testing.T) {
		output := &bytes.Buffer{}
		library := curationLibrary()
		completer := &tu.FakeCompleter{Responses: []string{
			`{"artists": ["Queen"]}`,
			`{"tracks": [{"artist": "Queen", "title": "Innuendo"}]}`,
			"Arena Hour",
		}}
		recorder := &tu.FakeRecorder{}
		runner := NewRunner(RunnerOpts{
			Engine:   fakeEngine(t, library, completer, recorder),
			Recorder: recorder,
			Output:   output,
		})

		err := newTestApp(runner).Run(ctx, []string{"plexmuse", "curate", "stadium anthems"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Arena Hour") {
			t.Errorf("expected playlist name in output, got %q", result)
		}
		if !strings.Contains(result, "✓ Playlist created") {
			t.Errorf("expected success line, got %q", result)
		}
		if !strings.Contains(result, "Matched 1 of 1") {
			t.Errorf("expected match summary, got %q", result)
		}
		if len(library.Created) != 1 {
			t.Errorf("expected one created playlist, got %d", len(library.Created))
		}
		if len(recorder.Recorded) != 1 {
			t.Errorf("expected one history record, got %d", len(recorder.Recorded))
		}
	})

	t.Run("json output", func(t *testing.T) {
		output := &bytes.Buffer{}
		completer := &tu.FakeCompleter{Responses: []string{
			`{"artists": ["Queen"]}`,
			`{"tracks": [{"artist": "Queen", "title": "Innuendo"}]}`,
			"Arena Hour",
		}}
		runner := NewRunner(RunnerOpts{
			Engine:   fakeEngine(t, curationLibrary(), completer, &tu.FakeRecorder{}),
			Recorder: &tu.FakeRecorder{},
			Output:   output,
		})

		err := newTestApp(runner).Run(ctx, []string{"plexmuse", "curate", "--json", "stadium anthems"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), `"name":"Arena Hour"`) {
			t.Errorf("expected JSON response, got %q", output.String())
		}
	})

	t.Run("missing prompt", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Engine:   fakeEngine(t, curationLibrary(), &tu.FakeCompleter{}, nil),
			Recorder: &tu.FakeRecorder{},
			Output:   &bytes.Buffer{},
		})

		err := newTestApp(runner).Run(ctx, []string{"plexmuse", "curate"})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestProvidersCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("lists providers for configured keys", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.LLM.OpenAIKey = "sk-test"
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output})

		err := newTestApp(runner).Run(ctx, []string{"plexmuse", "providers"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, `"id": "openai"`) {
			t.Errorf("expected openai provider, got %q", result)
		}
		if strings.Contains(result, "anthropic") {
			t.Errorf("unexpected anthropic provider without key: %q", result)
		}
	})

	t.Run("fails without any key", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig(), Output: &bytes.Buffer{}})

		err := newTestApp(runner).Run(ctx, []string{"plexmuse", "providers"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}
