package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/plexmuse/plexmuse/internal/models"
	"github.com/plexmuse/plexmuse/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PromptView ViewState = iota
	CurateView
	ResultView
)

// phaseLabels maps pipeline phases to checklist lines, in run order.
var phaseLabels = []struct {
	phase tasks.Phase
	label string
}{
	{tasks.SelectArtists, "Selecting artists"},
	{tasks.FetchAlbums, "Fetching albums"},
	{tasks.SelectTracks, "Selecting tracks"},
	{tasks.NamePlaylist, "Naming playlist"},
	{tasks.AssemblePlaylist, "Assembling playlist"},
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.CurationEngine
	catalogSize  int
	llmModel     string
	width        int
	height       int
	promptInput  textinput.Model
	spin         spinner.Model
	trackList    list.Model
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	running      bool
	result       *tasks.CurationResult
	err          error
	help         help.Model
	keys         keyMap
}

type progressUpdateMsg tasks.ProgressUpdate

type curationCompleteMsg struct {
	result *tasks.CurationResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
//
// catalogSize is shown on the prompt screen so the user knows how many
// artists the curator can draw from. llmModel may be empty to use the
// configured default.
func NewModel(ctx context.Context, engine *tasks.CurationEngine, catalogSize int, llmModel string) *Model {
	input := textinput.New()
	input.Placeholder = "late night coding, synthwave and ambient..."
	input.CharLimit = 200
	input.Width = 60
	input.Focus()

	return &Model{
		ctx:         ctx,
		view:        PromptView,
		engine:      engine,
		catalogSize: catalogSize,
		llmModel:    llmModel,
		promptInput: input,
		spin:        spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init starts the prompt input cursor blink.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PromptView:
			return m.handlePromptKeys(msg)
		case CurateView:
			return m.handleCurateKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.running {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case curationCompleteMsg:
		m.running = false
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		if msg.result != nil {
			items := make([]list.Item, len(msg.result.Recommendations))
			for i, track := range msg.result.Recommendations {
				items[i] = recommendationItem{track: track}
			}
			m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
			m.trackList.Title = msg.result.Response.Name
			m.trackList.SetSize(m.width-4, m.height-8)
		}
		return m, nil
	}

	return m.updateInputs(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PromptView:
		return m.renderPrompt()
	case CurateView:
		return m.renderCurate()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		prompt := strings.TrimSpace(m.promptInput.Value())
		if prompt == "" {
			return m, nil
		}
		m.view = CurateView
		m.running = true
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		return m, tea.Batch(m.spin.Tick, m.startCuration(prompt))
	}

	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return m, cmd
}

func (m *Model) handleCurateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PromptView
		m.result = nil
		m.err = nil
		m.promptInput.SetValue("")
		m.promptInput.Focus()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PromptView:
		m.promptInput, cmd = m.promptInput.Update(msg)
	case ResultView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) startCuration(prompt string) tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progressChan := m.progressChan

	go func() {
		result, err := m.engine.Curate(m.ctx, progressChan, models.PlaylistRequest{
			Prompt: prompt,
			Model:  m.llmModel,
		})
		m.result = result
		m.err = err
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return curationCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return curationCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPrompt() string {
	title := styles.title.Render("Plexmuse")
	info := fmt.Sprintf("Describe a mood or theme. %d artists available.\n", m.catalogSize)

	helpKeys := []key.Binding{m.keys.submit, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, info, m.promptInput.View(), helpView)
}

func (m *Model) renderCurate() string {
	title := styles.title.Render("Curating Playlist")

	var sb strings.Builder
	for _, entry := range phaseLabels {
		switch {
		case entry.phase < m.progress.Phase:
			sb.WriteString(styles.ok.Render("  ✓ " + entry.label))
		case entry.phase == m.progress.Phase:
			sb.WriteString(m.spin.View() + " " + entry.label)
		default:
			sb.WriteString(styles.dim.Render("    " + entry.label))
		}
		sb.WriteString("\n")
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, sb.String(), styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Curation failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Playlist Created!")
	info := fmt.Sprintf(
		"\nName: %s\nMatched: %d/%d tracks",
		m.result.Response.Name,
		m.result.ResolvedTracks,
		m.result.RequestedTracks,
	)

	var dropped string
	if n := m.result.Dropped(); n > 0 {
		dropped = fmt.Sprintf("\n%s", styles.warn.Render(fmt.Sprintf("%d recommendations had no library match", n)))
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s%s\n\n%s\n\n%s", title, info, dropped, m.trackList.View(), helpView)
}
