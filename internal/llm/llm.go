package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/plexmuse/plexmuse/internal/models"
	"github.com/plexmuse/plexmuse/internal/shared"
)

// Completer turns a system instruction and a user message into raw model
// output. Implementations wrap a concrete chat-completion API.
type Completer interface {
	Complete(ctx context.Context, model, system, user string, temperature float64) (string, error)
}

const artistSelectionPrompt = `You are a multilingual music curator helping to create playlists.
Your responses must ALWAYS be in English, even when the prompt is in another language.
Analyze the available artists and their genres,
then select the most appropriate ones for the requested playlist.

You must ALWAYS respond with valid JSON only, in this exact format:
{"artists": ["Artist1", "Artist2", "Artist3"]}

Do not add any explanations or other text - just the JSON object.
Select 10-15 artists that match the mood/theme, only from the provided list.`

const trackSelectionPrompt = `You are a multilingual music curator creating a cohesive playlist.
Your responses must ALWAYS be in English and contain ONLY a valid JSON object.

Based on your knowledge of these artists' albums and the playlist theme,
recommend specific songs that would create a great playlist. You can recommend
any tracks you know exist on these albums - you don't need to see the track list.

You must respond with ONLY a JSON object in this exact format:
{
    "tracks": [
        {"artist": "artist name", "title": "track title"}
    ]
}

Select between %d and %d tracks total.
Do not add any explanations or additional text.`

const playlistNamePrompt = `You are a creative assistant.
Generate a SINGLE catchy and relevant playlist name based on the following prompt. Do not wrap in quotes.`

// Service generates playlist selections through a [Completer].
type Service struct {
	completer   Completer
	logger      *log.Logger
	temperature float64
}

// NewService creates a selection service. temperature zero or below
// defaults to 0.7.
func NewService(completer Completer, logger *log.Logger, temperature float64) *Service {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if temperature <= 0 {
		temperature = 0.7
	}

	return &Service{
		completer:   completer,
		logger:      logger.With("component", "llm_service"),
		temperature: temperature,
	}
}

// SelectArtists asks the model to pick artists from the cached catalog
// that fit the prompt. Returns the selected artist names.
func (s *Service) SelectArtists(ctx context.Context, prompt string, artists []models.Artist, model string) ([]string, error) {
	var sb strings.Builder
	sb.WriteString("Available artists and their genres:\n")
	for _, artist := range artists {
		if artist.Name == "" {
			continue
		}
		sb.WriteString(artist.Name)
		sb.WriteString(" - ")
		sb.WriteString(strings.Join(artist.Genres, ", "))
		sb.WriteString("\n")
	}

	user := fmt.Sprintf("Context: %s\n\nCreate a playlist for: %s", sb.String(), prompt)

	content, err := s.completer.Complete(ctx, model, artistSelectionPrompt, user, s.temperature)
	if err != nil {
		return nil, fmt.Errorf("artist selection failed: %w", err)
	}

	s.logger.Debug("raw artist selection response", "content", content)

	selected, err := decodeArtistSelection(s.logger, content)
	if err != nil {
		return nil, err
	}

	s.logger.Info("selected artists", "count", len(selected), "artists", selected)
	return selected, nil
}

// SelectTracks asks the model for track recommendations given each
// selected artist's albums as context.
func (s *Service) SelectTracks(ctx context.Context, prompt string, albumsByArtist map[string][]models.Album, model string, minTracks, maxTracks int) ([]models.TrackRecommendation, error) {
	names := make([]string, 0, len(albumsByArtist))
	for name := range albumsByArtist {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Available albums by artist:\n")
	for _, name := range names {
		sb.WriteString("\n")
		sb.WriteString(name)
		sb.WriteString(":\n")
		for _, album := range albumsByArtist[name] {
			fmt.Fprintf(&sb, "- %s (%d)\n", album.Name, album.Year)
		}
	}

	system := fmt.Sprintf(trackSelectionPrompt, minTracks, maxTracks)
	user := fmt.Sprintf("Context: %s\n\nCreate a playlist with %d-%d tracks for: %s",
		sb.String(), minTracks, maxTracks, prompt)

	content, err := s.completer.Complete(ctx, model, system, user, s.temperature)
	if err != nil {
		return nil, fmt.Errorf("track selection failed: %w", err)
	}

	s.logger.Debug("raw track selection response", "content", content)

	tracks, err := decodeTrackSelection(s.logger, content)
	if err != nil {
		return nil, err
	}

	s.logger.Info("selected tracks", "count", len(tracks))
	return tracks, nil
}

// PlaylistName asks the model for a playlist name. An empty reply falls
// back to a generated name rather than failing the run.
func (s *Service) PlaylistName(ctx context.Context, prompt, model string) (string, error) {
	content, err := s.completer.Complete(ctx, model, playlistNamePrompt, prompt, s.temperature)
	if err != nil {
		return "", fmt.Errorf("playlist name generation failed: %w", err)
	}

	name := strings.TrimSpace(content)
	name = strings.Trim(name, `"`)
	if name == "" {
		name = "Playlist " + shared.ShortID()
		s.logger.Warn("model returned empty playlist name, using fallback", "name", name)
	}

	s.logger.Info("generated playlist name", "name", name)
	return name, nil
}

// Providers returns the LLM providers usable with the configured API keys,
// in a stable order.
func Providers(cfg shared.LLMConfig) []models.Provider {
	var providers []models.Provider

	if cfg.OpenAIKey != "" {
		providers = append(providers, models.Provider{
			ID:          "openai",
			Name:        "OpenAI",
			Model:       "gpt-4o-mini",
			Description: "GPT-4o mini - Excellent for balanced reasoning",
		})
	}

	if cfg.AnthropicKey != "" {
		providers = append(providers, models.Provider{
			ID:          "anthropic",
			Name:        "Claude",
			Model:       "claude-sonnet-4-5",
			Description: "Claude Sonnet - High intelligence for complex music transitions",
		})
	}

	if cfg.GeminiKey != "" {
		providers = append(providers, models.Provider{
			ID:          "gemini",
			Name:        "Gemini",
			Model:       "gemini-flash-latest",
			Description: "Gemini Flash - Best for large library indexing",
		})
	}

	return providers
}
