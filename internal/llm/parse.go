package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/plexmuse/plexmuse/internal/models"
	"github.com/plexmuse/plexmuse/internal/shared"
)

var jsonFencePattern = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n```")

// CleanResponse extracts the JSON payload from a model reply, stripping a
// fenced ```json block when present and trimming otherwise.
func CleanResponse(content string) string {
	if m := jsonFencePattern.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return strings.TrimSpace(content)
}

// decodeArtistSelection parses an {"artists": [...]} reply.
func decodeArtistSelection(logger *log.Logger, content string) ([]string, error) {
	cleaned := CleanResponse(content)

	var result struct {
		Artists []string `json:"artists"`
	}
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		logger.Error("failed to parse artist selection", "error", err, "content", cleaned)
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	if len(result.Artists) == 0 {
		return nil, fmt.Errorf("%w: no artists in response", shared.ErrEmptyResult)
	}

	return result.Artists, nil
}

// decodeTrackSelection parses a {"tracks": [{"artist", "title"}, ...]} reply.
func decodeTrackSelection(logger *log.Logger, content string) ([]models.TrackRecommendation, error) {
	cleaned := CleanResponse(content)

	var result struct {
		Tracks []models.TrackRecommendation `json:"tracks"`
	}
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		logger.Error("failed to parse track selection", "error", err, "content", cleaned)
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	if len(result.Tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks in response", shared.ErrEmptyResult)
	}

	return result.Tracks, nil
}
