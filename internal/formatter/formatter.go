// package formatter provides functions to export curated playlists to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/plexmuse/plexmuse/internal/models"
)

// ExportToCSV converts a playlist response to CSV format with columns: Position, Artist, Title
func ExportToCSV(resp *models.PlaylistResponse) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Artist", "Title"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range resp.Tracks {
		record := []string{
			strconv.Itoa(i + 1),
			track.Artist,
			track.Title,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist response to Markdown format with the originating prompt
func ExportToMarkdown(resp *models.PlaylistResponse, prompt string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", resp.Name))

	if prompt != "" {
		buf.WriteString(fmt.Sprintf("**Prompt**: %s\n\n", prompt))
	}

	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", resp.TrackCount))
	if resp.ID != "" {
		buf.WriteString(fmt.Sprintf("**Plex key**: %s\n", resp.ID))
	}
	buf.WriteString("\n## Tracks\n\n")

	for i, track := range resp.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist response to plain text format
func ExportToText(resp *models.PlaylistResponse) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", resp.Name))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", resp.TrackCount))

	for i, track := range resp.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// Export renders the response in the requested format: csv, markdown, or
// txt (the default).
func Export(resp *models.PlaylistResponse, prompt, format string) ([]byte, error) {
	switch format {
	case "csv":
		return ExportToCSV(resp)
	case "markdown", "md":
		return ExportToMarkdown(resp, prompt)
	case "txt", "text", "":
		return ExportToText(resp)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
