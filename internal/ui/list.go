package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/plexmuse/plexmuse/internal/models"
)

var (
	_ list.Item = recommendationItem{}
)

// recommendationItem wraps [models.TrackRecommendation] to implement [list.Item].
type recommendationItem struct {
	track models.TrackRecommendation
}

func (i recommendationItem) FilterValue() string { return i.track.Title }
func (i recommendationItem) Title() string       { return i.track.Title }
func (i recommendationItem) Description() string { return i.track.Artist }
