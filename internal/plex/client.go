// Plex HTTP implementation of [Library]
//
// Endpoint shapes based on the Plex Media Server JSON API: every response
// is a MediaContainer, authentication is a static X-Plex-Token.
package plex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/plexmuse/plexmuse/internal/shared"
)

const defaultSectionTitle = "Music"

// Client is the HTTP [Library] implementation for a Plex media server.
type Client struct {
	baseURL    string
	token      string
	section    string
	httpClient *http.Client

	mu         sync.Mutex
	machineID  string
	sectionKey string
}

// NewClient creates a Plex client for the given server.
//
// section is the title of the music library section; empty selects "Music".
func NewClient(baseURL, token, section string, httpClient *http.Client) *Client {
	if section == "" {
		section = defaultSectionTitle
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		section:    section,
		httpClient: httpClient,
	}
}

type tagField struct {
	Tag string `json:"tag"`
}

type sectionDirectory struct {
	Key       string `json:"key"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	UpdatedAt int64  `json:"updatedAt"`
}

type metadataItem struct {
	RatingKey        string     `json:"ratingKey"`
	Title            string     `json:"title"`
	Type             string     `json:"type"`
	Year             int        `json:"year"`
	LeafCount        int        `json:"leafCount"`
	GrandparentTitle string     `json:"grandparentTitle"`
	ParentTitle      string     `json:"parentTitle"`
	Genre            []tagField `json:"Genre"`
}

type mediaContainer struct {
	MediaContainer struct {
		Size              int                `json:"size"`
		TotalSize         int                `json:"totalSize"`
		MachineIdentifier string             `json:"machineIdentifier"`
		Directory         []sectionDirectory `json:"Directory"`
		Metadata          []metadataItem     `json:"Metadata"`
	} `json:"MediaContainer"`
}

// doRequest performs an authenticated request and decodes the
// MediaContainer response into result.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, query url.Values, headers map[string]string, result *mediaContainer) error {
	apiURL := c.baseURL + endpoint
	if query == nil {
		query = url.Values{}
	}
	query.Set("X-Plex-Token", c.token)
	apiURL += "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: plex returned status %d: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode plex response: %w", err)
	}

	return nil
}

// Connect verifies the server is reachable and locates the music section.
// Fatal at startup: an unreachable server or missing section surfaces as
// [shared.ErrConnection].
func (c *Client) Connect(ctx context.Context) error {
	var root mediaContainer
	if err := c.doRequest(ctx, http.MethodGet, "/", nil, nil, &root); err != nil {
		return err
	}

	c.mu.Lock()
	c.machineID = root.MediaContainer.MachineIdentifier
	c.mu.Unlock()

	_, err := c.musicSection(ctx)
	return err
}

// musicSection finds the configured music section and caches its key.
func (c *Client) musicSection(ctx context.Context) (sectionDirectory, error) {
	var sections mediaContainer
	if err := c.doRequest(ctx, http.MethodGet, "/library/sections", nil, nil, &sections); err != nil {
		return sectionDirectory{}, err
	}

	for _, dir := range sections.MediaContainer.Directory {
		if dir.Type == "artist" && strings.EqualFold(dir.Title, c.section) {
			c.mu.Lock()
			c.sectionKey = dir.Key
			c.mu.Unlock()
			return dir, nil
		}
	}

	return sectionDirectory{}, fmt.Errorf("%w: music section %q not found", shared.ErrConnection, c.section)
}

// currentSectionKey returns the cached section key, connecting if needed.
func (c *Client) currentSectionKey(ctx context.Context) (string, error) {
	c.mu.Lock()
	key := c.sectionKey
	c.mu.Unlock()

	if key != "" {
		return key, nil
	}

	dir, err := c.musicSection(ctx)
	if err != nil {
		return "", err
	}
	return dir.Key, nil
}

// MachineID returns the server's machine identifier.
func (c *Client) MachineID(ctx context.Context) (string, error) {
	c.mu.Lock()
	id := c.machineID
	c.mu.Unlock()

	if id != "" {
		return id, nil
	}

	var root mediaContainer
	if err := c.doRequest(ctx, http.MethodGet, "/", nil, nil, &root); err != nil {
		return "", err
	}

	c.mu.Lock()
	c.machineID = root.MediaContainer.MachineIdentifier
	c.mu.Unlock()
	return root.MediaContainer.MachineIdentifier, nil
}

// SectionUpdatedAt re-reads the music section and returns its updatedAt
// marker as an opaque freshness token.
func (c *Client) SectionUpdatedAt(ctx context.Context) (string, error) {
	dir, err := c.musicSection(ctx)
	if err != nil {
		return "", err
	}
	if dir.UpdatedAt == 0 {
		return "", nil
	}
	return strconv.FormatInt(dir.UpdatedAt, 10), nil
}

// AllArtists enumerates every artist in the music section.
func (c *Client) AllArtists(ctx context.Context) ([]ArtistEntry, error) {
	key, err := c.currentSectionKey(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("type", "8")

	var container mediaContainer
	endpoint := fmt.Sprintf("/library/sections/%s/all", key)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, query, nil, &container); err != nil {
		return nil, err
	}

	artists := make([]ArtistEntry, 0, len(container.MediaContainer.Metadata))
	for _, item := range container.MediaContainer.Metadata {
		artists = append(artists, artistFromMetadata(item))
	}
	return artists, nil
}

// Counts returns total album and track counts for the music section.
//
// Uses X-Plex-Container-Size: 0 so the server reports totalSize without
// shipping any metadata.
func (c *Client) Counts(ctx context.Context) (int, int, error) {
	albums, err := c.entityCount(ctx, "9")
	if err != nil {
		return 0, 0, err
	}

	tracks, err := c.entityCount(ctx, "10")
	if err != nil {
		return 0, 0, err
	}

	return albums, tracks, nil
}

func (c *Client) entityCount(ctx context.Context, plexType string) (int, error) {
	key, err := c.currentSectionKey(ctx)
	if err != nil {
		return 0, err
	}

	query := url.Values{}
	query.Set("type", plexType)

	headers := map[string]string{
		"X-Plex-Container-Start": "0",
		"X-Plex-Container-Size":  "0",
	}

	var container mediaContainer
	endpoint := fmt.Sprintf("/library/sections/%s/all", key)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, query, headers, &container); err != nil {
		return 0, err
	}

	if container.MediaContainer.TotalSize > 0 {
		return container.MediaContainer.TotalSize, nil
	}
	return container.MediaContainer.Size, nil
}

// SearchArtist searches the music section for artists by name.
func (c *Client) SearchArtist(ctx context.Context, name string) ([]ArtistEntry, error) {
	key, err := c.currentSectionKey(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("type", "8")
	query.Set("title", name)

	var container mediaContainer
	endpoint := fmt.Sprintf("/library/sections/%s/all", key)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, query, nil, &container); err != nil {
		return nil, err
	}

	artists := make([]ArtistEntry, 0, len(container.MediaContainer.Metadata))
	for _, item := range container.MediaContainer.Metadata {
		artists = append(artists, artistFromMetadata(item))
	}
	return artists, nil
}

// ArtistAlbums enumerates an artist's albums via the metadata children
// endpoint.
func (c *Client) ArtistAlbums(ctx context.Context, artistKey string) ([]AlbumEntry, error) {
	var container mediaContainer
	endpoint := fmt.Sprintf("/library/metadata/%s/children", artistKey)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, nil, &container); err != nil {
		return nil, err
	}

	albums := make([]AlbumEntry, 0, len(container.MediaContainer.Metadata))
	for _, item := range container.MediaContainer.Metadata {
		albums = append(albums, AlbumEntry{
			RatingKey:  item.RatingKey,
			Name:       item.Title,
			Year:       item.Year,
			TrackCount: item.LeafCount,
		})
	}
	return albums, nil
}

// ArtistTracks enumerates every track across all of an artist's albums in
// a single round-trip via the allLeaves endpoint.
func (c *Client) ArtistTracks(ctx context.Context, artistKey string) ([]TrackEntry, error) {
	var container mediaContainer
	endpoint := fmt.Sprintf("/library/metadata/%s/allLeaves", artistKey)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, nil, &container); err != nil {
		return nil, err
	}

	tracks := make([]TrackEntry, 0, len(container.MediaContainer.Metadata))
	for _, item := range container.MediaContainer.Metadata {
		tracks = append(tracks, trackFromMetadata(item))
	}
	return tracks, nil
}

// SearchTracks performs a catalog-wide track search by title, unscoped by
// artist.
func (c *Client) SearchTracks(ctx context.Context, title string) ([]TrackEntry, error) {
	key, err := c.currentSectionKey(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("type", "10")
	query.Set("query", title)

	var container mediaContainer
	endpoint := fmt.Sprintf("/library/sections/%s/search", key)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, query, nil, &container); err != nil {
		return nil, err
	}

	tracks := make([]TrackEntry, 0, len(container.MediaContainer.Metadata))
	for _, item := range container.MediaContainer.Metadata {
		tracks = append(tracks, trackFromMetadata(item))
	}
	return tracks, nil
}

// CreatePlaylist creates an audio playlist from an ordered list of track
// rating keys.
func (c *Client) CreatePlaylist(ctx context.Context, name string, trackKeys []string) (*PlaylistEntry, error) {
	if len(trackKeys) == 0 {
		return nil, fmt.Errorf("%w: no tracks provided for playlist", shared.ErrInvalidInput)
	}

	machineID, err := c.MachineID(ctx)
	if err != nil {
		return nil, err
	}

	uri := fmt.Sprintf("server://%s/com.plexapp.plugins.library/library/metadata/%s",
		machineID, strings.Join(trackKeys, ","))

	query := url.Values{}
	query.Set("type", "audio")
	query.Set("smart", "0")
	query.Set("title", name)
	query.Set("uri", uri)

	var container mediaContainer
	if err := c.doRequest(ctx, http.MethodPost, "/playlists", query, nil, &container); err != nil {
		return nil, err
	}

	if len(container.MediaContainer.Metadata) == 0 {
		return nil, fmt.Errorf("%w: no playlist returned from creation request", shared.ErrAPIRequest)
	}

	created := container.MediaContainer.Metadata[0]
	return &PlaylistEntry{
		RatingKey:  created.RatingKey,
		Title:      created.Title,
		TrackCount: created.LeafCount,
	}, nil
}

func artistFromMetadata(item metadataItem) ArtistEntry {
	genres := make([]string, 0, len(item.Genre))
	for _, g := range item.Genre {
		genres = append(genres, g.Tag)
	}
	return ArtistEntry{RatingKey: item.RatingKey, Name: item.Title, Genres: genres}
}

func trackFromMetadata(item metadataItem) TrackEntry {
	return TrackEntry{
		RatingKey:  item.RatingKey,
		Title:      item.Title,
		ArtistName: item.GrandparentTitle,
		AlbumName:  item.ParentTitle,
	}
}
