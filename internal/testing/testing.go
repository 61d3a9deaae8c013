// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/plexmuse/plexmuse/internal/models"
	"github.com/plexmuse/plexmuse/internal/plex"
)

// FakeLibrary is an in-memory test double for [plex.Library].
//
// Artists, AlbumsByKey, and TracksByKey describe the fake catalog.
// Err, when set, is returned from every call.
type FakeLibrary struct {
	MachineIdentifier string
	UpdatedAt         string
	Artists           []plex.ArtistEntry
	AlbumsByKey       map[string][]plex.AlbumEntry
	TracksByKey       map[string][]plex.TrackEntry
	GlobalTracks      []plex.TrackEntry
	AlbumCount        int
	TrackCount        int
	Err               error

	Created []plex.PlaylistEntry // playlists created through CreatePlaylist
}

func (f *FakeLibrary) MachineID(ctx context.Context) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return f.MachineIdentifier, nil
}

func (f *FakeLibrary) SectionUpdatedAt(ctx context.Context) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return f.UpdatedAt, nil
}

func (f *FakeLibrary) AllArtists(ctx context.Context) ([]plex.ArtistEntry, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Artists, nil
}

func (f *FakeLibrary) Counts(ctx context.Context) (int, int, error) {
	if f.Err != nil {
		return 0, 0, f.Err
	}
	return f.AlbumCount, f.TrackCount, nil
}

func (f *FakeLibrary) SearchArtist(ctx context.Context, name string) ([]plex.ArtistEntry, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	var matches []plex.ArtistEntry
	for _, artist := range f.Artists {
		if artist.Name == name {
			matches = append(matches, artist)
		}
	}
	return matches, nil
}

func (f *FakeLibrary) ArtistAlbums(ctx context.Context, artistKey string) ([]plex.AlbumEntry, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.AlbumsByKey[artistKey], nil
}

func (f *FakeLibrary) ArtistTracks(ctx context.Context, artistKey string) ([]plex.TrackEntry, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.TracksByKey[artistKey], nil
}

func (f *FakeLibrary) SearchTracks(ctx context.Context, title string) ([]plex.TrackEntry, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.GlobalTracks, nil
}

func (f *FakeLibrary) CreatePlaylist(ctx context.Context, name string, trackKeys []string) (*plex.PlaylistEntry, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	entry := plex.PlaylistEntry{
		RatingKey:  fmt.Sprintf("playlist-%d", len(f.Created)+1),
		Title:      name,
		TrackCount: len(trackKeys),
	}
	f.Created = append(f.Created, entry)
	return &entry, nil
}

// FakeCompleter is a scripted test double for [llm.Completer].
//
// Responses are returned in order; once exhausted every call returns an
// error. Prompts records the user message of each call.
type FakeCompleter struct {
	Responses []string
	Err       error

	Prompts []string
	calls   int
}

func (f *FakeCompleter) Complete(ctx context.Context, model, system, user string, temperature float64) (string, error) {
	f.Prompts = append(f.Prompts, user)
	if f.Err != nil {
		return "", f.Err
	}
	if f.calls >= len(f.Responses) {
		return "", errors.New("no scripted response left")
	}
	response := f.Responses[f.calls]
	f.calls++
	return response, nil
}

// Calls reports how many completions have been requested.
func (f *FakeCompleter) Calls() int { return f.calls }

// FakeRecorder captures persisted playlists for assertions.
type FakeRecorder struct {
	Recorded []*models.PersistedPlaylist
	Err      error
}

func (f *FakeRecorder) Record(playlist *models.PersistedPlaylist) error {
	if f.Err != nil {
		return f.Err
	}
	f.Recorded = append(f.Recorded, playlist)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
