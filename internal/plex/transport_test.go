package plex_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/plexmuse/plexmuse/internal/plex"
	"github.com/plexmuse/plexmuse/internal/shared"
	th "github.com/plexmuse/plexmuse/internal/testing"
)

func TestClientTransportFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("transport error surfaces as connection failure", func(t *testing.T) {
		httpClient := &http.Client{
			Transport: th.NewMockRoundTripper(nil, errors.New("dial tcp: connection refused")),
		}
		client := plex.NewClient("http://plex.local:32400", "test-token", "", httpClient)

		err := client.Connect(ctx)
		if !errors.Is(err, shared.ErrConnection) {
			t.Errorf("expected ErrConnection, got %v", err)
		}
	})

	t.Run("unreadable body surfaces as decode failure", func(t *testing.T) {
		httpClient := &http.Client{
			Transport: th.NewMockRoundTripper(&http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{},
				Body:       &th.FCloser{},
			}, nil),
		}
		client := plex.NewClient("http://plex.local:32400", "test-token", "", httpClient)

		err := client.Connect(ctx)
		if err == nil {
			t.Fatal("expected decode error")
		}
		if !strings.Contains(err.Error(), "failed to decode plex response") {
			t.Errorf("expected decode failure, got %v", err)
		}
	})
}
