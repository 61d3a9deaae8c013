package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Plex library errors
	ErrConnection     = fmt.Errorf("library connection failed")
	ErrArtistNotFound = fmt.Errorf("artist not found")
	ErrNoMatch        = fmt.Errorf("no tracks could be matched")

	// LLM selection errors
	ErrEmptyResult       = fmt.Errorf("selection returned no results")
	ErrMalformedResponse = fmt.Errorf("malformed selection response")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
