package vision

import "errors"

var (
	// ErrMissingAPIKey is returned when a hosted provider has no key configured.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrEmptyResponse is returned when a provider answers without content.
	ErrEmptyResponse = errors.New("empty response from provider")
)
