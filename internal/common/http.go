package common

import (
	"fmt"
	"net/http"
	"time"
)

// NewHTTPClient returns a client with pooled keep-alive connections.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// TransportError marks a failed round trip as retryable.
func TransportError(err error) error {
	return &RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
}

// StatusError classifies a non-200 provider reply: 429 is a rate limit, 5xx is
// retryable, anything else is permanent.
func StatusError(provider string, status int, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s API status %d", ErrRateLimit, provider, status)
	case status >= http.StatusInternalServerError:
		return &RetryableError{
			Err:       fmt.Errorf("%s API error (status %d): %s", provider, status, string(body)),
			Retryable: true,
		}
	default:
		return Permanent(fmt.Errorf("%s API error (status %d): %s", provider, status, string(body)))
	}
}
