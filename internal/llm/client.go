package llm

import (
	"context"
	"errors"
	"time"
)

// Client sends one completion request to a provider.
type Client interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Config holds provider and generator settings.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the provider endpoint.
	BaseURL string
	// ClaudeCodePath is the claude CLI binary for the claudecode provider.
	ClaudeCodePath string
	MaxRetries     int
	RetryDelay     time.Duration
	CacheTTL       time.Duration
	RateLimit      int
	Temperature    float64
	MaxTokens      int
	// Fallback uses the template generator when the provider fails.
	Fallback bool
}

// Provider names.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderClaudeCode = "claudecode"
	ProviderTemplate   = "template"
)

const defaultMaxTokens = 800

var (
	// ErrMissingAPIKey is returned when a hosted provider has no key.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrEmptyResponse is returned when a provider replies without content.
	ErrEmptyResponse = errors.New("empty response")
	// ErrMalformedCopy is returned when a reply holds no usable copy.
	ErrMalformedCopy = errors.New("malformed copy")
)
