// Package vision analyzes product images through hosted vision providers and
// reports ranked attribute observations per axis.
package vision

import (
	"context"
	"time"

	"github.com/Veraticus/facet-flow/internal/model"
)

// Client is one vision provider.
type Client interface {
	Analyze(ctx context.Context, img Image) (model.ImageAttributes, error)
}

// Config holds provider and analyzer settings.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the provider endpoint.
	BaseURL string
	// CredentialsFile is a service account key for the gcp provider.
	CredentialsFile string
	MaxRetries      int
	RetryDelay      time.Duration
	CacheTTL        time.Duration
	RateLimit       int
	MaxTokens       int
	Temperature     float64
}

// Provider names.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGCP       = "gcp"
	ProviderNone      = "none"
)

const defaultMaxTokens = 500
