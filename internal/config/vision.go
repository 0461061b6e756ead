package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/vision"
)

// providerKeyEnv names the conventional API key variable per provider.
var providerKeyEnv = map[string]string{
	vision.ProviderAnthropic: "ANTHROPIC_API_KEY",
	vision.ProviderOpenAI:    "OPENAI_API_KEY",
}

// LoadVisionConfig reads vision.* settings. The API key falls back to the
// provider's conventional environment variable, and the gcp credentials file to
// GOOGLE_APPLICATION_CREDENTIALS.
func LoadVisionConfig() (vision.Config, error) {
	provider := strings.ToLower(strings.TrimSpace(viper.GetString("vision.provider")))
	if provider == "" {
		provider = vision.ProviderNone
	}

	cfg := vision.Config{
		Provider:        provider,
		APIKey:          viper.GetString("vision.api_key"),
		Model:           viper.GetString("vision.model"),
		BaseURL:         viper.GetString("vision.base_url"),
		CredentialsFile: ExpandPath(viper.GetString("vision.credentials_file")),
		MaxRetries:      viper.GetInt("vision.max_retries"),
		RetryDelay:      viper.GetDuration("vision.retry_delay"),
		CacheTTL:        viper.GetDuration("vision.cache_ttl"),
		RateLimit:       viper.GetInt("vision.rate_limit"),
		MaxTokens:       viper.GetInt("vision.max_tokens"),
		Temperature:     viper.GetFloat64("vision.temperature"),
	}

	if cfg.APIKey == "" {
		if key, ok := providerKeyEnv[provider]; ok {
			cfg.APIKey = os.Getenv(key)
		}
	}
	if provider == vision.ProviderGCP && cfg.CredentialsFile == "" {
		cfg.CredentialsFile = ExpandPath(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch provider {
	case vision.ProviderAnthropic, vision.ProviderOpenAI:
		if cfg.APIKey == "" {
			return cfg, fmt.Errorf("%w: vision.api_key (or %s) is required for %s", common.ErrMissingConfig, providerKeyEnv[provider], provider)
		}
	case vision.ProviderGCP, vision.ProviderNone:
	default:
		return cfg, fmt.Errorf("%w: %q", common.ErrUnsupportedProvider, provider)
	}

	if cfg.MaxRetries < 0 || cfg.RetryDelay < 0 || cfg.CacheTTL < 0 || cfg.RateLimit < 0 {
		return cfg, fmt.Errorf("%w: vision retry, cache and rate settings cannot be negative", common.ErrInvalidConfig)
	}

	return cfg, nil
}
