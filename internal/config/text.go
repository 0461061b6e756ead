package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/llm"
)

var textKeyEnv = map[string]string{
	llm.ProviderAnthropic: "ANTHROPIC_API_KEY",
	llm.ProviderOpenAI:    "OPENAI_API_KEY",
}

// LoadTextConfig reads text.* settings. The template provider needs nothing
// else; hosted providers need an API key from text.api_key or the provider's
// conventional environment variable.
func LoadTextConfig() (llm.Config, error) {
	provider := strings.ToLower(strings.TrimSpace(viper.GetString("text.provider")))
	if provider == "" {
		provider = llm.ProviderTemplate
	}

	cfg := llm.Config{
		Provider:       provider,
		APIKey:         viper.GetString("text.api_key"),
		Model:          viper.GetString("text.model"),
		BaseURL:        viper.GetString("text.base_url"),
		ClaudeCodePath: ExpandPath(viper.GetString("text.claude_code_path")),
		MaxRetries:     viper.GetInt("text.max_retries"),
		RetryDelay:     viper.GetDuration("text.retry_delay"),
		CacheTTL:       viper.GetDuration("text.cache_ttl"),
		RateLimit:      viper.GetInt("text.rate_limit"),
		MaxTokens:      viper.GetInt("text.max_tokens"),
		Temperature:    viper.GetFloat64("text.temperature"),
		Fallback:       true,
	}
	if viper.IsSet("text.fallback") {
		cfg.Fallback = viper.GetBool("text.fallback")
	}

	if cfg.APIKey == "" {
		if key, ok := textKeyEnv[provider]; ok {
			cfg.APIKey = os.Getenv(key)
		}
	}

	switch provider {
	case llm.ProviderAnthropic, llm.ProviderOpenAI:
		if cfg.APIKey == "" {
			return cfg, fmt.Errorf("%w: text.api_key (or %s) is required for %s", common.ErrMissingConfig, textKeyEnv[provider], provider)
		}
	case llm.ProviderClaudeCode, llm.ProviderTemplate:
	default:
		return cfg, fmt.Errorf("%w: %q", common.ErrUnsupportedProvider, provider)
	}

	if cfg.MaxRetries < 0 || cfg.RetryDelay < 0 || cfg.CacheTTL < 0 || cfg.RateLimit < 0 || cfg.MaxTokens < 0 {
		return cfg, fmt.Errorf("%w: text retry, cache, rate and token settings cannot be negative", common.ErrInvalidConfig)
	}

	return cfg, nil
}
