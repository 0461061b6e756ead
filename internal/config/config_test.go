package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/llm"
	"github.com/Veraticus/facet-flow/internal/vision"
)

func resetViper(t *testing.T, values map[string]any) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	for k, v := range values {
		viper.Set(k, v)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("FACET_TEST_DIR", "/data")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tilde", in: "~", want: home},
		{name: "tilde path", in: "~/vocab.yaml", want: filepath.Join(home, "vocab.yaml")},
		{name: "env var", in: "$FACET_TEST_DIR/records.db", want: "/data/records.db"},
		{name: "absolute", in: "/etc/facet.yaml", want: "/etc/facet.yaml"},
		{name: "tilde inside", in: "/tmp/~x", want: "/tmp/~x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestLoadPolicy(t *testing.T) {
	tests := []struct {
		values  map[string]any
		check   func(t *testing.T, p Policy)
		name    string
		wantErr bool
	}{
		{
			name: "defaults",
			check: func(t *testing.T, p Policy) {
				t.Helper()
				assert.InDelta(t, 0.7, p.Review.ReviewThreshold, 1e-9)
				assert.InDelta(t, 0.5, p.Review.HighPriorityBelow, 1e-9)
				assert.InDelta(t, 0.6, p.Match.FuzzyCutoff, 1e-9)
				assert.Equal(t, 5, p.Match.SuggestionLimit)
			},
		},
		{
			name: "overrides",
			values: map[string]any{
				"review.threshold":            0.8,
				"review.priority_high":        0.4,
				"validation.fuzzy_cutoff":     0.75,
				"validation.suggestion_limit": 3,
			},
			check: func(t *testing.T, p Policy) {
				t.Helper()
				assert.InDelta(t, 0.8, p.Review.ReviewThreshold, 1e-9)
				assert.InDelta(t, 0.4, p.Review.HighPriorityBelow, 1e-9)
				assert.InDelta(t, 0.75, p.Match.FuzzyCutoff, 1e-9)
				assert.Equal(t, 3, p.Match.SuggestionLimit)
			},
		},
		{name: "threshold above one", values: map[string]any{"review.threshold": 1.5}, wantErr: true},
		{name: "zero cutoff", values: map[string]any{"validation.fuzzy_cutoff": 0}, wantErr: true},
		{name: "inverted priorities", values: map[string]any{"review.priority_high": 0.9}, wantErr: true},
		{name: "zero limit", values: map[string]any{"validation.suggestion_limit": 0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t, tt.values)

			p, err := LoadPolicy()
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestLoadVisionConfig(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/creds/gcp.json")

	tests := []struct {
		values  map[string]any
		wantErr error
		check   func(t *testing.T, cfg vision.Config)
		name    string
	}{
		{
			name: "unset provider",
			check: func(t *testing.T, cfg vision.Config) {
				t.Helper()
				assert.Equal(t, vision.ProviderNone, cfg.Provider)
			},
		},
		{
			name:   "anthropic key from env",
			values: map[string]any{"vision.provider": "Anthropic", "vision.retry_delay": "2s", "vision.max_retries": 5},
			check: func(t *testing.T, cfg vision.Config) {
				t.Helper()
				assert.Equal(t, vision.ProviderAnthropic, cfg.Provider)
				assert.Equal(t, "env-key", cfg.APIKey)
				assert.Equal(t, 2*time.Second, cfg.RetryDelay)
				assert.Equal(t, 5, cfg.MaxRetries)
			},
		},
		{
			name:   "configured key wins",
			values: map[string]any{"vision.provider": "anthropic", "vision.api_key": "cfg-key"},
			check: func(t *testing.T, cfg vision.Config) {
				t.Helper()
				assert.Equal(t, "cfg-key", cfg.APIKey)
			},
		},
		{
			name:    "openai without key",
			values:  map[string]any{"vision.provider": "openai"},
			wantErr: common.ErrMissingConfig,
		},
		{
			name:   "gcp credentials from env",
			values: map[string]any{"vision.provider": "gcp"},
			check: func(t *testing.T, cfg vision.Config) {
				t.Helper()
				assert.Equal(t, "/creds/gcp.json", cfg.CredentialsFile)
			},
		},
		{
			name:    "unknown provider",
			values:  map[string]any{"vision.provider": "watson"},
			wantErr: common.ErrUnsupportedProvider,
		},
		{
			name:    "negative retries",
			values:  map[string]any{"vision.max_retries": -1},
			wantErr: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t, tt.values)

			cfg, err := LoadVisionConfig()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadSheetsConfig(t *testing.T) {
	for _, key := range []string{
		"FACET_SHEETS_CLIENT_ID", "FACET_SHEETS_CLIENT_SECRET", "FACET_SHEETS_REFRESH_TOKEN",
		"FACET_SHEETS_SERVICE_ACCOUNT_PATH", "FACET_SHEETS_SPREADSHEET_ID",
		"FACET_SHEETS_SPREADSHEET_NAME", "FACET_SHEETS_TAB",
	} {
		t.Setenv(key, "")
	}

	t.Run("missing auth", func(t *testing.T) {
		resetViper(t, nil)
		_, err := LoadSheetsConfig()
		assert.ErrorIs(t, err, common.ErrMissingConfig)
	})

	t.Run("viper values", func(t *testing.T) {
		resetViper(t, map[string]any{
			"sheets.service_account_path": "/keys/sa.json",
			"sheets.spreadsheet_id":       "sheet-1",
			"sheets.tab":                  "Spring",
			"sheets.formatting":           false,
		})
		cfg, err := LoadSheetsConfig()
		require.NoError(t, err)
		assert.Equal(t, "/keys/sa.json", cfg.ServiceAccountPath)
		assert.Equal(t, "sheet-1", cfg.SpreadsheetID)
		assert.Equal(t, "Spring", cfg.Tab)
		assert.False(t, cfg.EnableFormatting)
		assert.Equal(t, "Facet Metadata", cfg.SpreadsheetName)
	})

	t.Run("environment fallback", func(t *testing.T) {
		resetViper(t, nil)
		t.Setenv("FACET_SHEETS_CLIENT_ID", "id")
		t.Setenv("FACET_SHEETS_CLIENT_SECRET", "secret")
		t.Setenv("FACET_SHEETS_REFRESH_TOKEN", "token")
		cfg, err := LoadSheetsConfig()
		require.NoError(t, err)
		assert.Equal(t, "id", cfg.ClientID)
		assert.True(t, cfg.EnableFormatting)
	})
}

func TestLoadTextConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("ANTHROPIC_API_KEY", "")

	tests := []struct {
		values  map[string]any
		wantErr error
		check   func(t *testing.T, cfg llm.Config)
		name    string
	}{
		{
			name: "template by default",
			check: func(t *testing.T, cfg llm.Config) {
				t.Helper()
				assert.Equal(t, llm.ProviderTemplate, cfg.Provider)
				assert.True(t, cfg.Fallback)
			},
		},
		{
			name:   "openai key from env",
			values: map[string]any{"text.provider": "OpenAI", "text.model": "gpt-4o", "text.cache_ttl": "1h"},
			check: func(t *testing.T, cfg llm.Config) {
				t.Helper()
				assert.Equal(t, llm.ProviderOpenAI, cfg.Provider)
				assert.Equal(t, "env-key", cfg.APIKey)
				assert.Equal(t, "gpt-4o", cfg.Model)
				assert.Equal(t, time.Hour, cfg.CacheTTL)
			},
		},
		{
			name:   "fallback disabled",
			values: map[string]any{"text.provider": "claudecode", "text.fallback": false},
			check: func(t *testing.T, cfg llm.Config) {
				t.Helper()
				assert.False(t, cfg.Fallback)
			},
		},
		{
			name:    "anthropic without key",
			values:  map[string]any{"text.provider": "anthropic"},
			wantErr: common.ErrMissingConfig,
		},
		{
			name:    "unknown provider",
			values:  map[string]any{"text.provider": "bard"},
			wantErr: common.ErrUnsupportedProvider,
		},
		{
			name:    "negative tokens",
			values:  map[string]any{"text.max_tokens": -5},
			wantErr: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t, tt.values)

			cfg, err := LoadTextConfig()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
