package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/facet-flow/internal/common"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
		wantNil bool
	}{
		{name: "template", cfg: Config{Provider: ProviderTemplate}, wantNil: true},
		{name: "empty provider", cfg: Config{}, wantNil: true},
		{name: "openai", cfg: Config{Provider: "OpenAI", APIKey: "k"}},
		{name: "anthropic", cfg: Config{Provider: ProviderAnthropic, APIKey: "k"}},
		{name: "openai without key", cfg: Config{Provider: ProviderOpenAI}, wantErr: ErrMissingAPIKey},
		{name: "anthropic without key", cfg: Config{Provider: ProviderAnthropic}, wantErr: ErrMissingAPIKey},
		{name: "missing claude binary", cfg: Config{Provider: ProviderClaudeCode, ClaudeCodePath: "/nonexistent/claude"}, wantErr: common.ErrMissingConfig},
		{name: "unknown", cfg: Config{Provider: "palm"}, wantErr: common.ErrUnsupportedProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, client)
			} else {
				assert.NotNil(t, client)
			}
		})
	}
}

func TestAnthropicClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("anthropic-version"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "system text", body["system"])
		assert.Equal(t, "claude-3-5-haiku-latest", body["model"])

		_, _ = w.Write([]byte(`{"id":"msg_1","content":[{"type":"text","text":"hello"}]}`))
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	got, err := client.Complete(context.Background(), "system text", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestAnthropicClient_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"msg_1","content":[]}`))
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "s", "p")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "prompt", body.Messages[1].Content)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"copy"}}]}`))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", Model: "gpt-4o", BaseURL: server.URL})
	require.NoError(t, err)

	got, err := client.Complete(context.Background(), "system", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "copy", got)
}

func TestOpenAIClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
		rateLimit bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, retryable: true, rateLimit: true},
		{name: "server error", status: http.StatusBadGateway, retryable: true},
		{name: "bad request", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), "s", "p")
			require.Error(t, err)
			assert.Equal(t, tt.retryable, common.IsRetryable(err))
			assert.Equal(t, tt.rateLimit, errors.Is(err, common.ErrRateLimit))
		})
	}
}
