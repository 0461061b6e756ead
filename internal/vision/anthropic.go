package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/model"
)

const anthropicBaseURL = "https://api.anthropic.com"

// anthropicClient captions images with the Messages API and parses the caption.
type anthropicClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
}

func newAnthropicClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", ErrMissingAPIKey)
	}

	model := cfg.Model
	if model == "" {
		model = "claude-3-haiku-20240307"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}

	return &anthropicClient{
		apiKey:     cfg.APIKey,
		model:      model,
		maxTokens:  maxTokens,
		baseURL:    baseURL,
		httpClient: common.NewHTTPClient(60 * time.Second),
	}, nil
}

// Analyze sends the image with the analysis prompt and parses the reply.
func (c *anthropicClient) Analyze(ctx context.Context, img Image) (model.ImageAttributes, error) {
	requestBody := map[string]any{
		"model":      c.model,
		"max_tokens": c.maxTokens,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type": "image",
						"source": map[string]string{
							"type":       "base64",
							"media_type": img.MediaType,
							"data":       img.Base64(),
						},
					},
					{
						"type": "text",
						"text": analysisPrompt,
					},
				},
			},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, common.TransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, common.StatusError("anthropic", resp.StatusCode, body)
	}

	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Content) == 0 {
		return nil, fmt.Errorf("%w: anthropic", ErrEmptyResponse)
	}

	return ParseCaption(response.Content[0].Text), nil
}

// anthropicResponse is the subset of the Messages API response we read.
type anthropicResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}
