package llm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/engine"
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/textgen"
)

var _ engine.TextGenerator = (*Generator)(nil)

// fakeClient replays canned replies and records prompts.
type fakeClient struct {
	err     error
	replies []string
	prompts []string
	mu      sync.Mutex
}

func (f *fakeClient) Complete(_ context.Context, system, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", ErrEmptyResponse
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

const validReply = `{"title":"Zara Navy Shirt","description":"A crisp navy shirt.","bullet_points":["Cotton"],"keywords":["shirt"]}`

var (
	testProduct = model.ProductInfo{Brand: "Zara", Gender: "Women"}
	testImage   = model.ImageAttributes{
		model.AxisCategory: model.Ranked(model.Candidate{Name: "shirt", Confidence: 0.9}),
		model.AxisColor:    model.Ranked(model.Candidate{Name: "Navy", Confidence: 0.8}),
	}
)

func testConfig() Config {
	return Config{MaxRetries: 2, RetryDelay: time.Millisecond}
}

func TestGenerator_GeneratesAndCaches(t *testing.T) {
	client := &fakeClient{replies: []string{validReply}}
	g := NewGenerator(client, testConfig(), nil)
	defer func() { _ = g.Close() }()

	text, err := g.Generate(context.Background(), testProduct, testImage)
	require.NoError(t, err)
	assert.Equal(t, "Zara Navy Shirt", text.Title)
	assert.Equal(t, []string{"Cotton"}, text.BulletPoints)

	again, err := g.Generate(context.Background(), testProduct, testImage)
	require.NoError(t, err)
	assert.Equal(t, text, again)
	assert.Equal(t, 1, client.calls())
	assert.Contains(t, client.prompts[0], "Zara")

	_, err = g.Generate(context.Background(), model.ProductInfo{Brand: "Mango"}, testImage)
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls())
}

func TestGenerator_RetriesTransientErrors(t *testing.T) {
	client := &fakeClient{replies: []string{"not json", validReply}}
	g := NewGenerator(client, Config{MaxRetries: 3, RetryDelay: time.Millisecond}, nil)
	defer func() { _ = g.Close() }()

	// Malformed copy is permanent, so the first reply ends the attempt.
	_, err := g.Generate(context.Background(), testProduct, testImage)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedCopy)
	assert.Equal(t, 1, client.calls())

	flaky := &fakeClient{err: &common.RetryableError{Err: errors.New("timeout"), Retryable: true}}
	g2 := NewGenerator(flaky, Config{MaxRetries: 3, RetryDelay: time.Millisecond}, nil)
	defer func() { _ = g2.Close() }()

	_, err = g2.Generate(context.Background(), testProduct, testImage)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
	assert.Equal(t, 3, flaky.calls())
}

func TestGenerator_FallsBackToTemplate(t *testing.T) {
	client := &fakeClient{err: common.Permanent(errors.New("quota exceeded"))}
	cfg := testConfig()
	cfg.Fallback = true
	g := NewGenerator(client, cfg, nil)
	defer func() { _ = g.Close() }()

	text, err := g.Generate(context.Background(), testProduct, testImage)
	require.NoError(t, err)

	want, err := textgen.NewTemplate().Generate(context.Background(), testProduct, testImage)
	require.NoError(t, err)
	assert.Equal(t, want, text)
}

func TestGenerator_CanceledContextSkipsFallback(t *testing.T) {
	client := &fakeClient{err: context.Canceled}
	cfg := testConfig()
	cfg.Fallback = true
	g := NewGenerator(client, cfg, nil)
	defer func() { _ = g.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, testProduct, testImage)
	assert.Error(t, err)
}

func TestGenerator_NilClientUsesTemplate(t *testing.T) {
	g := NewGenerator(nil, Config{}, nil)
	defer func() { _ = g.Close() }()

	text, err := g.Generate(context.Background(), testProduct, testImage)
	require.NoError(t, err)
	assert.Equal(t, textgen.Title(testProduct, testImage), text.Title)
}

func TestClaudeCodeClient_Complete(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		want    string
		wantErr bool
	}{
		{
			name:   "json result",
			script: `echo '{"type":"result","result":"copy text","is_error":false}'`,
			want:   "copy text",
		},
		{
			name:   "plain output",
			script: `echo 'bare reply'`,
			want:   "bare reply",
		},
		{
			name:    "error flag",
			script:  `echo '{"type":"result","result":"overloaded","is_error":true}'`,
			wantErr: true,
		},
		{
			name:    "non-zero exit",
			script:  `echo 'boom' >&2; exit 1`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "claude")
			require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+tt.script+"\n"), 0o700)) // #nosec G306

			client, err := newClaudeCodeClient(Config{ClaudeCodePath: path})
			require.NoError(t, err)

			got, err := client.Complete(context.Background(), "system", "prompt")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
