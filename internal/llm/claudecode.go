package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/facet-flow/internal/common"
)

const claudeCodeTimeout = 60 * time.Second

// claudeCodeClient implements Client by shelling out to the claude CLI.
type claudeCodeClient struct {
	model    string
	cliPath  string
	maxTurns int
	timeout  time.Duration
}

func newClaudeCodeClient(cfg Config) (Client, error) {
	cliPath := cfg.ClaudeCodePath
	if cliPath == "" {
		cliPath = "claude"
	}

	if _, err := exec.LookPath(cliPath); err != nil {
		return nil, fmt.Errorf("%w: claude CLI not found at %s", common.ErrMissingConfig, cliPath)
	}

	model := cfg.Model
	if model == "" {
		model = "sonnet"
	}

	return &claudeCodeClient{
		model:    model,
		cliPath:  cliPath,
		maxTurns: 1,
		timeout:  claudeCodeTimeout,
	}, nil
}

// Complete runs one non-interactive turn and returns its result text.
func (c *claudeCodeClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	args := []string{
		"-p", system + "\n\n" + prompt,
		"--output-format", "json",
		"--model", c.model,
		"--max-turns", strconv.Itoa(c.maxTurns),
	}

	cmdCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(cmdCtx, c.cliPath, args...) // #nosec G204
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return "", &common.RetryableError{Err: fmt.Errorf("claude code error: %s", strings.TrimSpace(stderr.String())), Retryable: true}
		}
		return "", &common.RetryableError{Err: fmt.Errorf("failed to execute claude: %w", err), Retryable: true}
	}

	var response claudeCodeResponse
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		// Older CLI versions print the bare result.
		if text := strings.TrimSpace(stdout.String()); text != "" {
			return text, nil
		}
		return "", fmt.Errorf("%w: claude code", ErrEmptyResponse)
	}

	if response.IsError {
		return "", common.Permanent(fmt.Errorf("claude code error in response: %s", response.Result))
	}
	if response.Result == "" {
		return "", fmt.Errorf("%w: claude code", ErrEmptyResponse)
	}

	return response.Result, nil
}

type claudeCodeResponse struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
}
