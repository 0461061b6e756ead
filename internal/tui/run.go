package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the review queue and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.Store == nil {
		return errNoStore
	}
	if cfg.Approver == nil {
		return errNoApprover
	}

	program := tea.NewProgram(newModel(cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("review queue: %w", err)
	}
	return nil
}
