package tui

import (
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/service"
	"github.com/Veraticus/facet-flow/internal/tui/themes"
)

// Approver validates a record and returns its approved copy, or an error
// wrapping common.ErrApprovalBlocked when validation fails.
type Approver interface {
	Approve(record *model.MetadataRecord) (*model.MetadataRecord, error)
}

// Config holds TUI configuration.
type Config struct {
	Store    service.RecordStore
	Approver Approver
	Theme    themes.Theme
	// Threshold colors confidence scores in the detail panel.
	Threshold   float64
	Width       int
	Height      int
	PendingOnly bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		Threshold: 0.7,
		Width:     100,
		Height:    30,
	}
}

// WithStore sets the record store.
func WithStore(store service.RecordStore) Option {
	return func(c *Config) {
		c.Store = store
	}
}

// WithApprover sets the component that validates approvals.
func WithApprover(approver Approver) Option {
	return func(c *Config) {
		c.Approver = approver
	}
}

// WithThreshold sets the review threshold used to color scores.
func WithThreshold(threshold float64) Option {
	return func(c *Config) {
		if threshold > 0 {
			c.Threshold = threshold
		}
	}
}

// WithPendingOnly starts the queue filtered to pending records.
func WithPendingOnly(pending bool) Option {
	return func(c *Config) {
		c.PendingOnly = pending
	}
}

// WithTheme sets a custom theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial size used before the first resize message.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
