// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/facet-flow/internal/model"
)

// RecordFilter defines filtering options for record queries.
type RecordFilter struct {
	Status model.Status
	Limit  int
	Offset int
}

// RecordStore defines the contract for our persistence layer.
type RecordStore interface {
	// Record operations
	SaveRecord(ctx context.Context, record *model.MetadataRecord) error
	GetRecord(ctx context.Context, id string) (*model.MetadataRecord, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]*model.MetadataRecord, error)
	DeleteRecord(ctx context.Context, id string) error

	// Custom vocabulary terms approved by reviewers
	SaveCustomTerm(ctx context.Context, field, value string) error
	GetCustomTerms(ctx context.Context) (map[string][]string, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// TableWriter publishes a header-first table to an external destination and
// returns the destination id.
type TableWriter interface {
	WriteTable(ctx context.Context, table [][]string) (string, error)
}

// RetryOptions configures retry behavior.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
