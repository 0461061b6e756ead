package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/facet-flow/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidStatus = errors.New("invalid record status")
	ErrInvalidRecord = errors.New("invalid record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRecord checks the fields the records table requires.
func validateRecord(record *model.MetadataRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if !record.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, record.Status)
	}
	if record.GeneratedAt.IsZero() {
		return fmt.Errorf("%w: missing generated_at", ErrInvalidRecord)
	}
	if record.Status == model.StatusApproved && record.ApprovedAt == nil {
		return fmt.Errorf("%w: approved record without approved_at", ErrInvalidRecord)
	}
	return nil
}

// validateFilter rejects unknown statuses and negative paging.
func validateFilter(status model.Status, limit, offset int) error {
	if status != "" && !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if limit < 0 || offset < 0 {
		return fmt.Errorf("%w: negative limit or offset", ErrInvalidRecord)
	}
	return nil
}
