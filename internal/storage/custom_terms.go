package storage

import (
	"context"
	"fmt"
	"strings"
)

// SaveCustomTerm records a reviewer-approved vocabulary term. Saving the same
// term twice is a no-op.
func (s *SQLiteStorage) SaveCustomTerm(ctx context.Context, field, value string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(field, "field"); err != nil {
		return err
	}
	if err := validateString(value, "value"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO custom_terms (field, value) VALUES (?, ?)`,
		strings.TrimSpace(field), strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("failed to save custom term: %w", err)
	}
	return nil
}

// GetCustomTerms returns stored terms grouped by field, in insertion order.
func (s *SQLiteStorage) GetCustomTerms(ctx context.Context) (map[string][]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT field, value FROM custom_terms ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom terms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	terms := make(map[string][]string)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("failed to scan custom term: %w", err)
		}
		terms[field] = append(terms[field], value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating custom terms: %w", err)
	}
	return terms, nil
}
