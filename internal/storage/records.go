package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/service"
)

// SaveRecord inserts the record or replaces the stored copy with the same id.
func (s *SQLiteStorage) SaveRecord(ctx context.Context, record *model.MetadataRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}

	document, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (id, product_id, status, document, overall_confidence, requires_review, generated_at, updated_at, approved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			product_id = excluded.product_id,
			status = excluded.status,
			document = excluded.document,
			overall_confidence = excluded.overall_confidence,
			requires_review = excluded.requires_review,
			updated_at = excluded.updated_at,
			approved_at = excluded.approved_at
	`,
		record.ID,
		record.ProductID(),
		string(record.Status),
		string(document),
		record.Confidence.Overall,
		record.RequiresReview,
		record.GeneratedAt,
		nullTime(record.UpdatedAt),
		nullTime(record.ApprovedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// GetRecord loads a record by id.
func (s *SQLiteStorage) GetRecord(ctx context.Context, id string) (*model.MetadataRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getRecordTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getRecordTx(ctx context.Context, q queryable, id string) (*model.MetadataRecord, error) {
	var document string
	err := q.QueryRowContext(ctx, `SELECT document FROM records WHERE id = ?`, id).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return decodeRecord(document)
}

// ListRecords returns records newest first, optionally filtered by status.
// A zero Limit means no limit.
func (s *SQLiteStorage) ListRecords(ctx context.Context, filter service.RecordFilter) ([]*model.MetadataRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter.Status, filter.Limit, filter.Offset); err != nil {
		return nil, err
	}

	query := `SELECT document FROM records`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY generated_at DESC, id ASC`

	limit := -1
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*model.MetadataRecord
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		record, err := decodeRecord(document)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return records, nil
}

// DeleteRecord removes a record by id.
func (s *SQLiteStorage) DeleteRecord(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deletion: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// CountRecords returns the number of stored records per status.
func (s *SQLiteStorage) CountRecords(ctx context.Context) (map[model.Status]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM records GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[model.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[model.Status(status)] = n
	}
	return counts, rows.Err()
}

func decodeRecord(document string) (*model.MetadataRecord, error) {
	var record model.MetadataRecord
	if err := json.Unmarshal([]byte(document), &record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &record, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
