// Package testutil provides fixtures shared by package tests: a fluent
// vocabulary builder and a migrated in-memory record store.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/service"
	"github.com/Veraticus/facet-flow/internal/storage"
)

// TestDB is a migrated in-memory record store bound to a test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database seeded with records.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, pending, approved)
//	got := db.MustGetRecord("rec-1")
func SetupTestDB(t *testing.T, records ...*model.MetadataRecord) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for _, r := range records {
		if err := store.SaveRecord(ctx, r); err != nil {
			t.Fatalf("failed to seed record %q: %v", r.ID, err)
		}
	}

	return &TestDB{Storage: store, t: t}
}

// MustGetRecord loads a record or fails the test.
func (db *TestDB) MustGetRecord(id string) *model.MetadataRecord {
	db.t.Helper()
	record, err := db.Storage.GetRecord(context.Background(), id)
	if err != nil {
		db.t.Fatalf("failed to get record %q: %v", id, err)
	}
	return record
}

// CountByStatus returns how many stored records have the given status.
func (db *TestDB) CountByStatus(status model.Status) int {
	db.t.Helper()
	records, err := db.Storage.ListRecords(context.Background(), service.RecordFilter{Status: status})
	if err != nil {
		db.t.Fatalf("failed to list records: %v", err)
	}
	return len(records)
}
