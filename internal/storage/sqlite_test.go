package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/service"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func testRecord(id, productID string, offset time.Duration) *model.MetadataRecord {
	return &model.MetadataRecord{
		ID:          id,
		Status:      model.StatusPendingReview,
		GeneratedAt: baseTime.Add(offset),
		Faceted: model.FacetedMetadata{
			ItemType: model.ItemTypeApparel,
			Gender:   model.GenderWomen,
			Hierarchical: model.HierarchicalFacets{
				ItemType:   model.NewHierarchicalFacet("Apparel", "Dress", "Dresses"),
				StyleUsage: model.NewHierarchicalFacet("Casual", "Everyday", "Basic"),
			},
			Flat: model.FlatFacets{ProductID: productID, Color: "Red", Brand: "Acme"},
		},
		Descriptive: model.Descriptive{Title: "Acme Red Dress", BulletPoints: []string{"Color: Red"}},
		Confidence:  model.Scores{Fields: map[string]float64{"color": 0.9}, Overall: 0.9},
		Validation: map[string]model.ValidationResult{
			model.ValidationColor: {Valid: true, Normalized: "Red"},
		},
		ReviewPriority: model.PriorityLow,
	}
}

func TestNewSQLiteStorage_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "facet.db")
	store, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
	assert.Equal(t, path, store.Path())
	assert.FileExists(t, path)
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestMigrate_Idempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))
	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestSaveAndGetRecord(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	record := testRecord("rec-1", "P1", 0)
	require.NoError(t, store.SaveRecord(ctx, record))

	got, err := store.GetRecord(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, record.Faceted, got.Faceted)
	assert.Equal(t, record.Descriptive, got.Descriptive)
	assert.Equal(t, record.Confidence, got.Confidence)
	assert.Equal(t, record.Validation, got.Validation)
	assert.True(t, record.GeneratedAt.Equal(got.GeneratedAt))
	assert.Nil(t, got.ApprovedAt)
}

func TestSaveRecord_Upsert(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	record := testRecord("rec-1", "P1", 0)
	require.NoError(t, store.SaveRecord(ctx, record))

	approvedAt := baseTime.Add(time.Hour)
	record.Status = model.StatusApproved
	record.ApprovedAt = &approvedAt
	record.Faceted.Flat.Color = "Blue"
	require.NoError(t, store.SaveRecord(ctx, record))

	got, err := store.GetRecord(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
	assert.Equal(t, "Blue", got.Faceted.Flat.Color)
	require.NotNil(t, got.ApprovedAt)
	assert.True(t, approvedAt.Equal(*got.ApprovedAt))

	counts, err := store.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[model.Status]int{model.StatusApproved: 1}, counts)
}

func TestSaveRecord_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		record  *model.MetadataRecord
		wantErr error
		name    string
	}{
		{name: "nil record", record: nil, wantErr: ErrNilParameter},
		{
			name:    "missing id",
			record:  testRecord("", "P1", 0),
			wantErr: ErrInvalidRecord,
		},
		{
			name: "unknown status",
			record: func() *model.MetadataRecord {
				r := testRecord("rec-1", "P1", 0)
				r.Status = "archived"
				return r
			}(),
			wantErr: ErrInvalidStatus,
		},
		{
			name: "approved without timestamp",
			record: func() *model.MetadataRecord {
				r := testRecord("rec-1", "P1", 0)
				r.Status = model.StatusApproved
				return r
			}(),
			wantErr: ErrInvalidRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SaveRecord(ctx, tt.record)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetRecord_NotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetRecord(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListRecords(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for i, id := range []string{"rec-a", "rec-b", "rec-c"} {
		require.NoError(t, store.SaveRecord(ctx, testRecord(id, "P", time.Duration(i)*time.Minute)))
	}
	approved := testRecord("rec-d", "P", 10*time.Minute)
	approvedAt := baseTime.Add(time.Hour)
	approved.Status = model.StatusApproved
	approved.ApprovedAt = &approvedAt
	require.NoError(t, store.SaveRecord(ctx, approved))

	ids := func(records []*model.MetadataRecord) []string {
		out := make([]string, 0, len(records))
		for _, r := range records {
			out = append(out, r.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		want   []string
		filter service.RecordFilter
	}{
		{name: "all newest first", filter: service.RecordFilter{}, want: []string{"rec-d", "rec-c", "rec-b", "rec-a"}},
		{name: "pending only", filter: service.RecordFilter{Status: model.StatusPendingReview}, want: []string{"rec-c", "rec-b", "rec-a"}},
		{name: "approved only", filter: service.RecordFilter{Status: model.StatusApproved}, want: []string{"rec-d"}},
		{name: "limit", filter: service.RecordFilter{Limit: 2}, want: []string{"rec-d", "rec-c"}},
		{name: "offset without limit", filter: service.RecordFilter{Offset: 3}, want: []string{"rec-a"}},
		{name: "page", filter: service.RecordFilter{Limit: 1, Offset: 1}, want: []string{"rec-c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := store.ListRecords(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(records))
		})
	}

	_, err := store.ListRecords(ctx, service.RecordFilter{Status: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDeleteRecord(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRecord(ctx, testRecord("rec-1", "P1", 0)))
	require.NoError(t, store.DeleteRecord(ctx, "rec-1"))

	_, err := store.GetRecord(ctx, "rec-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, store.DeleteRecord(ctx, "rec-1"), common.ErrNotFound)
}

func TestCustomTerms(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCustomTerm(ctx, "color", "Mauve"))
	require.NoError(t, store.SaveCustomTerm(ctx, "material", "Bamboo"))
	require.NoError(t, store.SaveCustomTerm(ctx, "color", "Teal"))
	require.NoError(t, store.SaveCustomTerm(ctx, "color", "Mauve"))

	terms, err := store.GetCustomTerms(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"color":    {"Mauve", "Teal"},
		"material": {"Bamboo"},
	}, terms)

	assert.ErrorIs(t, store.SaveCustomTerm(ctx, "color", " "), ErrEmptyString)
}
