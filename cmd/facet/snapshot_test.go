package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/storage"
)

// runSnapshot executes the snapshot command tree with args and stdin.
func runSnapshot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := snapshotCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func listSnapshots(t *testing.T, dbPath string) []storage.SnapshotInfo {
	t.Helper()
	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	manager, err := store.Snapshots()
	require.NoError(t, err)
	list, err := manager.List(context.Background())
	require.NoError(t, err)
	return list
}

func TestSnapshotCommands(t *testing.T) {
	dbPath := setupConfig(t)

	out, err := runSnapshot(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No snapshots found.")

	out, err = runSnapshot(t, "", "create", "--tag", "first", "-d", "baseline")
	require.NoError(t, err)
	assert.Contains(t, out, "Created snapshot first")

	_, err = runSnapshot(t, "", "create", "--tag", "first")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.ErrorIs(t, err, storage.ErrSnapshotExists)

	out, err = runSnapshot(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "manual")

	out, err = runSnapshot(t, "n\n", "restore", "first")
	require.NoError(t, err)
	assert.Contains(t, out, "Restore cancelled.")

	out, err = runSnapshot(t, "y\n", "restore", "first")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored snapshot first")

	_, err = runSnapshot(t, "", "delete", "missing", "--force")
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)

	out, err = runSnapshot(t, "", "delete", "first", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted snapshot first")
	assert.Empty(t, listSnapshots(t, dbPath))
}

func TestRunBatch_AutoSnapshot(t *testing.T) {
	dbPath := setupConfig(t)
	viper.Set("database.auto_snapshot", true)
	input := writeCSV(t, catalog)

	require.NoError(t, runBatch(context.Background(), &bytes.Buffer{}, input, batchOptions{noProgress: true}))

	list := listSnapshots(t, dbPath)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsAuto)
	assert.True(t, strings.HasPrefix(list[0].ID, "auto-batch-"))
	assert.Zero(t, list[0].Records)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, confirm(strings.NewReader(tt.input), &bytes.Buffer{}, "ok?"), tt.input)
	}
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", formatFileSize(512))
	assert.Equal(t, "1.5 KB", formatFileSize(1536))
	assert.Equal(t, "2.0 MB", formatFileSize(2*1024*1024))
}
