package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/facet-flow/internal/model"
)

// maxAutoSnapshots is how many automatic snapshots are kept.
const maxAutoSnapshots = 5

// Snapshot errors.
var (
	ErrSnapshotNotFound    = errors.New("snapshot not found")
	ErrSnapshotExists      = errors.New("snapshot already exists")
	ErrSnapshotCorrupted   = errors.New("snapshot integrity check failed")
	ErrSnapshotUnsupported = errors.New("snapshots need a file database")
	ErrInvalidSnapshotTag  = errors.New("invalid snapshot tag")
)

// SnapshotInfo describes one stored copy of the record database.
type SnapshotInfo struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	FileSize      int64     `json:"file_size"`
	Records       int       `json:"records"`
	Pending       int       `json:"pending"`
	Approved      int       `json:"approved"`
	CustomTerms   int       `json:"custom_terms"`
	SchemaVersion int       `json:"schema_version"`
	IsAuto        bool      `json:"is_auto"`
}

// SnapshotManager copies the record database into a snapshots directory next
// to it and restores those copies.
type SnapshotManager struct {
	store *SQLiteStorage
	dir   string
	now   func() time.Time
}

// Snapshots returns a manager for this database's snapshots.
func (s *SQLiteStorage) Snapshots() (*SnapshotManager, error) {
	if s.dbPath == ":memory:" {
		return nil, ErrSnapshotUnsupported
	}

	dir := filepath.Join(filepath.Dir(s.dbPath), "snapshots")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create snapshots directory: %w", err)
	}

	return &SnapshotManager{store: s, dir: dir, now: time.Now}, nil
}

// Create copies the database under tag. An empty tag is generated from the
// current time.
func (m *SnapshotManager) Create(ctx context.Context, tag, description string) (*SnapshotInfo, error) {
	return m.create(ctx, tag, description, false)
}

// Auto takes an automatic snapshot before an operation and prunes the oldest
// automatic snapshots beyond the retention limit.
func (m *SnapshotManager) Auto(ctx context.Context, operation string) (*SnapshotInfo, error) {
	tag := fmt.Sprintf("auto-%s-%s", operation, m.now().Format("20060102-150405.000"))
	info, err := m.create(ctx, tag, "Automatic snapshot before "+operation, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create automatic snapshot: %w", err)
	}

	if err := m.pruneAuto(ctx); err != nil {
		slog.Warn("failed to prune automatic snapshots", "error", err)
	}
	return info, nil
}

func (m *SnapshotManager) create(ctx context.Context, tag, description string, auto bool) (*SnapshotInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if tag == "" {
		tag = "snapshot-" + m.now().Format("2006-01-02-150405")
	}
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	dbFile := m.dbFile(tag)
	if _, err := os.Stat(dbFile); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotExists, tag)
	}

	info := &SnapshotInfo{
		ID:          tag,
		CreatedAt:   m.now(),
		Description: description,
		IsAuto:      auto,
	}
	if err := m.collectCounts(ctx, info); err != nil {
		return nil, err
	}

	if _, err := m.store.db.ExecContext(ctx, "VACUUM INTO ?", dbFile); err != nil {
		return nil, fmt.Errorf("failed to copy database: %w", err)
	}

	stat, err := os.Stat(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}
	info.FileSize = stat.Size()

	if err := writeJSONFile(m.metaFile(tag), info); err != nil {
		if rmErr := os.Remove(dbFile); rmErr != nil {
			slog.Error("failed to remove snapshot after metadata failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save snapshot metadata: %w", err)
	}

	slog.Debug("snapshot created", "id", tag, "records", info.Records, "size", info.FileSize)
	return info, nil
}

// List returns every snapshot, newest first. Unreadable metadata is skipped.
func (m *SnapshotManager) List(_ context.Context) ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots directory: %w", err)
	}

	snapshots := make([]SnapshotInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		info, err := readSnapshotInfo(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable snapshot metadata", "file", entry.Name(), "error", err)
			continue
		}
		snapshots = append(snapshots, *info)
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

// Get returns one snapshot's metadata.
func (m *SnapshotManager) Get(_ context.Context, id string) (*SnapshotInfo, error) {
	if err := validateTag(id); err != nil {
		return nil, err
	}
	info, err := readSnapshotInfo(m.metaFile(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
		}
		return nil, fmt.Errorf("failed to load snapshot metadata: %w", err)
	}
	return info, nil
}

// Restore replaces the live database with the snapshot and reopens it. The
// previous database is kept until the copy succeeds.
func (m *SnapshotManager) Restore(ctx context.Context, id string) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}

	dbFile := m.dbFile(id)
	if _, err := os.Stat(dbFile); err != nil {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err := verifyIntegrity(dbFile); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotCorrupted, err)
	}

	s := m.store
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	backup := s.dbPath + ".restore-backup"
	if err := copyFile(s.dbPath, backup); err != nil {
		return m.reopen(fmt.Errorf("failed to back up current database: %w", err))
	}

	if err := copyFile(dbFile, s.dbPath); err != nil {
		if restoreErr := copyFile(backup, s.dbPath); restoreErr != nil {
			slog.Error("failed to put back database after restore failure", "error", restoreErr)
		}
		return m.reopen(fmt.Errorf("failed to restore snapshot: %w", err))
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(s.dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove stale journal file", "file", s.dbPath+suffix, "error", err)
		}
	}
	if err := os.Remove(backup); err != nil {
		slog.Warn("failed to remove restore backup", "error", err)
	}

	return m.reopen(nil)
}

// Delete removes a snapshot and its metadata.
func (m *SnapshotManager) Delete(_ context.Context, id string) error {
	if err := validateTag(id); err != nil {
		return err
	}

	if err := os.Remove(m.dbFile(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
		}
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	if err := os.Remove(m.metaFile(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Debug("failed to remove snapshot metadata", "id", id, "error", err)
	}
	return nil
}

func (m *SnapshotManager) pruneAuto(ctx context.Context) error {
	snapshots, err := m.List(ctx)
	if err != nil {
		return err
	}

	kept := 0
	for _, snap := range snapshots {
		if !snap.IsAuto {
			continue
		}
		kept++
		if kept <= maxAutoSnapshots {
			continue
		}
		if err := m.Delete(ctx, snap.ID); err != nil {
			slog.Debug("failed to delete old automatic snapshot", "id", snap.ID, "error", err)
		}
	}
	return nil
}

func (m *SnapshotManager) collectCounts(ctx context.Context, info *SnapshotInfo) error {
	version, err := m.store.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	info.SchemaVersion = version

	counts, err := m.store.CountRecords(ctx)
	if err != nil {
		return err
	}
	for _, n := range counts {
		info.Records += n
	}
	info.Pending = counts[model.StatusPendingReview]
	info.Approved = counts[model.StatusApproved]

	if err := m.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM custom_terms").Scan(&info.CustomTerms); err != nil {
		return fmt.Errorf("failed to count custom terms: %w", err)
	}
	return nil
}

// reopen reconnects the storage after a restore attempt, joining any error
// with cause.
func (m *SnapshotManager) reopen(cause error) error {
	db, err := openDB(m.store.dbPath)
	if err != nil {
		return errors.Join(cause, fmt.Errorf("failed to reopen database: %w", err))
	}
	m.store.db = db
	return cause
}

func (m *SnapshotManager) dbFile(id string) string {
	return filepath.Join(m.dir, id+".db")
}

func (m *SnapshotManager) metaFile(id string) string {
	return filepath.Join(m.dir, id+".meta.json")
}

func validateTag(tag string) error {
	if tag == "" || strings.ContainsAny(tag, `/\`) || strings.Contains(tag, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidSnapshotTag, tag)
	}
	return nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}
	return nil
}

// copyFile writes dst through a temporary file and renames it into place.
func copyFile(src, dst string) error {
	source, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	tmp := dst + ".tmp"
	destination, err := os.Create(filepath.Clean(tmp))
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := destination.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readSnapshotInfo(path string) (*SnapshotInfo, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var info SnapshotInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
