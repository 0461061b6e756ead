package tui

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/testutil"
)

// fakeApprover approves everything except the ids in blocked.
type fakeApprover struct {
	blocked map[string]bool
	calls   []string
}

func (f *fakeApprover) Approve(r *model.MetadataRecord) (*model.MetadataRecord, error) {
	f.calls = append(f.calls, r.ID)
	if f.blocked[r.ID] {
		return nil, fmt.Errorf("%w: color: unknown color", common.ErrApprovalBlocked)
	}
	approved := *r
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	approved.Status = model.StatusApproved
	approved.ApprovedAt = &now
	return &approved, nil
}

func queueRecord(id string, status model.Status, priority model.ReviewPriority, overall float64) *model.MetadataRecord {
	r := &model.MetadataRecord{
		ID:             id,
		Status:         status,
		ReviewPriority: priority,
		GeneratedAt:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Confidence:     model.Scores{Fields: map[string]float64{"color": overall}, Overall: overall},
	}
	if status == model.StatusApproved {
		at := r.GeneratedAt.Add(time.Hour)
		r.ApprovedAt = &at
	}
	r.Faceted.Flat.ProductID = "SKU-" + id
	r.Faceted.Hierarchical.ItemType.FullPath = "Apparel > Tops > Shirts"
	r.Descriptive.Title = "Title " + id
	return r
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadedModel runs Init against a seeded store and returns the ready model.
func loadedModel(t *testing.T, approver Approver, records ...*model.MetadataRecord) (Model, *testutil.TestDB) {
	t.Helper()

	db := testutil.SetupTestDB(t, records...)
	cfg := defaultConfig()
	cfg.Store = db.Storage
	cfg.Approver = approver

	m := newModel(cfg)
	msg := m.Init()()
	updated, _ := m.Update(msg)
	return updated.(Model), db
}

func ids(records []*model.MetadataRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestModel_LoadsAndOrdersQueue(t *testing.T) {
	m, _ := loadedModel(t, &fakeApprover{},
		queueRecord("low", model.StatusPendingReview, model.PriorityLow, 0.9),
		queueRecord("done", model.StatusApproved, model.PriorityHigh, 0.2),
		queueRecord("high-b", model.StatusPendingReview, model.PriorityHigh, 0.4),
		queueRecord("high-a", model.StatusPendingReview, model.PriorityHigh, 0.3),
		queueRecord("medium", model.StatusPendingReview, model.PriorityMedium, 0.6),
	)

	require.True(t, m.ready)
	assert.Equal(t, []string{"high-a", "high-b", "medium", "low", "done"}, ids(m.visible))
	assert.Len(t, m.table.Rows(), 5)
	assert.Equal(t, "SKU-high-a", m.table.Rows()[0][1])
	assert.Equal(t, "0.30", m.table.Rows()[0][3])
	assert.Contains(t, m.View(), "5 records, 4 pending")
}

func TestModel_FilterPendingOnly(t *testing.T) {
	m, _ := loadedModel(t, &fakeApprover{},
		queueRecord("p1", model.StatusPendingReview, model.PriorityLow, 0.8),
		queueRecord("a1", model.StatusApproved, model.PriorityLow, 0.9),
	)

	updated, _ := m.Update(keyRunes("f"))
	m = updated.(Model)
	assert.Equal(t, []string{"p1"}, ids(m.visible))
	assert.Contains(t, m.View(), "(pending only)")

	updated, _ = m.Update(keyRunes("f"))
	m = updated.(Model)
	assert.Len(t, m.visible, 2)
}

func TestModel_ApprovePersists(t *testing.T) {
	approver := &fakeApprover{}
	m, db := loadedModel(t, approver,
		queueRecord("r1", model.StatusPendingReview, model.PriorityHigh, 0.4),
	)

	updated, cmd := m.Update(keyRunes("a"))
	m = updated.(Model)
	require.NotNil(t, cmd)

	updated, _ = m.Update(cmd())
	m = updated.(Model)

	assert.Equal(t, []string{"r1"}, approver.calls)
	assert.NoError(t, m.lastError)
	assert.Equal(t, model.StatusApproved, m.visible[0].Status)
	assert.Equal(t, model.StatusApproved, db.MustGetRecord("r1").Status)
	assert.Contains(t, m.View(), "approved r1")
}

func TestModel_ApproveBlocked(t *testing.T) {
	approver := &fakeApprover{blocked: map[string]bool{"r1": true}}
	m, db := loadedModel(t, approver,
		queueRecord("r1", model.StatusPendingReview, model.PriorityHigh, 0.4),
	)

	updated, cmd := m.Update(keyRunes("a"))
	m = updated.(Model)
	updated, _ = m.Update(cmd())
	m = updated.(Model)

	require.Error(t, m.lastError)
	assert.ErrorIs(t, m.lastError, common.ErrApprovalBlocked)
	assert.Contains(t, m.View(), "unknown color")
	assert.Equal(t, model.StatusPendingReview, db.MustGetRecord("r1").Status)
}

func TestModel_ApproveAlreadyApproved(t *testing.T) {
	approver := &fakeApprover{}
	m, _ := loadedModel(t, approver,
		queueRecord("a1", model.StatusApproved, model.PriorityLow, 0.9),
	)

	updated, cmd := m.Update(keyRunes("a"))
	m = updated.(Model)
	assert.Nil(t, cmd)
	assert.Empty(t, approver.calls)
	assert.Contains(t, m.status, "already approved")
}

func TestModel_ToggleDetails(t *testing.T) {
	m, _ := loadedModel(t, &fakeApprover{},
		queueRecord("r1", model.StatusPendingReview, model.PriorityHigh, 0.4),
	)
	assert.NotContains(t, m.View(), "Title r1")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	assert.True(t, m.showDetails)
	assert.Contains(t, m.View(), "Title r1")
	assert.Contains(t, m.View(), "color=0.40")
	assert.Contains(t, m.View(), "high")
}

func TestModel_Quit(t *testing.T) {
	m, _ := loadedModel(t, &fakeApprover{})

	updated, cmd := m.Update(keyRunes("q"))
	m = updated.(Model)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestModel_EmptyQueue(t *testing.T) {
	m, _ := loadedModel(t, &fakeApprover{})
	assert.Nil(t, m.Selected())
	assert.Contains(t, m.View(), "No records to review.")

	_, cmd := m.Update(keyRunes("a"))
	assert.Nil(t, cmd)
}

func TestModel_NoStore(t *testing.T) {
	m := newModel(defaultConfig())
	updated, _ := m.Update(m.Init()())
	m = updated.(Model)
	assert.ErrorIs(t, m.lastError, errNoStore)
}

func TestColumns(t *testing.T) {
	cols := columns(120)
	require.Len(t, cols, 6)
	assert.Equal(t, "Facet 1", cols[2].Title)
	assert.Greater(t, cols[2].Width, 16)
	assert.Equal(t, 16, columns(40)[2].Width)
}
