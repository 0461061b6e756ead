// Package tui implements the interactive review queue for stored metadata
// records.
package tui

import (
	"sort"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/service"
	"github.com/Veraticus/facet-flow/internal/tui/themes"
)

// chrome is the number of lines taken by the title, status and help rows.
const chrome = 6

// Model holds the review queue state.
type Model struct {
	theme       themes.Theme
	store       service.RecordStore
	approver    Approver
	lastError   error
	help        help.Model
	keymap      KeyMap
	status      string
	records     []*model.MetadataRecord
	visible     []*model.MetadataRecord
	table       table.Model
	threshold   float64
	width       int
	height      int
	pendingOnly bool
	showDetails bool
	ready       bool
	quitting    bool
}

func newModel(cfg Config) Model {
	t := table.New(
		table.WithColumns(columns(cfg.Width)),
		table.WithFocused(true),
		table.WithHeight(max(cfg.Height-chrome, 3)),
	)
	styles := table.DefaultStyles()
	styles.Header = cfg.Theme.Header
	styles.Selected = cfg.Theme.Selected
	t.SetStyles(styles)

	return Model{
		theme:       cfg.Theme,
		store:       cfg.Store,
		approver:    cfg.Approver,
		help:        help.New(),
		keymap:      DefaultKeyMap(),
		table:       t,
		threshold:   cfg.Threshold,
		width:       cfg.Width,
		height:      cfg.Height,
		pendingOnly: cfg.PendingOnly,
	}
}

// Init loads the records.
func (m Model) Init() tea.Cmd {
	return loadRecords(m.store)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case recordsLoadedMsg:
		m.ready = true
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.records = msg.records
		m.refreshRows()
		return m, nil

	case recordApprovedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			m.status = ""
			return m, nil
		}
		m.lastError = nil
		m.replace(msg.record)
		m.status = "approved " + msg.record.ID
		m.refreshRows()
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return tea.Quit, true

	case key.Matches(msg, m.keymap.Details):
		m.showDetails = !m.showDetails
		return nil, true

	case key.Matches(msg, m.keymap.Filter):
		m.pendingOnly = !m.pendingOnly
		m.refreshRows()
		return nil, true

	case key.Matches(msg, m.keymap.Refresh):
		m.status = "reloading"
		return loadRecords(m.store), true

	case key.Matches(msg, m.keymap.Approve):
		record := m.Selected()
		if record == nil {
			return nil, true
		}
		if record.Status == model.StatusApproved {
			m.status = record.ID + " is already approved"
			return nil, true
		}
		m.status = "approving " + record.ID
		return approveRecord(m.store, m.approver, record), true
	}
	return nil, false
}

// Selected returns the record under the cursor.
func (m Model) Selected() *model.MetadataRecord {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return nil
	}
	return m.visible[i]
}

func (m *Model) replace(record *model.MetadataRecord) {
	for i, r := range m.records {
		if r.ID == record.ID {
			m.records[i] = record
			return
		}
	}
	m.records = append(m.records, record)
}

// refreshRows rebuilds the visible rows, keeping the cursor on the same record
// when it is still shown.
func (m *Model) refreshRows() {
	var selectedID string
	if sel := m.Selected(); sel != nil {
		selectedID = sel.ID
	}

	m.visible = make([]*model.MetadataRecord, 0, len(m.records))
	for _, r := range m.records {
		if m.pendingOnly && r.Status != model.StatusPendingReview {
			continue
		}
		m.visible = append(m.visible, r)
	}
	sortQueue(m.visible)

	rows := make([]table.Row, len(m.visible))
	cursor := 0
	for i, r := range m.visible {
		rows[i] = recordRow(r)
		if r.ID == selectedID {
			cursor = i
		}
	}
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.SetCursor(cursor)
	}
}

func (m *Model) handleResize() {
	m.table.SetColumns(columns(m.width))
	m.table.SetHeight(max(m.height-chrome, 3))
	m.help.Width = m.width
}

var priorityRank = map[model.ReviewPriority]int{
	model.PriorityHigh:   0,
	model.PriorityMedium: 1,
	model.PriorityLow:    2,
}

// sortQueue orders pending records first, then by priority, lowest overall
// confidence, and id.
func sortQueue(records []*model.MetadataRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if (a.Status == model.StatusPendingReview) != (b.Status == model.StatusPendingReview) {
			return a.Status == model.StatusPendingReview
		}
		if priorityRank[a.ReviewPriority] != priorityRank[b.ReviewPriority] {
			return priorityRank[a.ReviewPriority] < priorityRank[b.ReviewPriority]
		}
		if a.Confidence.Overall != b.Confidence.Overall {
			return a.Confidence.Overall < b.Confidence.Overall
		}
		return a.ID < b.ID
	})
}
