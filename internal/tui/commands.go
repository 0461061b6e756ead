package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/service"
)

const storeTimeout = 10 * time.Second

var (
	errNoStore    = errors.New("record store not configured")
	errNoApprover = errors.New("approver not configured")
)

// loadRecords reads every stored record.
func loadRecords(store service.RecordStore) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return recordsLoadedMsg{err: errNoStore}
		}

		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		records, err := store.ListRecords(ctx, service.RecordFilter{})
		if err != nil {
			return recordsLoadedMsg{err: fmt.Errorf("failed to load records: %w", err)}
		}
		return recordsLoadedMsg{records: records}
	}
}

// approveRecord validates the record and persists the approved copy.
func approveRecord(store service.RecordStore, approver Approver, record *model.MetadataRecord) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return recordApprovedMsg{id: record.ID, err: errNoStore}
		}
		if approver == nil {
			return recordApprovedMsg{id: record.ID, err: errNoApprover}
		}

		approved, err := approver.Approve(record)
		if err != nil {
			return recordApprovedMsg{id: record.ID, err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		if err := store.SaveRecord(ctx, approved); err != nil {
			return recordApprovedMsg{id: record.ID, err: fmt.Errorf("failed to save %s: %w", record.ID, err)}
		}
		return recordApprovedMsg{id: record.ID, record: approved}
	}
}
