package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/facet-flow/internal/service"
)

var _ service.TableWriter = (*MockWriter)(nil)

// MockWriter records WriteTable calls for tests.
type MockWriter struct {
	WriteFunc func(ctx context.Context, table [][]string) (string, error)
	Tables    [][][]string
	mu        sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// WriteTable records the table and delegates to WriteFunc when set.
func (m *MockWriter) WriteTable(ctx context.Context, table [][]string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Tables = append(m.Tables, table)
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, table)
	}
	return "mock-spreadsheet", nil
}

// Calls returns the number of WriteTable calls.
func (m *MockWriter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Tables)
}
