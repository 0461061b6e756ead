package engine

import (
	"context"
	"sync"

	"github.com/Veraticus/facet-flow/internal/model"
)

// MockAnalyzer returns canned attributes per image reference and records calls.
type MockAnalyzer struct {
	Results map[string]model.ImageAttributes
	Errors  map[string]error
	calls   []string
	mu      sync.Mutex
}

// NewMockAnalyzer creates an analyzer with no canned results.
func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{
		Results: make(map[string]model.ImageAttributes),
		Errors:  make(map[string]error),
	}
}

// Analyze returns the canned result for ref, or empty attributes.
func (m *MockAnalyzer) Analyze(_ context.Context, ref string) (model.ImageAttributes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, ref)
	if err, ok := m.Errors[ref]; ok {
		return nil, err
	}
	return m.Results[ref], nil
}

// Calls returns the references analyzed so far, in order.
func (m *MockAnalyzer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockTextGenerator returns fixed text, or Err when set.
type MockTextGenerator struct {
	Err  error
	Text model.GeneratedText
}

// Generate returns the configured text.
func (m *MockTextGenerator) Generate(_ context.Context, product model.ProductInfo, _ model.ImageAttributes) (model.GeneratedText, error) {
	if m.Err != nil {
		return model.GeneratedText{}, m.Err
	}
	text := m.Text
	if text.Title == "" {
		text.Title = product.Brand + " Product"
	}
	return text, nil
}
