package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInterruptHandler(t *testing.T) {
	handler := NewInterruptHandler(nil)
	require.NotNil(t, handler)
	assert.NotNil(t, handler.writer)
	assert.False(t, handler.WasInterrupted())
}

func TestInterruptCancelsContext(t *testing.T) {
	var output bytes.Buffer
	handler := NewInterruptHandler(&output)

	ctx := handler.HandleInterrupts(context.Background(), true)
	select {
	case <-ctx.Done():
		t.Fatal("context should not be canceled before an interrupt")
	default:
	}

	handler.interrupt()
	handler.interrupt()

	<-ctx.Done()
	assert.True(t, handler.WasInterrupted())
	assert.Equal(t, 1, strings.Count(output.String(), "Batch interrupted!"))
}

func TestParentCancelIsNotAnInterrupt(t *testing.T) {
	handler := NewInterruptHandler(&bytes.Buffer{})

	parent, cancel := context.WithCancel(context.Background())
	ctx := handler.HandleInterrupts(parent, false)
	cancel()

	<-ctx.Done()
	assert.False(t, handler.WasInterrupted())
}

func TestShowInterruptMessage(t *testing.T) {
	tests := []struct {
		name        string
		expected    string
		notExpected string
		persisting  bool
	}{
		{name: "persisting", persisting: true, expected: "facet records list", notExpected: "still exported"},
		{name: "export only", persisting: false, expected: "still exported", notExpected: "facet records list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer
			handler := &InterruptHandler{writer: &output, persisting: tt.persisting}

			handler.showInterruptMessage()

			assert.Contains(t, output.String(), "Batch interrupted!")
			assert.Contains(t, output.String(), tt.expected)
			assert.NotContains(t, output.String(), tt.notExpected)
		})
	}
}
