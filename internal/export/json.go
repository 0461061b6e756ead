// Package export writes metadata records and batch outcomes as nested JSON,
// flattened CSV and validation comparison CSV, and reads batch input CSV.
package export

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/Veraticus/facet-flow/internal/engine"
	"github.com/Veraticus/facet-flow/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BatchEntry is one outcome in a batch document. Failed rows keep their
// error text and source row.
type BatchEntry struct {
	Record    *model.MetadataRecord `json:"record,omitempty"`
	SourceRow model.Row             `json:"source_row,omitempty"`
	Error     string                `json:"error,omitempty"`
	RowIndex  int                   `json:"row_index"`
}

// BatchDocument is the JSON export of a batch run.
type BatchDocument struct {
	Results []BatchEntry `json:"results"`
	Summary BatchSummary `json:"summary"`
}

// BatchSummary mirrors engine.Summary with JSON names.
type BatchSummary struct {
	Total       int `json:"total"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	NeedsReview int `json:"needs_review"`
}

// NewBatchDocument builds the batch document in outcome order.
func NewBatchDocument(outcomes []engine.Outcome) BatchDocument {
	doc := BatchDocument{Results: make([]BatchEntry, 0, len(outcomes))}
	for _, o := range outcomes {
		entry := BatchEntry{RowIndex: o.RowIndex, SourceRow: o.Row}
		if o.Failed() {
			entry.Error = o.Message()
		} else {
			entry.Record = o.Record
		}
		doc.Results = append(doc.Results, entry)
	}

	s := engine.Summarize(outcomes)
	doc.Summary = BatchSummary{Total: s.Total, Succeeded: s.Succeeded, Failed: s.Failed, NeedsReview: s.NeedsReview}
	return doc
}

// WriteRecordJSON writes one record as an indented JSON document.
func WriteRecordJSON(w io.Writer, record *model.MetadataRecord) error {
	return writeJSON(w, record)
}

// WriteRecordsJSON writes records as an indented JSON array.
func WriteRecordsJSON(w io.Writer, records []*model.MetadataRecord) error {
	if records == nil {
		records = []*model.MetadataRecord{}
	}
	return writeJSON(w, records)
}

// WriteBatchJSON writes a batch run, error entries included.
func WriteBatchJSON(w io.Writer, outcomes []engine.Outcome) error {
	return writeJSON(w, NewBatchDocument(outcomes))
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
