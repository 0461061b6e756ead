package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/facet-flow/internal/model"
)

// ReadRowsFile reads batch input rows from a CSV file.
func ReadRowsFile(path string) ([]model.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadRows(f)
}

// ReadRows reads batch input rows. Only recognized columns are kept; blank
// lines are skipped and short rows are padded.
func ReadRows(r io.Reader) ([]model.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[int]string)
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if isRecognized(name) {
			columns[i] = name
		}
	}

	var rows []model.Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+1, err)
		}

		row := make(model.Row, len(columns))
		for i, name := range columns {
			if i < len(record) {
				row[name] = strings.TrimSpace(record[i])
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isRecognized(name string) bool {
	for _, f := range model.RecognizedFields {
		if f == name {
			return true
		}
	}
	return false
}
