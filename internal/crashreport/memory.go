package crashreport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
)

// ParseMemoryCSV reads a header row followed by data rows. Short rows leave
// trailing columns out; extra cells beyond the header are dropped.
func ParseMemoryCSV(r io.Reader) ([]string, []map[string]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, []map[string]string{}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	rows := []map[string]string{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return header, rows, err
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}
