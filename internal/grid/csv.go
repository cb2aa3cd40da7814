package grid

import (
	"bytes"
	"encoding/csv"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func LoadCSV(r io.Reader) (*Grid, error) {
	blob, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(blob, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	g := &Grid{rows: make([][]any, len(records))}
	for i, rec := range records {
		row := make([]any, len(rec))
		for j, v := range rec {
			if v != "" {
				row[j] = v
			}
		}
		g.rows[i] = row
	}
	return g, nil
}
