// Package ingest loads the bulk CSV datasets and drives the full import
// cycle: freshness gating, reconciliation for the parcel mesh, plain
// upserts for the supporting datasets.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// table is one parsed CSV file with header-name access to row cells.
// Header matching is case-insensitive; unknown columns read as "".
type table struct {
	cols map[string]int
	rows [][]string
}

func readCSV(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return &table{cols: cols, rows: records[1:]}, nil
}

// get reads one cell by column name; names fall back through the given
// aliases, covering the source files' renamed columns across vintages.
func (t *table) get(row []string, names ...string) string {
	for _, name := range names {
		i, ok := t.cols[name]
		if !ok || i >= len(row) {
			continue
		}
		return strings.TrimSpace(row[i])
	}
	return ""
}
