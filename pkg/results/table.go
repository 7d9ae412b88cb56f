package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrMissingColumn is returned when a required column is absent from a table
var ErrMissingColumn = errors.New("missing column")

// Table is a delimited text file held in memory with a header index
type Table struct {
	Path    string
	Header  []string
	Rows    [][]string
	columns map[string]int
}

// ReadTable reads a comma separated file with a header row
func ReadTable(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	table, err := ParseTable(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	table.Path = path
	return table, nil
}

// ParseTable parses CSV content with a header row. Ragged rows are allowed;
// absent trailing cells read as empty.
func ParseTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty table")
	}

	table := &Table{
		Header:  make([]string, len(records[0])),
		Rows:    records[1:],
		columns: make(map[string]int, len(records[0])),
	}
	for i, name := range records[0] {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		table.Header[i] = name
		if _, dup := table.columns[name]; !dup {
			table.columns[name] = i
		}
	}
	return table, nil
}

// Column returns the index of a named column
func (t *Table) Column(name string) (int, bool) {
	idx, ok := t.columns[name]
	return idx, ok
}

// HasColumn reports whether the table has a named column
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Require returns the indices of the named columns or an ErrMissingColumn error
func (t *Table) Require(names ...string) ([]int, error) {
	indices := make([]int, len(names))
	for i, name := range names {
		idx, ok := t.columns[name]
		if !ok {
			return nil, fmt.Errorf("%w %q in %s", ErrMissingColumn, name, t.describe())
		}
		indices[i] = idx
	}
	return indices, nil
}

// String returns the trimmed cell at row/col, "" when out of range
func (t *Table) String(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

// Float parses the cell at row/col. Empty cells read as NaN.
func (t *Table) Float(row, col int) (float64, error) {
	cell := t.String(row, col)
	if cell == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("row %d column %q: %w", row+2, t.Header[col], err)
	}
	return v, nil
}

func (t *Table) describe() string {
	if t.Path != "" {
		return t.Path
	}
	return "table"
}
