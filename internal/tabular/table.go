// Package tabular reads and writes the flat tables exchanged between pipeline
// stages: delimited text (CSV) and spreadsheets (xlsx).
package tabular

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const bom = "\ufeff"

// DefaultSheet is the spreadsheet tab read when present.
const DefaultSheet = "data"

// Table is a header plus string rows, all held in memory.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewTable builds a table from a header and rows. Header names are trimmed
// and looked up case-insensitively.
func NewTable(name string, header []string, rows [][]string) *Table {
	t := &Table{Name: name, Header: make([]string, len(header)), Rows: rows, index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, bom))
		t.Header[i] = h
		key := strings.ToLower(h)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	return t
}

// Read loads path as a spreadsheet when it ends in .xlsx, otherwise as CSV.
func Read(path, sheet string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path, sheet)
	}
	return ReadCSV(path)
}

// Exists reports whether path is present on disk.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func checkExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &MissingFileError{Path: path}
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return nil
}

// ReadXLSX reads sheet from an xlsx workbook. An empty sheet name selects
// DefaultSheet when the workbook has one, else the first sheet.
func ReadXLSX(path, sheet string) (*Table, error) {
	if err := checkExists(path); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	if sheet == "" {
		sheet = sheets[0]
		for _, s := range sheets {
			if s == DefaultSheet {
				sheet = s
				break
			}
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, path, err)
	}
	if len(rows) == 0 {
		return NewTable(filepath.Base(path), nil, nil), nil
	}

	// GetRows trims trailing empty cells, so rows are padded to the header width.
	header := rows[0]
	body := make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if len(r) < len(header) {
			padded := make([]string, len(header))
			copy(padded, r)
			r = padded
		}
		body = append(body, r)
	}
	return NewTable(filepath.Base(path), header, body), nil
}

// Col returns the index of a column, or -1.
func (t *Table) Col(name string) int {
	if i, ok := t.index[strings.ToLower(strings.TrimSpace(name))]; ok {
		return i
	}
	return -1
}

// Has reports whether the table carries column name.
func (t *Table) Has(name string) bool {
	return t.Col(name) >= 0
}

// Require fails with a MissingColumnError for the first absent column.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if !t.Has(c) {
			return &MissingColumnError{Table: t.Name, Column: c}
		}
	}
	return nil
}

// FirstOf returns the first candidate column present. The error names every
// candidate when none is.
func (t *Table) FirstOf(candidates ...string) (string, error) {
	for _, c := range candidates {
		if t.Has(c) {
			return c, nil
		}
	}
	return "", &MissingColumnError{Table: t.Name, Column: strings.Join(candidates, "|")}
}

// Get returns the trimmed cell of row i in column col; absent cells are "".
func (t *Table) Get(i int, col string) string {
	c := t.Col(col)
	if c < 0 || i < 0 || i >= len(t.Rows) || c >= len(t.Rows[i]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[i][c])
}

// Float parses a numeric cell. Blank, unparseable, NaN and infinite cells are nil.
func (t *Table) Float(i int, col string) *float64 {
	s := t.Get(i, col)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Len is the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}
