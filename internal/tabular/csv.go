package tabular

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadCSV reads a comma-separated file with a header row. A leading UTF-8 BOM
// is dropped; short rows are padded to the header width.
func ReadCSV(path string) (*Table, error) {
	if err := checkExists(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := DecodeCSV(filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return t, nil
}

// DecodeCSV parses CSV content from r.
func DecodeCSV(name string, r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bom)); err == nil && string(head) == bom {
		_, _ = br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return NewTable(name, nil, nil), nil
	}

	header := records[0]
	rows := records[1:]
	for i, r := range rows {
		if len(r) < len(header) {
			padded := make([]string, len(header))
			copy(padded, r)
			rows[i] = padded
		}
	}
	return NewTable(name, header, rows), nil
}

// WriteOptions controls CSV output.
type WriteOptions struct {
	// BOM prefixes the file with a UTF-8 byte-order mark for spreadsheet tools.
	BOM bool
}

// WriteCSV writes header and rows to path, creating parent directories. The
// file is written to a temporary name and renamed, so readers never see a
// partial table.
func WriteCSV(path string, header []string, rows [][]string, opts WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := EncodeCSV(tmp, header, rows, opts); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// EncodeCSV writes a table to w.
func EncodeCSV(w io.Writer, header []string, rows [][]string, opts WriteOptions) error {
	if opts.BOM {
		if _, err := io.WriteString(w, bom); err != nil {
			return err
		}
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// FormatFloat renders v in the shortest form that round-trips. NaN and Inf
// are written as empty cells.
func FormatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatOptFloat renders nil as an empty cell.
func FormatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatFloat(*v)
}

// FormatInt renders an integer cell.
func FormatInt(v int) string {
	return strconv.Itoa(v)
}

// Int parses an integer cell, accepting values written as floats ("12.0").
func (t *Table) Int(i int, col string) (int, bool) {
	s := t.Get(i, col)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && v == math.Trunc(v) {
		return int(v), true
	}
	return 0, false
}
