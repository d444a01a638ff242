package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/artificial-agent/ros-to-huggingface/internal/domain"
)

// TabularSink appends rows to one CSV file. The column set is fixed at
// creation from the first extracted message and every row must match it.
type TabularSink struct {
	path    string
	file    *os.File
	w       *csv.Writer
	columns []string
}

func newTabularSink(path string, columns []string) (*TabularSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	s := &TabularSink{
		path:    path,
		file:    file,
		w:       csv.NewWriter(file),
		columns: append([]string(nil), columns...),
	}

	if err := s.w.Write(s.columns); err != nil {
		file.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	return s, nil
}

// Columns returns the fixed header of this sink.
func (s *TabularSink) Columns() []string {
	return s.columns
}

// WriteRow appends one row in column order. A field set that differs from
// the established columns is a schema mismatch, not a reorder.
func (s *TabularSink) WriteRow(fields map[string]any) error {
	if len(fields) != len(s.columns) {
		return fmt.Errorf("%s: got fields %v, want columns %v: %w",
			s.path, sortedKeys(fields), s.columns, domain.ErrSchemaMismatch)
	}

	record := make([]string, len(s.columns))
	for i, col := range s.columns {
		v, ok := fields[col]
		if !ok {
			return fmt.Errorf("%s: got fields %v, want columns %v: %w",
				s.path, sortedKeys(fields), s.columns, domain.ErrSchemaMismatch)
		}
		record[i] = formatValue(v)
	}

	if err := s.w.Write(record); err != nil {
		return fmt.Errorf("write csv row to %s: %w", s.path, err)
	}
	return nil
}

// Close flushes buffered rows and releases the file handle.
func (s *TabularSink) Close() error {
	s.w.Flush()
	flushErr := s.w.Error()
	closeErr := s.file.Close()
	if flushErr != nil {
		return fmt.Errorf("flush %s: %w", s.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", s.path, closeErr)
	}
	return nil
}

func formatValue(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'g', -1, 32)
	case int64:
		return strconv.FormatInt(n, 10)
	case int:
		return strconv.Itoa(n)
	case uint64:
		return strconv.FormatUint(n, 10)
	case bool:
		return strconv.FormatBool(n)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
