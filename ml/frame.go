package ml

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Frame is a table in split orientation: a column list and rows of values
// in column order. A nil value is a null cell.
type Frame struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

func NewFrame(columns []string, row []any) Frame {
	return Frame{Columns: columns, Data: [][]any{row}}
}

func (f Frame) index(column string) int {
	for i, name := range f.Columns {
		if name == column {
			return i
		}
	}
	return -1
}

// Value returns the value of column in the first row.
func (f Frame) Value(column string) (any, error) {
	idx := f.index(column)
	if idx < 0 {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, column)
	}
	if len(f.Data) == 0 {
		return nil, ErrNoRows
	}
	row := f.Data[0]
	if idx >= len(row) {
		return nil, fmt.Errorf("%w %q: row has %d cells", ErrMissingColumn, column, len(row))
	}
	return row[idx], nil
}

// Record returns row i keyed by column name.
func (f Frame) Record(i int) map[string]any {
	record := make(map[string]any, len(f.Columns))
	if i < 0 || i >= len(f.Data) {
		return record
	}
	row := f.Data[i]
	for j, name := range f.Columns {
		if j < len(row) {
			record[name] = row[j]
		} else {
			record[name] = nil
		}
	}
	return record
}

// WithColumn returns a copy of f with one more column appended.
func (f Frame) WithColumn(name string, values []any) Frame {
	out := Frame{
		Columns: append(append(make([]string, 0, len(f.Columns)+1), f.Columns...), name),
		Data:    make([][]any, len(f.Data)),
	}
	for i, row := range f.Data {
		next := make([]any, 0, len(row)+1)
		next = append(next, row...)
		for len(next) < len(f.Columns) {
			next = append(next, nil)
		}
		var v any
		if i < len(values) {
			v = values[i]
		}
		out.Data[i] = append(next, v)
	}
	return out
}

// Float converts a cell to float64. Null cells and values that are not
// numeric report false.
func Float(v any) (float64, bool) {
	if v == nil {
		return math.NaN(), false
	}
	if s, ok := v.(string); ok {
		if s = strings.TrimSpace(s); s == "" {
			return math.NaN(), false
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return math.NaN(), false
	}
	return f, true
}
