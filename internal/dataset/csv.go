// Package dataset reads uploaded dataset files. The reader is the same
// naive line/comma splitter the dashboard uses: no quoting or escaping,
// first line is the header row. Files with quoted commas will split
// inside the quotes; that is accepted fidelity, not a bug to fix here.
package dataset

import (
	"strconv"
	"strings"
)

// Dataset is a parsed tabular file.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// Parse splits content on newlines and commas. Blank lines are skipped;
// the first non-blank line becomes the header.
func Parse(content string) *Dataset {
	ds := &Dataset{Columns: []string{}, Rows: [][]string{}}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if len(ds.Columns) == 0 {
			ds.Columns = fields
			continue
		}
		ds.Rows = append(ds.Rows, fields)
	}
	return ds
}

// Shape returns data row and column counts (header excluded from rows).
func (d *Dataset) Shape() (rows, cols int) {
	return len(d.Rows), len(d.Columns)
}

// Column returns the numeric values of a named column. Cells that fail
// to parse as floats are skipped.
func (d *Dataset) Column(name string) []float64 {
	idx := -1
	for i, c := range d.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	out := []float64{}
	for _, row := range d.Rows {
		if idx >= len(row) {
			continue
		}
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// NumericColumns returns every column that parses as numeric for at
// least one row, keyed by column name.
func (d *Dataset) NumericColumns() map[string][]float64 {
	out := map[string][]float64{}
	for _, c := range d.Columns {
		if vals := d.Column(c); len(vals) > 0 {
			out[c] = vals
		}
	}
	return out
}
