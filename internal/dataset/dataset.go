package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Dataset is an ordered, immutable table of records sharing one header.
// Column names are kept exactly as they appeared in the source.
type Dataset struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a dataset from a header and its rows. Every row must have one
// cell per column and column names must be unique.
func New(columns []string, rows [][]string) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; dup {
			return nil, &ParseError{Line: 1, Err: fmt.Errorf("duplicate column name %q", name)}
		}
		index[name] = i
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, &ParseError{
				Line: i + 2,
				Err:  fmt.Errorf("expected %d fields, got %d", len(columns), len(row)),
			}
		}
	}

	return &Dataset{
		columns: append([]string(nil), columns...),
		index:   index,
		rows:    rows,
	}, nil
}

// Columns returns the header in source order
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.rows)
}

// HasColumn reports whether the header contains name
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Row returns a copy of record i
func (d *Dataset) Row(i int) []string {
	return append([]string(nil), d.rows[i]...)
}

// Strings returns the raw cells of a column in row order
func (d *Dataset) Strings(column string) ([]string, error) {
	col, ok := d.index[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}

	values := make([]string, len(d.rows))
	for i, row := range d.rows {
		values[i] = row[col]
	}
	return values, nil
}

// Floats parses every cell of a column as a finite number. Surrounding
// whitespace is ignored; anything else that does not parse is a ParseError.
func (d *Dataset) Floats(column string) ([]float64, error) {
	col, ok := d.index[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}

	values := make([]float64, len(d.rows))
	for i, row := range d.rows {
		cell := strings.TrimSpace(row[col])
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, &ParseError{Line: i + 2, Column: column, Err: fmt.Errorf("invalid number %q", row[col])}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &ParseError{Line: i + 2, Column: column, Err: fmt.Errorf("non-finite number %q", row[col])}
		}
		values[i] = v
	}
	return values, nil
}

// WithColumn returns a new dataset with values stored under name. An existing
// column of that name is replaced in place, otherwise the column is appended.
// The receiver is not modified.
func (d *Dataset) WithColumn(name string, values []string) (*Dataset, error) {
	if len(values) != len(d.rows) {
		return nil, fmt.Errorf("column %q has %d values for %d records", name, len(values), len(d.rows))
	}

	col, exists := d.index[name]
	columns := d.Columns()
	if !exists {
		col = len(columns)
		columns = append(columns, name)
	}

	rows := make([][]string, len(d.rows))
	for i, row := range d.rows {
		next := make([]string, len(columns))
		copy(next, row)
		next[col] = values[i]
		rows[i] = next
	}

	return New(columns, rows)
}

// Page is one window of records for a paginated table view
type Page struct {
	Number  int        `json:"page"`
	Size    int        `json:"page_size"`
	Pages   int        `json:"pages"`
	Total   int        `json:"total"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Page returns the 1-based page number of the given size. Out of range page
// numbers are clamped to the first or last page.
func (d *Dataset) Page(number, size int) Page {
	if size < 1 {
		size = 1
	}

	pages := (len(d.rows) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}

	start := (number - 1) * size
	end := min(start+size, len(d.rows))

	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, d.Row(i))
	}

	return Page{
		Number:  number,
		Size:    size,
		Pages:   pages,
		Total:   len(d.rows),
		Columns: d.Columns(),
		Rows:    rows,
	}
}
