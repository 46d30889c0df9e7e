// Package dataset provides the column-oriented data container consumed by
// the marginal effects engine. Columns are named float64 slices; categorical
// variables are stored as numeric level codes, with the level set carried by
// the variable's Descriptor.
//
// Dataset values are immutable once built. The substitution operations
// (WithColumn, WithConstant) return new Dataset values that share every
// untouched column with the receiver, so counterfactual copies are cheap
// and safe to process concurrently against the same base.
package dataset

import (
	"github.com/YuminosukeSato/margo/pkg/errors"
)

// Dataset is an ordered collection of named columns with a fixed row count.
type Dataset struct {
	names []string
	cols  map[string][]float64
	nRows int
}

// New creates a Dataset from columns in the given order. All columns must
// have the same length.
func New(names []string, cols map[string][]float64) (*Dataset, error) {
	if len(names) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}

	nRows := -1
	for _, name := range names {
		col, ok := cols[name]
		if !ok {
			return nil, errors.NewValidationError("cols", "missing column named in order", name)
		}
		if nRows == -1 {
			nRows = len(col)
		} else if len(col) != nRows {
			return nil, errors.NewDimensionError("dataset.New", nRows, len(col), 0)
		}
	}
	if nRows == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}

	// Private copies so the caller cannot mutate shared state afterwards.
	owned := make(map[string][]float64, len(names))
	for _, name := range names {
		c := make([]float64, nRows)
		copy(c, cols[name])
		owned[name] = c
	}
	ordered := make([]string, len(names))
	copy(ordered, names)

	return &Dataset{names: ordered, cols: owned, nRows: nRows}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return d.nRows
}

// Names returns the column names in order. The returned slice must not be
// modified.
func (d *Dataset) Names() []string {
	return d.names
}

// Has reports whether a column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.cols[name]
	return ok
}

// Column returns the named column. The returned slice must not be modified.
func (d *Dataset) Column(name string) ([]float64, error) {
	col, ok := d.cols[name]
	if !ok {
		return nil, errors.NewValueError("Column", "no column named "+name)
	}
	return col, nil
}

// At returns the value at row i of the named column.
func (d *Dataset) At(name string, i int) (float64, error) {
	col, ok := d.cols[name]
	if !ok {
		return 0, errors.NewValueError("At", "no column named "+name)
	}
	return col[i], nil
}

// WithColumn returns a copy of the Dataset with one column replaced. Every
// other column is shared with the receiver.
func (d *Dataset) WithColumn(name string, values []float64) (*Dataset, error) {
	if _, ok := d.cols[name]; !ok {
		return nil, errors.NewValueError("WithColumn", "no column named "+name)
	}
	if len(values) != d.nRows {
		return nil, errors.NewDimensionError("WithColumn", d.nRows, len(values), 0)
	}

	cols := make(map[string][]float64, len(d.cols))
	for k, v := range d.cols {
		cols[k] = v
	}
	owned := make([]float64, d.nRows)
	copy(owned, values)
	cols[name] = owned

	return &Dataset{names: d.names, cols: cols, nRows: d.nRows}, nil
}

// WithConstant returns a copy of the Dataset with one column fixed to a
// single value in every row. Every other column is shared with the receiver.
func (d *Dataset) WithConstant(name string, value float64) (*Dataset, error) {
	col := make([]float64, d.nRows)
	for i := range col {
		col[i] = value
	}
	return d.WithColumn(name, col)
}

// Subset returns a Dataset containing only the rows for which keep returns
// true, preserving order. Returns ErrEmptyData when no row survives.
func (d *Dataset) Subset(keep func(i int) bool) (*Dataset, error) {
	idx := make([]int, 0, d.nRows)
	for i := 0; i < d.nRows; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	if len(idx) == d.nRows {
		return d, nil
	}

	cols := make(map[string][]float64, len(d.cols))
	for name, col := range d.cols {
		sub := make([]float64, len(idx))
		for j, i := range idx {
			sub[j] = col[i]
		}
		cols[name] = sub
	}
	return &Dataset{names: d.names, cols: cols, nRows: len(idx)}, nil
}
