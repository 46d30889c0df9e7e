package glm

import (
	"strconv"

	"github.com/YuminosukeSato/margo/dataset"
)

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Term is one design-matrix column, computed from the dataset's underlying
// variables. Terms pair positionally with the model's coefficient vector.
type Term struct {
	// Name labels the coefficient, e.g. "(Intercept)", "x1", "x1:x2".
	Name string

	// Compute derives the column from the dataset.
	Compute func(ds *dataset.Dataset) ([]float64, error)
}

// Intercept is the constant 1 column.
func Intercept() Term {
	return Term{
		Name: "(Intercept)",
		Compute: func(ds *dataset.Dataset) ([]float64, error) {
			col := make([]float64, ds.Len())
			for i := range col {
				col[i] = 1
			}
			return col, nil
		},
	}
}

// Var is the named variable itself.
func Var(name string) Term {
	return Term{
		Name: name,
		Compute: func(ds *dataset.Dataset) ([]float64, error) {
			col, err := ds.Column(name)
			if err != nil {
				return nil, err
			}
			out := make([]float64, len(col))
			copy(out, col)
			return out, nil
		},
	}
}

// Interact is the elementwise product of two variables.
func Interact(a, b string) Term {
	return Term{
		Name: a + ":" + b,
		Compute: func(ds *dataset.Dataset) ([]float64, error) {
			ca, err := ds.Column(a)
			if err != nil {
				return nil, err
			}
			cb, err := ds.Column(b)
			if err != nil {
				return nil, err
			}
			out := make([]float64, len(ca))
			for i := range out {
				out[i] = ca[i] * cb[i]
			}
			return out, nil
		},
	}
}

// Square is the variable squared.
func Square(name string) Term {
	return Term{
		Name: name + "^2",
		Compute: func(ds *dataset.Dataset) ([]float64, error) {
			col, err := ds.Column(name)
			if err != nil {
				return nil, err
			}
			out := make([]float64, len(col))
			for i, v := range col {
				out[i] = v * v
			}
			return out, nil
		},
	}
}

// Indicator is 1 where the variable equals level, 0 elsewhere. This is the
// dummy coding of one factor level.
func Indicator(name string, level float64) Term {
	return Term{
		Name: name + "=" + trimFloat(level),
		Compute: func(ds *dataset.Dataset) ([]float64, error) {
			col, err := ds.Column(name)
			if err != nil {
				return nil, err
			}
			out := make([]float64, len(col))
			for i, v := range col {
				if v == level {
					out[i] = 1
				}
			}
			return out, nil
		},
	}
}

// Transform applies f to a variable.
func Transform(name, source string, f func(float64) float64) Term {
	return Term{
		Name: name,
		Compute: func(ds *dataset.Dataset) ([]float64, error) {
			col, err := ds.Column(source)
			if err != nil {
				return nil, err
			}
			out := make([]float64, len(col))
			for i, v := range col {
				out[i] = f(v)
			}
			return out, nil
		},
	}
}
