package margins

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/margo/dataset"
	"github.com/YuminosukeSato/margo/pkg/errors"
)

// funcAdapter is a minimal PredictionAdapter for tests, backed by a
// prediction closure.
type funcAdapter struct {
	predict func(ds *dataset.Dataset, coef []float64) ([]float64, error)
	coef    []float64
	cov     *mat.SymDense
	schema  []dataset.Descriptor
}

func (a *funcAdapter) Predict(ds *dataset.Dataset, coef []float64) ([]float64, error) {
	return a.predict(ds, coef)
}

func (a *funcAdapter) Coefficients() []float64      { return a.coef }
func (a *funcAdapter) Covariance() *mat.SymDense    { return a.cov }
func (a *funcAdapter) Schema() []dataset.Descriptor { return a.schema }

// dfAdapter adds residual degrees of freedom.
type dfAdapter struct {
	funcAdapter
	df float64
}

func (a *dfAdapter) ResidualDF() float64 { return a.df }

// linearAdapter builds an adapter for y = coef[0] + Σ coef[j+1]·x_j over
// the named continuous variables.
func linearAdapter(coef []float64, cov *mat.SymDense, vars ...string) *funcAdapter {
	schema := make([]dataset.Descriptor, len(vars))
	for i, name := range vars {
		schema[i] = dataset.Descriptor{Name: name, Kind: dataset.Continuous}
	}
	return &funcAdapter{
		predict: func(ds *dataset.Dataset, c []float64) ([]float64, error) {
			out := make([]float64, ds.Len())
			for i := range out {
				out[i] = c[0]
			}
			for j, name := range vars {
				col, err := ds.Column(name)
				if err != nil {
					return nil, err
				}
				for i := range out {
					out[i] += c[j+1] * col[i]
				}
			}
			return out, nil
		},
		coef:   coef,
		cov:    cov,
		schema: schema,
	}
}

func mustDataset(t *testing.T, names []string, cols map[string][]float64) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(names, cols)
	if err != nil {
		t.Fatalf("dataset.New failed: %v", err)
	}
	return ds
}

// captureWarnings collects engine warnings for the duration of a test.
func captureWarnings(t *testing.T) *[]error {
	t.Helper()
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { errors.SetWarningHandler(func(error) {}) })
	return &warnings
}
