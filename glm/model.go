package glm

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/margo/dataset"
	"github.com/YuminosukeSato/margo/pkg/errors"
)

// Model is a fitted generalized linear model viewed through the
// margins.PredictionAdapter capability. It holds externally estimated
// coefficients and their covariance; it never fits anything itself.
type Model struct {
	family Family
	scale  Scale
	terms  []Term
	coef   []float64
	cov    *mat.SymDense
	schema []dataset.Descriptor
	df     float64
}

// Option configures a Model.
type Option func(*Model)

// WithScale selects link- or response-scale predictions.
func WithScale(s Scale) Option {
	return func(m *Model) {
		m.scale = s
	}
}

// WithResidualDF supplies the fit's residual degrees of freedom, enabling
// Student-t inference.
func WithResidualDF(df float64) Option {
	return func(m *Model) {
		m.df = df
	}
}

// NewModel assembles an adapter from a fitted model's pieces. terms pair
// positionally with coef; cov may be nil when only point estimates will be
// requested.
func NewModel(family Family, terms []Term, coef []float64, cov *mat.SymDense, schema []dataset.Descriptor, opts ...Option) (*Model, error) {
	if len(terms) == 0 {
		return nil, errors.NewValueError("NewModel", "no terms")
	}
	if len(coef) != len(terms) {
		return nil, errors.NewDimensionError("NewModel", len(terms), len(coef), 1)
	}
	if cov != nil {
		if n := cov.SymmetricDim(); n != len(coef) {
			return nil, errors.NewDimensionError("NewModel", len(coef), n, 1)
		}
	}
	if len(schema) == 0 {
		return nil, errors.NewValueError("NewModel", "empty schema")
	}
	for _, v := range schema {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	m := &Model{
		family: family,
		terms:  terms,
		coef:   append([]float64(nil), coef...),
		cov:    cov,
		schema: schema,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Predict evaluates the model at the given coefficient vector: the design
// columns are recomputed from ds, the linear predictor accumulated, and the
// inverse link applied unless link-scale predictions were requested.
func (m *Model) Predict(ds *dataset.Dataset, coef []float64) ([]float64, error) {
	if len(coef) != len(m.terms) {
		return nil, errors.NewDimensionError("Predict", len(m.terms), len(coef), 1)
	}

	eta := make([]float64, ds.Len())
	for j, term := range m.terms {
		col, err := term.Compute(ds)
		if err != nil {
			return nil, errors.Wrapf(err, "computing term %s", term.Name)
		}
		if len(col) != ds.Len() {
			return nil, errors.NewDimensionError("Predict", ds.Len(), len(col), 0)
		}
		floats.AddScaled(eta, coef[j], col)
	}

	if m.scale == Link {
		return eta, nil
	}
	for i, e := range eta {
		eta[i] = m.family.linkInverse(e)
	}
	return eta, nil
}

// Coefficients returns the fitted coefficient vector.
func (m *Model) Coefficients() []float64 {
	out := make([]float64, len(m.coef))
	copy(out, m.coef)
	return out
}

// Covariance returns the coefficient covariance matrix, nil when none was
// supplied.
func (m *Model) Covariance() *mat.SymDense {
	return m.cov
}

// Schema returns the model's predictor descriptors.
func (m *Model) Schema() []dataset.Descriptor {
	return m.schema
}

// ResidualDF returns the residual degrees of freedom, zero when unknown.
func (m *Model) ResidualDF() float64 {
	return m.df
}

// Family returns the response family.
func (m *Model) Family() Family {
	return m.family
}

// TermNames returns the coefficient labels in order.
func (m *Model) TermNames() []string {
	names := make([]string, len(m.terms))
	for i, t := range m.terms {
		names[i] = t.Name
	}
	return names
}
