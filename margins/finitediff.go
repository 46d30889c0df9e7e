package margins

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/margo/core/parallel"
	"github.com/YuminosukeSato/margo/dataset"
	"github.com/YuminosukeSato/margo/pkg/errors"
)

// term is one reportable effect: a continuous derivative, or one discrete
// contrast of a level against its baseline. A factor with k levels expands
// into k−1 terms.
type term struct {
	variable string
	label    string
	kind     dataset.Kind
	level    float64 // contrast level (discrete kinds)
	base     float64 // baseline level (discrete kinds)
	step     float64 // resolved relative step (continuous kind)
}

// enumerateTerms expands the schema into effect terms in schema order.
func enumerateTerms(schema []dataset.Descriptor, defaultStep float64) ([]term, error) {
	if len(schema) == 0 {
		return nil, errors.NewValueError("enumerateTerms", "empty schema")
	}

	terms := make([]term, 0, len(schema))
	for _, v := range schema {
		if err := v.Validate(); err != nil {
			return nil, err
		}
		switch v.Kind {
		case dataset.Continuous:
			step := v.Step
			if step == 0 {
				step = defaultStep
			}
			terms = append(terms, term{variable: v.Name, label: v.Name, kind: v.Kind, step: step})
		case dataset.Binary:
			terms = append(terms, term{
				variable: v.Name,
				label:    v.Name,
				kind:     v.Kind,
				level:    v.Levels[1],
				base:     v.Levels[0],
			})
		case dataset.Factor:
			for _, level := range v.Levels[1:] {
				terms = append(terms, term{
					variable: v.Name,
					label:    fmt.Sprintf("%s=%g", v.Name, level),
					kind:     v.Kind,
					level:    level,
					base:     v.Levels[0],
				})
			}
		}
	}
	return terms, nil
}

// unitEffects computes the per-observation marginal effect vector for one
// term: a central difference for continuous variables, a level contrast for
// discrete ones. Both cost exactly two full-sample prediction passes.
func unitEffects(adapter PredictionAdapter, ds *dataset.Dataset, coef []float64, t term) ([]float64, error) {
	if t.kind == dataset.Continuous {
		return centralDifference(adapter, ds, coef, t)
	}
	return discreteContrast(adapter, ds, coef, t)
}

// centralDifference perturbs the underlying column in both directions and
// differences the predictions. The per-observation half-width is
// h_i = step × max(1, |x_i|), keeping cancellation error bounded across
// covariate scales. Derived columns (interactions, polynomials) are
// recomputed by the adapter from the perturbed column, so chain-rule
// effects come out of the difference automatically.
func centralDifference(adapter PredictionAdapter, ds *dataset.Dataset, coef []float64, t term) ([]float64, error) {
	col, err := ds.Column(t.variable)
	if err != nil {
		return nil, err
	}

	n := ds.Len()
	steps := make([]float64, n)
	plus := make([]float64, n)
	minus := make([]float64, n)
	for i, x := range col {
		h := t.step * math.Max(1, math.Abs(x))
		steps[i] = h
		plus[i] = x + h
		minus[i] = x - h
	}

	dsPlus, err := ds.WithColumn(t.variable, plus)
	if err != nil {
		return nil, err
	}
	dsMinus, err := ds.WithColumn(t.variable, minus)
	if err != nil {
		return nil, err
	}

	predPlus, err := safePredict(adapter, dsPlus, coef, t.variable, "plus")
	if err != nil {
		return nil, err
	}
	predMinus, err := safePredict(adapter, dsMinus, coef, t.variable, "minus")
	if err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = (predPlus[i] - predMinus[i]) / (2 * steps[i])
	}
	return out, nil
}

// discreteContrast forces the variable to the contrast level and to the
// baseline across all rows and differences the predictions. This is the
// conventional marginal effect for discrete covariates, not a derivative.
func discreteContrast(adapter PredictionAdapter, ds *dataset.Dataset, coef []float64, t term) ([]float64, error) {
	dsLevel, err := ds.WithConstant(t.variable, t.level)
	if err != nil {
		return nil, err
	}
	dsBase, err := ds.WithConstant(t.variable, t.base)
	if err != nil {
		return nil, err
	}

	predLevel, err := safePredict(adapter, dsLevel, coef, t.variable, "level")
	if err != nil {
		return nil, err
	}
	predBase, err := safePredict(adapter, dsBase, coef, t.variable, "base")
	if err != nil {
		return nil, err
	}

	out := make([]float64, ds.Len())
	for i := range out {
		out[i] = predLevel[i] - predBase[i]
	}
	return out, nil
}

// effectMatrix computes the full per-observation effect matrix for one grid
// point: rows are observations, columns follow the term order. Terms are
// independent, so they are computed in parallel; each task writes only its
// own column.
func effectMatrix(adapter PredictionAdapter, ds *dataset.Dataset, coef []float64, terms []term, threshold int) (*mat.Dense, error) {
	m := mat.NewDense(ds.Len(), len(terms), nil)
	err := parallel.ParallelizeWithThresholdError(len(terms), threshold, func(j int) error {
		col, err := unitEffects(adapter, ds, coef, terms[j])
		if err != nil {
			return err
		}
		m.SetCol(j, col)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
