package margins

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/margo/dataset"
	"github.com/YuminosukeSato/margo/pkg/errors"
	"github.com/YuminosukeSato/margo/pkg/log"
)

// Compute runs the full pipeline: counterfactual grid expansion, finite
// differences, aggregation, and (unless disabled) delta-method variance
// estimation. The dataset, coefficient vector and covariance are treated as
// immutable for the duration of the call.
func Compute(adapter PredictionAdapter, ds *dataset.Dataset, opts ...Option) (*Result, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if ds == nil || ds.Len() == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}

	schema := adapter.Schema()
	terms, err := enumerateTerms(schema, cfg.ContinuousStep)
	if err != nil {
		return nil, err
	}
	for _, t := range terms {
		if !ds.Has(t.variable) {
			return nil, errors.NewValueError("Compute", "dataset is missing model variable "+t.variable)
		}
	}

	grid, err := buildGrid(ds, schema, cfg.At, cfg.Subset)
	if err != nil {
		return nil, err
	}

	coef := adapter.Coefficients()
	if len(coef) == 0 {
		return nil, errors.NewValueError("Compute", "adapter returned no coefficients")
	}

	// Resolve the reference distribution before any prediction work so a
	// t-request against a model without residual df fails fast.
	var dist refDist
	if cfg.Variance == VarianceDelta {
		dist, err = referenceDistribution(cfg, adapter)
		if err != nil {
			return nil, err
		}
	}

	lg := log.Logger()
	lg.Debug().
		Int("observations", grid[0].data.Len()).
		Int("terms", len(terms)).
		Int("grid_points", len(grid)).
		Int("coefficients", len(coef)).
		Msg("computing marginal effects")

	// Point estimates, grid-major.
	estimates := make([]float64, 0, len(grid)*len(terms))
	labels := make([]string, 0, len(grid)*len(terms))
	var units []GridPointEffects
	if cfg.KeepUnits {
		units = make([]GridPointEffects, 0, len(grid))
	}
	for _, p := range grid {
		m, err := effectMatrix(adapter, p.data, coef, terms, cfg.ParallelThreshold)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, columnMeans(m)...)
		for _, t := range terms {
			labels = append(labels, t.label)
		}
		if cfg.KeepUnits {
			units = append(units, GridPointEffects{At: p.tag, Units: m})
		}
	}

	result := &Result{
		Units:           units,
		Obs:             grid[0].data.Len(),
		ConfidenceLevel: cfg.ConfidenceLevel,
		Distribution:    cfg.Distribution,
	}

	var inferences []Inference
	if cfg.Variance == VarianceDelta {
		v, err := estimateVariance(adapter, grid, terms, coef, len(estimates), cfg)
		if err != nil {
			return nil, err
		}
		inferences = inferenceFromVariance(estimates, labels, v, dist, cfg.ConfidenceLevel)
	}

	result.Effects = make([]Effect, len(estimates))
	for i := range estimates {
		p := grid[i/len(terms)]
		t := terms[i%len(terms)]
		eff := Effect{
			Variable: t.variable,
			Term:     t.label,
			At:       p.tag,
			Estimate: estimates[i],
		}
		if inferences != nil {
			inf := inferences[i]
			eff.Inference = &inf
		}
		result.Effects[i] = eff
	}
	return result, nil
}

// estimateVariance closes the grid pipeline over the fixed data as a
// function of the coefficient vector, differentiates it numerically, and
// applies the delta method against the model's coefficient covariance.
func estimateVariance(adapter PredictionAdapter, grid []gridPoint, terms []term, coef []float64, rows int, cfg Config) (*mat.Dense, error) {
	cov := adapter.Covariance()
	if cov == nil {
		return nil, errors.NewValueError("estimateVariance", "adapter returned no covariance matrix")
	}
	if n := cov.SymmetricDim(); n != len(coef) {
		return nil, errors.NewDimensionError("estimateVariance", len(coef), n, 1)
	}

	ameOf := func(c []float64) ([]float64, error) {
		out := make([]float64, 0, rows)
		for _, p := range grid {
			m, err := effectMatrix(adapter, p.data, c, terms, cfg.ParallelThreshold)
			if err != nil {
				return nil, err
			}
			out = append(out, columnMeans(m)...)
		}
		return out, nil
	}

	j, err := jacobian(ameOf, coef, rows, cfg.CoefficientStep, cfg.ParallelThreshold)
	if err != nil {
		return nil, err
	}
	return deltaVariance(j, cov)
}
