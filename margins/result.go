package margins

import (
	"gonum.org/v1/gonum/mat"
)

// Inference carries the sampling-uncertainty fields of one effect. It is
// present only when variance estimation ran; VarianceNone omits it rather
// than zeroing it.
type Inference struct {
	// SE is the delta-method standard error.
	SE float64
	// Statistic is Estimate / SE.
	Statistic float64
	// P is the two-sided p-value under the reference distribution.
	P float64
	// Lower and Upper bound the confidence interval.
	Lower float64
	Upper float64
}

// Effect is one average marginal effect record.
type Effect struct {
	// Variable is the underlying model variable.
	Variable string
	// Term labels the effect: the variable name, or "name=level" for a
	// factor contrast against its baseline.
	Term string
	// At tags the counterfactual grid point this effect was computed
	// under; nil for the observed sample.
	At map[string]float64
	// Estimate is the average marginal effect.
	Estimate float64
	// Inference is nil when variance estimation was skipped.
	Inference *Inference
}

// GridPointEffects groups the optional unit-level output of one grid point.
type GridPointEffects struct {
	// At tags the grid point; nil for the observed sample.
	At map[string]float64
	// Units is the per-observation effect matrix: rows are observations of
	// the (possibly subset) sample, columns follow the term order of
	// Result.Effects within this grid point.
	Units *mat.Dense
}

// Result is the output of one Compute call. Effects are ordered grid-major:
// all terms of the first grid point, then the next, with terms in schema
// order within each point.
type Result struct {
	// Effects holds one record per (grid point, term).
	Effects []Effect

	// Units holds per-observation effects per grid point, nil unless
	// requested with WithUnitEffects.
	Units []GridPointEffects

	// Obs is the number of observations each grid point was averaged over
	// (identical across grid points).
	Obs int

	// ConfidenceLevel and Distribution echo the inference configuration.
	ConfidenceLevel float64
	Distribution    Distribution
}
