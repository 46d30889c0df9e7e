// Package margins computes average marginal effects (AMEs) of fitted
// regression-type models by numeric differentiation, with delta-method
// standard errors.
//
// The engine is model-agnostic: everything model-specific is supplied
// through the PredictionAdapter capability, which turns a dataset and a
// coefficient vector into predictions. Derivatives are taken by central
// finite differences on the data, so interaction and polynomial terms are
// handled by the adapter recomputing its design columns from perturbed
// inputs; no symbolic differentiation is performed. Coefficient-estimation
// uncertainty is propagated into the effects by numerically differentiating
// the whole pipeline with respect to the coefficients and applying the
// delta method against the model's coefficient covariance.
package margins

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/margo/dataset"
	"github.com/YuminosukeSato/margo/pkg/errors"
)

// PredictionAdapter is the capability a fitted model must expose to the
// engine. Implementations live outside the engine, one per model family.
type PredictionAdapter interface {
	// Predict returns one prediction per row of ds, evaluated at the given
	// coefficient vector. It must be deterministic and side-effect free,
	// and must recompute any derived design columns (interactions,
	// polynomials) from the dataset's underlying variables so that
	// perturbed inputs flow through consistently. The engine calls it with
	// both perturbed datasets and perturbed coefficient vectors.
	Predict(ds *dataset.Dataset, coef []float64) ([]float64, error)

	// Coefficients returns the fitted coefficient vector.
	Coefficients() []float64

	// Covariance returns the coefficient covariance matrix of the fit.
	Covariance() *mat.SymDense

	// Schema returns the descriptors of the model's predictor variables,
	// in reporting order.
	Schema() []dataset.Descriptor
}

// ResidualDFer is an optional adapter capability supplying residual degrees
// of freedom. It is required when Student-t inference is requested.
type ResidualDFer interface {
	ResidualDF() float64
}

// safePredict calls the adapter with panic recovery and vets the result.
// variable and direction annotate which perturbation is being evaluated so
// failures identify the variable and perturbation that produced them.
func safePredict(adapter PredictionAdapter, ds *dataset.Dataset, coef []float64, variable, direction string) ([]float64, error) {
	var preds []float64
	err := errors.SafeExecute("PredictionAdapter.Predict", func() error {
		var e error
		preds, e = adapter.Predict(ds, coef)
		return e
	})
	if err != nil {
		return nil, errors.NewPredictionError(variable, -1, direction, err)
	}
	if len(preds) != ds.Len() {
		return nil, errors.NewDimensionError("Predict", ds.Len(), len(preds), 0)
	}
	if err := errors.CheckFinite(variable, direction, preds); err != nil {
		return nil, err
	}
	return preds, nil
}
