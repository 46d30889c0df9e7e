// Package margo computes average marginal effects (AMEs) for fitted
// regression-type models, with delta-method standard errors, confidence
// intervals and p-values. It is a model-agnostic generalization of Stata's
// margins command.
//
// margo does not fit models and does not differentiate formulas
// symbolically. A fitted model is plugged in through a single capability,
// the PredictionAdapter: given a dataset and a coefficient vector, return
// one prediction per row. Effects are computed by central finite
// differences on the data, so interactions and polynomial terms are handled
// by the adapter recomputing its design columns from perturbed inputs;
// coefficient-estimation uncertainty is propagated with a numerically
// approximated Jacobian and the delta method.
//
// # Quick Start
//
//	model, _ := glm.NewModel(
//	    glm.Binomial,
//	    []glm.Term{glm.Intercept(), glm.Var("age"), glm.Var("income")},
//	    coefficients, covariance, schema,
//	)
//	res, err := margins.Compute(model, data)
//	if err != nil {
//	    // ...
//	}
//	fmt.Print(res.Summary())
//
// # Architecture
//
//   - margins: the engine: counterfactual grids, finite differences,
//     aggregation, delta-method variance, reporting
//   - glm: PredictionAdapter implementations for generalized linear model
//     families (Gaussian, Binomial, Poisson)
//   - dataset: column-oriented data container with copy-on-write
//     substitution
//   - pkg/errors, pkg/log: structured errors, warnings and logging
//   - core/parallel: fork-join helpers; effect terms and Jacobian columns
//     are computed across CPU cores
//
// New model families are supported by implementing the PredictionAdapter
// interface; nothing inside the engine changes.
package margo
