// Package glm provides margins.PredictionAdapter implementations for
// generalized linear model families. A Model is constructed from an
// externally fitted model's coefficient estimates and covariance (this
// package does no fitting) plus an explicit term list describing how the
// design matrix derives from the underlying variables. Because terms are
// recomputed from the dataset on every prediction, perturbed inputs flow
// through interactions and polynomial terms consistently, which is exactly
// what the finite-difference engine requires.
package glm

import (
	"math"
)

// Family identifies the response family, which fixes the link function.
type Family int

const (
	// Gaussian uses the identity link.
	Gaussian Family = iota
	// Binomial uses the logit link.
	Binomial
	// Poisson uses the log link.
	Poisson
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case Gaussian:
		return "gaussian"
	case Binomial:
		return "binomial"
	case Poisson:
		return "poisson"
	default:
		return "unknown"
	}
}

// linkInverse maps the linear predictor to the response scale.
func (f Family) linkInverse(eta float64) float64 {
	switch f {
	case Binomial:
		return sigmoid(eta)
	case Poisson:
		return math.Exp(eta)
	default:
		return eta
	}
}

// sigmoid computes the logistic function.
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// Scale selects the prediction scale.
type Scale int

const (
	// Response applies the inverse link (the default).
	Response Scale = iota
	// Link returns the raw linear predictor.
	Link
)
