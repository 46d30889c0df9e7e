package margins

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/margo/core/parallel"
	"github.com/YuminosukeSato/margo/pkg/errors"
)

// jacobian numerically differentiates ame with respect to each coefficient
// by central differences, returning the (effects × coefficients) matrix.
// rows is the length of the vector ame returns. The per-coefficient
// half-width is step × max(1, |β_j|). Coefficient perturbations are
// independent and run in parallel; each task writes one column.
func jacobian(ame func(coef []float64) ([]float64, error), coef []float64, rows int, step float64, threshold int) (*mat.Dense, error) {
	j := mat.NewDense(rows, len(coef), nil)

	err := parallel.ParallelizeWithThresholdError(len(coef), threshold, func(k int) error {
		h := step * math.Max(1, math.Abs(coef[k]))

		perturbed := make([]float64, len(coef))
		copy(perturbed, coef)

		perturbed[k] = coef[k] + h
		plus, err := ame(perturbed)
		if err != nil {
			return errors.Wrapf(err, "jacobian column %d (plus)", k)
		}

		perturbed[k] = coef[k] - h
		minus, err := ame(perturbed)
		if err != nil {
			return errors.Wrapf(err, "jacobian column %d (minus)", k)
		}

		if len(plus) != rows || len(minus) != rows {
			return errors.NewDimensionError("jacobian", rows, len(plus), 0)
		}
		for i := 0; i < rows; i++ {
			j.Set(i, k, (plus[i]-minus[i])/(2*h))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return j, nil
}

// deltaVariance applies the delta method: V = J · Σ · Jᵀ, where Σ is the
// coefficient covariance of the fitted model.
func deltaVariance(j *mat.Dense, cov *mat.SymDense) (*mat.Dense, error) {
	rows, cols := j.Dims()
	if n := cov.SymmetricDim(); n != cols {
		return nil, errors.NewDimensionError("deltaVariance", cols, n, 1)
	}

	var tmp mat.Dense
	tmp.Mul(j, cov)
	v := mat.NewDense(rows, rows, nil)
	v.Mul(&tmp, j.T())
	return v, nil
}

// refDist is the slice of the distuv API the engine needs.
type refDist interface {
	Quantile(p float64) float64
	Survival(x float64) float64
}

// referenceDistribution resolves the configured reference distribution,
// reading residual degrees of freedom from the adapter when Student-t
// inference is requested. Fails fast rather than silently falling back to
// the normal.
func referenceDistribution(cfg Config, adapter PredictionAdapter) (refDist, error) {
	switch cfg.Distribution {
	case StudentT:
		dfer, ok := adapter.(ResidualDFer)
		if !ok {
			return nil, errors.WithStack(errors.ErrNoResidualDF)
		}
		df := dfer.ResidualDF()
		if df <= 0 {
			return nil, errors.NewValidationError("ResidualDF", "must be positive", df)
		}
		return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}, nil
	default:
		return distuv.Normal{Mu: 0, Sigma: 1}, nil
	}
}

// inferenceFromVariance fills in standard errors, test statistics, two-sided
// p-values and confidence bounds for the flattened estimate vector. A
// non-positive variance is reported as computed (the standard error comes
// out zero or NaN) and flagged through the warning handler so callers can
// detect unstable finite-difference steps.
func inferenceFromVariance(estimates []float64, labels []string, v *mat.Dense, dist refDist, level float64) []Inference {
	crit := dist.Quantile(1 - (1-level)/2)

	out := make([]Inference, len(estimates))
	for i, est := range estimates {
		variance := v.At(i, i)
		if variance <= 0 {
			errors.Warn(errors.NewIllConditionedVarianceWarning(labels[i], variance))
		}
		se := math.Sqrt(variance)
		stat := est / se
		out[i] = Inference{
			SE:        se,
			Statistic: stat,
			P:         2 * dist.Survival(math.Abs(stat)),
			Lower:     est - crit*se,
			Upper:     est + crit*se,
		}
	}
	return out
}
