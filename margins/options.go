package margins

import (
	"github.com/YuminosukeSato/margo/pkg/errors"
)

// VarianceMode selects how (and whether) effect variances are estimated.
type VarianceMode int

const (
	// VarianceDelta estimates the AME covariance by the delta method.
	VarianceDelta VarianceMode = iota
	// VarianceNone skips variance estimation entirely. Point estimates are
	// unchanged; inference fields are absent from the result. This avoids
	// the Jacobian's 2×(number of coefficients) full-sample prediction
	// passes and is the main lever for performance-sensitive callers.
	VarianceNone
)

// Distribution selects the reference distribution for p-values and
// confidence intervals.
type Distribution int

const (
	// Normal is the large-sample delta-method default.
	Normal Distribution = iota
	// StudentT uses the model's residual degrees of freedom. The adapter
	// must implement ResidualDFer or the computation fails fast.
	StudentT
)

// String returns the distribution name.
func (d Distribution) String() string {
	if d == StudentT {
		return "t"
	}
	return "z"
}

// Config collects the engine's numeric tolerances and reporting choices.
// All behavior-affecting defaults live here rather than in package globals
// so a computation is fully reproducible from its Config.
type Config struct {
	// ContinuousStep is the relative half-width for central differences on
	// continuous variables. The per-observation step is
	// ContinuousStep × max(1, |x|). A Descriptor's Step overrides it for
	// that variable.
	ContinuousStep float64

	// CoefficientStep is the relative half-width for the Jacobian's central
	// differences in coefficient space, independent of ContinuousStep.
	CoefficientStep float64

	// ConfidenceLevel for interval bounds, in (0, 1).
	ConfidenceLevel float64

	// Distribution for p-values and critical values.
	Distribution Distribution

	// Variance selects delta-method estimation or none.
	Variance VarianceMode

	// KeepUnits retains the per-observation marginal effect matrix for
	// each grid point in the result.
	KeepUnits bool

	// ParallelThreshold is the minimum number of independent work units
	// before the engine forks across cores.
	ParallelThreshold int

	// Subset restricts the computation to rows for which the predicate
	// returns true. Nil means all rows.
	Subset func(i int) bool

	// At is the counterfactual specification. Nil or empty means the
	// observed sample only.
	At At
}

func defaultConfig() Config {
	return Config{
		ContinuousStep:    1e-7,
		CoefficientStep:   1e-7,
		ConfidenceLevel:   0.95,
		Distribution:      Normal,
		Variance:          VarianceDelta,
		ParallelThreshold: 4,
	}
}

func (c Config) validate() error {
	if c.ContinuousStep <= 0 {
		return errors.NewValidationError("ContinuousStep", "must be positive", c.ContinuousStep)
	}
	if c.CoefficientStep <= 0 {
		return errors.NewValidationError("CoefficientStep", "must be positive", c.CoefficientStep)
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return errors.NewValidationError("ConfidenceLevel", "must be in (0, 1)", c.ConfidenceLevel)
	}
	if c.Distribution != Normal && c.Distribution != StudentT {
		return errors.NewValidationError("Distribution", "unknown reference distribution", int(c.Distribution))
	}
	if c.Variance != VarianceDelta && c.Variance != VarianceNone {
		return errors.NewValidationError("Variance", "unknown variance mode", int(c.Variance))
	}
	return nil
}

// Option configures a Compute call.
type Option func(*Config)

// WithContinuousStep sets the relative step for data-space differences.
func WithContinuousStep(h float64) Option {
	return func(c *Config) {
		c.ContinuousStep = h
	}
}

// WithCoefficientStep sets the relative step for the coefficient Jacobian.
func WithCoefficientStep(h float64) Option {
	return func(c *Config) {
		c.CoefficientStep = h
	}
}

// WithConfidenceLevel sets the confidence level for interval bounds.
func WithConfidenceLevel(level float64) Option {
	return func(c *Config) {
		c.ConfidenceLevel = level
	}
}

// WithDistribution sets the reference distribution.
func WithDistribution(d Distribution) Option {
	return func(c *Config) {
		c.Distribution = d
	}
}

// WithVarianceMode sets the variance estimation mode.
func WithVarianceMode(m VarianceMode) Option {
	return func(c *Config) {
		c.Variance = m
	}
}

// WithUnitEffects retains per-observation effects in the result.
func WithUnitEffects(keep bool) Option {
	return func(c *Config) {
		c.KeepUnits = keep
	}
}

// WithSubset restricts the computation to rows matching the predicate.
func WithSubset(keep func(i int) bool) Option {
	return func(c *Config) {
		c.Subset = keep
	}
}

// WithAt sets the counterfactual specification.
func WithAt(at At) Option {
	return func(c *Config) {
		c.At = at
	}
}

// WithParallelThreshold sets the fork-join threshold.
func WithParallelThreshold(n int) Option {
	return func(c *Config) {
		c.ParallelThreshold = n
	}
}
