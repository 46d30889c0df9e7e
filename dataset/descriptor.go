package dataset

import (
	"github.com/YuminosukeSato/margo/pkg/errors"
)

// Kind classifies a variable for the purpose of choosing a differentiation
// rule: continuous variables get a central difference, discrete variables a
// level contrast. Kind is fixed for the lifetime of a Descriptor.
type Kind int

const (
	// Continuous marks a real-valued variable.
	Continuous Kind = iota
	// Binary marks a two-level discrete variable.
	Binary
	// Factor marks an unordered discrete variable with two or more levels.
	Factor
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Binary:
		return "binary"
	case Factor:
		return "factor"
	default:
		return "unknown"
	}
}

// Descriptor describes one model variable.
type Descriptor struct {
	// Name of the variable's column in the Dataset.
	Name string

	// Kind selects the differentiation rule.
	Kind Kind

	// Levels enumerates the level codes of a Binary or Factor variable.
	// Levels[0] is the baseline for contrasts. Empty for Continuous.
	Levels []float64

	// Step overrides the engine's continuous perturbation step for this
	// variable. Zero means use the engine default. Ignored for discrete
	// kinds.
	Step float64
}

// Validate checks internal consistency of the descriptor.
func (v Descriptor) Validate() error {
	if v.Name == "" {
		return errors.NewValidationError("Name", "empty variable name", v.Name)
	}
	switch v.Kind {
	case Continuous:
		if len(v.Levels) != 0 {
			return errors.NewValidationError("Levels", "continuous variable must not declare levels", v.Name)
		}
		if v.Step < 0 {
			return errors.NewValidationError("Step", "negative step size", v.Step)
		}
	case Binary:
		if len(v.Levels) != 2 {
			return errors.NewValidationError("Levels", "binary variable must declare exactly 2 levels", v.Name)
		}
	case Factor:
		if len(v.Levels) < 2 {
			return errors.NewValidationError("Levels", "factor variable must declare at least 2 levels", v.Name)
		}
	default:
		return errors.NewValidationError("Kind", "unknown variable kind", int(v.Kind))
	}
	if v.Kind != Continuous {
		seen := make(map[float64]bool, len(v.Levels))
		for _, l := range v.Levels {
			if seen[l] {
				return errors.NewValidationError("Levels", "duplicate level", l)
			}
			seen[l] = true
		}
	}
	return nil
}

// HasLevel reports whether value is one of the declared levels. Always
// false for continuous variables.
func (v Descriptor) HasLevel(value float64) bool {
	for _, l := range v.Levels {
		if l == value {
			return true
		}
	}
	return false
}
