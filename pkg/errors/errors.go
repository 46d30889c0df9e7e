// Package errors provides error handling and the warning system for margo.
// It defines structured error types for the marginal-effects engine and
// re-exports the cockroachdb/errors primitives used throughout the project.
package errors

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// Default handler logs to the standard logger.
		log.Printf("margo-warning: %v\n", w)
	}
	// zerolog sink, registered lazily by pkg/log to avoid an import cycle.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the process-wide warning handler.
// Warnings such as IllConditionedVarianceWarning are routed through it;
// install a no-op handler to silence them.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc registers a zerolog-backed sink for warnings.
// Called by pkg/log during logger setup.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning. The zerolog sink takes precedence when registered;
// otherwise the plain handler runs.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Engine error types
//
// ===========================================================================

// SpecificationError reports a malformed counterfactual specification:
// a variable not present in the adapter's schema, or a fixed value outside
// a discrete variable's declared level set. It is raised before any
// prediction work begins and is never retried.
type SpecificationError struct {
	Variable string
	Reason   string
	Value    interface{}
}

func (e *SpecificationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("margo: invalid specification for variable %q: %s (got: %v)", e.Variable, e.Reason, e.Value)
	}
	return fmt.Sprintf("margo: invalid specification for variable %q: %s", e.Variable, e.Reason)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *SpecificationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("variable", e.Variable).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "SpecificationError")
}

// NewSpecificationError creates a SpecificationError with a stack trace.
func NewSpecificationError(variable, reason string, value interface{}) error {
	err := &SpecificationError{Variable: variable, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// PredictionError reports that the prediction adapter failed or returned a
// non-finite value at a perturbed input. It carries enough context to
// diagnose the offending perturbation; the engine never retries it, since
// the adapter is required to be deterministic.
type PredictionError struct {
	Variable    string
	Observation int
	Direction   string // "plus", "minus", "level", "base", or "" outside a perturbation
	Err         error
}

func (e *PredictionError) Error() string {
	var b strings.Builder
	b.WriteString("margo: prediction failed")
	if e.Variable != "" {
		fmt.Fprintf(&b, " for variable %q", e.Variable)
	}
	if e.Observation >= 0 {
		fmt.Fprintf(&b, " at observation %d", e.Observation)
	}
	if e.Direction != "" {
		fmt.Fprintf(&b, " (%s perturbation)", e.Direction)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *PredictionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("variable", e.Variable).
		Int("observation", e.Observation).
		Str("direction", e.Direction).
		Str("type", "PredictionError")
	if e.Err != nil {
		event.AnErr("cause", e.Err)
	}
}

// NewPredictionError creates a PredictionError with a stack trace.
// Pass observation = -1 when the failure is not tied to a single row.
func NewPredictionError(variable string, observation int, direction string, cause error) error {
	err := &PredictionError{Variable: variable, Observation: observation, Direction: direction, Err: cause}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// IllConditionedVarianceWarning signals that the delta method produced a
// non-positive variance for an effect, usually from finite-difference noise
// in the Jacobian. The point estimate is still valid; the variance is
// reported as computed, not clamped.
type IllConditionedVarianceWarning struct {
	Term     string
	Variance float64
}

func (w *IllConditionedVarianceWarning) Error() string {
	return fmt.Sprintf("delta-method variance for %q is non-positive (%.6g); standard error is unreliable. Consider a different coefficient step size.", w.Term, w.Variance)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (w *IllConditionedVarianceWarning) MarshalZerologObject(event *zerolog.Event) {
	event.Str("term", w.Term).
		Float64("variance", w.Variance).
		Str("type", "IllConditionedVarianceWarning")
}

// NewIllConditionedVarianceWarning creates an IllConditionedVarianceWarning.
func NewIllConditionedVarianceWarning(term string, variance float64) *IllConditionedVarianceWarning {
	return &IllConditionedVarianceWarning{Term: term, Variance: variance}
}

// ===========================================================================
//
//	Validation error types
//
// ===========================================================================

// DimensionError reports a mismatch between expected and actual dimensions.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/coefficients
}

func (e *DimensionError) Error() string {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("margo: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError reports that an input parameter failed validation.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("margo: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is out of domain.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("margo: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors re-exports
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common sentinel errors
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an empty dataset is passed in.
	ErrEmptyData = New("empty data")

	// ErrNoResidualDF is returned when t-distribution inference is requested
	// but the adapter does not supply residual degrees of freedom.
	ErrNoResidualDF = New("t reference distribution requested but the model supplies no residual degrees of freedom")
)
