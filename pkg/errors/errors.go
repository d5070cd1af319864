// Package errors provides the error taxonomy and warning system for the
// spatcv pipeline. Every constructor attaches a stack trace via
// cockroachdb/errors so that failures deep inside a stage can be traced
// from the structured logs.
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
		log.Printf("spatcv-warning: %v\n", w)
	}
	// zerolog sink, installed lazily to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler overrides how non-fatal advisories are delivered.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // drop warnings entirely
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs the zerolog warning sink.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a non-fatal advisory. When a zerolog sink is installed it is
// preferred over the plain handler.
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
//	Pipeline error taxonomy
//
// ===========================================================================

// InsufficientDataError reports that a stage received fewer samples than it
// needs to produce a statistically meaningful result.
type InsufficientDataError struct {
	Op       string // stage or operation name
	Required int    // minimum sample count
	Got      int    // observed sample count
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("spatcv: %s: insufficient data: need at least %d samples, got %d", e.Op, e.Required, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *InsufficientDataError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("required", e.Required).
		Int("got", e.Got).
		Str("type", "InsufficientDataError")
}

// NewInsufficientDataError creates an InsufficientDataError with a stack trace.
func NewInsufficientDataError(op string, required, got int) error {
	err := &InsufficientDataError{Op: op, Required: required, Got: got}
	return errors.WithStack(err)
}

// DegenerateBlockError reports that spatial blocking produced too few
// non-empty blocks to satisfy the requested fold count.
type DegenerateBlockError struct {
	Blocks    int     // non-empty blocks available
	Folds     int     // folds requested
	BlockSize float64 // block edge length in metres
}

func (e *DegenerateBlockError) Error() string {
	return fmt.Sprintf("spatcv: spatial blocking degenerate: %d non-empty blocks at %.0fm cannot fill %d folds", e.Blocks, e.BlockSize, e.Folds)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DegenerateBlockError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("blocks", e.Blocks).
		Int("folds", e.Folds).
		Float64("block_size_m", e.BlockSize).
		Str("type", "DegenerateBlockError")
}

// NewDegenerateBlockError creates a DegenerateBlockError with a stack trace.
func NewDegenerateBlockError(blocks, folds int, blockSize float64) error {
	err := &DegenerateBlockError{Blocks: blocks, Folds: folds, BlockSize: blockSize}
	return errors.WithStack(err)
}

// NonConvergenceError reports that boosting never improved on its starting
// validation metric.
type NonConvergenceError struct {
	Rounds     int     // rounds completed before giving up
	BestMetric float64 // best aggregated validation metric seen
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("spatcv: training failed to converge: no validation improvement in %d rounds (best %.6g). Consider a lower learning rate or more data.", e.Rounds, e.BestMetric)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NonConvergenceError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("rounds", e.Rounds).
		Float64("best_metric", e.BestMetric).
		Str("type", "NonConvergenceError")
}

// NewNonConvergenceError creates a NonConvergenceError with a stack trace.
func NewNonConvergenceError(rounds int, bestMetric float64) error {
	err := &NonConvergenceError{Rounds: rounds, BestMetric: bestMetric}
	return errors.WithStack(err)
}

// FeatureMismatchError reports a covariate schema mismatch between training
// and prediction inputs.
type FeatureMismatchError struct {
	Op       string   // operation that detected the mismatch
	Missing  []string // schema features absent from the input
	Expected int      // feature count the schema requires
	Got      int      // feature count the input carries
}

func (e *FeatureMismatchError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("spatcv: %s: covariate schema mismatch: missing layer(s) [%s]", e.Op, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("spatcv: %s: covariate schema mismatch: expected %d features, got %d", e.Op, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *FeatureMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Strs("missing", e.Missing).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "FeatureMismatchError")
}

// NewFeatureMismatchError creates a FeatureMismatchError with a stack trace.
func NewFeatureMismatchError(op string, missing []string, expected, got int) error {
	err := &FeatureMismatchError{Op: op, Missing: missing, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// InvalidConfigurationError reports a parameter that fails eager validation.
type InvalidConfigurationError struct {
	Param  string
	Reason string
	Value  interface{}
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("spatcv: invalid configuration for '%s': %s (got: %v)", e.Param, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *InvalidConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param", e.Param).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "InvalidConfigurationError")
}

// NewInvalidConfigurationError creates an InvalidConfigurationError with a
// stack trace.
func NewInvalidConfigurationError(param, reason string, value interface{}) error {
	err := &InvalidConfigurationError{Param: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// DimensionError reports a shape mismatch between paired inputs, e.g. a
// response vector shorter than its covariate matrix.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("spatcv: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Advisory (non-fatal) warning types
//
// ===========================================================================

// OverfitWarning is emitted when the generalization gap at the selected
// iteration exceeds the configured threshold.
type OverfitWarning struct {
	BestIteration int
	Gap           float64
	Threshold     float64
}

func (w *OverfitWarning) Error() string {
	return fmt.Sprintf("generalization gap %.4f at iteration %d exceeds threshold %.4f", w.Gap, w.BestIteration, w.Threshold)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *OverfitWarning) MarshalZerologObject(event *zerolog.Event) {
	event.Int("best_iteration", w.BestIteration).
		Float64("gap", w.Gap).
		Float64("threshold", w.Threshold).
		Str("type", "OverfitWarning")
}

// NewOverfitWarning creates a new OverfitWarning.
func NewOverfitWarning(bestIteration int, gap, threshold float64) *OverfitWarning {
	return &OverfitWarning{BestIteration: bestIteration, Gap: gap, Threshold: threshold}
}

// DriverCorrelationWarning is emitted when the predicted surface correlates
// weakly with a layer known to drive the response. Advisory only.
type DriverCorrelationWarning struct {
	Layer       string
	Correlation float64
	Expected    float64
}

func (w *DriverCorrelationWarning) Error() string {
	return fmt.Sprintf("surface correlation with driver layer '%s' is %.3f (expected at least %.3f)", w.Layer, w.Correlation, w.Expected)
}

// NewDriverCorrelationWarning creates a new DriverCorrelationWarning.
func NewDriverCorrelationWarning(layer string, correlation, expected float64) *DriverCorrelationWarning {
	return &DriverCorrelationWarning{Layer: layer, Correlation: correlation, Expected: expected}
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to err.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an empty sample set or matrix is supplied.
	ErrEmptyData = New("empty data")

	// ErrNotTrained is returned when prediction is requested from an
	// untrained model.
	ErrNotTrained = New("model is not trained")
)
