package pipeline

import (
	"errors"
	"fmt"
)

// Failure kinds. A StageError wraps exactly one of them.
var (
	// ErrParse means normalization or entity extraction failed.
	ErrParse = errors.New("parse failure")

	// ErrClassification means no intent scored above zero.
	ErrClassification = errors.New("classification failure")

	// ErrContext means context enrichment failed and the fallback context
	// was used.
	ErrContext = errors.New("context failure")

	// ErrMapping means template resolution failed and an ERROR action was
	// produced.
	ErrMapping = errors.New("mapping failure")

	// ErrEnrichment means the out-of-band insight call failed or timed out.
	ErrEnrichment = errors.New("enrichment failure")
)

var errNoIntent = errors.New("no intent scored above zero")

// Stage names a step of the interpretation.
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageExtract   Stage = "extract"
	StageClassify  Stage = "classify"
	StageContext   Stage = "context"
	StageMap       Stage = "map"
	StageInsight   Stage = "insight"
)

// StageError records a failure that a stage recovered from. errors.Is
// matches both the failure kind and the underlying cause.
type StageError struct {
	Stage Stage
	Err   error
}

func newStageError(stage Stage, kind, cause error) *StageError {
	return &StageError{Stage: stage, Err: fmt.Errorf("%w: %w", kind, cause)}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// safely runs fn, converting a returned error or a panic into a
// StageError of the given kind.
func safely(stage Stage, kind error, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newStageError(stage, kind, fmt.Errorf("panic: %v", r))
		}
	}()
	if ferr := fn(); ferr != nil {
		return newStageError(stage, kind, ferr)
	}
	return nil
}
