package trilat

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingMeasurement means an anchor lacks a complete measurement.
	// It is a caller precondition violation, never coerced to a zero distance.
	ErrMissingMeasurement = errors.New("missing measurement")

	// ErrNoUniqueSolution means the linear system is singular or near-singular:
	// the anchors are collinear or two of them coincide.
	ErrNoUniqueSolution = errors.New("no unique solution")

	// ErrInvalidExponent means the path-loss exponent is outside [2, 5].
	ErrInvalidExponent = errors.New("invalid path-loss exponent")
)

// MissingMeasurementError identifies the anchor that is not ready.
type MissingMeasurementError struct {
	Anchor int // zero-based anchor index
	Field  string
}

func (e *MissingMeasurementError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("anchor %d: %s: %s not set", e.Anchor+1, ErrMissingMeasurement, e.Field)
	}
	return fmt.Sprintf("anchor %d: %s", e.Anchor+1, ErrMissingMeasurement)
}

func (e *MissingMeasurementError) Unwrap() error {
	return ErrMissingMeasurement
}
