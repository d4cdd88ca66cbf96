package tdgl

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks parameters rejected before any step runs.
	ErrConfiguration = errors.New("tdgl: invalid configuration")

	// ErrTransform marks a transform engine that cannot serve the grid.
	ErrTransform = errors.New("tdgl: transform engine failure")

	// ErrUnstable is returned when halting on blow-up is enabled and a
	// snapshot holds NaN or Inf values.
	ErrUnstable = errors.New("tdgl: field became non-finite")
)

// ConfigError names the offending parameter.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tdgl: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

// TransformError wraps a transform engine failure.
type TransformError struct {
	Op      string
	Wrapped error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("tdgl: transform %s: %v", e.Op, e.Wrapped)
}

func (e *TransformError) Unwrap() error { return e.Wrapped }

func (e *TransformError) Is(target error) bool { return target == ErrTransform }

// StepError attaches the step and simulation time to a run failure.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error { return e.Wrapped }
