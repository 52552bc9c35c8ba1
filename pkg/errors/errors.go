// Package errors defines the error taxonomy surfaced by FlowMesh to callers:
// definition-time errors (duplicate step, missing dependency, cycle) and
// run-time errors (timeout, step failure carrying partial results).
package errors

import (
	"fmt"
	"time"
)

// DuplicateStepError is raised when a DAG already contains a step with the
// given name.
type DuplicateStepError struct {
	Name string
}

// NewDuplicateStepError constructs a DuplicateStepError.
func NewDuplicateStepError(name string) error {
	return &DuplicateStepError{Name: name}
}

func (e *DuplicateStepError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("duplicate step %q", e.Name)
}

// MissingDependencyError is raised during validation when a step declares a
// dependency that does not resolve to a registered step.
type MissingDependencyError struct {
	Step    string
	Missing string
}

// NewMissingDependencyError constructs a MissingDependencyError.
func NewMissingDependencyError(step, missing string) error {
	return &MissingDependencyError{Step: step, Missing: missing}
}

func (e *MissingDependencyError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("step %q depends on unknown step %q", e.Step, e.Missing)
}

// CycleError is raised during validation when the DAG contains a directed
// cycle; Step names at least one participant in the cycle.
type CycleError struct {
	Step string
}

// NewCycleError constructs a CycleError.
func NewCycleError(step string) error {
	return &CycleError{Step: step}
}

func (e *CycleError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("cycle detected involving step %q", e.Step)
}

// TimeoutError is raised when a callable exceeds its configured timeout.
type TimeoutError struct {
	Step    string
	Elapsed time.Duration
}

// NewTimeoutError constructs a TimeoutError.
func NewTimeoutError(step string, elapsed time.Duration) error {
	return &TimeoutError{Step: step, Elapsed: elapsed}
}

func (e *TimeoutError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("step %q timed out after %s", e.Step, e.Elapsed)
}

// StepError is raised when a step's callable fails and its retries (if any)
// are exhausted. Partial carries whatever result value the caller's executor
// had accumulated before the failure, so callers can inspect completed steps
// even though the run as a whole failed.
type StepError struct {
	Step    string
	Err     error
	Partial any
}

// NewStepError constructs a StepError.
func NewStepError(step string, err error, partial any) error {
	return &StepError{Step: step, Err: err, Partial: partial}
}

func (e *StepError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

// Unwrap exposes the underlying error so errors.Is/errors.As can reach, for
// example, a wrapped TimeoutError.
func (e *StepError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
