// Package dag implements the dependency graph subsystem of the FlowMesh
// core: immutable Step descriptors, the insertion-ordered DAG they populate,
// topological ordering, level partitioning, and Mermaid rendering.
package dag

import (
	"context"
	"time"

	validator "github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Backoff selects the delay schedule between retry attempts.
type Backoff string

const (
	// BackoffNone keeps the delay constant across retries.
	BackoffNone Backoff = "none"
	// BackoffLinear scales the delay linearly with the attempt number.
	BackoffLinear Backoff = "linear"
	// BackoffExponential doubles the delay on each successive attempt.
	BackoffExponential Backoff = "exponential"
)

// Shape tags the arity of a step's materialized Input, mirroring the
// tagged-variant {None | One | Many} the design notes call for in place of
// the source language's positional/keyword dispatch.
type Shape int

const (
	// ShapeNone means the step has no dependencies and no initial input.
	ShapeNone Shape = iota
	// ShapeOne means the step has exactly one dependency (or an initial
	// input with zero dependencies).
	ShapeOne
	// ShapeMany means the step has more than one dependency.
	ShapeMany
)

// Input is the materialized argument handed to a Callable, and to the `if`,
// `unless`, and `cache_key` predicates evaluated against the same step.
type Input struct {
	Shape Shape
	// Value holds the single positional argument when Shape == ShapeOne.
	Value any
	// Values holds one entry per dependency name when Shape == ShapeMany.
	// A dependency whose step was skipped contributes a nil value.
	Values map[string]any
}

// Get returns the value associated with a dependency name regardless of
// Shape, for callables that want name-based access even in the One case.
func (in Input) Get(name string) any {
	switch in.Shape {
	case ShapeOne:
		return in.Value
	case ShapeMany:
		return in.Values[name]
	default:
		return nil
	}
}

// Callable is the unit of computation a Step wraps. ctx carries the
// per-attempt timeout deadline (see dag.Options.Timeout); well-behaved
// callables should respect ctx.Done(), though the executor also races the
// call against the deadline so non-cooperative callables still time out.
type Callable func(ctx context.Context, in Input) (any, error)

// Predicate is the signature for the `if` and `unless` options; `retry_if`
// uses RetryPredicate.
type Predicate func(in Input) bool

// RetryPredicate decides whether a given error should trigger a retry.
type RetryPredicate func(err error) bool

// CacheKeyFunc computes a cache key from a step's materialized input. When
// absent, the step's name is used as the key.
type CacheKeyFunc func(in Input) string

// Options holds the recognized per-step options from the core
// specification. The zero value means "timeout disabled, no retries, no
// backoff, caching enabled".
type Options struct {
	Timeout       time.Duration  `validate:"omitempty,gt=0"`
	Retries       int            `validate:"omitempty,gte=0"`
	RetryDelay    time.Duration  `validate:"omitempty,gte=0"`
	RetryBackoff  Backoff        `validate:"omitempty,oneof=none linear exponential"`
	RetryIf       RetryPredicate `validate:"-"`
	If            Predicate      `validate:"-"`
	Unless        Predicate      `validate:"-"`
	Cache         *bool          `validate:"-"`
	CacheKey      CacheKeyFunc   `validate:"-"`
}

// Validate checks the recognized option values against the constraints
// spec.md §3 places on them.
func (o Options) Validate() error {
	return validate.Struct(o)
}

// CacheEnabled reports whether caching applies to this step; the option
// defaults to true (spec.md §3).
func (o Options) CacheEnabled() bool {
	return o.Cache == nil || *o.Cache
}

// Step is an immutable descriptor: a name, a normalized dependency list, a
// callable, and a filtered options set. Construct via NewStep; the zero
// value is not meant to be used directly.
type Step struct {
	name         string
	dependencies []string
	callable     Callable
	options      Options
}

// NewStep constructs a Step. deps is normalized: nil becomes an empty slice,
// order is preserved, and duplicates are preserved positionally exactly as
// spec.md §3 requires (the DAG, not the Step, is responsible for rejecting
// duplicate step names).
func NewStep(name string, deps []string, callable Callable, opts Options) Step {
	normalized := make([]string, len(deps))
	copy(normalized, deps)
	return Step{
		name:         name,
		dependencies: normalized,
		callable:     callable,
		options:      opts,
	}
}

// Name returns the step's symbolic identifier.
func (s Step) Name() string { return s.name }

// Dependencies returns a defensive copy of the step's dependency list; the
// caller cannot mutate the Step's internal state through the returned slice.
func (s Step) Dependencies() []string {
	out := make([]string, len(s.dependencies))
	copy(out, s.dependencies)
	return out
}

// Options returns the step's recognized options.
func (s Step) Options() Options { return s.options }

// Shape reports the input shape this step's dependency count implies.
func (s Step) Shape() Shape {
	switch len(s.dependencies) {
	case 0:
		return ShapeNone
	case 1:
		return ShapeOne
	default:
		return ShapeMany
	}
}

// Call invokes the step's callable. A Step with a nil callable is invalid
// and Call returns an error rather than panicking.
func (s Step) Call(ctx context.Context, in Input) (any, error) {
	if s.callable == nil {
		return nil, errNilCallable{name: s.name}
	}
	return s.callable(ctx, in)
}

type errNilCallable struct{ name string }

func (e errNilCallable) Error() string {
	return "step " + e.name + " has no callable"
}
