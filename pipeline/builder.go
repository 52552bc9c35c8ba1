// Package pipeline implements the facade that binds a dag.DAG to an
// executor selection and a cache resolution, per spec.md §4.8/§6: Define
// builds and validates a Pipeline from a builder closure, and Run drives it
// through whichever engine.Executor the caller selects.
package pipeline

import (
	"github.com/flowmesh/flowmesh/dag"
)

// Builder is the explicit handle a Define closure uses to register steps.
// It replaces the source DSL's implicit-receiver "instance-eval" pattern
// (Design Notes §9) with an ordinary passed-in value.
type Builder struct {
	dag *dag.DAG
	err error
}

func newBuilder() *Builder {
	return &Builder{dag: dag.New()}
}

// Step registers a step with the DAG under construction. Errors (a
// duplicate name, or an invalid Options value) are deferred until Define
// returns, so a builder closure can call Step repeatedly without checking a
// return value each time.
func (b *Builder) Step(name string, deps []string, callable dag.Callable, opts dag.Options) *Builder {
	if b.err != nil {
		return b
	}
	if err := opts.Validate(); err != nil {
		b.err = err
		return b
	}
	if err := b.dag.Add(dag.NewStep(name, deps, callable, opts)); err != nil {
		b.err = err
	}
	return b
}
