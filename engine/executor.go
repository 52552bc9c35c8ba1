// Package engine implements the scheduler subsystem of the FlowMesh core:
// the shared per-step runtime (cache lookup, conditional evaluation,
// retry/timeout loop, input marshalling) and the two executor strategies,
// Sequential and Parallel, that drive a dag.DAG to completion.
package engine

import (
	"context"

	"github.com/flowmesh/flowmesh/cache"
	"github.com/flowmesh/flowmesh/result"
)

// RunInput is the caller-supplied initial input to a run. Present
// distinguishes "no initial input was given" from "the initial input is
// nil", since spec.md §4.4 only special-cases a zero-dependency step when
// the caller actually supplied one.
type RunInput struct {
	Value   any
	Present bool
}

// Executor is the strategy that drives a DAG to completion. The two built-in
// implementations are Sequential and Parallel; pipeline.Pipeline.Run accepts
// a user-provided Executor too (spec.md §6).
type Executor interface {
	Execute(ctx context.Context, in RunInput, store cache.Base, force bool) (*result.Result, error)
}
