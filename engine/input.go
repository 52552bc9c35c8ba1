package engine

import "github.com/flowmesh/flowmesh/dag"

// buildInput marshals a step's materialized Input from the outputs recorded
// so far and the run's initial input, per spec.md §4.4: a zero-dependency
// step gets the initial input as its single positional argument when the
// caller supplied one, and no argument otherwise; a one-dependency step gets
// its dependency's output as a single positional argument; a step with more
// than one dependency gets a name-keyed map. A dependency whose step was
// skipped contributes nil, since the Sequential and Parallel executors both
// record a nil output for skipped steps.
func buildInput(step dag.Step, outputs map[string]any, initialInput any, hasInitialInput bool) dag.Input {
	deps := step.Dependencies()
	switch len(deps) {
	case 0:
		if hasInitialInput {
			return dag.Input{Shape: dag.ShapeOne, Value: initialInput}
		}
		return dag.Input{Shape: dag.ShapeNone}
	case 1:
		return dag.Input{Shape: dag.ShapeOne, Value: outputs[deps[0]]}
	default:
		values := make(map[string]any, len(deps))
		for _, d := range deps {
			values[d] = outputs[d]
		}
		return dag.Input{Shape: dag.ShapeMany, Values: values}
	}
}
