package engine

import (
	"context"
	"time"

	"github.com/flowmesh/flowmesh/cache"
	"github.com/flowmesh/flowmesh/dag"
	"github.com/flowmesh/flowmesh/flowlog"
	flowerrors "github.com/flowmesh/flowmesh/pkg/errors"
	"github.com/flowmesh/flowmesh/result"
)

// Sequential runs a DAG's steps one at a time in topological order, per
// spec.md §4.5. It stops at the first failed or timed-out step, returning
// the partial Result alongside a StepError naming the offending step.
type Sequential struct {
	dag     *dag.DAG
	runtime *Runtime
}

// NewSequential constructs a Sequential executor over d. A nil logger
// disables logging.
func NewSequential(d *dag.DAG, logger flowlog.Logger) *Sequential {
	return &Sequential{dag: d, runtime: NewRuntime(logger)}
}

// Execute implements Executor.
func (s *Sequential) Execute(ctx context.Context, in RunInput, store cache.Base, force bool) (*result.Result, error) {
	steps, err := s.dag.SortedSteps()
	if err != nil {
		return nil, err
	}

	log := s.runtime.Logger()
	log.Info("run started", "executor", "sequential", "steps", len(steps))

	res := result.New()
	res.StartedAt = time.Now()
	outputs := make(map[string]any, len(steps))

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			res.FinishedAt = time.Now()
			res.Duration = res.FinishedAt.Sub(res.StartedAt)
			log.Info("run finished", "success", false, "duration", res.Duration)
			return res, err
		}

		sr := s.runtime.RunStep(ctx, step, outputs, in.Value, in.Present, store, force)
		res.Add(sr)

		switch sr.Status {
		case result.StatusSuccess:
			outputs[step.Name()] = sr.Output
		case result.StatusSkipped:
			outputs[step.Name()] = nil
		case result.StatusFailed, result.StatusTimedOut:
			res.FinishedAt = time.Now()
			res.Duration = res.FinishedAt.Sub(res.StartedAt)
			log.Info("run finished", "success", false, "duration", res.Duration)
			return res, flowerrors.NewStepError(step.Name(), errFrom(sr), res)
		}
	}

	res.FinishedAt = time.Now()
	res.Duration = res.FinishedAt.Sub(res.StartedAt)
	log.Info("run finished", "success", true, "duration", res.Duration)
	return res, nil
}

var _ Executor = (*Sequential)(nil)
