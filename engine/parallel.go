package engine

import (
	"context"
	"sync"
	"time"

	"github.com/flowmesh/flowmesh/cache"
	"github.com/flowmesh/flowmesh/dag"
	"github.com/flowmesh/flowmesh/flowlog"
	flowerrors "github.com/flowmesh/flowmesh/pkg/errors"
	"github.com/flowmesh/flowmesh/result"
)

// Parallel runs a DAG level by level, per spec.md §4.6: every step in a
// level starts concurrently, and the executor waits for the whole level to
// drain before deciding whether to advance. On a level containing a failed
// or timed-out step, in-flight siblings are still allowed to finish (no step
// is ever abandoned mid-call), no further level is started, and the partial
// Result plus a StepError naming the first offender are returned. This
// "drain-and-fail" policy is grounded on the teacher's per-level
// sync.WaitGroup/sync.Once barrier in internal/engine/executor.go, adapted
// here from Streamy's ContinueOnError toggle (which Streamy exposes as a
// config flag) into a fixed drain-then-stop policy.
type Parallel struct {
	dag        *dag.DAG
	runtime    *Runtime
	maxThreads int
}

// NewParallel constructs a Parallel executor over d. maxThreads bounds the
// number of steps running concurrently within a single level; 0 means
// unbounded (one goroutine per step in the level).
func NewParallel(d *dag.DAG, logger flowlog.Logger, maxThreads int) *Parallel {
	return &Parallel{dag: d, runtime: NewRuntime(logger), maxThreads: maxThreads}
}

// Execute implements Executor.
func (p *Parallel) Execute(ctx context.Context, in RunInput, store cache.Base, force bool) (*result.Result, error) {
	levels, err := p.dag.Levels()
	if err != nil {
		return nil, err
	}

	log := p.runtime.Logger()
	log.Info("run started", "executor", "parallel", "levels", len(levels), "max_threads", p.maxThreads)

	res := result.New()
	res.StartedAt = time.Now()
	outputs := make(map[string]any)

	var pool chan struct{}
	if p.maxThreads > 0 {
		pool = make(chan struct{}, p.maxThreads)
	}

	for levelIdx, level := range levels {
		if err := ctx.Err(); err != nil {
			res.FinishedAt = time.Now()
			res.Duration = res.FinishedAt.Sub(res.StartedAt)
			log.Info("run finished", "success", false, "duration", res.Duration)
			return res, err
		}

		log.Info("level started", "level", levelIdx, "steps", len(level))

		// Snapshot the outputs visible to this level; every step in a level
		// only depends on steps from strictly earlier levels, so no step
		// started this iteration writes to a key another step in the same
		// iteration reads.
		snapshot := make(map[string]any, len(outputs))
		for k, v := range outputs {
			snapshot[k] = v
		}

		levelResults := make([]result.StepResult, len(level))
		var wg sync.WaitGroup
		var once sync.Once
		var firstErr error

		for idx, step := range level {
			wg.Add(1)
			go func(idx int, step dag.Step) {
				defer wg.Done()
				if pool != nil {
					pool <- struct{}{}
					defer func() { <-pool }()
				}
				sr := p.runtime.RunStep(ctx, step, snapshot, in.Value, in.Present, store, force)
				levelResults[idx] = sr
				if sr.Status == result.StatusFailed || sr.Status == result.StatusTimedOut {
					once.Do(func() {
						firstErr = flowerrors.NewStepError(step.Name(), errFrom(sr), nil)
					})
				}
			}(idx, step)
		}
		wg.Wait()
		log.Info("level finished", "level", levelIdx)

		for _, sr := range levelResults {
			res.Add(sr)
			switch sr.Status {
			case result.StatusSuccess:
				outputs[sr.Name] = sr.Output
			case result.StatusSkipped:
				outputs[sr.Name] = nil
			}
		}

		if firstErr != nil {
			res.FinishedAt = time.Now()
			res.Duration = res.FinishedAt.Sub(res.StartedAt)
			if se, ok := firstErr.(*flowerrors.StepError); ok {
				se.Partial = res
			}
			log.Info("run finished", "success", false, "duration", res.Duration)
			return res, firstErr
		}
	}

	res.FinishedAt = time.Now()
	res.Duration = res.FinishedAt.Sub(res.StartedAt)
	log.Info("run finished", "success", true, "duration", res.Duration)
	return res, nil
}

var _ Executor = (*Parallel)(nil)
