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

// Runtime is the per-step runtime shared by both executor strategies: cache
// lookup, conditional evaluation, and the retry/timeout loop, grounded on the
// teacher's executeStep plus the attempt-counter/backoff-sleep shape of
// other_examples' executeStepWithRetry. Sequential and Parallel each drive
// the DAG's topology; Runtime is the part that is identical either way.
type Runtime struct {
	logger flowlog.Logger
}

// NewRuntime constructs a Runtime. A nil logger is replaced with
// flowlog.NoOp().
func NewRuntime(logger flowlog.Logger) *Runtime {
	if logger == nil {
		logger = flowlog.NoOp()
	}
	return &Runtime{logger: logger}
}

// Logger returns the runtime's logger, for executors that need to log their
// own run/level boundaries alongside the per-step logging RunStep does.
func (rt *Runtime) Logger() flowlog.Logger { return rt.logger }

// RunStep executes a single step to completion: cache lookup, then
// conditional evaluation, then (if neither short-circuits) the retry/timeout
// loop. outputs holds the already-recorded outputs of this step's
// dependencies, keyed by step name, built by the caller from the
// Sequential/Parallel level/topological walk.
func (rt *Runtime) RunStep(ctx context.Context, step dag.Step, outputs map[string]any, initialInput any, hasInitialInput bool, store cache.Base, force bool) result.StepResult {
	started := time.Now()
	in := buildInput(step, outputs, initialInput, hasInitialInput)
	opts := step.Options()

	log := rt.logger.With("step", step.Name())
	log.Debug("step start")

	cacheEnabled := opts.CacheEnabled() && store != nil
	var key string
	if cacheEnabled {
		if opts.CacheKey != nil {
			key = opts.CacheKey(in)
		} else {
			key = step.Name()
		}
		// cache_key still evaluates under force (it is needed to compute the
		// write key below); force only disables the read.
		if !force {
			cached, _ := store.Read(key)
			if cached != nil {
				finished := started
				status := result.StatusSuccess
				if cached.Skipped {
					status = result.StatusSkipped
				}
				log.Debug("cache hit", "key", key)
				return result.StepResult{
					Name:       step.Name(),
					Status:     status,
					Output:     cached.Output,
					StartedAt:  started,
					FinishedAt: finished,
					Duration:   0,
				}
			}
			log.Debug("cache miss", "key", key)
		}
	}

	shouldRun := true
	if opts.If != nil {
		shouldRun = opts.If(in)
	}
	if shouldRun && opts.Unless != nil && opts.Unless(in) {
		shouldRun = false
	}
	if !shouldRun {
		finished := time.Now()
		log.Debug("step skipped")
		if cacheEnabled {
			// Skipped steps persist under the step name, not the computed
			// cache_key: there is no materialized input to key on when the
			// step never ran.
			_ = store.Write(step.Name(), cache.NewCachedResult(nil, string(result.StatusSkipped), true))
		}
		return result.Skipped(step.Name(), started, finished)
	}

	output, retries, err := rt.invokeWithRetry(ctx, log, step, in)
	finished := time.Now()
	duration := finished.Sub(started)

	if err != nil {
		if te, ok := asTimeoutError(err); ok {
			log.Warn("step timed out", "elapsed", te.Elapsed, "retries", retries)
			sr := result.TimedOut(step.Name(), duration, started, finished, retries)
			sr.Err = err
			return sr
		}
		log.Warn("step failed", "error", err, "retries", retries)
		return result.Failure(step.Name(), err, duration, started, finished, retries)
	}

	if cacheEnabled {
		_ = store.Write(key, cache.NewCachedResult(output, string(result.StatusSuccess), false))
	}
	log.Debug("step succeeded", "retries", retries)
	return result.Success(step.Name(), output, duration, started, finished, retries)
}

// invokeWithRetry runs step's callable under its configured timeout,
// retrying on failure up to opts.Retries times (subject to opts.RetryIf),
// sleeping the configured backoff schedule between attempts.
func (rt *Runtime) invokeWithRetry(ctx context.Context, log flowlog.Logger, step dag.Step, in dag.Input) (any, int, error) {
	opts := step.Options()
	attempts := 0
	for {
		output, err := callWithTimeout(ctx, step, in)
		if err == nil {
			return output, attempts, nil
		}

		if attempts >= opts.Retries || (opts.RetryIf != nil && !opts.RetryIf(err)) {
			return nil, attempts, err
		}

		attempts++
		delay := backoffDelay(opts.RetryDelay, opts.RetryBackoff, attempts)
		log.Debug("retrying step", "attempt", attempts, "delay", delay, "cause", err)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, attempts, ctx.Err()
		}
	}
}

// callWithTimeout invokes step's callable, enforcing opts.Timeout if set.
// Well-behaved callables should observe ctx.Done() themselves, but the
// result is also raced against the deadline so a non-cooperative callable
// still surfaces a TimeoutError (the callable's goroutine is abandoned and
// completes in the background, since Go has no safe way to preempt it).
func callWithTimeout(ctx context.Context, step dag.Step, in dag.Input) (any, error) {
	opts := step.Options()
	if opts.Timeout <= 0 {
		return step.Call(ctx, in)
	}

	callCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	type outcome struct {
		output any
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		output, err := step.Call(callCtx, in)
		done <- outcome{output, err}
	}()

	select {
	case o := <-done:
		return o.output, o.err
	case <-callCtx.Done():
		return nil, flowerrors.NewTimeoutError(step.Name(), opts.Timeout)
	}
}
