package pipeline

import (
	"context"
	"fmt"

	validator "github.com/go-playground/validator/v10"

	"github.com/flowmesh/flowmesh/cache"
	"github.com/flowmesh/flowmesh/dag"
	"github.com/flowmesh/flowmesh/engine"
	"github.com/flowmesh/flowmesh/flowlog"
	"github.com/flowmesh/flowmesh/result"
)

var validate = validator.New()

// ExecutorFactory builds a custom engine.Executor over d, given the
// Pipeline's logger and the run's max_threads value. Pipeline.Run accepts
// one via WithExecutorFactory as an alternative to the "sequential" /
// "parallel" tags (spec.md §4.8).
type ExecutorFactory func(d *dag.DAG, logger flowlog.Logger, maxThreads int) engine.Executor

// RunOptions is the validated, resolved configuration for a single Run call
// (spec.md §4.8's `initial_input`/`executor`/`max_threads`/`cache`/`force`
// parameter set), built from the RunOption functions passed to Run.
type RunOptions struct {
	InitialInput    any
	HasInitialInput bool
	Executor        string          `validate:"omitempty,oneof=sequential parallel"`
	Factory         ExecutorFactory `validate:"-"`
	MaxThreads      int             `validate:"omitempty,gte=0"`
	Cache           any             `validate:"-"`
	Force           bool
}

// Validate checks RunOptions the same way dag.Options is checked, via
// go-playground/validator struct tags.
func (o RunOptions) Validate() error {
	return validate.Struct(o)
}

// RunOption configures a single Run call.
type RunOption func(*RunOptions)

// WithInitialInput supplies the value passed to every zero-dependency step.
func WithInitialInput(v any) RunOption {
	return func(o *RunOptions) { o.InitialInput = v; o.HasInitialInput = true }
}

// WithExecutor selects a built-in executor by tag: "sequential" (the
// default) or "parallel".
func WithExecutor(name string) RunOption {
	return func(o *RunOptions) { o.Executor = name }
}

// WithExecutorFactory selects a user-provided executor implementation in
// place of the built-in tags.
func WithExecutorFactory(factory ExecutorFactory) RunOption {
	return func(o *RunOptions) { o.Factory = factory }
}

// WithMaxThreads bounds concurrency within a single level of the parallel
// executor; it has no effect on the sequential executor or on a custom
// factory that ignores it. 0 (the default) means unbounded.
func WithMaxThreads(n int) RunOption {
	return func(o *RunOptions) { o.MaxThreads = n }
}

// WithCache resolves the cache backend for this run. Accepts nil (the
// default; disables caching), a filesystem directory path (a FileStore is
// constructed rooted there), or a cache.Base instance used directly. Any
// other value is a configuration error returned from Run.
func WithCache(param any) RunOption {
	return func(o *RunOptions) { o.Cache = param }
}

// WithForce disables cache reads for this run while leaving writes enabled,
// so the run repopulates every entry it touches.
func WithForce(force bool) RunOption {
	return func(o *RunOptions) { o.Force = force }
}

// Run validates the resolved RunOptions, resolves the executor and cache
// backend, then drives the Pipeline's DAG to completion, per spec.md §4.8.
func (p *Pipeline) Run(ctx context.Context, opts ...RunOption) (*result.Result, error) {
	cfg := RunOptions{Executor: "sequential"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := resolveCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	exec, err := p.resolveExecutor(cfg)
	if err != nil {
		return nil, err
	}

	in := engine.RunInput{Value: cfg.InitialInput, Present: cfg.HasInitialInput}
	return exec.Execute(ctx, in, store, cfg.Force)
}

func (p *Pipeline) resolveExecutor(cfg RunOptions) (engine.Executor, error) {
	if cfg.Factory != nil {
		return cfg.Factory(p.dag, p.logger, cfg.MaxThreads), nil
	}
	switch cfg.Executor {
	case "", "sequential":
		return engine.NewSequential(p.dag, p.logger), nil
	case "parallel":
		return engine.NewParallel(p.dag, p.logger, cfg.MaxThreads), nil
	default:
		return nil, fmt.Errorf("pipeline: unknown executor %q", cfg.Executor)
	}
}

// resolveCache implements spec.md §4.7's three-way cache parameter switch:
// nil disables caching; a string path constructs a FileStore rooted there;
// a cache.Base is used directly. Anything else is a configuration error.
func resolveCache(param any) (cache.Base, error) {
	switch v := param.(type) {
	case nil:
		return nil, nil
	case string:
		return cache.NewFileStore(v)
	case cache.Base:
		return v, nil
	default:
		return nil, fmt.Errorf("pipeline: invalid cache option of type %T", param)
	}
}
