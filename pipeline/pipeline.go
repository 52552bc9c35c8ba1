package pipeline

import (
	"github.com/flowmesh/flowmesh/dag"
	"github.com/flowmesh/flowmesh/flowlog"
)

// Pipeline binds a validated DAG to a default logger. Construct via Define.
type Pipeline struct {
	dag    *dag.DAG
	logger flowlog.Logger
}

// Option configures a Pipeline at Define time.
type Option func(*Pipeline)

// WithLogger attaches a logger every Run on this Pipeline will pass down to
// its executor. The default is flowlog.NoOp().
func WithLogger(logger flowlog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// Define runs build against a fresh Builder, then validates the resulting
// DAG (missing dependencies, cycles) before returning a Pipeline. Define
// itself never invokes a callable.
func Define(build func(b *Builder), opts ...Option) (*Pipeline, error) {
	b := newBuilder()
	build(b)
	if b.err != nil {
		return nil, b.err
	}
	if err := b.dag.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{dag: b.dag, logger: flowlog.NoOp()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Steps returns the registered step names in insertion order.
func (p *Pipeline) Steps() []string { return p.dag.Names() }

// Size returns the number of registered steps.
func (p *Pipeline) Size() int { return p.dag.Size() }

// Empty reports whether the Pipeline has no steps.
func (p *Pipeline) Empty() bool { return p.dag.Empty() }

// Step looks up a registered step by name.
func (p *Pipeline) Step(name string) (dag.Step, bool) { return p.dag.Step(name) }

// Validate re-checks the underlying DAG; idempotent, per spec.md §4.2.
func (p *Pipeline) Validate() error { return p.dag.Validate() }

// ToMermaid renders the underlying DAG as a Mermaid flowchart.
func (p *Pipeline) ToMermaid() string { return p.dag.ToMermaid() }

// String summarizes the pipeline, e.g. "3 steps, 2 levels".
func (p *Pipeline) String() string { return p.dag.String() }
