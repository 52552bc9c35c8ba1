// Package flowlog defines the logging seam the engine and pipeline packages
// depend on. FlowMesh treats logging as an external collaborator (per the
// core specification): it never imports a concrete logging library itself,
// only this interface. See internal/logging for the default adapter.
package flowlog

// Logger is the minimal structured logger FlowMesh components consume.
// kv is an alternating key/value list, following the convention used by
// most structured loggers in the Go ecosystem (zap's SugaredLogger,
// charmbracelet/log, etc).
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	With(kv ...any) Logger
}

// NoOp returns a Logger whose methods discard everything. It is the default
// used by engine.Sequential/engine.Parallel when no logger is supplied, so
// library consumers who never configure one pay nothing.
func NoOp() Logger { return noop{} }

type noop struct{}

func (noop) Debug(string, ...any) {}
func (noop) Info(string, ...any)  {}
func (noop) Warn(string, ...any)  {}
func (noop) Error(string, ...any) {}
func (noop) With(...any) Logger   { return noop{} }
