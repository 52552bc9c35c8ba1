// Package logging adapts github.com/charmbracelet/log to flowlog.Logger,
// the same way the teacher repo this engine grew out of adapted the same
// library to its own internal/ports.Logger seam.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	cblog "github.com/charmbracelet/log"

	"github.com/flowmesh/flowmesh/flowlog"
)

// Options configures the charmbracelet/log adapter.
type Options struct {
	Writer    io.Writer
	Level     string // debug, info, warn, error; defaults to info
	Component string
	JSON      bool
}

// Logger implements flowlog.Logger using charmbracelet/log.
type Logger struct {
	base   *cblog.Logger
	fields []any
}

// New creates a Logger adapter with the supplied options.
func New(opts Options) (*Logger, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}

	level := cblog.InfoLevel
	if opts.Level != "" {
		parsed, err := cblog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}

	logOpts := cblog.Options{
		Level:           level,
		ReportTimestamp: true,
	}
	if opts.JSON {
		logOpts.Formatter = cblog.JSONFormatter
	}

	base := cblog.NewWithOptions(writer, logOpts)

	var fields []any
	if opts.Component != "" {
		fields = append(fields, "component", opts.Component)
	}

	return &Logger{base: base, fields: fields}, nil
}

// Debug emits a debug log entry.
func (l *Logger) Debug(msg string, kv ...any) { l.log(cblog.DebugLevel, msg, kv...) }

// Info emits an info log entry.
func (l *Logger) Info(msg string, kv ...any) { l.log(cblog.InfoLevel, msg, kv...) }

// Warn emits a warning log entry.
func (l *Logger) Warn(msg string, kv ...any) { l.log(cblog.WarnLevel, msg, kv...) }

// Error emits an error log entry.
func (l *Logger) Error(msg string, kv ...any) { l.log(cblog.ErrorLevel, msg, kv...) }

// With derives a logger that always includes the supplied fields.
func (l *Logger) With(kv ...any) flowlog.Logger {
	if l == nil {
		return l
	}
	next := make([]any, 0, len(l.fields)+len(kv))
	next = append(next, l.fields...)
	next = append(next, kv...)
	return &Logger{base: l.base, fields: next}
}

func (l *Logger) log(level cblog.Level, msg string, kv ...any) {
	if l == nil || l.base == nil {
		return
	}
	payload := mergeFields(l.fields, kv)
	switch level {
	case cblog.DebugLevel:
		l.base.Debug(msg, payload...)
	case cblog.WarnLevel:
		l.base.Warn(msg, payload...)
	case cblog.ErrorLevel:
		l.base.Error(msg, payload...)
	default:
		l.base.Info(msg, payload...)
	}
}

// mergeFields keeps the last value for a repeated key while preserving
// first-seen key order, same approach as the teacher adapter's mergeFields.
func mergeFields(base, additions []any) []any {
	store := make(map[string]any)
	order := make([]string, 0, len(base)+len(additions))

	add := func(values []any) {
		for i := 0; i+1 < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok || key == "" {
				continue
			}
			if _, exists := store[key]; !exists {
				order = append(order, key)
			}
			store[key] = values[i+1]
		}
	}

	add(base)
	add(additions)

	result := make([]any, 0, len(order)*2)
	for _, key := range order {
		result = append(result, key, store[key])
	}
	return result
}

var _ flowlog.Logger = (*Logger)(nil)
