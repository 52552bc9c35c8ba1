package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWritesComponentField(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Options{Writer: &buf, Component: "engine.sequential"})
	require.NoError(t, err)

	log.Info("step finished", "step", "fetch")

	out := buf.String()
	require.Contains(t, out, "step finished")
	require.Contains(t, out, "engine.sequential")
	require.Contains(t, out, "fetch")
}

func TestWithMergesFieldsAndLastValueWins(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Options{Writer: &buf, Level: "debug"})
	require.NoError(t, err)

	derived := log.With("run", "r1")
	derived.Debug("cache miss", "run", "r2")

	out := buf.String()
	require.Contains(t, out, "cache miss")
	require.Contains(t, out, "r2")
	require.False(t, strings.Contains(out, "r1=r2"))
}

func TestInvalidLevelReturnsError(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Level: "not-a-level"})
	require.Error(t, err)
}
