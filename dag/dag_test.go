package dag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	flowerrors "github.com/flowmesh/flowmesh/pkg/errors"
)

func noop(ctx context.Context, in Input) (any, error) { return nil, nil }

func TestDAGAddRejectsDuplicateNames(t *testing.T) {
	t.Parallel()

	d := New()
	require.NoError(t, d.Add(NewStep("fetch", nil, noop, Options{})))

	err := d.Add(NewStep("fetch", nil, noop, Options{}))
	var dup *flowerrors.DuplicateStepError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "fetch", dup.Name)
}

func TestDAGAddAllowsForwardReferences(t *testing.T) {
	t.Parallel()

	d := New()
	require.NoError(t, d.Add(NewStep("transform", []string{"fetch"}, noop, Options{})))
	require.NoError(t, d.Add(NewStep("fetch", nil, noop, Options{})))

	require.NoError(t, d.Validate())
}

func TestDAGValidateDetectsMissingDependency(t *testing.T) {
	t.Parallel()

	d := New()
	require.NoError(t, d.Add(NewStep("process", []string{"missing1", "missing2", "missing3"}, noop, Options{})))

	err := d.Validate()
	var missing *flowerrors.MissingDependencyError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "process", missing.Step)
	require.Contains(t, []string{"missing1", "missing2", "missing3"}, missing.Missing)
}

func TestDAGValidateDetectsCycle(t *testing.T) {
	t.Parallel()

	d := New()
	require.NoError(t, d.Add(NewStep("a", []string{"b"}, noop, Options{})))
	require.NoError(t, d.Add(NewStep("b", []string{"a"}, noop, Options{})))

	err := d.Validate()
	var cycleErr *flowerrors.CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestDAGValidateIsIdempotent(t *testing.T) {
	t.Parallel()

	d := New()
	require.NoError(t, d.Add(NewStep("fetch", nil, noop, Options{})))
	require.NoError(t, d.Add(NewStep("transform", []string{"fetch"}, noop, Options{})))

	require.NoError(t, d.Validate())
	require.NoError(t, d.Validate())
	require.Equal(t, []string{"fetch", "transform"}, d.Names())
}

func TestDAGSortedStepsBreaksTiesByInsertionOrder(t *testing.T) {
	t.Parallel()

	d := New()
	require.NoError(t, d.Add(NewStep("b", nil, noop, Options{})))
	require.NoError(t, d.Add(NewStep("a", nil, noop, Options{})))
	require.NoError(t, d.Add(NewStep("c", []string{"a", "b"}, noop, Options{})))

	sorted, err := d.SortedSteps()
	require.NoError(t, err)

	var names []string
	for _, s := range sorted {
		names = append(names, s.Name())
	}
	require.Equal(t, []string{"b", "a", "c"}, names)
}

func TestDAGLevelsPartitionsDiamond(t *testing.T) {
	t.Parallel()

	d := New()
	require.NoError(t, d.Add(NewStep("source", nil, noop, Options{})))
	require.NoError(t, d.Add(NewStep("path_a", []string{"source"}, noop, Options{})))
	require.NoError(t, d.Add(NewStep("path_b", []string{"source"}, noop, Options{})))
	require.NoError(t, d.Add(NewStep("merge", []string{"path_a", "path_b"}, noop, Options{})))

	levels, err := d.Levels()
	require.NoError(t, err)
	require.Len(t, levels, 3)

	level0 := names(levels[0])
	level1 := names(levels[1])
	level2 := names(levels[2])

	require.Equal(t, []string{"source"}, level0)
	require.ElementsMatch(t, []string{"path_a", "path_b"}, level1)
	require.Equal(t, []string{"merge"}, level2)
}

func TestDAGLevelsUsesLongestPathNotFirstParent(t *testing.T) {
	t.Parallel()

	// c depends on both a (level 0) and b (level 1, since b depends on a).
	// c's level must be 2, the longest path, not 1.
	d := New()
	require.NoError(t, d.Add(NewStep("a", nil, noop, Options{})))
	require.NoError(t, d.Add(NewStep("b", []string{"a"}, noop, Options{})))
	require.NoError(t, d.Add(NewStep("c", []string{"a", "b"}, noop, Options{})))

	levels, err := d.Levels()
	require.NoError(t, err)
	require.Len(t, levels, 3)
	require.Equal(t, []string{"c"}, names(levels[2]))
}

func TestDAGToMermaidFormat(t *testing.T) {
	t.Parallel()

	d := New()
	require.NoError(t, d.Add(NewStep("fetch", nil, noop, Options{})))
	require.NoError(t, d.Add(NewStep("transform", []string{"fetch"}, noop, Options{})))
	require.NoError(t, d.Add(NewStep("standalone", nil, noop, Options{})))

	got := d.ToMermaid()
	require.Equal(t, "graph TD\n  fetch --> transform\n  standalone\n", got)
}

func TestDAGEmptyAndSize(t *testing.T) {
	t.Parallel()

	d := New()
	require.True(t, d.Empty())
	require.Equal(t, 0, d.Size())

	require.NoError(t, d.Add(NewStep("a", nil, noop, Options{})))
	require.False(t, d.Empty())
	require.Equal(t, 1, d.Size())
}

func names(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Name()
	}
	return out
}
