package dag

import (
	"fmt"
	"sort"
	"strings"

	flowerrors "github.com/flowmesh/flowmesh/pkg/errors"
)

// DAG is an insertion-ordered collection of Steps. Insertion order is
// preserved and observable; it is the tie-break rule for SortedSteps and for
// ordering within a level.
type DAG struct {
	order []string
	steps map[string]Step
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{steps: make(map[string]Step)}
}

// Add appends a Step to the DAG. Forward references (a dependency declared
// before the step it names is added) are legal; Add does not check
// dependency existence, only uniqueness of the new step's own name.
func (d *DAG) Add(step Step) error {
	if _, exists := d.steps[step.Name()]; exists {
		return flowerrors.NewDuplicateStepError(step.Name())
	}
	d.steps[step.Name()] = step
	d.order = append(d.order, step.Name())
	return nil
}

// Size returns the number of steps in the DAG.
func (d *DAG) Size() int { return len(d.order) }

// Empty reports whether the DAG has no steps.
func (d *DAG) Empty() bool { return len(d.order) == 0 }

// Step looks up a step by name.
func (d *DAG) Step(name string) (Step, bool) {
	s, ok := d.steps[name]
	return s, ok
}

// Names returns the step names in insertion order.
func (d *DAG) Names() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Validate performs, in order, the missing-dependency check and the cycle
// check (spec.md §4.2). It is idempotent: repeated calls on an unchanged DAG
// return nil and never mutate observable state.
func (d *DAG) Validate() error {
	for _, name := range d.order {
		step := d.steps[name]
		for _, dep := range step.Dependencies() {
			if _, ok := d.steps[dep]; !ok {
				return flowerrors.NewMissingDependencyError(name, dep)
			}
		}
	}

	if _, err := d.sortedSteps(); err != nil {
		return err
	}

	return nil
}

// sortedSteps runs Kahn's algorithm, breaking ties by insertion order among
// nodes that become ready at the same time. Returns a CycleError if not
// every node can be emitted.
func (d *DAG) sortedSteps() ([]string, error) {
	indegree := make(map[string]int, len(d.steps))
	dependents := make(map[string][]string, len(d.steps))
	for name, step := range d.steps {
		indegree[name] = len(step.Dependencies())
		for _, dep := range step.Dependencies() {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	ready := make([]string, 0)
	for _, name := range d.order {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]string, 0, len(d.order))
	insertionIndex := make(map[string]int, len(d.order))
	for i, name := range d.order {
		insertionIndex[name] = i
	}

	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool {
			return insertionIndex[ready[i]] < insertionIndex[ready[j]]
		})
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, dependent := range dependents[next] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(order) != len(d.steps) {
		for _, name := range d.order {
			if indegree[name] > 0 {
				// Follow unemitted dependencies until a node repeats; that
				// node lies on a cycle.
				visited := map[string]bool{}
				for !visited[name] {
					visited[name] = true
					for _, dep := range d.steps[name].Dependencies() {
						if indegree[dep] > 0 {
							name = dep
							break
						}
					}
				}
				return nil, flowerrors.NewCycleError(name)
			}
		}
		return nil, flowerrors.NewCycleError(d.order[0])
	}

	return order, nil
}

// SortedSteps returns a topological order consistent with insertion order
// among independent nodes (spec.md §4.2). Implicitly validates the DAG.
func (d *DAG) SortedSteps() ([]Step, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	order, err := d.sortedSteps()
	if err != nil {
		return nil, err
	}
	steps := make([]Step, len(order))
	for i, name := range order {
		steps[i] = d.steps[name]
	}
	return steps, nil
}

// Levels partitions steps into layers L0, L1, ... where Li contains every
// step all of whose dependencies lie in earlier layers, per spec.md §4.2's
// `level(s) = 1 + max(level(d) for d in deps)` rule. Within a level, steps
// are ordered by insertion order.
func (d *DAG) Levels() ([][]Step, error) {
	if _, err := d.sortedSteps(); err != nil {
		return nil, err
	}

	level := make(map[string]int, len(d.steps))
	var compute func(name string) int
	compute = func(name string) int {
		if lv, ok := level[name]; ok {
			return lv
		}
		step := d.steps[name]
		deps := step.Dependencies()
		if len(deps) == 0 {
			level[name] = 0
			return 0
		}
		max := -1
		for _, dep := range deps {
			if lv := compute(dep); lv > max {
				max = lv
			}
		}
		level[name] = max + 1
		return max + 1
	}

	maxLevel := 0
	for _, name := range d.order {
		if lv := compute(name); lv > maxLevel {
			maxLevel = lv
		}
	}

	levels := make([][]Step, maxLevel+1)
	for _, name := range d.order {
		lv := level[name]
		levels[lv] = append(levels[lv], d.steps[name])
	}

	return levels, nil
}

// ToMermaid renders the DAG as a one-way Mermaid flowchart: one
// "  <dep> --> <step>" edge line per (step, dependency) pair in insertion
// order, followed by bare "  <name>" lines for steps with no dependencies
// and no dependents (orphans). The format is byte-exact per spec.md §4.2/§6.
func (d *DAG) ToMermaid() string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	hasEdge := make(map[string]bool, len(d.steps))
	for _, name := range d.order {
		step := d.steps[name]
		for _, dep := range step.Dependencies() {
			b.WriteString("  ")
			b.WriteString(dep)
			b.WriteString(" --> ")
			b.WriteString(name)
			b.WriteString("\n")
			hasEdge[name] = true
			hasEdge[dep] = true
		}
	}

	for _, name := range d.order {
		if !hasEdge[name] {
			b.WriteString("  ")
			b.WriteString(name)
			b.WriteString("\n")
		}
	}

	return b.String()
}

// String returns a short human-readable summary, e.g. "3 steps, 2 levels".
// Supplements spec.md; distinct from ToMermaid, which stays the exact wire
// format external tooling may parse.
func (d *DAG) String() string {
	levels, err := d.Levels()
	if err != nil {
		return "invalid DAG: " + err.Error()
	}
	stepPlural := "s"
	if len(d.order) == 1 {
		stepPlural = ""
	}
	levelPlural := "s"
	if len(levels) == 1 {
		levelPlural = ""
	}
	return fmt.Sprintf("%d step%s, %d level%s", len(d.order), stepPlural, len(levels), levelPlural)
}
