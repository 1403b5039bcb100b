// Package domain contains the core domain models and business logic for the build target graph.
package domain

import (
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph holds the universe of build targets and their dependency edges.
type Graph struct {
	root    string
	targets map[string]BuildTarget
	edges   map[string]map[string]struct{}
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		targets: make(map[string]BuildTarget),
		edges:   make(map[string]map[string]struct{}),
	}
}

// SetRoot sets the project root the targets are resolved against.
func (g *Graph) SetRoot(root string) {
	g.root = root
}

// Root returns the project root.
func (g *Graph) Root() string {
	return g.root
}

// AddTarget inserts a target and records its dependency edges.
// References are not checked here; ExecutionOrder and Validate report them.
func (g *Graph) AddTarget(t *BuildTarget) {
	g.targets[t.Name] = t.clone()

	deps := make(map[string]struct{}, len(t.Dependencies))
	for _, d := range t.Dependencies {
		deps[d] = struct{}{}
	}
	g.edges[t.Name] = deps
}

// Target returns the target with the given name.
func (g *Graph) Target(name string) (BuildTarget, bool) {
	t, ok := g.targets[name]
	return t, ok
}

// Len returns the number of targets in the graph.
func (g *Graph) Len() int {
	return len(g.targets)
}

// Names returns every target name in lexical order.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.targets))
	for name := range g.targets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DependenciesOf returns the direct dependencies of a target in lexical order.
func (g *Graph) DependenciesOf(name string) []string {
	return sortedKeys(g.edges[name])
}

// Dependents returns the targets that directly depend on name, in lexical order.
func (g *Graph) Dependents(name string) []string {
	var out []string
	for target, deps := range g.edges {
		if _, ok := deps[name]; ok {
			out = append(out, target)
		}
	}
	slices.Sort(out)
	return out
}

// Validate checks the whole graph for unresolved references and cycles.
func (g *Graph) Validate() error {
	_, err := g.ExecutionOrder([]string{AllTargets})
	return err
}

// ExecutionOrder computes parallel groups for the requested targets and their
// transitive dependencies. Every dependency of a target in group i appears in
// some group j < i. Requesting "all" selects every target in the graph.
func (g *Graph) ExecutionOrder(requested []string) ([][]string, error) {
	if slices.Contains(requested, AllTargets) {
		requested = g.Names()
	}

	closure, err := g.closure(requested)
	if err != nil {
		return nil, err
	}

	return g.level(closure)
}

// closure collects the requested targets plus everything they depend on.
// All unknown names are reported together before any ordering happens.
func (g *Graph) closure(requested []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(requested))
	missing := make(map[string]struct{})

	queue := slices.Clone(requested)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if _, seen := set[name]; seen {
			continue
		}
		if _, ok := g.targets[name]; !ok {
			missing[name] = struct{}{}
			continue
		}
		set[name] = struct{}{}

		for dep := range g.edges[name] {
			if _, seen := set[dep]; !seen {
				queue = append(queue, dep)
			}
		}
	}

	if len(missing) > 0 {
		names := sortedKeys(missing)
		msg := fmt.Sprintf("%s: unknown targets %s", ErrStructural.Error(), strings.Join(names, ", "))
		return nil, zerr.With(zerr.Wrap(categorize(ErrTargetNotFound, ErrStructural), msg), "targets", names)
	}

	return set, nil
}

// level performs greedy leveling. A scan that adds nothing while targets
// remain means the remainder cannot make progress, which is a cycle.
func (g *Graph) level(pending map[string]struct{}) ([][]string, error) {
	resolved := make(map[string]struct{}, len(pending))
	remaining := sortedKeys(pending)

	var groups [][]string
	for len(remaining) > 0 {
		var group, rest []string
		for _, name := range remaining {
			if g.satisfied(name, resolved) {
				group = append(group, name)
			} else {
				rest = append(rest, name)
			}
		}

		if len(group) == 0 {
			return nil, g.cycleError(rest)
		}

		// Resolve only after the scan so a dependent never joins its dependency's group.
		for _, name := range group {
			resolved[name] = struct{}{}
		}
		groups = append(groups, group)
		remaining = rest
	}

	return groups, nil
}

func (g *Graph) satisfied(name string, resolved map[string]struct{}) bool {
	for dep := range g.edges[name] {
		if _, ok := resolved[dep]; !ok {
			return false
		}
	}
	return true
}

// cycleError names the stuck set and, where it can be traced, one concrete cycle path.
func (g *Graph) cycleError(stuck []string) error {
	msg := fmt.Sprintf("%s: targets %s cannot be ordered", ErrStructural.Error(), strings.Join(stuck, ", "))
	err := zerr.Wrap(categorize(ErrCycleDetected, ErrStructural), msg)

	if path := g.tracePath(stuck); len(path) > 0 {
		err = zerr.With(err, "cycle", strings.Join(path, " -> "))
	}
	return zerr.With(err, "targets", stuck)
}

// tracePath follows unresolved edges from the first stuck target until a
// node repeats. Every stuck target has at least one stuck dependency, so the
// walk always closes a loop.
func (g *Graph) tracePath(stuck []string) []string {
	inStuck := make(map[string]struct{}, len(stuck))
	for _, s := range stuck {
		inStuck[s] = struct{}{}
	}

	seenAt := make(map[string]int)
	var path []string
	current := stuck[0]
	for {
		if idx, seen := seenAt[current]; seen {
			return append(path[idx:], current)
		}
		seenAt[current] = len(path)
		path = append(path, current)

		next := ""
		for _, dep := range sortedKeys(g.edges[current]) {
			if _, ok := inStuck[dep]; ok {
				next = dep
				break
			}
		}
		if next == "" {
			return nil
		}
		current = next
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
