package validate

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/polybuild/internal/core/domain"
)

// DependencyValidatorName identifies service dependency issues.
const DependencyValidatorName = "dependency"

// DependencyValidator checks the service graph formed by depends_on and links.
type DependencyValidator struct {
	maxDepth int
}

// NewDependencyValidator creates a validator that warns about chains longer
// than maxDepth. A non-positive maxDepth selects the default.
func NewDependencyValidator(maxDepth int) *DependencyValidator {
	if maxDepth <= 0 {
		maxDepth = domain.DefaultMaxChainDepth
	}
	return &DependencyValidator{maxDepth: maxDepth}
}

// Name identifies the validator.
func (v *DependencyValidator) Name() string {
	return DependencyValidatorName
}

// serviceGraph maps a service to its dependencies in declaration order.
type serviceGraph struct {
	order []string
	deps  map[string][]string
}

func buildServiceGraph(project *domain.Project) serviceGraph {
	g := serviceGraph{deps: make(map[string][]string)}
	for _, svc := range project.Services {
		if _, ok := g.deps[svc.Name]; !ok {
			g.order = append(g.order, svc.Name)
			g.deps[svc.Name] = nil
		}
		for _, d := range svc.DependsOn {
			g.add(svc.Name, d)
		}
		for _, link := range svc.Links {
			name, _, _ := strings.Cut(link, ":")
			g.add(svc.Name, name)
		}
	}
	return g
}

func (g *serviceGraph) add(from, to string) {
	if to == "" || slices.Contains(g.deps[from], to) {
		return
	}
	g.deps[from] = append(g.deps[from], to)
}

// Validate reports cycles and missing services as errors and long chains as warnings.
func (v *DependencyValidator) Validate(_ context.Context, project *domain.Project) ([]domain.Issue, error) {
	g := buildServiceGraph(project)

	var issues []domain.Issue
	issues = append(issues, cycleIssues(g)...)
	issues = append(issues, missingIssues(g)...)
	issues = append(issues, v.chainIssues(g)...)
	return issues, nil
}

func cycleIssues(g serviceGraph) []domain.Issue {
	visited := make(map[string]struct{})
	seen := make(map[string]struct{})

	var issues []domain.Issue
	for _, svc := range g.order {
		if _, ok := visited[svc]; ok {
			continue
		}
		for _, cycle := range findCycles(g, svc, visited, make(map[string]int), nil) {
			key := canonicalCycle(cycle)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			issues = append(issues, domain.Issue{
				Validator: DependencyValidatorName,
				Kind:      domain.IssueCircular,
				Severity:  domain.SeverityError,
				Subject:   cycle[0],
				Parties:   slices.Clone(cycle[:len(cycle)-1]),
				Message:   "circular dependency: " + strings.Join(cycle, " -> "),
				Suggestions: []string{
					"remove one dependency from the cycle",
					"use health checks instead of depends_on",
				},
			})
		}
	}
	return issues
}

// findCycles walks from svc depth first. stack maps each service on the
// current path to its index in path; a dependency already on the stack
// closes a cycle.
func findCycles(g serviceGraph, svc string, visited map[string]struct{}, stack map[string]int, path []string) [][]string {
	visited[svc] = struct{}{}
	stack[svc] = len(path)
	path = append(path, svc)

	var cycles [][]string
	for _, dep := range g.deps[svc] {
		if idx, onStack := stack[dep]; onStack {
			cycle := append(slices.Clone(path[idx:]), dep)
			cycles = append(cycles, cycle)
			continue
		}
		if _, done := visited[dep]; done {
			continue
		}
		if _, declared := g.deps[dep]; !declared {
			continue
		}
		cycles = append(cycles, findCycles(g, dep, visited, stack, path)...)
	}

	delete(stack, svc)
	return cycles
}

// canonicalCycle rotates a closed cycle so it starts at its smallest member.
func canonicalCycle(cycle []string) string {
	members := cycle[:len(cycle)-1]
	start := 0
	for i, m := range members {
		if m < members[start] {
			start = i
		}
	}
	rotated := append(slices.Clone(members[start:]), members[:start]...)
	return strings.Join(rotated, "\x00")
}

func missingIssues(g serviceGraph) []domain.Issue {
	var issues []domain.Issue
	for _, svc := range g.order {
		for _, dep := range g.deps[svc] {
			if _, ok := g.deps[dep]; ok {
				continue
			}
			issues = append(issues, domain.Issue{
				Validator: DependencyValidatorName,
				Kind:      domain.IssueMissing,
				Severity:  domain.SeverityError,
				Subject:   svc,
				Parties:   []string{svc, dep},
				Message:   fmt.Sprintf("service %s depends on undeclared service %s", svc, dep),
				Suggestions: []string{
					fmt.Sprintf("declare service %s", dep),
					fmt.Sprintf("remove the dependency on %s from %s", dep, svc),
				},
			})
		}
	}
	return issues
}

func (v *DependencyValidator) chainIssues(g serviceGraph) []domain.Issue {
	var issues []domain.Issue
	for _, svc := range g.order {
		length := chainLength(g, svc, make(map[string]struct{}))
		if length <= v.maxDepth {
			continue
		}
		issues = append(issues, domain.Issue{
			Validator: DependencyValidatorName,
			Kind:      domain.IssueLongChain,
			Severity:  domain.SeverityWarning,
			Subject:   svc,
			Message:   fmt.Sprintf("service %s has a dependency chain of length %d (max %d)", svc, length, v.maxDepth),
			Suggestions: []string{
				"flatten the dependency hierarchy",
				"start independent services in parallel",
			},
		})
	}
	return issues
}

// chainLength counts the services on the longest path starting at svc.
// Services already on the path count as zero so cycles terminate.
func chainLength(g serviceGraph, svc string, onPath map[string]struct{}) int {
	if _, ok := onPath[svc]; ok {
		return 0
	}
	onPath[svc] = struct{}{}
	defer delete(onPath, svc)

	longest := 0
	for _, dep := range g.deps[svc] {
		longest = max(longest, chainLength(g, dep, onPath))
	}
	return longest + 1
}
