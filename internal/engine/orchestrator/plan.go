package orchestrator

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/polybuild/internal/engine/registry"
)

const unhandledPreview = 5

// Plan levels the requested targets without running anything.
func (o *Orchestrator) Plan(_ context.Context, graph *domain.Graph, requested []string) (*domain.Plan, error) {
	groups, err := graph.ExecutionOrder(requested)
	if err != nil {
		return nil, err
	}

	plan := &domain.Plan{Groups: groups, EstimatedDuration: estimate(graph, groups)}
	for _, group := range groups {
		for _, name := range group {
			t, _ := graph.Target(name)
			plan.Targets = append(plan.Targets, t)
			if t.Plugin == "" {
				continue
			}
			if _, ok := o.registry.Get(t.Plugin); !ok {
				plan.Warnings = append(plan.Warnings, fmt.Sprintf("target %s uses unknown plugin %s", t.Name, t.Plugin))
			}
		}
	}
	return plan, nil
}

// assignment is the files claimed by one plugin.
type assignment struct {
	plugin ports.Plugin
	files  []string
}

// assign groups files by their highest-priority plugin, in registration
// order. It also returns the files no plugin claims.
func (o *Orchestrator) assign(files []string) ([]assignment, []string) {
	byName := make(map[string]int)
	var out []assignment
	var unhandled []string

	for _, f := range files {
		candidates := o.registry.PluginsForFile(f)
		if len(candidates) == 0 {
			unhandled = append(unhandled, f)
			continue
		}
		name := candidates[0].Metadata().Name
		idx, ok := byName[name]
		if !ok {
			idx = len(out)
			byName[name] = idx
			out = append(out, assignment{plugin: candidates[0]})
		}
		out[idx].files = append(out[idx].files, f)
	}

	order := make(map[string]int)
	for i, p := range o.registry.Plugins() {
		order[p.Metadata().Name] = i
	}
	slices.SortStableFunc(out, func(a, b assignment) int {
		return order[a.plugin.Metadata().Name] - order[b.plugin.Metadata().Name]
	})
	return out, unhandled
}

// detect collects the files every plugin recognizes under root.
func (o *Orchestrator) detect(ctx context.Context, root string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, p := range o.registry.Plugins() {
		found, err := p.DetectFiles(ctx, root)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			seen[f] = struct{}{}
		}
	}
	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	slices.Sort(files)
	return files, nil
}

// PlanFromFiles synthesizes one <plugin>_build target per plugin that claims
// any of files. A nil files detects them under root. Plugins that build in
// parallel share the first group; every other plugin gets a group of its own.
// The returned graph holds the synthesized targets.
func (o *Orchestrator) PlanFromFiles(ctx context.Context, root string, files []string) (*domain.Plan, *domain.Graph, error) {
	if files == nil {
		detected, err := o.detect(ctx, root)
		if err != nil {
			return nil, nil, err
		}
		files = detected
	}

	assignments, unhandled := o.assign(files)

	graph := domain.NewGraph()
	graph.SetRoot(root)
	plan := &domain.Plan{}

	var parallel []string
	var sequential [][]string
	for _, a := range assignments {
		md := a.plugin.Metadata()
		t := domain.BuildTarget{
			Name:              md.Name + "_build",
			Description:       fmt.Sprintf("Build %d file(s) with %s", len(a.files), md.Name),
			Inputs:            a.files,
			Parallel:          md.Has(domain.CapParallelBuild),
			EstimatedDuration: a.plugin.EstimatedDuration(a.files),
			Plugin:            md.Name,
		}
		graph.AddTarget(&t)
		plan.Targets = append(plan.Targets, t)

		if t.Parallel {
			parallel = append(parallel, t.Name)
		} else {
			sequential = append(sequential, []string{t.Name})
		}
	}

	if len(parallel) > 0 {
		plan.Groups = append(plan.Groups, parallel)
	}
	plan.Groups = append(plan.Groups, sequential...)
	plan.EstimatedDuration = estimate(graph, plan.Groups)

	if len(unhandled) > 0 {
		plan.Warnings = append(plan.Warnings, unhandledWarning(unhandled))
	}
	return plan, graph, nil
}

func unhandledWarning(files []string) string {
	shown := files[:min(len(files), unhandledPreview)]
	msg := fmt.Sprintf("no plugin handles %d file(s): %s", len(files), strings.Join(shown, ", "))
	if extra := len(files) - len(shown); extra > 0 {
		msg += fmt.Sprintf(" and %d more", extra)
	}
	return msg
}

// Step is an optional plugin operation run over the files each plugin claims.
type Step struct {
	Name       string
	Capability domain.Capability
	run        func(context.Context, ports.Plugin, []string, domain.BuildOptions) domain.PluginResult
}

var (
	// StepTest runs the plugins' test suites.
	StepTest = Step{Name: "test", Capability: domain.CapTesting, run: registry.Test}
	// StepLint runs the plugins' linters.
	StepLint = Step{Name: "lint", Capability: domain.CapLinting, run: registry.Lint}
	// StepPackage packages the plugins' outputs.
	StepPackage = Step{Name: "package", Capability: domain.CapPackaging, run: registry.Package}
)

// RunStep runs step for every plugin declaring its capability over the files
// the plugin claims. A nil files detects them under root. Results are named
// <plugin>_<step>. A plugin that declares the capability without providing
// the operation yields a skipped result.
func (o *Orchestrator) RunStep(ctx context.Context, root string, files []string, step Step) ([]domain.BuildResult, error) {
	capable := make(map[string]struct{})
	for _, p := range o.registry.PluginsWithCapability(step.Capability) {
		capable[p.Metadata().Name] = struct{}{}
	}
	return o.runEach(ctx, root, files, step.Name, func(a assignment) bool {
		_, ok := capable[a.plugin.Metadata().Name]
		return ok
	}, step.run)
}

// CleanAll runs Clean for every plugin over the files it claims. A nil files
// detects them under root. Results are named <plugin>_clean.
func (o *Orchestrator) CleanAll(ctx context.Context, root string, files []string) ([]domain.BuildResult, error) {
	return o.runEach(ctx, root, files, "clean", func(assignment) bool { return true },
		func(ctx context.Context, p ports.Plugin, files []string, opts domain.BuildOptions) domain.PluginResult {
			return p.Clean(ctx, files, opts)
		})
}

func (o *Orchestrator) runEach(
	ctx context.Context,
	root string,
	files []string,
	op string,
	keep func(assignment) bool,
	run func(context.Context, ports.Plugin, []string, domain.BuildOptions) domain.PluginResult,
) ([]domain.BuildResult, error) {
	if files == nil {
		detected, err := o.detect(ctx, root)
		if err != nil {
			return nil, err
		}
		files = detected
	}

	assignments, _ := o.assign(files)
	results := make([]domain.BuildResult, 0, len(assignments))
	for _, a := range assignments {
		if !keep(a) {
			continue
		}
		plugin := a.plugin.Metadata().Name
		name := plugin + "_" + op
		pr := run(ctx, a.plugin, a.files, domain.BuildOptions{Root: root, Target: name})

		res := o.fromPlugin(name, &pr)
		res.Target = name
		res.Duration = pr.Duration
		switch {
		case pr.Unsupported:
			res.Skipped = true
			o.logger.Warn(fmt.Sprintf("%s skipped for %s: %s", op, plugin, res.Error))
		case !res.Success:
			o.logger.Warn(fmt.Sprintf("%s failed for %s: %s", op, plugin, res.Error))
		}
		results = append(results, res)
	}
	return results, nil
}
