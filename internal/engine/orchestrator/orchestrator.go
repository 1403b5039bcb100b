// Package orchestrator executes build targets group by group.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/polybuild/internal/engine/registry"
	"go.trai.ch/polybuild/internal/engine/validate"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	skippedAfterFailure = "skipped: an earlier group failed"
	skippedCanceled     = "skipped: build canceled"
)

// Orchestrator runs targets through cache lookup, environment checks and
// execution. Create one per run.
type Orchestrator struct {
	registry *registry.Registry
	cache    ports.BuildCache
	runner   ports.CommandRunner
	resolver ports.InputResolver
	probe    ports.SystemProbe
	tracer   ports.Tracer
	logger   ports.Logger

	parallelism int
	timeout     time.Duration
	noCache     bool
	gate        *validate.Gate
	project     *domain.Project
	recorder    ports.BuildRecorder
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithParallelism bounds the number of targets running at once within a group.
func WithParallelism(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// WithTimeout bounds the execution of a single target.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithNoCache skips cache lookups. Successful results are still stored.
func WithNoCache(noCache bool) Option {
	return func(o *Orchestrator) {
		o.noCache = noCache
	}
}

// WithGate runs gate over project before anything is scheduled.
func WithGate(gate *validate.Gate, project *domain.Project) Option {
	return func(o *Orchestrator) {
		o.gate = gate
		o.project = project
	}
}

// WithRecorder reports every finished target to recorder.
func WithRecorder(recorder ports.BuildRecorder) Option {
	return func(o *Orchestrator) {
		o.recorder = recorder
	}
}

// New creates an Orchestrator. A nil cache disables caching.
func New(
	reg *registry.Registry,
	cache ports.BuildCache,
	runner ports.CommandRunner,
	resolver ports.InputResolver,
	probe ports.SystemProbe,
	tracer ports.Tracer,
	logger ports.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		registry:    reg,
		cache:       cache,
		runner:      runner,
		resolver:    resolver,
		probe:       probe,
		tracer:      tracer,
		logger:      logger,
		parallelism: domain.DefaultParallelism,
		timeout:     domain.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// outcome is what a worker hands to the aggregator.
type outcome struct {
	result  domain.BuildResult
	started time.Time
}

// BuildTargets builds the requested targets and their dependencies. Structural
// errors and blocking validation issues yield a report holding a single
// synthetic failed result. After a group with a failure, later groups are not
// started and their targets are reported as skipped.
func (o *Orchestrator) BuildTargets(ctx context.Context, graph *domain.Graph, requested []string) domain.Report {
	started := time.Now()

	groups, err := graph.ExecutionOrder(requested)
	if err != nil {
		o.logger.Error(err)
		return syntheticReport(domain.SyntheticResolutionTarget, errorText(err), started)
	}

	var warnings []domain.Issue
	if o.gate != nil && o.project != nil {
		issues := o.gate.Run(ctx, o.project)
		_, warnings = domain.SplitIssues(issues)
		if blocked := validate.BlockingError(issues); blocked != nil {
			o.logger.Error(blocked)
			report := syntheticReport(domain.SyntheticValidationTarget, blockedText(issues), started)
			report.Groups = groups
			report.Warnings = warnings
			return report
		}
	}

	o.tracer.EmitPlan(ctx, groups, requested)

	agg := newAggregator(o.recorder, o.parallelism)
	results := make(chan outcome)
	done := make(chan struct{})
	go func() {
		defer close(done)
		agg.run(ctx, results)
	}()

	o.runGroups(ctx, graph, groups, results)
	close(results)
	<-done

	report := domain.Report{
		Groups:   groups,
		Results:  agg.ordered(groups),
		Warnings: warnings,
	}
	report.Summary = summarize(graph, groups, report.Results, time.Since(started))
	return report
}

// runGroups executes groups in order. Once a group reports a failure, or
// ctx is done, every remaining target is sent as skipped.
func (o *Orchestrator) runGroups(ctx context.Context, graph *domain.Graph, groups [][]string, out chan<- outcome) {
	for i, group := range groups {
		if ctx.Err() != nil {
			skipRest(groups[i:], skippedCanceled, out)
			return
		}
		if !o.runGroup(ctx, i, graph, group, out) {
			skipRest(groups[i+1:], skippedAfterFailure, out)
			return
		}
	}
}

func skipRest(groups [][]string, reason string, out chan<- outcome) {
	now := time.Now()
	for _, group := range groups {
		for _, name := range group {
			out <- outcome{
				result:  domain.BuildResult{Target: name, Skipped: true, Error: reason},
				started: now,
			}
		}
	}
}

// runGroup builds one group and reports whether every member succeeded.
// Parallel members share a bounded pool; the others run one at a time
// once the pool has drained.
func (o *Orchestrator) runGroup(ctx context.Context, idx int, graph *domain.Graph, names []string, out chan<- outcome) bool {
	ctx, span := o.tracer.Start(ctx, fmt.Sprintf("group %d", idx+1), ports.WithSpanKind(ports.SpanKindGroup))
	defer span.End()

	var parallel, sequential []domain.BuildTarget
	for _, name := range names {
		t, _ := graph.Target(name)
		if t.Parallel {
			parallel = append(parallel, t)
		} else {
			sequential = append(sequential, t)
		}
	}

	var failed atomic.Bool
	build := func(t domain.BuildTarget) {
		started := time.Now()
		res := o.buildTarget(ctx, graph.Root(), &t)
		if !res.Success {
			failed.Store(true)
		}
		out <- outcome{result: res, started: started}
	}

	var g errgroup.Group
	g.SetLimit(o.parallelism)
	for _, t := range parallel {
		g.Go(func() error {
			build(t)
			return nil
		})
	}
	_ = g.Wait()

	for _, t := range sequential {
		build(t)
	}

	if failed.Load() {
		span.RecordError(zerr.With(zerr.New("group failed"), "group", idx+1))
		return false
	}
	return true
}

// buildTarget moves one target through cache lookup, environment
// validation, execution and finalization.
func (o *Orchestrator) buildTarget(ctx context.Context, root string, t *domain.BuildTarget) (res domain.BuildResult) {
	ctx, span := o.tracer.Start(ctx, t.Name, ports.WithSpanKind(ports.SpanKindTarget))
	defer span.End()

	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err := zerr.With(zerr.Wrap(domain.ErrPluginPanicked, fmt.Sprintf("%s: %v", domain.ErrPluginPanicked.Error(), r)), "target", t.Name)
			span.RecordError(err)
			res = failedResult(t.Name, errorText(err), time.Since(started))
		}
	}()

	key, cached := o.lookup(t, root)
	if key != "" {
		span.SetAttribute(ports.AttrCacheKey, key)
	}
	if cached != nil {
		span.SetAttribute(ports.AttrCached, true)
		return *cached
	}
	span.SetAttribute(ports.AttrCached, false)

	plugin, files, err := o.selectPlugin(t, root)
	if err != nil {
		span.RecordError(err)
		return failedResult(t.Name, errorText(err), time.Since(started))
	}
	if plugin != nil {
		span.SetAttribute(ports.AttrPlugin, plugin.Metadata().Name)
	}

	if err := o.checkEnvironment(ctx, t, plugin); err != nil {
		span.RecordError(err)
		return failedResult(t.Name, errorText(err), time.Since(started))
	}

	res = o.execute(ctx, root, t, plugin, files, span)
	res.Target = t.Name
	res.Duration = time.Since(started)

	if !res.Success {
		span.RecordError(zerr.With(zerr.Wrap(domain.ErrExecution, res.Error), "target", t.Name))
		return res
	}
	o.store(key, &res)
	return res
}

// lookup returns the cache key of t and, on a hit, the stored result.
// A key that cannot be computed is logged and treated as a miss.
func (o *Orchestrator) lookup(t *domain.BuildTarget, root string) (string, *domain.BuildResult) {
	if o.cache == nil {
		return "", nil
	}

	key := t.CacheKey
	if key == "" {
		k, err := o.cache.Key(t, root)
		if err != nil {
			o.logger.Error(zerr.With(zerr.Wrap(err, domain.ErrCache.Error()), "target", t.Name))
			return "", nil
		}
		key = k
	}

	if o.noCache || !o.cache.IsCached(key) {
		return key, nil
	}
	hit, ok := o.cache.Get(key)
	if !ok {
		return key, nil
	}
	res := *hit
	res.Target = t.Name
	res.CacheHit = true
	res.Success = true
	return key, &res
}

func (o *Orchestrator) store(key string, res *domain.BuildResult) {
	if o.cache == nil || key == "" {
		return
	}
	if err := o.cache.Store(key, res); err != nil {
		o.logger.Error(zerr.With(zerr.Wrap(err, domain.ErrCache.Error()), "target", res.Target))
	}
}

// selectPlugin picks the plugin named by the target or, for targets without
// commands, the best plugin for its input files. A nil plugin means the
// commands run directly.
func (o *Orchestrator) selectPlugin(t *domain.BuildTarget, root string) (ports.Plugin, []string, error) {
	var files []string
	if len(t.Inputs) > 0 && (t.Plugin != "" || len(t.Commands) == 0) {
		resolved, err := o.resolver.ResolveInputs(t.Inputs, root)
		if err != nil {
			return nil, nil, zerr.With(zerr.Wrap(err, domain.ErrEnvironment.Error()), "target", t.Name)
		}
		files = resolved
	}

	if t.Plugin != "" {
		p, ok := o.registry.Get(t.Plugin)
		if !ok {
			err := zerr.Wrap(domain.ErrPluginNotFound, fmt.Sprintf("%s: %s", domain.ErrPluginNotFound.Error(), t.Plugin))
			return nil, nil, zerr.With(err, "target", t.Name)
		}
		return p, files, nil
	}

	if len(t.Commands) > 0 || len(files) == 0 {
		return nil, files, nil
	}
	p, _ := o.registry.BestPluginForFiles(files)
	return p, files, nil
}

// checkEnvironment fails when the plugin, or the executables the commands
// start, are missing from the host.
func (o *Orchestrator) checkEnvironment(ctx context.Context, t *domain.BuildTarget, plugin ports.Plugin) error {
	var missing []string
	if plugin != nil {
		missing = plugin.ValidateEnvironment(ctx)
	} else {
		for _, tool := range commandTools(t.Commands) {
			if _, err := o.probe.LookPath(tool); err != nil {
				missing = append(missing, tool)
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}

	msg := fmt.Sprintf("%s: %s", domain.ErrMissingRequirements.Error(), strings.Join(missing, ", "))
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrMissingRequirements, msg), "target", t.Name), "missing", missing)
}

func (o *Orchestrator) execute(
	ctx context.Context,
	root string,
	t *domain.BuildTarget,
	plugin ports.Plugin,
	files []string,
	span ports.Span,
) domain.BuildResult {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if plugin != nil {
		return o.runPlugin(ctx, root, t, plugin, files)
	}
	return o.runCommands(ctx, root, t, span)
}

func (o *Orchestrator) runCommands(ctx context.Context, root string, t *domain.BuildTarget, span ports.Span) domain.BuildResult {
	for _, line := range t.Commands {
		_, err := o.runner.Run(ctx, domain.Command{Line: line, Dir: root}, span, span)
		if err == nil {
			continue
		}
		if errors.Is(err, domain.ErrCommandTimeout) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.BuildResult{Error: o.timeoutText()}
		}
		return domain.BuildResult{Error: errorText(err)}
	}
	return domain.BuildResult{
		Success: true,
		Metrics: map[string]float64{"commands": float64(len(t.Commands))},
	}
}

type pluginOutcome struct {
	res      domain.PluginResult
	panicked any
}

// runPlugin runs Build on its own goroutine so a plugin that ignores ctx
// still observes the timeout.
func (o *Orchestrator) runPlugin(
	ctx context.Context,
	root string,
	t *domain.BuildTarget,
	plugin ports.Plugin,
	files []string,
) domain.BuildResult {
	done := make(chan pluginOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- pluginOutcome{panicked: r}
			}
		}()
		done <- pluginOutcome{res: plugin.Build(ctx, files, domain.BuildOptions{
			Root:    root,
			Target:  t.Name,
			Options: t.Options,
		})}
	}()

	select {
	case out := <-done:
		if out.panicked != nil {
			return domain.BuildResult{Error: fmt.Sprintf("%s: %v", domain.ErrPluginPanicked.Error(), out.panicked)}
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.BuildResult{Error: o.timeoutText()}
		}
		return o.fromPlugin(t.Name, &out.res)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.BuildResult{Error: o.timeoutText()}
		}
		return domain.BuildResult{Error: ctx.Err().Error()}
	}
}

func (o *Orchestrator) fromPlugin(target string, pr *domain.PluginResult) domain.BuildResult {
	for _, w := range pr.Warnings {
		o.logger.Warn(fmt.Sprintf("[%s] %s", target, w))
	}

	res := domain.BuildResult{
		Success: pr.Success,
		Error:   pr.Error,
		Metrics: pr.Metrics,
	}
	for _, a := range pr.Artifacts {
		res.Artifacts = append(res.Artifacts, a.Path)
	}
	if !res.Success && res.Error == "" {
		res.Error = domain.ErrPluginBuildFailed.Error()
	}
	return res
}

func (o *Orchestrator) timeoutText() string {
	return fmt.Sprintf("timed out after %s", o.timeout)
}

func failedResult(target, msg string, d time.Duration) domain.BuildResult {
	return domain.BuildResult{Target: target, Error: msg, Duration: d}
}

func syntheticReport(target, msg string, started time.Time) domain.Report {
	res := failedResult(target, msg, time.Since(started))
	return domain.Report{
		Results: []domain.BuildResult{res},
		Summary: domain.RunSummary{TotalBuilds: 1, Failed: 1, ActualDuration: res.Duration},
	}
}

func blockedText(issues []domain.Issue) string {
	errs, _ := domain.SplitIssues(issues)
	lines := make([]string, 0, len(errs)+1)
	lines = append(lines, fmt.Sprintf("%s: %d error(s)", domain.ErrValidationBlocked.Error(), len(errs)))
	for _, is := range errs {
		lines = append(lines, is.String())
	}
	return strings.Join(lines, "\n")
}

// errorText returns the outermost message of a zerr chain, or err.Error().
func errorText(err error) string {
	var zErr *zerr.Error
	if errors.As(err, &zErr) && zErr.Message() != "" {
		return zErr.Message()
	}
	return err.Error()
}
