package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"go.trai.ch/polybuild/internal/adapters/telemetry" //nolint:depguard // machine-readable runs silence the renderer
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/polybuild/internal/engine/orchestrator"
	"go.trai.ch/polybuild/internal/engine/validate"
	"go.trai.ch/zerr"
)

// RunOptions configures Run.
type RunOptions struct {
	// Flags carries command-line overrides of the settings.
	Flags *pflag.FlagSet
	// Quiet disables span rendering, for machine-readable output.
	Quiet bool
	// Detect builds one synthesized <plugin>_build target per plugin that
	// claims files under the project root instead of configured targets.
	Detect bool
}

// Run builds targets and their dependencies. The report is returned even
// when the build fails; the error is then ErrBuildFailed. With Detect, no
// targets means every synthesized target.
func (a *App) Run(ctx context.Context, targets []string, opts RunOptions) (domain.Report, error) {
	if len(targets) == 0 && !opts.Detect {
		return domain.Report{}, domain.ErrNoTargetsSpecified
	}

	s, err := a.open(opts.Flags)
	if err != nil {
		return domain.Report{}, err
	}
	defer s.close()

	graph := s.ws.Graph
	if opts.Detect {
		if graph, targets, err = a.detect(ctx, s, targets); err != nil {
			return domain.Report{}, err
		}
	}
	return a.build(ctx, s, graph, targets, opts.Quiet)
}

// detect synthesizes the plugin targets of the project root. Requested
// targets must be among them; none requested means all of them.
func (a *App) detect(ctx context.Context, s *session, requested []string) (*domain.Graph, []string, error) {
	plan, graph, err := a.orchestrator(s, telemetry.NewNoOpTracer()).PlanFromFiles(ctx, s.ws.Root, nil)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range plan.Warnings {
		a.logger.Warn(w)
	}
	if len(requested) > 0 {
		return graph, requested, nil
	}
	if graph.Len() == 0 {
		return nil, nil, zerr.With(zerr.Wrap(domain.ErrNoTargetsSpecified, "no plugin claims any file"), "root", s.ws.Root)
	}
	return graph, graph.Names(), nil
}

func (a *App) build(ctx context.Context, s *session, graph *domain.Graph, targets []string, quiet bool) (domain.Report, error) {
	a.openCache(s)
	_ = a.openMetrics(s, false)

	tracer := a.tracer
	if quiet {
		tracer = telemetry.NewNoOpTracer()
	} else {
		if err := a.renderer.Start(ctx); err != nil {
			return domain.Report{}, err
		}
		defer func() {
			_ = a.renderer.Stop()
			_ = a.renderer.Wait()
		}()
	}

	opts := []orchestrator.Option{
		orchestrator.WithParallelism(s.settings.Parallelism),
		orchestrator.WithTimeout(s.settings.Timeout),
		orchestrator.WithNoCache(s.settings.NoCache),
	}
	if !s.settings.SkipValidation {
		gate := validate.Default(a.logger, a.probe, s.settings.MaxChainDepth)
		opts = append(opts, orchestrator.WithGate(gate, &s.ws.Project))
	}
	if s.store != nil {
		mon := a.monitor(s)
		mon.Start(ctx)
		opts = append(opts, orchestrator.WithRecorder(mon))
	}

	orch := a.orchestrator(s, tracer, opts...)
	report := orch.BuildTargets(ctx, graph, targets)

	for _, w := range report.Warnings {
		a.logger.Warn(w.String())
	}
	if !report.Success() {
		failed := make([]string, 0, len(report.Results))
		for _, r := range report.Results {
			if r.State() == domain.StateFailed {
				failed = append(failed, r.Target)
			}
		}
		return report, errors.Join(domain.ErrBuildFailed, zerr.With(zerr.New("targets failed"), "failed", failed))
	}

	a.logger.Info(fmt.Sprintf("built %d target(s): %d cached, %d executed",
		report.Summary.TotalBuilds, report.Summary.CacheHits, report.Summary.CacheMisses))
	return report, nil
}

func (a *App) orchestrator(s *session, tracer ports.Tracer, opts ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(s.registry, s.cache, a.runner, a.resolver, a.probe, tracer, a.logger, opts...)
}

// PlanOptions configures Plan.
type PlanOptions struct {
	// Detect plans from files found by the plugins instead of configured targets.
	Detect bool
	Flags  *pflag.FlagSet
}

// Plan reports what Run would execute without running anything. No targets
// means all of them.
func (a *App) Plan(ctx context.Context, targets []string, opts PlanOptions) (*domain.Plan, error) {
	s, err := a.open(opts.Flags)
	if err != nil {
		return nil, err
	}
	defer s.close()

	orch := a.orchestrator(s, telemetry.NewNoOpTracer())
	if opts.Detect {
		plan, _, err := orch.PlanFromFiles(ctx, s.ws.Root, nil)
		return plan, err
	}

	if len(targets) == 0 {
		targets = []string{domain.AllTargets}
	}
	return orch.Plan(ctx, s.ws.Graph, targets)
}
