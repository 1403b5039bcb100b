package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/pflag"
	"go.trai.ch/polybuild/internal/adapters/telemetry" //nolint:depguard // plugin steps are not rendered
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/engine/orchestrator"
	"go.trai.ch/zerr"
)

// Steps names the optional plugin operations Step accepts.
var Steps = []string{"test", "lint", "package"}

var steps = map[string]orchestrator.Step{
	"test":    orchestrator.StepTest,
	"lint":    orchestrator.StepLint,
	"package": orchestrator.StepPackage,
}

// Step runs the named plugin operation over the files every capable plugin
// detects under the project root. Results are returned even when a step
// fails; the error is then ErrBuildFailed.
func (a *App) Step(ctx context.Context, name string, flags *pflag.FlagSet) ([]domain.BuildResult, error) {
	step, ok := steps[name]
	if !ok {
		return nil, zerr.With(zerr.New("unknown plugin step"), "step", name)
	}

	s, err := a.open(flags)
	if err != nil {
		return nil, err
	}
	defer s.close()

	results, err := a.orchestrator(s, telemetry.NewNoOpTracer()).RunStep(ctx, s.ws.Root, nil, step)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		a.logger.Info(fmt.Sprintf("no plugin with %s capability claims any file", step.Capability))
		return results, nil
	}

	var failed []string
	for i := range results {
		r := &results[i]
		switch r.State() {
		case domain.StateFailed:
			failed = append(failed, r.Target)
		case domain.StateSucceeded:
			a.logger.Info(fmt.Sprintf("%s done in %v", r.Target, r.Duration.Round(time.Millisecond)))
		}
	}
	if len(failed) > 0 {
		slices.Sort(failed)
		return results, errors.Join(domain.ErrBuildFailed, zerr.With(zerr.New(name+" failed"), "failed", failed))
	}
	return results, nil
}
