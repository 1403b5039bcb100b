package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"go.trai.ch/polybuild/internal/adapters/telemetry" //nolint:depguard // plugin cleaning is not rendered
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/engine/validate"
	"go.trai.ch/zerr"
)

// ValidateOptions configures Validate.
type ValidateOptions struct {
	// ReportPath receives the text report when set.
	ReportPath string
	// FixScriptPath receives a port conflict fix script when set.
	FixScriptPath string
	Flags         *pflag.FlagSet
}

// Validate runs every validator over the project. Issues are returned even
// when they block; the error is then ErrValidationBlocked.
func (a *App) Validate(ctx context.Context, opts ValidateOptions) ([]domain.Issue, error) {
	s, err := a.open(opts.Flags)
	if err != nil {
		return nil, err
	}
	defer s.close()

	gate := validate.Default(a.logger, a.probe, s.settings.MaxChainDepth)
	issues := gate.Run(ctx, &s.ws.Project)

	if opts.ReportPath != "" {
		if err := writeFile(opts.ReportPath, validate.Report(issues), domain.FilePerm); err != nil {
			return issues, err
		}
		a.logger.Info("wrote validation report to " + opts.ReportPath)
	}

	if opts.FixScriptPath != "" {
		script := a.portValidator(gate).FixScript(&s.ws.Project, issues, a.now())
		if err := writeFile(opts.FixScriptPath, script, domain.ScriptPerm); err != nil {
			return issues, err
		}
		a.logger.Info("wrote port fix script to " + opts.FixScriptPath)
	}

	return issues, validate.BlockingError(issues)
}

func (a *App) portValidator(g *validate.Gate) *validate.PortValidator {
	for _, v := range g.Validators() {
		if pv, ok := v.(*validate.PortValidator); ok {
			return pv
		}
	}
	return validate.NewPortValidator(a.logger)
}

func writeFile(path, content string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", path)
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", path)
	}
	return nil
}

// Plugins describes the registered plugins, or only the named one.
func (a *App) Plugins(ctx context.Context, name string) ([]domain.PluginInfo, error) {
	reg := a.newRegistry()

	if name != "" {
		info, err := reg.Info(ctx, name)
		if err != nil {
			return nil, err
		}
		return []domain.PluginInfo{info}, nil
	}

	missing := reg.ValidateAll(ctx)
	metas := reg.List()
	infos := make([]domain.PluginInfo, 0, len(metas))
	for i, p := range reg.Plugins() {
		md := metas[i]
		infos = append(infos, domain.PluginInfo{
			Metadata:            md,
			Patterns:            p.FilePatterns(),
			MissingRequirements: missing[md.Name],
		})
	}
	return infos, nil
}

// CleanOptions configures Clean.
type CleanOptions struct {
	// Metrics also deletes the recorded build metrics.
	Metrics bool
	// Plugins also runs every plugin's clean step over its files.
	Plugins bool
	Flags   *pflag.FlagSet
}

// Clean empties the build cache and, on request, the metrics and plugin outputs.
func (a *App) Clean(ctx context.Context, opts CleanOptions) error {
	s, err := a.open(opts.Flags)
	if err != nil {
		return err
	}
	defer s.close()

	var errs error

	cache, err := a.caches.Open(s.settings.CacheDir, s.stateDirs()...)
	if err != nil {
		errs = errors.Join(errs, err)
	} else if err := cache.Clear(); err != nil {
		errs = errors.Join(errs, err)
	} else {
		a.logger.Info("cleared build cache " + s.settings.CacheDir)
	}

	if opts.Metrics {
		path := filepath.Join(s.settings.MetricsDir, domain.MetricsFileName)
		switch err := os.Remove(path); {
		case err == nil:
			a.logger.Info("removed build metrics " + path)
		case !errors.Is(err, os.ErrNotExist):
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, "failed to remove metrics"), "path", path))
		}
	}

	if opts.Plugins {
		results, err := a.orchestrator(s, telemetry.NewNoOpTracer()).CleanAll(ctx, s.ws.Root, nil)
		if err != nil {
			errs = errors.Join(errs, err)
		}
		for _, r := range results {
			if r.Success {
				a.logger.Info(fmt.Sprintf("%s done in %v", r.Target, r.Duration.Round(time.Millisecond)))
			}
		}
	}

	return errs
}

// Report summarizes the metrics recorded within window before now.
func (a *App) Report(ctx context.Context, window time.Duration, flags *pflag.FlagSet) (domain.PerformanceReport, error) {
	s, err := a.open(flags)
	if err != nil {
		return domain.PerformanceReport{}, err
	}
	defer s.close()

	if err := a.openMetrics(s, true); err != nil {
		return domain.PerformanceReport{}, err
	}
	a.openCache(s)

	return a.monitor(s).Report(ctx, window)
}
