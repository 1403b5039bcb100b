// Package app implements the application layer for polybuild.
package app

import (
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"go.trai.ch/polybuild/internal/adapters/config" //nolint:depguard // settings are resolved in the app layer
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/polybuild/internal/engine/monitor"
	"go.trai.ch/polybuild/internal/engine/registry"
	"go.trai.ch/zerr"
)

// PluginSource supplies the plugin factories registered for every run.
type PluginSource interface {
	Factories(runner ports.CommandRunner) []registry.Factory
}

// App wires the engine to the adapters. Every operation loads the workspace
// and settings afresh, so a long-lived App always sees the current config.
type App struct {
	loader   ports.ConfigLoader
	logger   ports.Logger
	runner   ports.CommandRunner
	resolver ports.InputResolver
	probe    ports.SystemProbe
	tracer   ports.Tracer
	renderer ports.Renderer
	caches   ports.CacheOpener
	metrics  ports.MetricsOpener
	watchers ports.WatcherFactory
	plugins  PluginSource

	workDir  string
	debounce time.Duration
	now      func() time.Time
}

// Deps groups the collaborators of an App.
type Deps struct {
	Loader   ports.ConfigLoader
	Logger   ports.Logger
	Runner   ports.CommandRunner
	Resolver ports.InputResolver
	Probe    ports.SystemProbe
	Tracer   ports.Tracer
	Renderer ports.Renderer
	Caches   ports.CacheOpener
	Metrics  ports.MetricsOpener
	Watchers ports.WatcherFactory
	Plugins  PluginSource
}

// New creates an App working from the current directory.
func New(d Deps) *App {
	return &App{
		loader:   d.Loader,
		logger:   d.Logger,
		runner:   d.Runner,
		resolver: d.Resolver,
		probe:    d.Probe,
		tracer:   d.Tracer,
		renderer: d.Renderer,
		caches:   d.Caches,
		metrics:  d.Metrics,
		watchers: d.Watchers,
		plugins:  d.Plugins,
		workDir:  ".",
		now:      time.Now,
	}
}

// WithWorkDir sets the directory the config search starts from.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// WithDebounce sets the quiet period of watch mode.
func (a *App) WithDebounce(d time.Duration) *App {
	a.debounce = d
	return a
}

// WithClock replaces time.Now for reports and fix scripts.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// session is the state of one operation: the loaded workspace, its
// settings and the stores they point at.
type session struct {
	ws       *domain.Workspace
	settings domain.Settings
	registry *registry.Registry
	cache    ports.BuildCache
	store    ports.MetricsStore
}

// stateDirs are the directories polybuild writes during a run besides the
// cache. They are rewritten every run, so no cache key may cover them.
func (s *session) stateDirs() []string {
	return []string{s.settings.MetricsDir, filepath.Join(s.ws.Root, domain.StateDirName)}
}

func (s *session) close() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

// open loads the workspace and settings. Stores are opened on request with
// openCache and openMetrics.
func (a *App) open(flags *pflag.FlagSet) (*session, error) {
	ws, err := a.loader.Load(a.workDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	settings, err := config.LoadSettings(ws.Root, ws.ConfigPath, flags)
	if err != nil {
		return nil, err
	}

	return &session{ws: ws, settings: settings, registry: a.newRegistry()}, nil
}

func (a *App) newRegistry() *registry.Registry {
	reg := registry.New(a.logger)
	reg.Discover(a.plugins.Factories(a.runner)...)
	return reg
}

// openCache opens the build cache. Failure is a CacheError: it is logged
// and the run proceeds without a cache.
func (a *App) openCache(s *session) {
	cache, err := a.caches.Open(s.settings.CacheDir, s.stateDirs()...)
	if err != nil {
		a.logger.Error(err)
		return
	}
	s.cache = cache
}

// openMetrics opens the metrics store. Unless required, failure is logged
// and the run proceeds unrecorded.
func (a *App) openMetrics(s *session, required bool) error {
	store, err := a.metrics.Open(filepath.Join(s.settings.MetricsDir, domain.MetricsFileName))
	if err != nil {
		if required {
			return err
		}
		a.logger.Error(err)
		return nil
	}
	s.store = store
	return nil
}

func (a *App) monitor(s *session) *monitor.Monitor {
	opts := []monitor.Option{monitor.WithClock(a.now)}
	if s.cache != nil {
		opts = append(opts, monitor.WithCache(s.cache))
	}
	return monitor.New(s.store, a.probe, a.logger, s.ws.Root, opts...)
}
