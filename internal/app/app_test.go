package app_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/polybuild/internal/adapters/cas"
	"go.trai.ch/polybuild/internal/adapters/fs"
	"go.trai.ch/polybuild/internal/adapters/metrics"
	"go.trai.ch/polybuild/internal/adapters/telemetry"
	"go.trai.ch/polybuild/internal/app"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/polybuild/internal/core/ports/mocks"
	"go.trai.ch/polybuild/internal/engine/registry"
	"go.uber.org/mock/gomock"
)

const gb = 1 << 30

type pluginSource []ports.Plugin

func (s pluginSource) Factories(ports.CommandRunner) []registry.Factory {
	out := make([]registry.Factory, len(s))
	for i, p := range s {
		out[i] = func() (ports.Plugin, error) { return p, nil }
	}
	return out
}

type fixture struct {
	root     string
	ws       *domain.Workspace
	loader   *mocks.MockConfigLoader
	logger   *mocks.MockLogger
	runner   *mocks.MockCommandRunner
	probe    *mocks.MockSystemProbe
	renderer *mocks.MockRenderer
	watchers *mocks.MockWatcherFactory
	plugins  pluginSource
}

func newFixture(t *testing.T, targets ...domain.BuildTarget) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	root := t.TempDir()
	configPath := filepath.Join(root, domain.ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("targets: {}\n"), 0o600))

	graph := domain.NewGraph()
	graph.SetRoot(root)
	for i := range targets {
		graph.AddTarget(&targets[i])
	}

	f := &fixture{
		root:     root,
		ws:       &domain.Workspace{Root: root, ConfigPath: configPath, Graph: graph, Project: domain.Project{Root: root}},
		loader:   mocks.NewMockConfigLoader(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		runner:   mocks.NewMockCommandRunner(ctrl),
		probe:    mocks.NewMockSystemProbe(ctrl),
		renderer: mocks.NewMockRenderer(ctrl),
		watchers: mocks.NewMockWatcherFactory(ctrl),
	}

	f.loader.EXPECT().Load(gomock.Any()).DoAndReturn(func(string) (*domain.Workspace, error) {
		return f.ws, nil
	}).AnyTimes()
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	f.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	f.logger.EXPECT().Error(gomock.Any()).AnyTimes()
	f.probe.EXPECT().LookPath(gomock.Any()).DoAndReturn(func(name string) (string, error) {
		return "/usr/bin/" + name, nil
	}).AnyTimes()
	f.probe.EXPECT().Memory(gomock.Any()).Return(domain.MemoryStats{TotalBytes: 16 * gb, AvailableBytes: 8 * gb, UsedBytes: 8 * gb}, nil).AnyTimes()
	f.probe.EXPECT().Disk(gomock.Any(), gomock.Any()).Return(domain.DiskStats{TotalBytes: 500 * gb, FreeBytes: 400 * gb}, nil).AnyTimes()
	f.probe.EXPECT().CPUCount(gomock.Any()).Return(8).AnyTimes()
	f.probe.EXPECT().LoadAverage(gomock.Any()).Return([]float64{0.1, 0.2, 0.3}, nil).AnyTimes()

	return f
}

func (f *fixture) app() *app.App {
	walker := fs.NewWalker()
	return app.New(app.Deps{
		Loader:   f.loader,
		Logger:   f.logger,
		Runner:   f.runner,
		Resolver: fs.NewResolver(walker),
		Probe:    f.probe,
		Tracer:   telemetry.NewNoOpTracer(),
		Renderer: f.renderer,
		Caches:   cas.NewOpener(cas.NewKeyer(walker), f.logger),
		Metrics:  metrics.Opener{},
		Watchers: f.watchers,
		Plugins:  f.plugins,
	}).WithWorkDir(f.root)
}

func (f *fixture) expectRender(times int) {
	f.renderer.EXPECT().Start(gomock.Any()).Return(nil).Times(times)
	f.renderer.EXPECT().Stop().Return(nil).Times(times)
	f.renderer.EXPECT().Wait().Return(nil).Times(times)
}

func succeed(_ context.Context, cmd domain.Command, stdout, _ io.Writer) (domain.CommandOutput, error) {
	_, _ = io.WriteString(stdout, cmd.Line+"\n")
	return domain.CommandOutput{Stdout: cmd.Line + "\n"}, nil
}

func TestRun_NoTargets(t *testing.T) {
	f := newFixture(t)
	_, err := f.app().Run(t.Context(), nil, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrNoTargetsSpecified)
}

func TestRun_BuildsThenHitsCache(t *testing.T) {
	f := newFixture(t,
		domain.BuildTarget{Name: "proto", Commands: []string{"buf generate"}, Parallel: true},
		domain.BuildTarget{Name: "api", Dependencies: []string{"proto"}, Commands: []string{"go build ./..."}, Parallel: true},
	)
	f.expectRender(2)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(succeed).Times(2)
	a := f.app()

	report, err := a.Run(t.Context(), []string{"api"}, app.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"proto"}, {"api"}}, report.Groups)
	assert.Equal(t, 2, report.Summary.CacheMisses)

	report, err = a.Run(t.Context(), []string{"api"}, app.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Summary.CacheHits)
	for _, r := range report.Results {
		assert.Equal(t, domain.StateCached, r.State())
	}

	perf, err := a.Report(t.Context(), time.Hour, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, perf.TotalBuilds)
	assert.InDelta(t, 50.0, perf.Cache.HitRate, 0.01)
	assert.Equal(t, 2, perf.Cache.TotalEntries)
}

func TestRun_FailureReported(t *testing.T) {
	f := newFixture(t,
		domain.BuildTarget{Name: "a", Commands: []string{"make a"}, Parallel: true},
		domain.BuildTarget{Name: "b", Dependencies: []string{"a"}, Commands: []string{"make b"}, Parallel: true},
	)
	f.expectRender(1)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.CommandOutput{ExitCode: 2}, domain.ErrCommandFailed)

	report, err := f.app().Run(t.Context(), []string{"b"}, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrBuildFailed)
	assert.False(t, report.Success())

	b, ok := report.Result("b")
	require.True(t, ok)
	assert.Equal(t, domain.StateSkipped, b.State())
}

func TestRun_QuietSkipsRenderer(t *testing.T) {
	f := newFixture(t, domain.BuildTarget{Name: "a", Commands: []string{"make"}, Parallel: true})
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(succeed)

	report, err := f.app().Run(t.Context(), []string{"a"}, app.RunOptions{Quiet: true})
	require.NoError(t, err)
	assert.True(t, report.Success())
}

func TestRun_ValidationBlocks(t *testing.T) {
	f := newFixture(t, domain.BuildTarget{Name: "a", Commands: []string{"make"}, Parallel: true})
	f.ws.Project.Services = []domain.Service{
		{Name: "api", Ports: []domain.PortDeclaration{{Spec: "8080:80"}}},
		{Name: "web", Ports: []domain.PortDeclaration{{Spec: "8080:3000"}}},
	}
	f.expectRender(1)

	report, err := f.app().Run(t.Context(), []string{"a"}, app.RunOptions{})
	require.Error(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.SyntheticValidationTarget, report.Results[0].Target)
}

func TestRun_SkipValidationFromEnv(t *testing.T) {
	t.Setenv("POLYBUILD_VALIDATION_SKIP", "true")
	f := newFixture(t, domain.BuildTarget{Name: "a", Commands: []string{"make"}, Parallel: true})
	f.ws.Project.Services = []domain.Service{
		{Name: "api", Ports: []domain.PortDeclaration{{Spec: "8080:80"}}},
		{Name: "web", Ports: []domain.PortDeclaration{{Spec: "8080:3000"}}},
	}
	f.expectRender(1)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(succeed)

	_, err := f.app().Run(t.Context(), []string{"a"}, app.RunOptions{})
	require.NoError(t, err)
}

func TestPlan(t *testing.T) {
	f := newFixture(t,
		domain.BuildTarget{Name: "a", Commands: []string{"make a"}, EstimatedDuration: 10 * time.Second},
		domain.BuildTarget{Name: "b", Commands: []string{"make b"}, Dependencies: []string{"a"}, EstimatedDuration: 20 * time.Second},
	)

	plan, err := f.app().Plan(t.Context(), nil, app.PlanOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"b"}}, plan.Groups)
	assert.Equal(t, 30*time.Second, plan.EstimatedDuration)
}

func TestValidate_WritesReportAndFixScript(t *testing.T) {
	f := newFixture(t)
	compose := filepath.Join(f.root, "docker-compose.yml")
	f.ws.Project.Services = []domain.Service{
		{Name: "api", Source: compose, Ports: []domain.PortDeclaration{{Spec: "8080:80", Source: compose, Line: 4}}},
		{Name: "web", Source: compose, Ports: []domain.PortDeclaration{{Spec: "8080:3000", Source: compose, Line: 8}}},
	}
	reportPath := filepath.Join(f.root, "out", "ports.txt")
	scriptPath := filepath.Join(f.root, "out", "fix.sh")

	a := f.app().WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) })
	issues, err := a.Validate(t.Context(), app.ValidateOptions{ReportPath: reportPath, FixScriptPath: scriptPath})
	require.ErrorIs(t, err, domain.ErrValidationBlocked)
	require.True(t, domain.HasErrors(issues))

	report, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "8080")

	script, err := os.ReadFile(scriptPath)
	require.NoError(t, err)
	assert.Contains(t, string(script), "sed")

	info, err := os.Stat(scriptPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(domain.ScriptPerm), info.Mode().Perm())
}

func TestValidate_Clean(t *testing.T) {
	f := newFixture(t)
	issues, err := f.app().Validate(t.Context(), app.ValidateOptions{})
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestPlugins(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	plugin := mocks.NewMockPlugin(ctrl)
	plugin.EXPECT().Metadata().Return(domain.PluginMetadata{Name: "go", Version: "1.0.0"}).AnyTimes()
	plugin.EXPECT().FilePatterns().Return([]domain.FilePattern{{Extension: ".go"}}).AnyTimes()
	plugin.EXPECT().ValidateEnvironment(gomock.Any()).Return([]string{"go"}).AnyTimes()
	f.plugins = pluginSource{plugin}
	a := f.app()

	infos, err := a.Plugins(t.Context(), "")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "go", infos[0].Metadata.Name)
	assert.Equal(t, []string{"go"}, infos[0].MissingRequirements)

	_, err = a.Plugins(t.Context(), "rust")
	require.ErrorIs(t, err, domain.ErrPluginNotFound)
}

func TestClean(t *testing.T) {
	f := newFixture(t, domain.BuildTarget{Name: "a", Commands: []string{"make"}, Parallel: true})
	f.expectRender(1)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(succeed)
	a := f.app()

	_, err := a.Run(t.Context(), []string{"a"}, app.RunOptions{})
	require.NoError(t, err)
	metricsPath := filepath.Join(f.root, domain.StateDirName, domain.MetricsFileName)
	require.FileExists(t, metricsPath)

	require.NoError(t, a.Clean(t.Context(), app.CleanOptions{Metrics: true}))
	assert.NoFileExists(t, metricsPath)

	cache, err := cas.NewOpener(cas.NewKeyer(fs.NewWalker()), f.logger).Open(filepath.Join(f.root, domain.CacheDirName))
	require.NoError(t, err)
	stats, err := cache.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)

	// Cleaning twice is fine.
	require.NoError(t, a.Clean(t.Context(), app.CleanOptions{Metrics: true}))
}

func TestRun_ProjectRootInputStaysCached(t *testing.T) {
	f := newFixture(t, domain.BuildTarget{Name: "app", Commands: []string{"true"}, Inputs: []string{"."}, Parallel: true})
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "main.go"), []byte("package main\n"), 0o600))
	f.expectRender(3)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(succeed).Times(1)
	a := f.app()

	for i, want := range []domain.TargetState{domain.StateSucceeded, domain.StateCached, domain.StateCached} {
		report, err := a.Run(t.Context(), []string{"app"}, app.RunOptions{})
		require.NoError(t, err)
		res, ok := report.Result("app")
		require.True(t, ok)
		assert.Equal(t, want, res.State(), "run %d", i+1)
	}
	require.FileExists(t, filepath.Join(f.root, domain.StateDirName, domain.MetricsFileName))
}

// goPlugin is a mock plugin claiming .go files that also runs tests.
type goPlugin struct {
	*mocks.MockPlugin
	tested []string
}

func (p *goPlugin) Test(_ context.Context, files []string, _ domain.BuildOptions) domain.PluginResult {
	p.tested = files
	return domain.PluginResult{Success: true, Duration: time.Second}
}

func newGoPlugin(t *testing.T, root string) *goPlugin {
	t.Helper()
	main := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(main, []byte("package main\n"), 0o600))

	p := mocks.NewMockPlugin(gomock.NewController(t))
	p.EXPECT().Metadata().Return(domain.PluginMetadata{
		Name:         "go",
		Capabilities: []domain.Capability{domain.CapParallelBuild, domain.CapTesting},
	}).AnyTimes()
	p.EXPECT().FilePatterns().Return([]domain.FilePattern{{Extension: ".go"}}).AnyTimes()
	p.EXPECT().DetectFiles(gomock.Any(), root).Return([]string{main}, nil).AnyTimes()
	p.EXPECT().EstimatedDuration(gomock.Any()).Return(time.Second).AnyTimes()
	p.EXPECT().ValidateEnvironment(gomock.Any()).Return(nil).AnyTimes()
	return &goPlugin{MockPlugin: p}
}

func TestRun_Detect(t *testing.T) {
	f := newFixture(t)
	p := newGoPlugin(t, f.root)
	p.EXPECT().Build(gomock.Any(), []string{filepath.Join(f.root, "main.go")}, gomock.Any()).
		Return(domain.PluginResult{Success: true})
	f.plugins = pluginSource{p}

	report, err := f.app().Run(t.Context(), nil, app.RunOptions{Detect: true, Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"go_build"}}, report.Groups)
	res, ok := report.Result("go_build")
	require.True(t, ok)
	assert.Equal(t, domain.StateSucceeded, res.State())
}

func TestRun_DetectFindsNothing(t *testing.T) {
	f := newFixture(t)
	_, err := f.app().Run(t.Context(), nil, app.RunOptions{Detect: true, Quiet: true})
	require.ErrorIs(t, err, domain.ErrNoTargetsSpecified)
}

func TestStep(t *testing.T) {
	f := newFixture(t)
	p := newGoPlugin(t, f.root)
	f.plugins = pluginSource{p}
	a := f.app()

	results, err := a.Step(t.Context(), "test", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "go_test", results[0].Target)
	assert.True(t, results[0].Success)
	assert.Equal(t, []string{filepath.Join(f.root, "main.go")}, p.tested)

	results, err = a.Step(t.Context(), "package", nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = a.Step(t.Context(), "deploy", nil)
	require.ErrorContains(t, err, "unknown plugin step")
}

func TestList(t *testing.T) {
	f := newFixture(t,
		domain.BuildTarget{Name: "web", Commands: []string{"npm run build"}},
		domain.BuildTarget{Name: "api", Commands: []string{"go build"}},
	)

	targets, err := f.app().List(t.Context(), nil)
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "api", targets[0].Name)
	assert.Equal(t, "web", targets[1].Name)
}

func TestStatus(t *testing.T) {
	f := newFixture(t,
		domain.BuildTarget{Name: "a", Commands: []string{"make a"}, Parallel: true},
		domain.BuildTarget{Name: "b", Commands: []string{"make b"}, Parallel: true},
	)
	f.expectRender(1)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(succeed)
	a := f.app()

	_, err := a.Run(t.Context(), []string{"a"}, app.RunOptions{})
	require.NoError(t, err)

	status, err := a.Status(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, f.root, status.Root)
	assert.Equal(t, 1, status.Cache.Entries)
	require.Len(t, status.Targets, 2)
	assert.True(t, status.Targets[0].Cached)
	assert.NotEmpty(t, status.Targets[0].Key)
	assert.False(t, status.Targets[1].Cached)
	require.Len(t, status.RecentBuilds, 1)
	assert.Equal(t, "a", status.RecentBuilds[0].Target)
	assert.Equal(t, 8, status.System.CPUCores)
}

func TestExplain(t *testing.T) {
	f := newFixture(t,
		domain.BuildTarget{Name: "proto", Commands: []string{"buf generate"}},
		domain.BuildTarget{Name: "api", Dependencies: []string{"proto"}, Commands: []string{"go build"}},
		domain.BuildTarget{Name: "e2e", Dependencies: []string{"api"}, Commands: []string{"go test"}},
	)
	a := f.app()

	ex, err := a.Explain(t.Context(), "api", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"go build"}, ex.Target.Commands)
	assert.Equal(t, []string{"proto"}, ex.Dependencies)
	assert.Equal(t, []string{"e2e"}, ex.Dependents)
	assert.Equal(t, [][]string{{"proto"}, {"api"}}, ex.Order)
	assert.NotEmpty(t, ex.Key)
	assert.False(t, ex.Cached)

	_, err = a.Explain(t.Context(), "missing", nil)
	require.ErrorIs(t, err, domain.ErrTargetNotFound)
	require.ErrorIs(t, err, domain.ErrStructural)
}
