package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/polybuild/cmd/polybuild/commands"
	"go.trai.ch/polybuild/internal/app"
	"go.trai.ch/polybuild/internal/build"
	"go.trai.ch/polybuild/internal/core/domain"
)

type mockApp struct {
	runFunc      func(ctx context.Context, targets []string, opts app.RunOptions) (domain.Report, error)
	planFunc     func(ctx context.Context, targets []string, opts app.PlanOptions) (*domain.Plan, error)
	validateFunc func(ctx context.Context, opts app.ValidateOptions) ([]domain.Issue, error)
	pluginsFunc  func(ctx context.Context, name string) ([]domain.PluginInfo, error)
	cleanFunc    func(ctx context.Context, opts app.CleanOptions) error
	reportFunc   func(ctx context.Context, window time.Duration, flags *pflag.FlagSet) (domain.PerformanceReport, error)
	watchFunc    func(ctx context.Context, targets []string, opts app.WatchOptions) error
	stepFunc     func(ctx context.Context, name string, flags *pflag.FlagSet) ([]domain.BuildResult, error)
	listFunc     func(ctx context.Context, flags *pflag.FlagSet) ([]domain.BuildTarget, error)
	statusFunc   func(ctx context.Context, flags *pflag.FlagSet) (app.Status, error)
	explainFunc  func(ctx context.Context, name string, flags *pflag.FlagSet) (app.Explanation, error)
}

func (m *mockApp) Run(ctx context.Context, targets []string, opts app.RunOptions) (domain.Report, error) {
	if m.runFunc != nil {
		return m.runFunc(ctx, targets, opts)
	}
	return domain.Report{}, nil
}

func (m *mockApp) Plan(ctx context.Context, targets []string, opts app.PlanOptions) (*domain.Plan, error) {
	if m.planFunc != nil {
		return m.planFunc(ctx, targets, opts)
	}
	return &domain.Plan{}, nil
}

func (m *mockApp) Validate(ctx context.Context, opts app.ValidateOptions) ([]domain.Issue, error) {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockApp) Plugins(ctx context.Context, name string) ([]domain.PluginInfo, error) {
	if m.pluginsFunc != nil {
		return m.pluginsFunc(ctx, name)
	}
	return nil, nil
}

func (m *mockApp) Clean(ctx context.Context, opts app.CleanOptions) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Report(ctx context.Context, window time.Duration, flags *pflag.FlagSet) (domain.PerformanceReport, error) {
	if m.reportFunc != nil {
		return m.reportFunc(ctx, window, flags)
	}
	return domain.PerformanceReport{}, nil
}

func (m *mockApp) Watch(ctx context.Context, targets []string, opts app.WatchOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, targets, opts)
	}
	return nil
}

func (m *mockApp) Step(ctx context.Context, name string, flags *pflag.FlagSet) ([]domain.BuildResult, error) {
	if m.stepFunc != nil {
		return m.stepFunc(ctx, name, flags)
	}
	return nil, nil
}

func (m *mockApp) List(ctx context.Context, flags *pflag.FlagSet) ([]domain.BuildTarget, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, flags)
	}
	return nil, nil
}

func (m *mockApp) Status(ctx context.Context, flags *pflag.FlagSet) (app.Status, error) {
	if m.statusFunc != nil {
		return m.statusFunc(ctx, flags)
	}
	return app.Status{}, nil
}

func (m *mockApp) Explain(ctx context.Context, name string, flags *pflag.FlagSet) (app.Explanation, error) {
	if m.explainFunc != nil {
		return m.explainFunc(ctx, name, flags)
	}
	return app.Explanation{}, nil
}

func execute(t *testing.T, m *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(m)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var (
			captured app.RunOptions
			targets  []string
		)
		m := &mockApp{
			runFunc: func(_ context.Context, names []string, opts app.RunOptions) (domain.Report, error) {
				captured = opts
				targets = names
				return domain.Report{}, nil
			},
		}

		_, err := execute(t, m, "run", "api", "web", "--no-cache", "-j", "8", "--timeout", "30s")
		require.NoError(t, err)
		assert.Equal(t, []string{"api", "web"}, targets)
		assert.False(t, captured.Quiet)

		require.NotNil(t, captured.Flags)
		noCache, _ := captured.Flags.GetBool("no-cache")
		jobs, _ := captured.Flags.GetInt("jobs")
		timeout, _ := captured.Flags.GetDuration("timeout")
		assert.True(t, noCache)
		assert.Equal(t, 8, jobs)
		assert.Equal(t, 30*time.Second, timeout)
	})

	t.Run("flag defaults match settings defaults", func(t *testing.T) {
		var captured app.RunOptions
		m := &mockApp{
			runFunc: func(_ context.Context, _ []string, opts app.RunOptions) (domain.Report, error) {
				captured = opts
				return domain.Report{}, nil
			},
		}

		_, err := execute(t, m, "run", "all")
		require.NoError(t, err)
		jobs, _ := captured.Flags.GetInt("jobs")
		timeout, _ := captured.Flags.GetDuration("timeout")
		assert.Equal(t, domain.DefaultParallelism, jobs)
		assert.Equal(t, domain.DefaultTimeout, timeout)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		m := &mockApp{
			runFunc: func(context.Context, []string, app.RunOptions) (domain.Report, error) {
				return domain.Report{}, errors.New("simulated error")
			},
		}

		_, err := execute(t, m, "run", "target")
		require.ErrorContains(t, err, "simulated error")
	})

	t.Run("shows usage when no targets provided", func(t *testing.T) {
		m := &mockApp{
			runFunc: func(context.Context, []string, app.RunOptions) (domain.Report, error) {
				panic("should not be called")
			},
		}

		out, err := execute(t, m, "run")
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
	})

	t.Run("detect runs without targets", func(t *testing.T) {
		var captured app.RunOptions
		m := &mockApp{
			runFunc: func(_ context.Context, targets []string, opts app.RunOptions) (domain.Report, error) {
				captured = opts
				assert.Empty(t, targets)
				return domain.Report{}, nil
			},
		}

		_, err := execute(t, m, "run", "--detect")
		require.NoError(t, err)
		assert.True(t, captured.Detect)
	})

	t.Run("json prints the report of a failed build", func(t *testing.T) {
		m := &mockApp{
			runFunc: func(_ context.Context, _ []string, opts app.RunOptions) (domain.Report, error) {
				assert.True(t, opts.Quiet)
				return domain.Report{
					Groups:  [][]string{{"api"}},
					Results: []domain.BuildResult{{Target: "api", Error: "exit status 2"}},
					Summary: domain.RunSummary{TotalBuilds: 1, CacheMisses: 1, Failed: 1},
				}, domain.ErrBuildFailed
			},
		}

		out, err := execute(t, m, "run", "api", "--json")
		require.ErrorIs(t, err, domain.ErrBuildFailed)

		var decoded struct {
			Success bool `json:"success"`
			Results []struct {
				Target string `json:"target"`
				Error  string `json:"error"`
			} `json:"results"`
			Summary struct {
				Failed int `json:"failed"`
			} `json:"summary"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.False(t, decoded.Success)
		require.Len(t, decoded.Results, 1)
		assert.Equal(t, "api", decoded.Results[0].Target)
		assert.Equal(t, "exit status 2", decoded.Results[0].Error)
		assert.Equal(t, 1, decoded.Summary.Failed)
	})

	t.Run("json skips output on setup errors", func(t *testing.T) {
		m := &mockApp{
			runFunc: func(context.Context, []string, app.RunOptions) (domain.Report, error) {
				return domain.Report{}, domain.ErrConfigNotFound
			},
		}

		out, err := execute(t, m, "run", "api", "--json")
		require.ErrorIs(t, err, domain.ErrConfigNotFound)
		assert.Empty(t, out)
	})
}

func TestCommands_Plan(t *testing.T) {
	var captured app.PlanOptions
	m := &mockApp{
		planFunc: func(_ context.Context, targets []string, opts app.PlanOptions) (*domain.Plan, error) {
			captured = opts
			assert.Empty(t, targets)
			return &domain.Plan{
				Groups:            [][]string{{"proto"}, {"api", "web"}},
				Targets:           []domain.BuildTarget{{Name: "proto"}, {Name: "api"}, {Name: "web"}},
				EstimatedDuration: 90 * time.Second,
				Warnings:          []string{"web has no inputs"},
			}, nil
		},
	}

	out, err := execute(t, m, "plan", "--detect")
	require.NoError(t, err)
	assert.True(t, captured.Detect)
	assert.Contains(t, out, "3 target(s) in 2 group(s)")
	assert.Contains(t, out, "  1. proto\n")
	assert.Contains(t, out, "  2. api, web\n")
	assert.Contains(t, out, "Estimated duration: 1m30s")
	assert.Contains(t, out, "web has no inputs")
}

func TestCommands_Validate(t *testing.T) {
	t.Run("prints issues and returns the blocking error", func(t *testing.T) {
		var captured app.ValidateOptions
		m := &mockApp{
			validateFunc: func(_ context.Context, opts app.ValidateOptions) ([]domain.Issue, error) {
				captured = opts
				return []domain.Issue{{
					Validator: "port",
					Severity:  domain.SeverityError,
					Message:   "port 8080 is claimed by api, web",
				}}, domain.ErrValidationBlocked
			},
		}

		out, err := execute(t, m, "validate", "--report", "r.txt", "--fix-script", "fix.sh")
		require.ErrorIs(t, err, domain.ErrValidationBlocked)
		assert.Equal(t, "r.txt", captured.ReportPath)
		assert.Equal(t, "fix.sh", captured.FixScriptPath)
		assert.Contains(t, out, "1 error(s) and 0 warning(s)")
		assert.Contains(t, out, "[port] port 8080 is claimed by api, web")
	})

	t.Run("clean project", func(t *testing.T) {
		out, err := execute(t, &mockApp{}, "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "No issues found.")
	})
}

func TestCommands_Plugins(t *testing.T) {
	var name string
	m := &mockApp{
		pluginsFunc: func(_ context.Context, n string) ([]domain.PluginInfo, error) {
			name = n
			return []domain.PluginInfo{{
				Metadata: domain.PluginMetadata{
					Name:                "go",
					Version:             "1.0.0",
					Description:         "Go modules",
					SupportedExtensions: []string{".go"},
					Capabilities:        []domain.Capability{domain.CapIncrementalBuild, domain.CapTesting},
				},
				MissingRequirements: []string{"go"},
			}}, nil
		},
	}

	out, err := execute(t, m, "plugins", "go")
	require.NoError(t, err)
	assert.Equal(t, "go", name)
	assert.Contains(t, out, "Go modules")
	assert.Contains(t, out, "extensions: .go")
	assert.Contains(t, out, "capabilities: incremental_build, testing")
	assert.Contains(t, out, "missing: go")
}

func TestCommands_Clean(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want app.CleanOptions
	}{
		{"default", nil, app.CleanOptions{}},
		{"metrics", []string{"--metrics"}, app.CleanOptions{Metrics: true}},
		{"plugins", []string{"-p"}, app.CleanOptions{Plugins: true}},
		{"all", []string{"--all"}, app.CleanOptions{Metrics: true, Plugins: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got app.CleanOptions
			m := &mockApp{
				cleanFunc: func(_ context.Context, opts app.CleanOptions) error {
					got = opts
					return nil
				},
			}

			_, err := execute(t, m, append([]string{"clean"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Metrics, got.Metrics)
			assert.Equal(t, tt.want.Plugins, got.Plugins)
		})
	}
}

func TestCommands_Report(t *testing.T) {
	var window time.Duration
	m := &mockApp{
		reportFunc: func(_ context.Context, w time.Duration, _ *pflag.FlagSet) (domain.PerformanceReport, error) {
			window = w
			return domain.PerformanceReport{
				TotalBuilds:       4,
				SuccessfulBuilds:  3,
				FailedBuilds:      1,
				AverageBuildTime:  2.5,
				Cache:             domain.CacheMetrics{TotalEntries: 2, HitRate: 50},
				TargetPerformance: map[string]domain.TargetStats{"web": {Average: 3, Count: 2}, "api": {Average: 2, Count: 2}},
				Recommendations:   []string{"Build performance looks good"},
			}, nil
		},
	}

	out, err := execute(t, m, "report", "--hours", "12")
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, window)
	assert.Contains(t, out, "Builds: 4 total, 3 succeeded, 1 failed")
	assert.Contains(t, out, "50.0% hit rate")
	assert.Less(t, bytes.Index([]byte(out), []byte("api:")), bytes.Index([]byte(out), []byte("web:")))
	assert.Contains(t, out, "Build performance looks good")

	_, err = execute(t, m, "report", "--hours", "0")
	require.ErrorContains(t, err, domain.ErrSettingsInvalid.Error())
}

func TestCommands_Watch(t *testing.T) {
	m := &mockApp{
		watchFunc: func(_ context.Context, targets []string, opts app.WatchOptions) error {
			assert.Equal(t, []string{"api"}, targets)
			opts.OnReport(domain.Report{Summary: domain.RunSummary{TotalBuilds: 1, CacheHits: 1}}, nil)
			return nil
		},
	}

	out, err := execute(t, m, "watch", "api")
	require.NoError(t, err)
	assert.Contains(t, out, "1 target(s): 1 cached, 0 executed, 0 failed")

	_, err = execute(t, m, "watch")
	require.Error(t, err)
}

func TestCommands_Steps(t *testing.T) {
	for _, step := range []string{"test", "lint", "package"} {
		t.Run(step, func(t *testing.T) {
			var got string
			m := &mockApp{
				stepFunc: func(_ context.Context, name string, _ *pflag.FlagSet) ([]domain.BuildResult, error) {
					got = name
					return []domain.BuildResult{
						{Target: "go_" + name, Success: true, Duration: 1500 * time.Millisecond},
						{Target: "node_" + name, Error: "exit status 1"},
						{Target: "c_" + name, Skipped: true, Error: "plugin c does not support " + name},
					}, domain.ErrBuildFailed
				},
			}

			out, err := execute(t, m, step)
			require.ErrorIs(t, err, domain.ErrBuildFailed)
			assert.Equal(t, step, got)
			assert.Contains(t, out, "✓ go_"+step+" 1.5s")
			assert.Contains(t, out, "✗ node_"+step+" exit status 1")
			assert.Contains(t, out, "! c_"+step+" plugin c does not support "+step)
		})
	}
}

func TestCommands_List(t *testing.T) {
	m := &mockApp{
		listFunc: func(context.Context, *pflag.FlagSet) ([]domain.BuildTarget, error) {
			return []domain.BuildTarget{
				{Name: "api", Description: "Go API", Dependencies: []string{"proto"}, EstimatedDuration: 40 * time.Second},
				{Name: "proto"},
			}, nil
		},
	}

	out, err := execute(t, m, "list")
	require.NoError(t, err)
	assert.Equal(t, "api\nproto\n", out)

	out, err = execute(t, m, "list", "--detailed")
	require.NoError(t, err)
	assert.Contains(t, out, "Go API")
	assert.Contains(t, out, "depends on: proto")
	assert.Contains(t, out, "estimated: 40s")
	assert.Contains(t, out, "estimated: "+domain.DefaultEstimatedDuration.String())
}

func TestCommands_Status(t *testing.T) {
	status := app.Status{
		Root:     "/project",
		CacheDir: "/project/.build-cache",
		Cache:    domain.CacheStats{Entries: 1, TotalBytes: 1 << 20},
		Targets: []app.TargetStatus{
			{Name: "api", Key: "0123456789abcdef0123", Cached: true},
			{Name: "web"},
		},
		RecentBuilds: []domain.BuildMetrics{{Target: "api", Success: true, DurationSeconds: 2}},
		System:       domain.SystemMetrics{CPUCores: 8},
	}
	m := &mockApp{
		statusFunc: func(context.Context, *pflag.FlagSet) (app.Status, error) { return status, nil },
	}

	out, err := execute(t, m, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "1 entries, 1.00MB")
	assert.Contains(t, out, "✓ api cached 0123456789ab\n")
	assert.Contains(t, out, "✗ web not cached")
	assert.Contains(t, out, "api 2.00s")
	assert.Contains(t, out, "8 cores")

	out, err = execute(t, m, "status", "--json")
	require.NoError(t, err)
	var decoded struct {
		Targets []struct {
			Name   string `json:"name"`
			Cached bool   `json:"cached"`
		} `json:"targets"`
		System struct {
			CPUCores int `json:"cpu_cores"`
		} `json:"system"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Targets, 2)
	assert.True(t, decoded.Targets[0].Cached)
	assert.Equal(t, 8, decoded.System.CPUCores)
}

func TestCommands_Explain(t *testing.T) {
	var name string
	m := &mockApp{
		explainFunc: func(_ context.Context, n string, _ *pflag.FlagSet) (app.Explanation, error) {
			name = n
			return app.Explanation{
				Target: domain.BuildTarget{
					Name: "api", Description: "Go API", Commands: []string{"go build ./..."}, Parallel: true,
				},
				Dependencies: []string{"proto"},
				Dependents:   []string{"e2e"},
				Order:        [][]string{{"proto"}, {"api"}},
				Key:          "abc",
				Cached:       true,
			}, nil
		},
	}

	out, err := execute(t, m, "explain", "api")
	require.NoError(t, err)
	assert.Equal(t, "api", name)
	assert.Contains(t, out, "Parallel safe: true")
	assert.Contains(t, out, "Dependencies: proto")
	assert.Contains(t, out, "Dependents: e2e")
	assert.Contains(t, out, "→ go build ./...")
	assert.Contains(t, out, "cached as abc")
	assert.NotContains(t, out, "Execution order")

	out, err = execute(t, m, "explain", "api", "--dependencies")
	require.NoError(t, err)
	assert.Contains(t, out, "  1. proto\n  2. api\n")

	_, err = execute(t, m, "explain")
	require.Error(t, err)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
}
