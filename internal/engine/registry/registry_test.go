package registry_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/polybuild/internal/core/ports/mocks"
	"go.trai.ch/polybuild/internal/engine/registry"
	"go.uber.org/mock/gomock"
)

// stubPlugin is a minimal ports.Plugin for selection tests.
type stubPlugin struct {
	meta     domain.PluginMetadata
	patterns []domain.FilePattern
	missing  []string
}

func newStub(name string, caps []domain.Capability, patterns ...domain.FilePattern) *stubPlugin {
	return &stubPlugin{
		meta:     domain.PluginMetadata{Name: name, Version: "1.0.0", Capabilities: caps},
		patterns: patterns,
	}
}

func (s *stubPlugin) Metadata() domain.PluginMetadata { return s.meta }
func (s *stubPlugin) FilePatterns() []domain.FilePattern { return s.patterns }
func (s *stubPlugin) DetectFiles(context.Context, string) ([]string, error) {
	return nil, nil
}
func (s *stubPlugin) CalculateChecksum([]string) (string, error) { return "", nil }
func (s *stubPlugin) Dependencies([]string) ([]string, error) { return nil, nil }
func (s *stubPlugin) ValidateEnvironment(context.Context) []string { return s.missing }
func (s *stubPlugin) Build(context.Context, []string, domain.BuildOptions) domain.PluginResult {
	return domain.PluginResult{Success: true}
}
func (s *stubPlugin) Clean(context.Context, []string, domain.BuildOptions) domain.PluginResult {
	return domain.PluginResult{Success: true}
}
func (s *stubPlugin) EstimatedDuration([]string) time.Duration { return domain.DefaultPluginDuration }

func newRegistry(t *testing.T) (*registry.Registry, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	return registry.New(log), log
}

func names(plugins []ports.Plugin) []string {
	out := make([]string, len(plugins))
	for i, p := range plugins {
		out[i] = p.Metadata().Name
	}
	return out
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	r, _ := newRegistry(t)

	require.NoError(t, r.Register(newStub("go", nil)))
	err := r.Register(newStub("go", nil))
	require.ErrorIs(t, err, domain.ErrPluginAlreadyRegistered)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Discover(t *testing.T) {
	r, log := newRegistry(t)
	log.EXPECT().Error(gomock.Any()).Times(2)

	count := r.Discover(
		func() (ports.Plugin, error) { return newStub("go", nil), nil },
		func() (ports.Plugin, error) { return nil, errors.New("toolchain probe failed") },
		func() (ports.Plugin, error) { return newStub("python", nil), nil },
		func() (ports.Plugin, error) { return newStub("go", nil), nil },
	)

	assert.Equal(t, 2, count)
	assert.Equal(t, []string{"go", "python"}, []string{r.List()[0].Name, r.List()[1].Name})
}

func TestRegistry_PluginsForFile_PriorityThenRegistration(t *testing.T) {
	r, _ := newRegistry(t)
	require.NoError(t, r.Register(newStub("generic", nil, domain.FilePattern{Extension: ".ts"})))
	require.NoError(t, r.Register(newStub("vite", nil, domain.FilePattern{Extension: ".ts", Priority: 5})))
	require.NoError(t, r.Register(newStub("tsc", nil, domain.FilePattern{Extension: ".ts", Priority: 5})))

	got := r.PluginsForFile("/src/app/main.TS")
	assert.Equal(t, []string{"vite", "tsc", "generic"}, names(got))

	// Deterministic across calls.
	for range 5 {
		assert.Equal(t, names(got), names(r.PluginsForFile("/src/app/main.ts")))
	}
}

func TestRegistry_PluginsForFile_RequiredSiblings(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main"), 0o600))

	r, _ := newRegistry(t)
	require.NoError(t, r.Register(newStub("go", nil, domain.FilePattern{Extension: ".go", RequiredFiles: []string{"go.mod"}})))

	assert.Empty(t, r.PluginsForFile(file))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x"), 0o600))
	assert.Equal(t, []string{"go"}, names(r.PluginsForFile(file)))
}

func TestRegistry_PluginsWithCapability(t *testing.T) {
	r, _ := newRegistry(t)
	require.NoError(t, r.Register(newStub("a", []domain.Capability{domain.CapTesting})))
	require.NoError(t, r.Register(newStub("b", []domain.Capability{domain.CapLinting})))
	require.NoError(t, r.Register(newStub("c", []domain.Capability{domain.CapTesting, domain.CapLinting})))

	assert.Equal(t, []string{"a", "c"}, names(r.PluginsWithCapability(domain.CapTesting)))
	assert.Empty(t, r.PluginsWithCapability(domain.CapHotReload))
}

func TestRegistry_BestPluginForFiles(t *testing.T) {
	r, _ := newRegistry(t)
	require.NoError(t, r.Register(newStub("python", nil, domain.FilePattern{Extension: ".py"})))
	require.NoError(t, r.Register(newStub("web", nil, domain.FilePattern{Extension: ".ts"}, domain.FilePattern{Extension: ".js"})))

	best, ok := r.BestPluginForFiles([]string{"a.ts", "b.js", "c.py"})
	require.True(t, ok)
	assert.Equal(t, "web", best.Metadata().Name)

	_, ok = r.BestPluginForFiles([]string{"README.md"})
	assert.False(t, ok)
}

func TestRegistry_BestPluginForFiles_TieGoesToFirstRegistered(t *testing.T) {
	r, _ := newRegistry(t)
	require.NoError(t, r.Register(newStub("first", nil, domain.FilePattern{Extension: ".c"})))
	require.NoError(t, r.Register(newStub("second", nil, domain.FilePattern{Extension: ".c", Priority: 10})))

	for range 10 {
		best, ok := r.BestPluginForFiles([]string{"x.c", "y.c"})
		require.True(t, ok)
		assert.Equal(t, "first", best.Metadata().Name)
	}
}

func TestRegistry_ValidateAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, _ := newRegistry(t)

	ok := newStub("ok", nil)
	missing := newStub("kotlin", nil)
	missing.missing = []string{"gradle"}

	panicky := mocks.NewMockPlugin(ctrl)
	panicky.EXPECT().Metadata().Return(domain.PluginMetadata{Name: "broken"}).AnyTimes()
	panicky.EXPECT().FilePatterns().Return(nil).AnyTimes()
	panicky.EXPECT().ValidateEnvironment(gomock.Any()).DoAndReturn(func(context.Context) []string {
		panic("probe exploded")
	})

	require.NoError(t, r.Register(ok))
	require.NoError(t, r.Register(missing))
	require.NoError(t, r.Register(panicky))

	got := r.ValidateAll(t.Context())
	assert.Equal(t, map[string][]string{
		"kotlin": {"gradle"},
		"broken": {"validation failed: probe exploded"},
	}, got)
}

func TestRegistry_Info(t *testing.T) {
	r, _ := newRegistry(t)
	p := newStub("go", []domain.Capability{domain.CapTesting}, domain.FilePattern{Extension: ".go"})
	p.missing = []string{"go"}
	require.NoError(t, r.Register(p))

	info, err := r.Info(t.Context(), "go")
	require.NoError(t, err)
	assert.Equal(t, "go", info.Metadata.Name)
	assert.Len(t, info.Patterns, 1)
	assert.Equal(t, []string{"go"}, info.MissingRequirements)

	_, err = r.Info(t.Context(), "nope")
	require.ErrorIs(t, err, domain.ErrPluginNotFound)
}

func TestRegistry_Clear(t *testing.T) {
	r, _ := newRegistry(t)
	require.NoError(t, r.Register(newStub("go", nil, domain.FilePattern{Extension: ".go"})))

	r.Clear()

	assert.Zero(t, r.Len())
	assert.Empty(t, r.PluginsForFile("main.go"))
	_, ok := r.Get("go")
	assert.False(t, ok)
}
