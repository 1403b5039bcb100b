// Package plugins provides the built-in language plugins. Each one is a thin
// wrapper that shells out to an external toolchain.
package plugins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"go.trai.ch/polybuild/internal/adapters/fs"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
)

// CommandOption replaces the command list of the invoked operation.
const CommandOption = "command"

// Step is the command list of one plugin operation. Commands may reference
// options as ${name}; Defaults fills names the caller did not set.
type Step struct {
	Commands []string
	Defaults map[string]string
}

func (s *Step) empty() bool {
	return s == nil || len(s.Commands) == 0
}

// Recipe describes a toolchain plugin.
type Recipe struct {
	Metadata domain.PluginMetadata
	Patterns []domain.FilePattern
	// Manifests anchor the working directory and are reported as dependencies.
	Manifests []string
	// Tools must be on PATH for the plugin to work.
	Tools []string

	Build   Step
	Clean   Step
	Test    *Step
	Lint    *Step
	Package *Step

	// Artifacts are paths relative to the working directory.
	Artifacts    []string
	ArtifactKind string
	PerFile      time.Duration
}

var (
	_ ports.Plugin   = (*Toolchain)(nil)
	_ ports.Tester   = (*Toolchain)(nil)
	_ ports.Linter   = (*Toolchain)(nil)
	_ ports.Packager = (*Toolchain)(nil)
)

// Toolchain implements ports.Plugin from a Recipe.
type Toolchain struct {
	recipe Recipe
	runner ports.CommandRunner
	probe  ports.SystemProbe
	walker *fs.Walker
	hasher *fs.Hasher
}

// NewToolchain creates a plugin from recipe.
func NewToolchain(
	recipe Recipe,
	runner ports.CommandRunner,
	probe ports.SystemProbe,
	walker *fs.Walker,
	hasher *fs.Hasher,
) *Toolchain {
	return &Toolchain{recipe: recipe, runner: runner, probe: probe, walker: walker, hasher: hasher}
}

// Metadata describes the plugin.
func (t *Toolchain) Metadata() domain.PluginMetadata {
	m := t.recipe.Metadata
	m.Dependencies = slices.Clone(t.recipe.Tools)
	return m
}

// FilePatterns lists the matching rules.
func (t *Toolchain) FilePatterns() []domain.FilePattern {
	return slices.Clone(t.recipe.Patterns)
}

// DetectFiles walks root for files matching any rule.
func (t *Toolchain) DetectFiles(ctx context.Context, root string) ([]string, error) {
	var out []string
	for path := range t.walker.WalkFiles(root, nil) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if t.matches(path) {
			out = append(out, path)
		}
	}
	return out, nil
}

func (t *Toolchain) matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, p := range t.recipe.Patterns {
		if strings.ToLower(p.Extension) != ext {
			continue
		}
		if allExist(filepath.Dir(path), p.RequiredFiles) {
			return true
		}
	}
	return false
}

// CalculateChecksum combines the content hashes of files.
func (t *Toolchain) CalculateChecksum(files []string) (string, error) {
	return t.hasher.Checksum(files)
}

// Dependencies returns the manifest files found next to any of files.
func (t *Toolchain) Dependencies(files []string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, f := range files {
		dir := filepath.Dir(f)
		for _, m := range t.recipe.Manifests {
			candidate := filepath.Join(dir, m)
			if _, err := os.Stat(candidate); err == nil {
				seen[candidate] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out, nil
}

// ValidateEnvironment returns the tools missing from PATH.
func (t *Toolchain) ValidateEnvironment(_ context.Context) []string {
	var missing []string
	for _, tool := range t.recipe.Tools {
		if _, err := t.probe.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	return missing
}

// EstimatedDuration is the default plugin duration plus a per-file cost.
func (t *Toolchain) EstimatedDuration(files []string) time.Duration {
	return domain.DefaultPluginDuration + time.Duration(len(files))*t.recipe.PerFile
}

// Build builds files.
func (t *Toolchain) Build(ctx context.Context, files []string, opts domain.BuildOptions) domain.PluginResult {
	res := t.run(ctx, &t.recipe.Build, files, opts)
	if !res.Success {
		return res
	}

	dir := t.workDir(files, opts.Root)
	res.Artifacts = t.hasher.Artifacts(dir, t.recipe.ArtifactKind, t.recipe.Artifacts...)
	if t.recipe.Metadata.Has(domain.CapCacheOptimization) && len(files) > 0 {
		if sum, err := t.hasher.Checksum(files); err == nil {
			res.CacheKey = sum
		}
	}
	return res
}

// Clean removes what Build produced.
func (t *Toolchain) Clean(ctx context.Context, files []string, opts domain.BuildOptions) domain.PluginResult {
	return t.run(ctx, &t.recipe.Clean, files, opts)
}

// Test runs the toolchain's tests.
func (t *Toolchain) Test(ctx context.Context, files []string, opts domain.BuildOptions) domain.PluginResult {
	return t.optional(ctx, t.recipe.Test, "test", files, opts)
}

// Lint runs the toolchain's linter.
func (t *Toolchain) Lint(ctx context.Context, files []string, opts domain.BuildOptions) domain.PluginResult {
	return t.optional(ctx, t.recipe.Lint, "lint", files, opts)
}

// Package packages the build output.
func (t *Toolchain) Package(ctx context.Context, files []string, opts domain.BuildOptions) domain.PluginResult {
	return t.optional(ctx, t.recipe.Package, "package", files, opts)
}

func (t *Toolchain) optional(ctx context.Context, step *Step, op string, files []string, opts domain.BuildOptions) domain.PluginResult {
	if step.empty() {
		return domain.PluginResult{
			Unsupported: true,
			Error:       fmt.Sprintf("plugin %s does not support %s", t.recipe.Metadata.Name, op),
		}
	}
	return t.run(ctx, step, files, opts)
}

// run executes the step's commands in order, stopping at the first failure.
func (t *Toolchain) run(ctx context.Context, step *Step, files []string, opts domain.BuildOptions) domain.PluginResult {
	started := time.Now()
	dir := t.workDir(files, opts.Root)

	commands := step.Commands
	if override, ok := opts.Options[CommandOption]; ok && override != "" {
		commands = []string{override}
	}

	res := domain.PluginResult{Metrics: map[string]float64{"files": float64(len(files))}}
	for _, line := range commands {
		line = expand(line, opts.Options, step)
		if _, err := t.runner.Run(ctx, domain.Command{Line: line, Dir: dir}, nil, nil); err != nil {
			res.Duration = time.Since(started)
			res.Error = err.Error()
			return res
		}
	}

	res.Success = true
	res.Duration = time.Since(started)
	if len(commands) == 0 {
		res.Warnings = append(res.Warnings, "no commands configured")
	}
	return res
}

// workDir is the shallowest directory holding a manifest, or root.
func (t *Toolchain) workDir(files []string, root string) string {
	var best string
	for _, f := range files {
		dir := filepath.Dir(f)
		if !anyExist(dir, t.recipe.Manifests) {
			continue
		}
		if best == "" || len(dir) < len(best) || (len(dir) == len(best) && dir < best) {
			best = dir
		}
	}
	if best == "" {
		return root
	}
	return best
}

var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expand fills the ${name} placeholders of line from options, then from the
// step defaults. Placeholders the step's own commands use expand to empty
// when unset. Anything else, such as $HOME or ${PATH}, is left to the shell.
func expand(line string, options map[string]string, step *Step) string {
	declared := make(map[string]struct{})
	for _, cmd := range step.Commands {
		for _, m := range placeholder.FindAllStringSubmatch(cmd, -1) {
			declared[m[1]] = struct{}{}
		}
	}

	return placeholder.ReplaceAllStringFunc(line, func(match string) string {
		name := match[2 : len(match)-1]
		if v, ok := options[name]; ok {
			return v
		}
		if v, ok := step.Defaults[name]; ok {
			return v
		}
		if _, ok := declared[name]; ok {
			return ""
		}
		return match
	})
}

func allExist(dir string, names []string) bool {
	for _, n := range names {
		if _, err := os.Stat(filepath.Join(dir, n)); err != nil {
			return false
		}
	}
	return true
}

func anyExist(dir string, names []string) bool {
	for _, n := range names {
		if _, err := os.Stat(filepath.Join(dir, n)); err == nil {
			return true
		}
	}
	return false
}
