// Package config provides the configuration loader for polybuild.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

var validTargetNameRegex = regexp.MustCompile(`^[A-Za-z0-9_:.-]+$`)

// Loader implements ports.ConfigLoader using polybuild.yaml and the compose
// files it names.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds polybuild.yaml at or above cwd and loads the workspace it describes.
func (l *Loader) Load(cwd string) (*domain.Workspace, error) {
	configPath, err := FindConfig(cwd)
	if err != nil {
		return nil, err
	}
	return l.LoadFile(configPath)
}

// FindConfig walks up from cwd to the first directory holding polybuild.yaml.
func FindConfig(cwd string) (string, error) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
		}
		currentDir = parentDir
	}
}

// LoadFile loads the workspace described by the file at configPath.
func (l *Loader) LoadFile(configPath string) (*domain.Workspace, error) {
	var buildfile Buildfile
	if err := readAndUnmarshalYAML(configPath, &buildfile); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	root := resolveRoot(configPath, buildfile.Root)
	graph := domain.NewGraph()
	graph.SetRoot(root)

	names := make([]string, 0, len(buildfile.Targets))
	for name := range buildfile.Targets {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		dto := buildfile.Targets[name]
		if dto == nil || dto.Type != "" || dto.Image != "" {
			continue
		}
		target, err := buildTarget(name, dto, root)
		if err != nil {
			return nil, zerr.With(err, "path", configPath)
		}
		graph.AddTarget(target)
	}

	services, err := l.loadServices(root, configPath, &buildfile)
	if err != nil {
		return nil, err
	}

	return &domain.Workspace{
		Root:       root,
		ConfigPath: configPath,
		Graph:      graph,
		Project: domain.Project{
			Root:     root,
			Services: services,
			Tools:    buildfile.Tools,
		},
	}, nil
}

func buildTarget(name string, dto *TargetDTO, root string) (*domain.BuildTarget, error) {
	if err := validateTargetName(name); err != nil {
		return nil, err
	}

	deps := slices.Clone(dto.Dependencies)
	var commands []string
	for i, step := range dto.Steps {
		switch {
		case step.Command != "" && step.Target == "":
			commands = append(commands, step.Command)
		case step.Target != "" && step.Command == "":
			if !slices.Contains(deps, step.Target) {
				deps = append(deps, step.Target)
			}
		default:
			err := zerr.With(domain.ErrInvalidStep, "target", name)
			return nil, zerr.With(err, "step", i+1)
		}
	}

	inputs := dto.Inputs
	if len(inputs) == 0 {
		inputs = detectInputs(name, root)
	}

	parallel := true
	if dto.Parallel != nil {
		parallel = *dto.Parallel
	}

	return &domain.BuildTarget{
		Name:              name,
		Description:       dto.Description,
		Dependencies:      deps,
		Commands:          commands,
		Inputs:            canonicalizeStrings(inputs),
		Parallel:          parallel,
		EstimatedDuration: dto.EstimatedDuration(),
		CacheKey:          dto.CacheKey,
		Plugin:            dto.Plugin,
		Options:           dto.Options,
	}, nil
}

// loadServices reads the compose files first, then the services of
// polybuild.yaml itself, each in declaration order.
func (l *Loader) loadServices(root, configPath string, buildfile *Buildfile) ([]domain.Service, error) {
	composeFiles := buildfile.ComposeFiles
	explicit := len(composeFiles) > 0
	if !explicit {
		composeFiles = []string{domain.DefaultComposeFile}
	}

	var services []domain.Service
	for _, name := range composeFiles {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, name)
		}
		if _, err := os.Stat(path); err != nil {
			if explicit {
				l.Logger.Warn(fmt.Sprintf("compose file %s not found, skipping", name))
			}
			continue
		}

		var compose ComposeFile
		if err := readAndUnmarshalYAML(path, &compose); err != nil {
			return nil, zerr.With(err, "path", path)
		}
		services = append(services, toServices(compose.Services, path)...)
	}

	return append(services, toServices(buildfile.Services, configPath)...), nil
}

func toServices(m ServiceMap, source string) []domain.Service {
	out := make([]domain.Service, 0, len(m))
	for i := range m {
		dto := &m[i]
		decls := make([]domain.PortDeclaration, len(dto.Ports))
		for j, p := range dto.Ports {
			p.Source = source
			decls[j] = p
		}
		out = append(out, domain.Service{
			Name:           dto.Name,
			Source:         source,
			Ports:          decls,
			DependsOn:      dto.DependsOn,
			Links:          dto.Links,
			Memory:         firstNonEmpty(dto.Memory, dto.Deploy.Resources.Limits.Memory, dto.MemLimit),
			MemoryReserved: firstNonEmpty(dto.Deploy.Resources.Reservations.Memory, dto.MemReservation),
			Disk:           dto.Disk,
		})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// inputHints maps name fragments to the inputs a target of that kind usually reads.
var inputHints = []struct {
	fragments []string
	inputs    []string
}{
	{[]string{"proto"}, []string{"proto/"}},
	{[]string{"python", "py"}, []string{"requirements.txt", "pyproject.toml"}},
	{[]string{"typescript", "ts", "web", "frontend"}, []string{"package.json", "tsconfig.json", "src/"}},
	{[]string{"kotlin", "android"}, []string{"build.gradle.kts", "settings.gradle.kts", "src/"}},
	{[]string{"go", "backend"}, []string{"go.mod", "go.sum"}},
}

// detectInputs guesses the inputs of a target from its name. Only paths
// that exist under root are kept.
func detectInputs(name, root string) []string {
	lower := strings.ToLower(name)
	var inputs []string
	for _, hint := range inputHints {
		if !slices.ContainsFunc(hint.fragments, func(f string) bool { return strings.Contains(lower, f) }) {
			continue
		}
		for _, in := range hint.inputs {
			if slices.Contains(inputs, in) {
				continue
			}
			if _, err := os.Stat(filepath.Join(root, in)); err == nil {
				inputs = append(inputs, in)
			}
		}
	}
	return inputs
}

func canonicalizeStrings(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}
	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	return nil
}

// validateTargetName checks if the target name is reserved or contains invalid characters.
func validateTargetName(name string) error {
	if name == domain.AllTargets {
		return zerr.With(domain.ErrReservedTargetName, "target", name)
	}
	if !validTargetNameRegex.MatchString(name) {
		return zerr.With(domain.ErrInvalidTargetName, "target", name)
	}
	return nil
}
