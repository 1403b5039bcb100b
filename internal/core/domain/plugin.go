package domain

import (
	"slices"
	"time"
)

// Capability is an optional feature a plugin may support.
type Capability string

const (
	// CapIncrementalBuild means the plugin rebuilds only what changed.
	CapIncrementalBuild Capability = "incremental_build"
	// CapParallelBuild means the plugin may run alongside other plugins.
	CapParallelBuild Capability = "parallel_build"
	// CapDependencyResolution means the plugin can list file dependencies.
	CapDependencyResolution Capability = "dependency_resolution"
	// CapCacheOptimization means the plugin produces stable checksums.
	CapCacheOptimization Capability = "cache_optimization"
	// CapHotReload means the plugin output is meaningful in watch mode.
	CapHotReload Capability = "hot_reload"
	// CapTesting means the plugin implements the Test operation.
	CapTesting Capability = "testing"
	// CapLinting means the plugin implements the Lint operation.
	CapLinting Capability = "linting"
	// CapPackaging means the plugin implements the Package operation.
	CapPackaging Capability = "packaging"
)

// AllCapabilities lists every capability in declaration order.
var AllCapabilities = []Capability{
	CapIncrementalBuild,
	CapParallelBuild,
	CapDependencyResolution,
	CapCacheOptimization,
	CapHotReload,
	CapTesting,
	CapLinting,
	CapPackaging,
}

// FilePattern is a rule matching files a plugin can handle.
type FilePattern struct {
	Extension string
	// Priority orders competing plugins; higher wins. Zero is treated as 1.
	Priority int
	// RequiredFiles must all exist in the matched file's directory.
	RequiredFiles []string
}

// EffectivePriority returns the priority with the default applied.
func (p FilePattern) EffectivePriority() int {
	if p.Priority == 0 {
		return 1
	}
	return p.Priority
}

// PluginMetadata describes a plugin.
type PluginMetadata struct {
	Name                string       `json:"name"`
	Version             string       `json:"version"`
	Description         string       `json:"description"`
	Author              string       `json:"author,omitempty"`
	SupportedExtensions []string     `json:"supported_extensions"`
	Capabilities        []Capability `json:"capabilities"`
	Dependencies        []string     `json:"dependencies"`
}

// Has reports whether the metadata declares the capability.
func (m *PluginMetadata) Has(c Capability) bool {
	return slices.Contains(m.Capabilities, c)
}

// PluginInfo is the detailed view of a registered plugin.
type PluginInfo struct {
	Metadata            PluginMetadata `json:"metadata"`
	Patterns            []FilePattern  `json:"patterns"`
	MissingRequirements []string       `json:"missing_requirements"`
}

// BuildArtifact is a file produced by a plugin.
type BuildArtifact struct {
	Path     string            `json:"path"`
	Kind     string            `json:"kind"`
	Size     int64             `json:"size"`
	Checksum string            `json:"checksum"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PluginResult is the outcome of a single plugin invocation.
type PluginResult struct {
	Success   bool
	Duration  time.Duration
	Artifacts []BuildArtifact
	Warnings  []string
	Error     string
	Metrics   map[string]float64
	CacheKey  string
	// Unsupported marks an optional operation the plugin does not provide.
	Unsupported bool
}

// BuildOptions are passed to plugin operations.
type BuildOptions struct {
	Root    string
	Target  string
	Options map[string]string
}
