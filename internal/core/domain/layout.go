package domain

import (
	"path/filepath"
	"time"
)

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "polybuild.yaml"

	// StateDirName is the name of the internal state directory.
	StateDirName = ".polybuild"

	// CacheDirName is the default name of the build cache directory.
	CacheDirName = ".build-cache"

	// CacheIndexFile is the name of the cache metadata index.
	CacheIndexFile = "metadata.json"

	// MetricsFileName is the name of the metrics database.
	MetricsFileName = "metrics.db"

	// DefaultComposeFile is the compose file consulted when none are configured.
	DefaultComposeFile = "docker-compose.yml"

	// SyntheticResolutionTarget names the failed result of a structural error.
	SyntheticResolutionTarget = "dependency_resolution"

	// SyntheticValidationTarget names the failed result of a blocked validation gate.
	SyntheticValidationTarget = "validation"

	// AllTargets is the reserved name that selects every target.
	AllTargets = "all"

	// DefaultParallelism is the default size of the worker pool.
	DefaultParallelism = 4

	// DefaultTimeout bounds a single target execution.
	DefaultTimeout = 5 * time.Minute

	// DefaultEstimatedDuration is used when a target does not declare one.
	DefaultEstimatedDuration = 60 * time.Second

	// DefaultPluginDuration is the estimate reported by plugins that do not override it.
	DefaultPluginDuration = 30 * time.Second

	// DefaultMaxChainDepth is the service chain length above which a warning is raised.
	DefaultMaxChainDepth = 5

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600

	// ScriptPerm is the permission for generated scripts (rwxr-xr-x).
	ScriptPerm = 0o755
)

// DefaultCachePath returns the default path for the build cache.
func DefaultCachePath() string {
	return CacheDirName
}

// DefaultMetricsPath returns the default path for the metrics database.
// It joins .polybuild and metrics.db.
func DefaultMetricsPath() string {
	return filepath.Join(StateDirName, MetricsFileName)
}
