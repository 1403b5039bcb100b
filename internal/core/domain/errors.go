package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

// Error categories. Concrete errors below are wrapped with one of these
// messages so callers can decide how far a failure propagates.
var (
	// ErrStructural covers unknown target references and dependency cycles.
	ErrStructural = zerr.New("structural error")

	// ErrValidation covers error-severity findings of the pre-build validators.
	ErrValidation = zerr.New("validation error")

	// ErrEnvironment covers requirements a plugin or target reports as missing.
	ErrEnvironment = zerr.New("environment error")

	// ErrExecution covers non-zero exits, timeouts and plugin panics.
	ErrExecution = zerr.New("execution error")

	// ErrCache covers read and write failures against the build cache.
	ErrCache = zerr.New("cache error")
)

var (
	// ErrTargetAlreadyExists is returned when a target with the same name is loaded twice.
	ErrTargetAlreadyExists = zerr.New("target already exists")

	// ErrTargetNotFound is returned when a requested or referenced target is not in the graph.
	ErrTargetNotFound = zerr.New("target not found")

	// ErrCycleDetected is returned when the requested targets cannot be leveled.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrNoTargetsSpecified is returned when no targets are specified for the run command.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrReservedTargetName is returned when a target uses a reserved name (e.g., "all").
	ErrReservedTargetName = zerr.New("target name 'all' is reserved")

	// ErrInvalidTargetName is returned when a target name contains invalid characters.
	ErrInvalidTargetName = zerr.New("invalid target name")

	// ErrInvalidStep is returned when a target step declares neither a command nor a target.
	ErrInvalidStep = zerr.New("step must declare exactly one of command or target")

	// ErrConfigNotFound is returned when no configuration file can be found.
	ErrConfigNotFound = zerr.New("could not find polybuild.yaml")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrSettingsInvalid is returned when a setting has an unusable value.
	ErrSettingsInvalid = zerr.New("invalid setting")

	// ErrCacheCreateFailed is returned when the cache directory cannot be created.
	ErrCacheCreateFailed = zerr.New("failed to create cache directory")

	// ErrCacheReadFailed is returned when the cache index cannot be read.
	ErrCacheReadFailed = zerr.New("failed to read cache index")

	// ErrCacheWriteFailed is returned when the cache index or a marker cannot be written.
	ErrCacheWriteFailed = zerr.New("failed to write cache index")

	// ErrCacheKeyFailed is returned when a cache key cannot be computed.
	ErrCacheKeyFailed = zerr.New("failed to compute cache key")

	// ErrPluginAlreadyRegistered is returned when two plugins share a name.
	ErrPluginAlreadyRegistered = zerr.New("plugin already registered")

	// ErrPluginNotFound is returned when a target names a plugin that is not registered.
	ErrPluginNotFound = zerr.New("plugin not found")

	// ErrMissingRequirements is returned when an environment check reports missing tools.
	ErrMissingRequirements = zerr.New("missing requirements")

	// ErrCommandFailed is returned when a command exits with a non-zero status.
	ErrCommandFailed = zerr.New("command failed")

	// ErrCommandTimeout is returned when a command exceeds its deadline.
	ErrCommandTimeout = zerr.New("command timed out")

	// ErrPluginPanicked is returned when a plugin panics during a build.
	ErrPluginPanicked = zerr.New("plugin panicked")

	// ErrPluginBuildFailed is returned when a plugin reports an unsuccessful build.
	ErrPluginBuildFailed = zerr.New("plugin build failed")

	// ErrBuildFailed is returned by the CLI when at least one target failed.
	ErrBuildFailed = zerr.New("build failed")

	// ErrValidationBlocked is returned when error-severity issues stop a run.
	ErrValidationBlocked = zerr.New("validation reported blocking issues")

	// ErrValidatorFailed is returned when a validator check itself fails.
	ErrValidatorFailed = zerr.New("validator check failed")

	// ErrSystemProbeFailed is returned when system resources cannot be queried.
	ErrSystemProbeFailed = zerr.New("failed to query system resources")

	// ErrMetricsOpenFailed is returned when the metrics database cannot be opened.
	ErrMetricsOpenFailed = zerr.New("failed to open metrics database")

	// ErrMetricsWriteFailed is returned when a metrics record cannot be stored.
	ErrMetricsWriteFailed = zerr.New("failed to store metrics")

	// ErrMetricsReadFailed is returned when metrics records cannot be read.
	ErrMetricsReadFailed = zerr.New("failed to read metrics")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrInvalidSize is returned when a memory or disk size string cannot be parsed.
	ErrInvalidSize = zerr.New("invalid size")

	// ErrWatchFailed is returned when the file watcher cannot start.
	ErrWatchFailed = zerr.New("failed to watch project")

	// ErrSpanClosed is returned when output is written to a finished span.
	ErrSpanClosed = zerr.New("span already ended")
)

// categorized is a concrete error that also matches its category under
// errors.Is.
type categorized struct {
	err      error
	category error
}

func categorize(err, category error) error {
	return &categorized{err: err, category: category}
}

func (e *categorized) Error() string { return e.err.Error() }

func (e *categorized) Unwrap() []error { return []error{e.err, e.category} }

// ErrorKind classifies an error into the propagation categories.
type ErrorKind string

const (
	// KindUnknown is an error outside the known categories.
	KindUnknown ErrorKind = "unknown"
	// KindStructural aborts scheduling before any work starts.
	KindStructural ErrorKind = "structural"
	// KindValidation blocks a run when the severity is error.
	KindValidation ErrorKind = "validation"
	// KindEnvironment fails only the affected target.
	KindEnvironment ErrorKind = "environment"
	// KindExecution fails the affected target and halts later groups.
	KindExecution ErrorKind = "execution"
	// KindCache is logged and treated as a cache miss.
	KindCache ErrorKind = "cache"
)

var kindSentinels = []struct {
	kind      ErrorKind
	sentinels []error
}{
	{KindStructural, []error{ErrStructural, ErrTargetNotFound, ErrCycleDetected}},
	{KindValidation, []error{ErrValidation, ErrValidationBlocked}},
	{KindEnvironment, []error{ErrEnvironment, ErrMissingRequirements, ErrPluginNotFound}},
	{KindExecution, []error{
		ErrExecution, ErrCommandFailed, ErrCommandTimeout, ErrPluginPanicked, ErrPluginBuildFailed,
	}},
	{KindCache, []error{
		ErrCache, ErrCacheCreateFailed, ErrCacheReadFailed, ErrCacheWriteFailed, ErrCacheKeyFailed,
	}},
}

// KindOf reports the category of err by walking its chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	for _, k := range kindSentinels {
		for _, s := range k.sentinels {
			if errors.Is(err, s) {
				return k.kind
			}
		}
	}
	return KindUnknown
}
