package domain

import "time"

// Settings are the tunables of a run, resolved from defaults, the config
// file, the environment and command-line flags.
type Settings struct {
	Parallelism    int
	Timeout        time.Duration
	CacheDir       string
	MetricsDir     string
	MaxChainDepth  int
	SkipValidation bool
	NoCache        bool
}

// DefaultSettings returns the settings used when nothing overrides them.
func DefaultSettings() Settings {
	return Settings{
		Parallelism:   DefaultParallelism,
		Timeout:       DefaultTimeout,
		CacheDir:      DefaultCachePath(),
		MetricsDir:    StateDirName,
		MaxChainDepth: DefaultMaxChainDepth,
	}
}

// Workspace is a loaded project: the target graph plus what the validators inspect.
type Workspace struct {
	Root       string
	ConfigPath string
	Graph      *Graph
	Project    Project
}
