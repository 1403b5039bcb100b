package domain

import (
	"slices"
	"time"
)

// BuildTarget is a named unit of work with declared dependencies and either
// literal commands or a plugin-delegated build step.
type BuildTarget struct {
	Name              string
	Description       string
	Dependencies      []string
	Commands          []string
	Inputs            []string
	Parallel          bool
	EstimatedDuration time.Duration
	// CacheKey is used verbatim when set instead of being derived from inputs.
	CacheKey string
	// Plugin names the plugin that builds this target. Empty means the
	// commands run directly or a plugin is selected from the inputs.
	Plugin  string
	Options map[string]string
}

// Estimate returns the declared duration or the default when none is set.
func (t *BuildTarget) Estimate() time.Duration {
	if t.EstimatedDuration <= 0 {
		return DefaultEstimatedDuration
	}
	return t.EstimatedDuration
}

// clone returns a deep copy so the graph never shares slices with callers.
func (t *BuildTarget) clone() BuildTarget {
	c := *t
	c.Dependencies = slices.Clone(t.Dependencies)
	c.Commands = slices.Clone(t.Commands)
	c.Inputs = slices.Clone(t.Inputs)
	if t.Options != nil {
		c.Options = make(map[string]string, len(t.Options))
		for k, v := range t.Options {
			c.Options[k] = v
		}
	}
	return c
}

// Command is a single shell line executed on behalf of a target.
type Command struct {
	Line string
	Dir  string
	Env  map[string]string
}

// CommandOutput holds what a finished command wrote.
type CommandOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}
