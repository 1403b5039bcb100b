package domain

import "time"

// TargetState is the terminal state a target reached during a run.
type TargetState string

const (
	// StateCached means the result was served from the build cache.
	StateCached TargetState = "cached"
	// StateSucceeded means the target executed and succeeded.
	StateSucceeded TargetState = "succeeded"
	// StateFailed means the target failed validation or execution.
	StateFailed TargetState = "failed"
	// StateSkipped means the target was never attempted because an earlier group failed.
	StateSkipped TargetState = "skipped"
)

// BuildResult is the outcome of building one target. It is never mutated
// after creation.
type BuildResult struct {
	Target    string             `json:"target"`
	Success   bool               `json:"success"`
	Duration  time.Duration      `json:"duration"`
	CacheHit  bool               `json:"cache_hit"`
	Skipped   bool               `json:"skipped,omitempty"`
	Error     string             `json:"error,omitempty"`
	Artifacts []string           `json:"artifacts,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// State derives the terminal state from the result flags.
func (r *BuildResult) State() TargetState {
	switch {
	case r.Skipped:
		return StateSkipped
	case r.CacheHit:
		return StateCached
	case r.Success:
		return StateSucceeded
	default:
		return StateFailed
	}
}

// CacheEntry is the persisted index record of a successful build.
type CacheEntry struct {
	Target    string        `json:"target"`
	Success   bool          `json:"success"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Artifacts []string      `json:"artifacts"`
}

// CacheMarker is the content of the per-key marker file.
type CacheMarker struct {
	Target   string  `json:"target"`
	Success  bool    `json:"success"`
	Duration float64 `json:"duration"`
}

// CacheStats summarizes the on-disk cache.
type CacheStats struct {
	Entries    int
	TotalBytes int64
}

// RunSummary aggregates the results of one BuildTargets call.
type RunSummary struct {
	TotalBuilds        int
	CacheHits          int
	CacheMisses        int
	Failed             int
	Skipped            int
	EstimatedDuration  time.Duration
	ActualDuration     time.Duration
	ParallelEfficiency float64
}

// Report is the value returned by a build run.
type Report struct {
	Groups   [][]string
	Results  []BuildResult
	Warnings []Issue
	Summary  RunSummary
}

// Success reports whether every result in the report succeeded.
func (r *Report) Success() bool {
	for i := range r.Results {
		if !r.Results[i].Success {
			return false
		}
	}
	return true
}

// Result returns the result for the named target.
func (r *Report) Result(target string) (BuildResult, bool) {
	for _, res := range r.Results {
		if res.Target == target {
			return res, true
		}
	}
	return BuildResult{}, false
}

// Plan describes the groups a run would execute without running anything.
type Plan struct {
	Groups            [][]string
	Targets           []BuildTarget
	EstimatedDuration time.Duration
	Warnings          []string
}
