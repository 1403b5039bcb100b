package orchestrator

import (
	"context"
	"time"

	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
)

// aggregator is the only reader of the results channel. It owns the
// collected results and forwards each one to the recorder.
type aggregator struct {
	recorder ports.BuildRecorder
	workers  int
	results  map[string]domain.BuildResult
}

func newAggregator(recorder ports.BuildRecorder, workers int) *aggregator {
	return &aggregator{
		recorder: recorder,
		workers:  workers,
		results:  make(map[string]domain.BuildResult),
	}
}

func (a *aggregator) run(ctx context.Context, in <-chan outcome) {
	for out := range in {
		a.results[out.result.Target] = out.result
		if a.recorder != nil && !out.result.Skipped {
			a.recorder.Record(context.WithoutCancel(ctx), &out.result, out.started, a.workers)
		}
	}
}

// ordered returns the results in group order.
func (a *aggregator) ordered(groups [][]string) []domain.BuildResult {
	out := make([]domain.BuildResult, 0, len(a.results))
	for _, group := range groups {
		for _, name := range group {
			if res, ok := a.results[name]; ok {
				out = append(out, res)
			}
		}
	}
	return out
}

func summarize(graph *domain.Graph, groups [][]string, results []domain.BuildResult, wall time.Duration) domain.RunSummary {
	s := domain.RunSummary{
		EstimatedDuration: estimate(graph, groups),
		ActualDuration:    wall,
	}
	for i := range results {
		switch results[i].State() {
		case domain.StateSkipped:
			s.Skipped++
			continue
		case domain.StateCached:
			s.CacheHits++
		case domain.StateFailed:
			s.Failed++
			s.CacheMisses++
		default:
			s.CacheMisses++
		}
		s.TotalBuilds++
	}
	if wall > 0 {
		s.ParallelEfficiency = s.EstimatedDuration.Seconds() / wall.Seconds()
	}
	return s
}

// estimate sums the longest estimate of each group.
func estimate(graph *domain.Graph, groups [][]string) time.Duration {
	var total time.Duration
	for _, group := range groups {
		var longest time.Duration
		for _, name := range group {
			if t, ok := graph.Target(name); ok {
				longest = max(longest, t.Estimate())
			}
		}
		total += longest
	}
	return total
}
