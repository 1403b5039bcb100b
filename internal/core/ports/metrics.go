package ports

import (
	"context"
	"time"

	"go.trai.ch/polybuild/internal/core/domain"
)

// MetricsStore persists build metrics across runs.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type MetricsStore interface {
	// Append stores one record.
	Append(ctx context.Context, record domain.BuildMetrics) error
	// Range returns records whose start time lies in [from, to].
	Range(ctx context.Context, from, to time.Time) ([]domain.BuildMetrics, error)
	// Close releases the underlying database.
	Close() error
}

// BuildRecorder observes finished targets.
type BuildRecorder interface {
	// Record is called once per finished target by the aggregating routine.
	Record(ctx context.Context, result *domain.BuildResult, started time.Time, workers int)
}

// MetricsOpener opens the metrics database at a path.
type MetricsOpener interface {
	Open(path string) (MetricsStore, error)
}
