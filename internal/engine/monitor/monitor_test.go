package monitor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports/mocks"
	"go.trai.ch/polybuild/internal/engine/monitor"
	"go.uber.org/mock/gomock"
)

const mb = 1 << 20

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMonitor_Record(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockMetricsStore(ctrl)
	probe := mocks.NewMockSystemProbe(ctrl)
	gomock.InOrder(
		probe.EXPECT().Memory(gomock.Any()).Return(domain.MemoryStats{UsedBytes: 100 * mb}, nil),
		probe.EXPECT().Memory(gomock.Any()).Return(domain.MemoryStats{UsedBytes: 356 * mb}, nil),
	)

	started := now.Add(-3 * time.Second)
	store.EXPECT().Append(gomock.Any(), domain.BuildMetrics{
		Target:          "api",
		StartTime:       started,
		EndTime:         now,
		DurationSeconds: 3,
		Success:         true,
		MemoryDeltaMB:   256,
		ParallelWorkers: 4,
		ArtifactsCount:  2,
	}).Return(nil)

	m := monitor.New(store, probe, mocks.NewMockLogger(ctrl), "/project")
	m.Start(t.Context())
	m.Record(t.Context(), &domain.BuildResult{
		Target:    "api",
		Success:   true,
		Duration:  3 * time.Second,
		Artifacts: []string{"bin/api", "bin/api.sha256"},
	}, started, 4)
}

func TestMonitor_Record_StoreFailureIsLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockMetricsStore(ctrl)
	probe := mocks.NewMockSystemProbe(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	probe.EXPECT().Memory(gomock.Any()).Return(domain.MemoryStats{}, errors.New("no /proc"))
	store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(domain.ErrMetricsWriteFailed)
	logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorContains(t, err, domain.ErrMetricsWriteFailed.Error())
	})

	m := monitor.New(store, probe, logger, "/project")
	m.Record(t.Context(), &domain.BuildResult{Target: "api", Error: "boom"}, now, 1)
}

func stubSystem(probe *mocks.MockSystemProbe) {
	probe.EXPECT().CPUCount(gomock.Any()).Return(8)
	probe.EXPECT().Memory(gomock.Any()).Return(domain.MemoryStats{TotalBytes: 16 << 30, AvailableBytes: 8 << 30}, nil)
	probe.EXPECT().Disk(gomock.Any(), "/project").Return(domain.DiskStats{TotalBytes: 500 << 30, FreeBytes: 100 << 30}, nil)
	probe.EXPECT().LoadAverage(gomock.Any()).Return([]float64{1, 0.5, 0.25}, nil)
}

func TestMonitor_Report(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockMetricsStore(ctrl)
	probe := mocks.NewMockSystemProbe(ctrl)
	cache := mocks.NewMockBuildCache(ctrl)
	stubSystem(probe)
	cache.EXPECT().Stats().Return(domain.CacheStats{Entries: 3, TotalBytes: 2 * mb}, nil)

	store.EXPECT().Range(gomock.Any(), now.Add(-24*time.Hour), now).Return([]domain.BuildMetrics{
		{Target: "api", DurationSeconds: 10, Success: true, CacheHit: true},
		{Target: "api", DurationSeconds: 20, Success: true},
		{Target: "web", DurationSeconds: 30, Success: true, CacheHit: true},
		{Target: "web", DurationSeconds: 40, Success: true, CacheHit: true},
	}, nil)

	m := monitor.New(store, probe, mocks.NewMockLogger(ctrl), "/project",
		monitor.WithClock(func() time.Time { return now }), monitor.WithCache(cache))
	report, err := m.Report(t.Context(), 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalBuilds)
	assert.Equal(t, 4, report.SuccessfulBuilds)
	assert.Equal(t, 0, report.FailedBuilds)
	assert.InDelta(t, 25.0, report.AverageBuildTime, 1e-9)
	assert.InDelta(t, 10.0, report.FastestBuildTime, 1e-9)
	assert.InDelta(t, 40.0, report.SlowestBuildTime, 1e-9)
	assert.Equal(t, domain.TargetStats{Average: 15, Min: 10, Max: 20, Count: 2}, report.TargetPerformance["api"])
	assert.InDelta(t, 75.0, report.Cache.HitRate, 1e-9)
	assert.Equal(t, 3, report.Cache.TotalEntries)
	assert.InDelta(t, 2.0, report.Cache.TotalSizeMB, 1e-9)
	assert.Equal(t, 8, report.System.CPUCores)
	assert.InDelta(t, 100.0, report.System.DiskFreeGB, 1e-9)
	assert.Equal(t, []string{"Build performance looks good! No specific optimizations needed."}, report.Recommendations)
}

func TestMonitor_Report_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockMetricsStore(ctrl)
	probe := mocks.NewMockSystemProbe(ctrl)
	stubSystem(probe)
	store.EXPECT().Range(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	m := monitor.New(store, probe, mocks.NewMockLogger(ctrl), "/project", monitor.WithClock(func() time.Time { return now }))
	report, err := m.Report(context.Background(), time.Hour)
	require.NoError(t, err)

	assert.Zero(t, report.TotalBuilds)
	assert.Empty(t, report.Recommendations)
	assert.InDelta(t, 100.0, report.Cache.MissRate, 1e-9)
	assert.Equal(t, now.Add(-time.Hour), report.PeriodStart)
}

func TestMonitor_Report_RangeError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockMetricsStore(ctrl)
	store.EXPECT().Range(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, domain.ErrMetricsReadFailed)

	m := monitor.New(store, mocks.NewMockSystemProbe(ctrl), mocks.NewMockLogger(ctrl), "/project")
	_, err := m.Report(t.Context(), time.Hour)
	assert.ErrorIs(t, err, domain.ErrMetricsReadFailed)
}

func TestRecommendations(t *testing.T) {
	records := []domain.BuildMetrics{
		{Target: "kotlin", DurationSeconds: 400, MemoryDeltaMB: 2500},
		{Target: "kotlin", DurationSeconds: 200, Success: true},
		{Target: "go", DurationSeconds: 5, Success: true, CacheHit: true},
	}

	assert.Equal(t, []string{
		"Low cache hit rate (33.3%). Consider using more aggressive caching strategies.",
		"1 builds took longer than 5 minutes. Consider using parallel builds or incremental compilation.",
		"1 builds used more than 2GB memory. Consider optimizing memory usage or increasing system memory.",
		"High failure rate (33.3%). Review common error patterns and improve build reliability.",
		"Target 'kotlin' averages 300.0s. Consider optimizing this specific target.",
	}, monitor.Recommendations(records))

	assert.Nil(t, monitor.Recommendations(nil))
}
