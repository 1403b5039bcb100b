// Package monitor records per-target build metrics and summarizes them.
package monitor

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	mb = 1 << 20
	gb = 1 << 30

	lowHitRate        = 0.5
	slowBuildSeconds  = 300
	highMemoryMB      = 2000
	highFailureRate   = 0.1
	slowTargetSeconds = 180

	looksGood = "Build performance looks good! No specific optimizations needed."
)

// Monitor implements ports.BuildRecorder over a MetricsStore. Failures are
// logged and never surface to the build.
type Monitor struct {
	store  ports.MetricsStore
	probe  ports.SystemProbe
	cache  ports.BuildCache
	logger ports.Logger
	root   string
	now    func() time.Time

	mu       sync.Mutex
	baseline uint64
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// WithCache reports the entries of cache in Report.
func WithCache(cache ports.BuildCache) Option {
	return func(m *Monitor) {
		m.cache = cache
	}
}

// New creates a Monitor. root is the path whose filesystem Report describes.
func New(store ports.MetricsStore, probe ports.SystemProbe, logger ports.Logger, root string, opts ...Option) *Monitor {
	m := &Monitor{
		store:  store,
		probe:  probe,
		logger: logger,
		root:   root,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start samples the memory baseline the first recorded delta is taken against.
func (m *Monitor) Start(ctx context.Context) {
	used := m.usedMemory(ctx)
	m.mu.Lock()
	m.baseline = used
	m.mu.Unlock()
}

// Record stores the metrics of one finished target.
func (m *Monitor) Record(ctx context.Context, result *domain.BuildResult, started time.Time, workers int) {
	used := m.usedMemory(ctx)
	m.mu.Lock()
	delta := float64(int64(used)-int64(m.baseline)) / mb
	m.baseline = used
	m.mu.Unlock()

	rec := domain.BuildMetrics{
		Target:          result.Target,
		StartTime:       started,
		EndTime:         started.Add(result.Duration),
		DurationSeconds: result.Duration.Seconds(),
		Success:         result.Success,
		CacheHit:        result.CacheHit,
		MemoryDeltaMB:   delta,
		ParallelWorkers: workers,
		ArtifactsCount:  len(result.Artifacts),
		ErrorMessage:    result.Error,
	}
	if err := m.store.Append(ctx, rec); err != nil {
		m.logger.Error(zerr.With(err, "target", result.Target))
	}
}

func (m *Monitor) usedMemory(ctx context.Context) uint64 {
	stats, err := m.probe.Memory(ctx)
	if err != nil {
		return 0
	}
	return stats.UsedBytes
}

// Report summarizes the records of the trailing window.
func (m *Monitor) Report(ctx context.Context, window time.Duration) (domain.PerformanceReport, error) {
	end := m.now()
	start := end.Add(-window)

	records, err := m.store.Range(ctx, start, end)
	if err != nil {
		return domain.PerformanceReport{}, err
	}

	report := domain.PerformanceReport{
		PeriodStart:       start,
		PeriodEnd:         end,
		TotalBuilds:       len(records),
		Cache:             m.cacheMetrics(records),
		System:            m.System(ctx),
		TargetPerformance: targetStats(records),
	}
	if len(records) == 0 {
		return report, nil
	}

	report.FastestBuildTime = records[0].DurationSeconds
	var total float64
	for i := range records {
		r := &records[i]
		if r.Success {
			report.SuccessfulBuilds++
		}
		total += r.DurationSeconds
		report.FastestBuildTime = min(report.FastestBuildTime, r.DurationSeconds)
		report.SlowestBuildTime = max(report.SlowestBuildTime, r.DurationSeconds)
	}
	report.FailedBuilds = report.TotalBuilds - report.SuccessfulBuilds
	report.AverageBuildTime = total / float64(len(records))
	report.Recommendations = Recommendations(records)
	return report, nil
}

func (m *Monitor) cacheMetrics(records []domain.BuildMetrics) domain.CacheMetrics {
	var out domain.CacheMetrics
	if m.cache != nil {
		stats, err := m.cache.Stats()
		if err != nil {
			m.logger.Error(err)
		} else {
			out.TotalEntries = stats.Entries
			out.TotalSizeMB = float64(stats.TotalBytes) / mb
		}
	}

	if len(records) == 0 {
		out.MissRate = 100
		return out
	}
	hits := 0
	for i := range records {
		if records[i].CacheHit {
			hits++
		}
	}
	out.HitRate = float64(hits) / float64(len(records)) * 100
	out.MissRate = 100 - out.HitRate
	return out
}

// System describes the host. Probe failures are logged and leave their
// fields zero.
func (m *Monitor) System(ctx context.Context) domain.SystemMetrics {
	out := domain.SystemMetrics{CPUCores: m.probe.CPUCount(ctx)}

	var errs []error
	if mem, err := m.probe.Memory(ctx); err != nil {
		errs = append(errs, err)
	} else {
		out.MemoryTotalGB = float64(mem.TotalBytes) / gb
		out.MemoryAvailableGB = float64(mem.AvailableBytes) / gb
	}
	if disk, err := m.probe.Disk(ctx, m.root); err != nil {
		errs = append(errs, err)
	} else {
		out.DiskTotalGB = float64(disk.TotalBytes) / gb
		out.DiskFreeGB = float64(disk.FreeBytes) / gb
	}
	if load, err := m.probe.LoadAverage(ctx); err != nil {
		out.LoadAverage = []float64{0, 0, 0}
	} else {
		out.LoadAverage = load
	}

	for _, err := range errs {
		m.logger.Error(zerr.Wrap(err, domain.ErrSystemProbeFailed.Error()))
	}
	return out
}

func targetStats(records []domain.BuildMetrics) map[string]domain.TargetStats {
	stats := make(map[string]domain.TargetStats)
	for i := range records {
		r := &records[i]
		s, ok := stats[r.Target]
		if !ok {
			s.Min = r.DurationSeconds
		}
		s.Count++
		s.Min = min(s.Min, r.DurationSeconds)
		s.Max = max(s.Max, r.DurationSeconds)
		// Average holds the running sum until the loop below.
		s.Average += r.DurationSeconds
		stats[r.Target] = s
	}
	for name, s := range stats {
		s.Average /= float64(s.Count)
		stats[name] = s
	}
	return stats
}

// Recommendations derives optimization hints from records. It returns nil
// for no records.
func Recommendations(records []domain.BuildMetrics) []string {
	if len(records) == 0 {
		return nil
	}
	n := float64(len(records))

	var hits, slow, heavy, failed int
	for i := range records {
		r := &records[i]
		if r.CacheHit {
			hits++
		}
		if r.DurationSeconds > slowBuildSeconds {
			slow++
		}
		if r.MemoryDeltaMB > highMemoryMB {
			heavy++
		}
		if !r.Success {
			failed++
		}
	}

	var out []string
	if rate := float64(hits) / n; rate < lowHitRate {
		out = append(out, fmt.Sprintf(
			"Low cache hit rate (%.1f%%). Consider using more aggressive caching strategies.", rate*100))
	}
	if slow > 0 {
		out = append(out, fmt.Sprintf(
			"%d builds took longer than 5 minutes. Consider using parallel builds or incremental compilation.", slow))
	}
	if heavy > 0 {
		out = append(out, fmt.Sprintf(
			"%d builds used more than 2GB memory. Consider optimizing memory usage or increasing system memory.", heavy))
	}
	if rate := float64(failed) / n; rate > highFailureRate {
		out = append(out, fmt.Sprintf(
			"High failure rate (%.1f%%). Review common error patterns and improve build reliability.", rate*100))
	}

	stats := targetStats(records)
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if avg := stats[name].Average; avg > slowTargetSeconds {
			out = append(out, fmt.Sprintf(
				"Target '%s' averages %.1fs. Consider optimizing this specific target.", name, avg))
		}
	}

	if len(out) == 0 {
		out = append(out, looksGood)
	}
	return out
}
