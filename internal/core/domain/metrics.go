package domain

import "time"

// BuildMetrics is the persisted record of a single target outcome.
type BuildMetrics struct {
	Target          string    `json:"target"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds float64   `json:"duration"`
	Success         bool      `json:"success"`
	CacheHit        bool      `json:"cache_hit"`
	MemoryDeltaMB   float64   `json:"memory_usage_mb"`
	ParallelWorkers int       `json:"parallel_workers"`
	ArtifactsCount  int       `json:"artifacts_count"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

// MemoryStats is a snapshot of host memory.
type MemoryStats struct {
	TotalBytes     uint64
	AvailableBytes uint64
	UsedBytes      uint64
}

// DiskStats is a snapshot of a filesystem.
type DiskStats struct {
	TotalBytes uint64
	FreeBytes  uint64
}

// SystemMetrics describes the host at report time.
type SystemMetrics struct {
	CPUCores          int       `json:"cpu_cores"`
	MemoryTotalGB     float64   `json:"memory_total_gb"`
	MemoryAvailableGB float64   `json:"memory_available_gb"`
	DiskTotalGB       float64   `json:"disk_total_gb"`
	DiskFreeGB        float64   `json:"disk_free_gb"`
	LoadAverage       []float64 `json:"load_average"`
}

// CacheMetrics describes cache effectiveness over a report window.
type CacheMetrics struct {
	TotalEntries int     `json:"total_entries"`
	TotalSizeMB  float64 `json:"total_size_mb"`
	HitRate      float64 `json:"hit_rate"`
	MissRate     float64 `json:"miss_rate"`
}

// TargetStats aggregates durations of one target.
type TargetStats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"count"`
}

// PerformanceReport summarizes recorded builds over a time window.
type PerformanceReport struct {
	PeriodStart       time.Time              `json:"period_start"`
	PeriodEnd         time.Time              `json:"period_end"`
	TotalBuilds       int                    `json:"total_builds"`
	SuccessfulBuilds  int                    `json:"successful_builds"`
	FailedBuilds      int                    `json:"failed_builds"`
	AverageBuildTime  float64                `json:"average_build_time"`
	FastestBuildTime  float64                `json:"fastest_build_time"`
	SlowestBuildTime  float64                `json:"slowest_build_time"`
	Cache             CacheMetrics           `json:"cache_metrics"`
	System            SystemMetrics          `json:"system_metrics"`
	TargetPerformance map[string]TargetStats `json:"target_performance"`
	Recommendations   []string               `json:"optimization_recommendations"`
}
