package ports

import (
	"context"

	"go.trai.ch/polybuild/internal/core/domain"
)

// SystemProbe queries the host the build runs on.
//
//go:generate mockgen -source=system.go -destination=mocks/mock_system.go -package=mocks
type SystemProbe interface {
	// Memory returns the current memory totals.
	Memory(ctx context.Context) (domain.MemoryStats, error)
	// Disk returns the totals of the filesystem holding path.
	Disk(ctx context.Context, path string) (domain.DiskStats, error)
	// CPUCount returns the number of logical CPUs.
	CPUCount(ctx context.Context) int
	// LoadAverage returns the 1, 5 and 15 minute load averages.
	LoadAverage(ctx context.Context) ([]float64, error)
	// LookPath resolves an executable on PATH.
	LookPath(name string) (string, error)
	// ToolVersion returns the version reported by "<name> --version".
	ToolVersion(ctx context.Context, name string) (string, error)
}
