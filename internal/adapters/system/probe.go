// Package system queries host resources and tools.
package system

import (
	"context"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/zerr"
)

// versionTimeout bounds a "<tool> --version" call.
const versionTimeout = 10 * time.Second

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?)`)

var _ ports.SystemProbe = (*Probe)(nil)

// Probe implements ports.SystemProbe with gopsutil.
type Probe struct{}

// NewProbe creates a new Probe.
func NewProbe() *Probe {
	return &Probe{}
}

// Memory returns the host memory totals.
func (p *Probe) Memory(ctx context.Context) (domain.MemoryStats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return domain.MemoryStats{}, zerr.Wrap(err, domain.ErrSystemProbeFailed.Error())
	}
	return domain.MemoryStats{
		TotalBytes:     vm.Total,
		AvailableBytes: vm.Available,
		UsedBytes:      vm.Used,
	}, nil
}

// Disk returns the totals of the filesystem holding path.
func (p *Probe) Disk(ctx context.Context, path string) (domain.DiskStats, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return domain.DiskStats{}, zerr.With(zerr.Wrap(err, domain.ErrSystemProbeFailed.Error()), "path", path)
	}
	return domain.DiskStats{TotalBytes: usage.Total, FreeBytes: usage.Free}, nil
}

// CPUCount returns the number of logical CPUs.
func (p *Probe) CPUCount(ctx context.Context) int {
	n, err := cpu.CountsWithContext(ctx, true)
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// LoadAverage returns the 1, 5 and 15 minute load averages.
func (p *Probe) LoadAverage(ctx context.Context) ([]float64, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrSystemProbeFailed.Error())
	}
	return []float64{avg.Load1, avg.Load5, avg.Load15}, nil
}

// LookPath resolves an executable on PATH.
func (p *Probe) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// ToolVersion runs "<name> --version" and extracts the first version number.
// Tools that print "version" as a subcommand, like go, are retried that way.
func (p *Probe) ToolVersion(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	var lastErr error
	for _, args := range [][]string{{"--version"}, {"version"}} {
		out, err := exec.CommandContext(ctx, name, args...).CombinedOutput() //nolint:gosec // tool names come from the project config
		if err != nil {
			lastErr = err
			continue
		}
		if v := ParseVersion(string(out)); v != "" {
			return v, nil
		}
	}

	if lastErr == nil {
		lastErr = zerr.New("no version in output")
	}
	return "", zerr.With(zerr.Wrap(lastErr, "failed to read tool version"), "tool", name)
}

// ParseVersion extracts the first dotted version number from text.
func ParseVersion(text string) string {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return ""
	}
	return m[1]
}
