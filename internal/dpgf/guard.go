package dpgf

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/envelopa/dpgf-ingest/internal/logger"
)

// ResourceGuard samples memory and disk pressure before each batch. It only
// warns and pauses briefly; a loaded machine slows the run down, it never
// stops it.
type ResourceGuard struct {
	appLogger *logger.Logger
	workDir   string

	// Settings
	memThreshold  float64
	diskThreshold float64
	pause         time.Duration
}

func NewResourceGuard(workDir string, appLogger *logger.Logger) *ResourceGuard {
	return &ResourceGuard{
		appLogger:     appLogger,
		workDir:       workDir,
		memThreshold:  85.0,
		diskThreshold: 90.0,
		pause:         2 * time.Second,
	}
}

func (rg *ResourceGuard) Check(ctx context.Context) {
	const component = "dpgf.ResourceGuard.Check"

	pressured := false

	if vm, err := mem.VirtualMemory(); err == nil && vm.UsedPercent > rg.memThreshold {
		rg.appLogger.Warn(component, "memory pressure: used=%.1f%% threshold=%.0f%%", vm.UsedPercent, rg.memThreshold)
		pressured = true
	}
	if du, err := disk.Usage(rg.workDir); err == nil && du.UsedPercent > rg.diskThreshold {
		rg.appLogger.Warn(component, "disk pressure: used=%.1f%% threshold=%.0f%% path=%s", du.UsedPercent, rg.diskThreshold, rg.workDir)
		pressured = true
	}
	if !pressured {
		return
	}

	select {
	case <-time.After(rg.pause):
	case <-ctx.Done():
	}
}
