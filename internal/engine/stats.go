package engine

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// SystemStats is a snapshot of the machine the worker runs on, logged at
// startup so encode throughput reports have context.
type SystemStats struct {
	Hostname     string
	Platform     string
	CPUCount     int
	MemTotal     uint64
	MemAvailable uint64
}

// CollectSystemStats gathers the snapshot. Each probe is best effort; a
// field that cannot be read stays zero.
func CollectSystemStats(ctx context.Context) SystemStats {
	var stats SystemStats

	if info, err := host.InfoWithContext(ctx); err == nil {
		stats.Hostname = info.Hostname
		stats.Platform = info.Platform
	}
	if count, err := cpu.CountsWithContext(ctx, true); err == nil {
		stats.CPUCount = count
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.MemTotal = vm.Total
		stats.MemAvailable = vm.Available
	}
	return stats
}

func (w *Worker) logStartup(ctx context.Context) {
	stats := CollectSystemStats(ctx)
	w.log.Info("worker started",
		"hostname", stats.Hostname,
		"platform", stats.Platform,
		"cpus", stats.CPUCount,
		"mem_total", stats.MemTotal,
		"mem_available", stats.MemAvailable,
	)
}
