package ffmpeg

import (
	"github.com/shirou/gopsutil/v3/process"
)

// ProcStats is a point-in-time resource sample of a running child.
type ProcStats struct {
	CPUPercent float64
	RSSBytes   uint64
}

// ProcMonitor samples CPU and memory usage of one child process. Samples
// are best-effort: a child that exits between samples yields an error and
// the caller just stops sampling.
type ProcMonitor struct {
	proc *process.Process
}

// NewProcMonitor attaches to a process id.
func NewProcMonitor(pid int) (*ProcMonitor, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, err
	}
	return &ProcMonitor{proc: p}, nil
}

// Sample reads the current CPU percentage and resident set size.
func (m *ProcMonitor) Sample() (ProcStats, error) {
	cpu, err := m.proc.CPUPercent()
	if err != nil {
		return ProcStats{}, err
	}
	mem, err := m.proc.MemoryInfo()
	if err != nil {
		return ProcStats{}, err
	}
	return ProcStats{CPUPercent: cpu, RSSBytes: mem.RSS}, nil
}
