package process

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Status is the run state of a process as reported by the OS.
type Status string

const (
	Running  Status = "Running"
	Sleeping Status = "Sleeping"
	Stopped  Status = "Stopped"
	Idle     Status = "Idle"
	Zombie   Status = "Zombie"
	Waiting  Status = "Waiting"
	Locked   Status = "Locked"
	Unknown  Status = "Unknown"
)

// statusFromOS maps gopsutil's status letters/words to a Status.
func statusFromOS(states []string) Status {
	if len(states) == 0 {
		return Unknown
	}
	switch states[0] {
	case process.Running:
		return Running
	case process.Sleep:
		return Sleeping
	case process.Stop:
		return Stopped
	case process.Idle:
		return Idle
	case process.Zombie:
		return Zombie
	case process.Wait, process.Blocked:
		return Waiting
	case process.Lock:
		return Locked
	default:
		return Unknown
	}
}

// DiskUsage holds the IO counters of a process. The "since last refresh"
// counters are deltas between two consecutive snapshots.
type DiskUsage struct {
	ReadBytes         uint64
	WrittenBytes      uint64
	TotalReadBytes    uint64
	TotalWrittenBytes uint64
}

// Record is an immutable snapshot of one process at refresh time.
// Records are passed and stored by value; nothing mutates one after Refresh builds it.
type Record struct {
	Pid       int32
	PPid      int32
	HasParent bool
	// Name is kept as the raw bytes the OS returned; use DisplayName for rendering.
	Name    string
	CPU     float64 // percent of one core
	Memory  uint64  // resident bytes
	RunTime uint64  // seconds since start
	Status  Status
	CPUTime uint64 // accumulated CPU time, milliseconds
	Disk    DiskUsage
}

// ParentPID returns the parent pid and whether the process has one.
func (r Record) ParentPID() (int32, bool) {
	return r.PPid, r.HasParent
}

// DisplayName decodes the raw name for display, replacing invalid UTF-8.
func (r Record) DisplayName() string {
	return strings.ToValidUTF8(r.Name, "�")
}

// HostStats are the aggregate host facts the table needs for percentages.
type HostStats struct {
	CPUCores    int
	TotalMemory uint64
	UsedMemory  uint64
}

// CPUPercent normalizes a record's CPU usage by the core count.
func (h HostStats) CPUPercent(r Record) float64 {
	if h.CPUCores <= 0 {
		return 0
	}
	return r.CPU / float64(h.CPUCores)
}

// MemoryPercent returns the record's share of total memory in percent.
func (h HostStats) MemoryPercent(r Record) float64 {
	if h.TotalMemory == 0 {
		return 0
	}
	return float64(r.Memory) / float64(h.TotalMemory) * 100
}

// HostInfo holds the static host facts queried once at startup.
type HostInfo struct {
	OSName        string
	OSVersion     string
	KernelVersion string
	Hostname      string
	CPUBrand      string
}

// Provider is the snapshot source consumed by the monitor.
// Refresh must precede Processes for fresh data.
type Provider interface {
	Refresh(ctx context.Context) error
	Processes() []Record
	Host() HostStats
	Info() HostInfo
	Kill(ctx context.Context, pid int32) error
}

// KillProcess terminates the process with the given pid.
func KillProcess(ctx context.Context, pid int32) error {
	if pid <= 0 {
		return fmt.Errorf("invalid PID: %d", pid)
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return fmt.Errorf("process %d: %w", pid, err)
	}
	if err := p.KillWithContext(ctx); err != nil {
		return fmt.Errorf("failed to kill PID %d: %w", pid, err)
	}
	return nil
}
