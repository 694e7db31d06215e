package process

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

const (
	// refreshTimeout bounds a whole enumeration pass.
	refreshTimeout = 5 * time.Second
	// cpuWarmup is the delay between the two initial samples so the
	// first snapshot already carries CPU readings.
	cpuWarmup = 200 * time.Millisecond
)

// handle keeps the gopsutil process object alive between refreshes:
// Percent(0) measures against the previous call on the same object.
type handle struct {
	proc       *process.Process
	createTime int64
	lastIO     *process.IOCountersStat
}

// System is the gopsutil-backed Provider for the local host.
type System struct {
	mu      sync.Mutex
	handles map[int32]*handle
	records []Record
	stats   HostStats
	info    HostInfo
}

// NewSystem queries the static host facts and takes two warm-up samples so
// that the first call to Processes reports CPU usage.
func NewSystem(ctx context.Context) (*System, error) {
	s := &System{handles: make(map[int32]*handle)}
	s.info = queryHostInfo(ctx)

	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("counting cpus: %w", err)
	}
	s.stats.CPUCores = cores

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(cpuWarmup):
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func queryHostInfo(ctx context.Context) HostInfo {
	info := HostInfo{
		OSName:        "N/A",
		OSVersion:     "N/A",
		KernelVersion: "N/A",
		Hostname:      "N/A",
		CPUBrand:      "N/A",
	}
	if h, err := host.InfoWithContext(ctx); err == nil {
		info.OSName = orNA(h.Platform)
		info.OSVersion = orNA(h.PlatformVersion)
		info.KernelVersion = orNA(h.KernelVersion)
		info.Hostname = orNA(h.Hostname)
	}
	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		info.CPUBrand = orNA(cpus[0].ModelName)
	}
	return info
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Refresh enumerates all processes and rebuilds the cached snapshot.
// Processes that disappear mid-enumeration are skipped.
func (s *System) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return fmt.Errorf("listing processes: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	seen := make(map[int32]struct{}, len(procs))
	records := make([]Record, 0, len(procs))
	for _, p := range procs {
		createTime, err := p.CreateTimeWithContext(ctx)
		if err != nil {
			continue
		}
		h, ok := s.handles[p.Pid]
		if !ok || h.createTime != createTime {
			// New process, or the pid was reused since the last pass.
			h = &handle{proc: p, createTime: createTime}
			s.handles[p.Pid] = h
		}
		seen[p.Pid] = struct{}{}
		records = append(records, h.sample(ctx, now))
	}
	for pid := range s.handles {
		if _, ok := seen[pid]; !ok {
			delete(s.handles, pid)
		}
	}
	s.records = records

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.stats.TotalMemory = vm.Total
		s.stats.UsedMemory = vm.Used
	}
	return nil
}

func (h *handle) sample(ctx context.Context, now time.Time) Record {
	p := h.proc
	r := Record{Pid: p.Pid, Status: Unknown}

	if name, err := p.NameWithContext(ctx); err == nil {
		r.Name = name
	}
	if ppid, err := p.PpidWithContext(ctx); err == nil && ppid > 0 && ppid != p.Pid {
		r.PPid = ppid
		r.HasParent = true
	}
	if pct, err := p.PercentWithContext(ctx, 0); err == nil {
		r.CPU = pct
	}
	if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
		r.Memory = mi.RSS
	}
	if started := time.UnixMilli(h.createTime); now.After(started) {
		r.RunTime = uint64(now.Sub(started) / time.Second)
	}
	if states, err := p.StatusWithContext(ctx); err == nil {
		r.Status = statusFromOS(states)
	}
	if t, err := p.TimesWithContext(ctx); err == nil && t != nil {
		r.CPUTime = uint64((t.User + t.System) * 1000)
	}
	if io, err := p.IOCountersWithContext(ctx); err == nil && io != nil {
		r.Disk.TotalReadBytes = io.ReadBytes
		r.Disk.TotalWrittenBytes = io.WriteBytes
		if h.lastIO != nil {
			r.Disk.ReadBytes = delta(io.ReadBytes, h.lastIO.ReadBytes)
			r.Disk.WrittenBytes = delta(io.WriteBytes, h.lastIO.WriteBytes)
		}
		h.lastIO = io
	}
	return r
}

func delta(cur, prev uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}

// Processes returns a copy of the last snapshot.
func (s *System) Processes() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Host returns the aggregate stats of the last snapshot.
func (s *System) Host() HostStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Info returns the static host facts.
func (s *System) Info() HostInfo {
	return s.info
}

// Kill terminates pid if it is part of the last snapshot.
func (s *System) Kill(ctx context.Context, pid int32) error {
	s.mu.Lock()
	_, known := s.handles[pid]
	s.mu.Unlock()
	if !known {
		return fmt.Errorf("process %d not found", pid)
	}
	return KillProcess(ctx, pid)
}
