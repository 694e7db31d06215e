// Package export writes a process snapshot to a CSV file.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/w31r4/gomon/internal/process"
)

// Header is the exact header row of an export file.
var Header = []string{
	"PID",
	"Name",
	"Parent PID",
	"Status",
	"CPU %",
	"Memory %",
	"Memory (bytes)",
	"Disk Read (bytes)",
	"Disk Write (bytes)",
	"Runtime (sec)",
}

// ErrNoDestination is returned when no export path could be determined.
var ErrNoDestination = errors.New("could not find download directory")

// Row renders one record as an export row.
func Row(r process.Record, host process.HostStats) []string {
	parent := "N/A"
	if ppid, ok := r.ParentPID(); ok {
		parent = strconv.FormatInt(int64(ppid), 10)
	}
	return []string{
		strconv.FormatInt(int64(r.Pid), 10),
		r.DisplayName(),
		parent,
		string(r.Status),
		fmt.Sprintf("%.2f", host.CPUPercent(r)),
		fmt.Sprintf("%.2f", host.MemoryPercent(r)),
		strconv.FormatUint(r.Memory, 10),
		strconv.FormatUint(r.Disk.ReadBytes, 10),
		strconv.FormatUint(r.Disk.WrittenBytes, 10),
		strconv.FormatUint(r.RunTime, 10),
	}
}

// Write exports records to path and returns a human-readable success message.
// Concurrent exports are serialized on lockPath; an empty lockPath skips locking.
// The caller owns records; Write never retains them.
func Write(path, lockPath string, records []process.Record, host process.HostStats) (string, error) {
	if path == "" {
		return "", ErrNoDestination
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	if lockPath != "" {
		if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
			return "", fmt.Errorf("failed to create lock directory: %w", err)
		}
		lock := flock.New(lockPath)
		if err := lock.Lock(); err != nil {
			return "", fmt.Errorf("failed to lock file: %w", err)
		}
		defer func() { _ = lock.Unlock() }()
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(Row(r, host)); err != nil {
			return "", fmt.Errorf("failed to write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return fmt.Sprintf("Export successful to %s", path), nil
}
