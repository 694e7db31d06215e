package process

import (
	"fmt"
	"time"
)

const (
	longRunning      = 90 * 24 * time.Hour
	highMemThreshold = 1024 * 1024 * 1024
	highCPUTime      = 2 * time.Hour
)

// Warnings returns human-readable health notes for a record.
func Warnings(r Record) []string {
	var warnings []string

	switch r.Status {
	case Zombie:
		warnings = append(warnings, "Process is a zombie (defunct)")
	case Stopped:
		warnings = append(warnings, "Process is stopped")
	}

	if time.Duration(r.RunTime)*time.Second > longRunning {
		warnings = append(warnings, "Process has been running for over 90 days")
	}

	if r.Memory > highMemThreshold {
		rssMB := float64(r.Memory) / (1024 * 1024)
		warnings = append(warnings, fmt.Sprintf("Process is using high memory (%.2f MB RSS)", rssMB))
	}

	if time.Duration(r.CPUTime)*time.Millisecond > highCPUTime {
		warnings = append(warnings, "Process has high accumulated CPU time (>2h)")
	}

	return warnings
}
