package process

import "fmt"

// FormatBytes renders a byte count with IEC units (KiB, MiB, ...).
func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}

	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit && exp < 5; n /= unit {
		div *= unit
		exp++
	}

	value := float64(b) / float64(div)
	suffix := "KMGTPE"[exp]
	return fmt.Sprintf("%.1f %ciB", value, suffix)
}

// FormatDuration renders a number of seconds as a compact h/m/s string.
func FormatDuration(seconds uint64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
