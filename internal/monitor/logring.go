package monitor

// LogCapacity is the maximum number of lines kept in a LogRing.
const LogCapacity = 100

// LogRing is a bounded FIFO of log lines. 超出容量时丢弃最旧的一行。
type LogRing struct {
	lines []string
}

// Push appends line, evicting the oldest entry once the ring is full.
func (l *LogRing) Push(line string) {
	l.lines = append(l.lines, line)
	if over := len(l.lines) - LogCapacity; over > 0 {
		l.lines = append(l.lines[:0:0], l.lines[over:]...)
	}
}

// Replace swaps the contents for lines, keeping only the newest LogCapacity.
func (l *LogRing) Replace(lines []string) {
	if over := len(lines) - LogCapacity; over > 0 {
		lines = lines[over:]
	}
	l.lines = append([]string(nil), lines...)
}

// Lines returns a copy, oldest first.
func (l *LogRing) Lines() []string { return append([]string(nil), l.lines...) }

func (l *LogRing) Len() int { return len(l.lines) }
