// Package logging writes gomon's event log: one plain-text line per record,
// tagged with the level in brackets so the log view can colour it.
package logging

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Level is the display level inferred from a log line.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// LevelOf guesses a line's level from its bracketed tag.
func LevelOf(line string) Level {
	switch {
	case strings.Contains(line, "[ERROR]"):
		return LevelError
	case strings.Contains(line, "[WARN]"):
		return LevelWarn
	default:
		return LevelInfo
	}
}

// FormatLine renders one log line the same way the file handler does.
func FormatLine(t time.Time, level slog.Level, msg string, attrs ...slog.Attr) string {
	var b strings.Builder
	b.WriteString(t.Format(timeLayout))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)
	for _, a := range attrs {
		writeAttr(&b, "", a)
	}
	return b.String()
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix + a.Key + "."
		if a.Key == "" {
			p = prefix
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, p, ga)
		}
		return
	}
	fmt.Fprintf(b, " %s%s=%s", prefix, a.Key, a.Value.String())
}

// Handler is a slog.Handler producing FormatLine lines.
type Handler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewHandler returns a Handler writing to w at or above level.
func NewHandler(w io.Writer, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		attrs = append(attrs, a)
		return true
	})

	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}
	line := FormatLine(t, r.Level, r.Message, attrs...) + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line)
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	if h.prefix != "" {
		for i := len(h.attrs); i < len(nh.attrs); i++ {
			nh.attrs[i].Key = h.prefix + nh.attrs[i].Key
		}
	}
	return &nh
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.prefix = h.prefix + name + "."
	return &nh
}

// Open creates (truncating) the log file at path and returns a logger
// writing to it. When the file cannot be created the returned logger
// discards everything and the error explains why.
func Open(path string) (*slog.Logger, io.Closer, error) {
	return openFile(path, os.O_TRUNC)
}

// Append is like Open but keeps whatever the file already holds.
// Short-lived subcommands use it so they never wipe a monitor session's log.
func Append(path string) (*slog.Logger, io.Closer, error) {
	return openFile(path, 0)
}

func openFile(path string, flag int) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return Discard(), io.NopCloser(nil), fmt.Errorf("log path not found")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Discard(), io.NopCloser(nil), fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND|flag, 0o644)
	if err != nil {
		return Discard(), io.NopCloser(nil), fmt.Errorf("failed to create log file at %s: %w", path, err)
	}
	return slog.New(NewHandler(f, slog.LevelInfo)), f, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(NewHandler(io.Discard, slog.LevelError+1))
}

// ReadLines reads the log file at path split on line boundaries.
func ReadLines(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("log path not found")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	return lines, nil
}

// Tee returns a handler that hands every record to each of hs.
func Tee(hs ...slog.Handler) slog.Handler {
	return teeHandler(hs)
}

type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}

// LineFunc adapts a func(line) into an io.Writer for NewHandler; each write
// is one formatted line with its trailing newline removed.
type LineFunc func(line string)

func (f LineFunc) Write(p []byte) (int, error) {
	f(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
