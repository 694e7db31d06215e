// Package monitor holds gomon's controller state: the process table, the
// selected process, the kill confirmation, the toast and the log ring.
//
// State has no goroutines and no locks. The TUI owns exactly one State and
// mutates it only from its Update loop, so every transition here is applied
// to completion before the next one starts. Work that can block (snapshots,
// kills, file I/O) happens outside and comes back through the *Result
// methods.
package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/w31r4/gomon/internal/logging"
	"github.com/w31r4/gomon/internal/process"
	"github.com/w31r4/gomon/internal/settings"
)

// Tab is the active top-level view.
type Tab int

const (
	TabProcesses Tab = iota
	TabSystem
	TabSettings
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabProcesses, TabSystem, TabSettings}

func (t Tab) String() string {
	switch t {
	case TabSystem:
		return "System"
	case TabSettings:
		return "Settings"
	default:
		return "Processes"
	}
}

// ToastKind colours a toast.
type ToastKind int

const (
	ToastSuccess ToastKind = iota
	ToastError
)

// Toast is a short-lived status message.
type Toast struct {
	Message string
	Kind    ToastKind
}

// KillRequest is what ConfirmKill hands to whoever performs the kill.
// The target is the parent of the selected process.
type KillRequest struct {
	Name      string
	Pid       int32
	ParentPid int32
	HasParent bool
}

// ErrNoParent is reported when the selected process has no parent to kill.
var ErrNoParent = errors.New("process has no parent")

// LoadingLogs is shown in the log view while a log load is in flight.
const LoadingLogs = "Loading logs..."

// Options configures New.
type Options struct {
	Theme  settings.Theme
	Host   process.HostStats
	Info   process.HostInfo
	Logger *slog.Logger
}

// State is the controller's root aggregate.
type State struct {
	table    Table
	selected *process.Record
	tab      Tab
	pending  bool
	toast    *Toast
	toastSeq uint64
	logs     LogRing
	theme    settings.Theme
	host     process.HostStats
	info     process.HostInfo
	log      *slog.Logger
}

// New builds the initial state from a first snapshot. Every event logged
// through the state is written to opts.Logger and pushed into the log ring.
func New(records []process.Record, opts Options) *State {
	s := &State{
		table: NewTable(records),
		theme: opts.Theme,
		host:  opts.Host,
		info:  opts.Info,
	}
	if s.theme == "" {
		s.theme = settings.Default().Theme
	}
	base := opts.Logger
	if base == nil {
		base = logging.Discard()
	}
	ring := logging.NewHandler(logging.LineFunc(s.logs.Push), slog.LevelInfo)
	s.log = slog.New(logging.Tee(base.Handler(), ring))
	return s
}

// Logger returns the logger that also feeds the log ring.
func (s *State) Logger() *slog.Logger { return s.log }

// --- table ---

func (s *State) Filter() string { return s.table.Filter() }

// SetFilter changes the name filter. The selection is left alone even if the
// selected process is filtered out of view.
func (s *State) SetFilter(f string) {
	if f == s.table.Filter() {
		return
	}
	s.table.SetFilter(f)
	s.log.Info(fmt.Sprintf("Set process filter to: %s", f))
}

// Records is the whole table in sorted order, ignoring the filter.
func (s *State) Records() []process.Record { return s.table.Records() }

// Filtered is the current view of the table.
func (s *State) Filtered() []process.Record { return s.table.Filtered() }

// Total is the number of processes in the last snapshot.
func (s *State) Total() int { return s.table.Len() }

func (s *State) SortKey() SortKey { return s.table.SortKey() }

// SortBy requests sorting by d, toggling direction if d is already ascending.
func (s *State) SortBy(d Dimension) {
	k := s.table.SortBy(d)
	s.log.Info("Sort " + k.String())
}

// Ancestry returns the selected process's known ancestors, oldest first,
// ending with the selected process itself.
func (s *State) Ancestry(limit int) []process.Record {
	if s.selected == nil {
		return nil
	}
	return s.table.Ancestry(s.selected.Pid, limit)
}

// Refresh replaces the table with a new snapshot and reconciles the
// selection by pid. A selection that disappeared is dropped together with
// any pending kill confirmation.
func (s *State) Refresh(records []process.Record, host process.HostStats) {
	s.table.Replace(records)
	s.host = host
	if s.selected == nil {
		return
	}
	if fresh, ok := s.table.Find(s.selected.Pid); ok {
		s.selected = &fresh
		return
	}
	s.selected = nil
	s.pending = false
}

func (s *State) Host() process.HostStats { return s.host }
func (s *State) Info() process.HostInfo  { return s.info }

// ExportSnapshot copies what an export should write: the filtered view and
// the host stats as of now.
func (s *State) ExportSnapshot() ([]process.Record, process.HostStats) {
	return s.table.Filtered(), s.host
}

// --- selection ---

// Select selects the process with pid, or clears the selection if pid is not
// in the table. Either way a pending kill confirmation is cancelled.
func (s *State) Select(pid int32) {
	s.pending = false
	r, ok := s.table.Find(pid)
	if !ok {
		s.selected = nil
		return
	}
	s.selected = &r
	s.log.Info(fmt.Sprintf("Selected process: %s", r.DisplayName()))
}

// Selected returns a copy of the selected record.
func (s *State) Selected() (process.Record, bool) {
	if s.selected == nil {
		return process.Record{}, false
	}
	return *s.selected, true
}

// --- kill confirmation ---

// KillPending reports whether a kill is waiting for confirmation.
func (s *State) KillPending() bool { return s.pending }

// RequestKill enters the confirmation state. Without a selection it does
// nothing and returns false.
func (s *State) RequestKill() bool {
	if s.selected == nil {
		return false
	}
	s.pending = true
	s.log.Warn(fmt.Sprintf("Kill requested for: %s", s.selected.DisplayName()))
	return true
}

// PressDelete is the delete-key shortcut for RequestKill. It is honoured
// only on the Processes tab, with a selection, and when no confirmation is
// already pending.
func (s *State) PressDelete() bool {
	if s.tab != TabProcesses || s.pending || s.selected == nil {
		return false
	}
	return s.RequestKill()
}

// ConfirmKill leaves the confirmation state and clears the selection.
//
// The returned request names the parent of the selected process. When
// there is nothing to kill (no selection, or no parent) the failure toast is
// shown right away and dispatch is false; otherwise the caller must perform
// the kill and report back through KillResult.
func (s *State) ConfirmKill() (req KillRequest, dispatch bool) {
	if s.selected != nil {
		req.Name = s.selected.DisplayName()
		req.Pid = s.selected.Pid
		req.ParentPid, req.HasParent = s.selected.ParentPID()
	}
	s.pending = false
	s.selected = nil
	if !req.HasParent {
		s.KillResult(req, ErrNoParent)
		return req, false
	}
	return req, true
}

// KillResult shows the outcome of a kill as a toast.
func (s *State) KillResult(req KillRequest, err error) {
	if err != nil {
		msg := fmt.Sprintf("Failed to kill parent of %s", req.Name)
		attrs := []any{"error", err.Error()}
		if h := Hint(err); h != "" {
			attrs = append(attrs, "hint", h)
		}
		s.log.Error(msg, attrs...)
		s.ShowToast(msg, ToastError)
		return
	}
	msg := fmt.Sprintf("Successfully killed parent of %s", req.Name)
	s.log.Info(msg, "ppid", req.ParentPid)
	s.ShowToast(msg, ToastSuccess)
}

// CancelKill leaves the confirmation state and keeps the selection.
func (s *State) CancelKill() {
	s.pending = false
	s.log.Info("Kill canceled")
}

// --- toast ---

// ShowToast replaces any visible toast.
func (s *State) ShowToast(msg string, kind ToastKind) {
	s.toast = &Toast{Message: msg, Kind: kind}
	s.toastSeq++
}

// HideToast clears the toast, whichever one is showing.
func (s *State) HideToast() { s.toast = nil }

func (s *State) Toast() (Toast, bool) {
	if s.toast == nil {
		return Toast{}, false
	}
	return *s.toast, true
}

// ToastSeq increases every time a toast is shown. Callers compare it before
// and after a transition to know whether to arm a hide timer.
func (s *State) ToastSeq() uint64 { return s.toastSeq }

// --- tasks ---

// ExportStarted records that an export task was dispatched.
func (s *State) ExportStarted() {
	s.ShowToast("Exporting...", ToastSuccess)
	s.log.Info("Exporting to CSV...")
}

// ExportResult folds a finished export into the state.
func (s *State) ExportResult(msg string, err error) {
	if err != nil {
		s.log.Error(fmt.Sprintf("Export Failed: %s", err))
		s.ShowToast(fmt.Sprintf("Error: %s", err), ToastError)
		return
	}
	s.log.Info(fmt.Sprintf("Export Success: %s", msg))
	s.ShowToast(msg, ToastSuccess)
}

// LogsLoading replaces the log view with a placeholder.
func (s *State) LogsLoading() { s.logs.Replace([]string{LoadingLogs}) }

// LogsLoaded folds a finished log load into the state. On failure the log
// view shows the error text.
func (s *State) LogsLoaded(lines []string, err error) {
	if err != nil {
		s.logs.Replace([]string{err.Error()})
		s.log.Error(fmt.Sprintf("Failed to load logs for view: %s", err))
		return
	}
	s.logs.Replace(lines)
	s.log.Info(fmt.Sprintf("Successfully loaded %d log lines", len(lines)))
}

// PushLog appends one line to the log ring without writing it to disk.
func (s *State) PushLog(line string) { s.logs.Push(line) }

// LogLines returns the ring contents, oldest first.
func (s *State) LogLines() []string { return s.logs.Lines() }

// --- tabs and theme ---

func (s *State) Tab() Tab { return s.tab }

// SetTab switches tabs. It returns true when the caller should load the
// log file, which happens every time Settings becomes active.
func (s *State) SetTab(t Tab) bool {
	s.tab = t
	s.log.Info(fmt.Sprintf("Changed Tab to %s", t))
	return t == TabSettings
}

// NextTab cycles through Tabs.
func (s *State) NextTab() bool {
	for i, t := range Tabs {
		if t == s.tab {
			return s.SetTab(Tabs[(i+1)%len(Tabs)])
		}
	}
	return s.SetTab(TabProcesses)
}

func (s *State) Theme() settings.Theme { return s.theme }

// ToggleTheme flips the theme and returns the new one. Persisting it is the
// caller's job.
func (s *State) ToggleTheme() settings.Theme {
	s.theme = s.theme.Toggle()
	s.log.Info(fmt.Sprintf("Changed to %s Theme", s.theme))
	return s.theme
}

// Hint appends a short suggestion for common kill failures.
func Hint(err error) string {
	if err == nil {
		return ""
	}
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "operation not permitted") || strings.Contains(lower, "permission denied"):
		return "try running gomon with sudo or as an administrator"
	case strings.Contains(lower, "not found") || strings.Contains(lower, "no such process"):
		return "the process may have already exited"
	default:
		return ""
	}
}
