package monitor

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w31r4/gomon/internal/logging"
	"github.com/w31r4/gomon/internal/process"
	"github.com/w31r4/gomon/internal/settings"
)

func rec(pid int32, name string, cpu float64, mem uint64) process.Record {
	return process.Record{Pid: pid, Name: name, CPU: cpu, Memory: mem, Status: process.Running}
}

func child(pid, ppid int32, name string) process.Record {
	r := rec(pid, name, 0, 0)
	r.PPid, r.HasParent = ppid, true
	return r
}

func names(records []process.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func newState(records ...process.Record) *State {
	return New(records, Options{Host: process.HostStats{CPUCores: 4, TotalMemory: 1 << 30}})
}

func TestNameSortScenario(t *testing.T) {
	tbl := NewTable([]process.Record{rec(1, "zebra", 10, 0), rec(2, "apple", 20, 0), rec(3, "middle", 30, 0)})
	// the table starts NameAsc, so asking for name once flips to descending
	tbl.sortKey = CPUAsc

	tbl.SortBy(ByName)
	assert.Equal(t, NameAsc, tbl.SortKey())
	assert.Equal(t, []string{"apple", "middle", "zebra"}, names(tbl.Records()))

	tbl.SortBy(ByName)
	assert.Equal(t, NameDesc, tbl.SortKey())
	assert.Equal(t, []string{"zebra", "middle", "apple"}, names(tbl.Records()))
}

func TestSortToggle(t *testing.T) {
	tests := []struct {
		from SortKey
		dim  Dimension
		want SortKey
	}{
		{NameAsc, ByName, NameDesc},
		{NameDesc, ByName, NameAsc},
		{NameAsc, ByCPU, CPUAsc},
		{NameDesc, ByCPU, CPUAsc},
		{CPUAsc, ByCPU, CPUDesc},
		{CPUDesc, ByMemory, MemAsc},
		{MemAsc, ByMemory, MemDesc},
		{MemDesc, ByName, NameAsc},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s", tt.from, tt.dim), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.Toggle(tt.dim))
		})
	}
}

func TestSortOrders(t *testing.T) {
	records := []process.Record{rec(1, "b", 5, 300), rec(2, "a", 50, 100), rec(3, "c", 0.5, 200)}
	tbl := NewTable(records)

	tbl.SortBy(ByCPU)
	tbl.SortBy(ByCPU)
	got := tbl.Records()
	require.Equal(t, CPUDesc, tbl.SortKey())
	assert.GreaterOrEqual(t, got[0].CPU, got[len(got)-1].CPU)
	assert.Equal(t, []string{"a", "b", "c"}, names(got))

	tbl.SortBy(ByMemory)
	got = tbl.Records()
	assert.LessOrEqual(t, got[0].Memory, got[len(got)-1].Memory)

	tbl.SortBy(ByMemory)
	got = tbl.Records()
	assert.Equal(t, uint64(300), got[0].Memory)
}

func TestSortComparesRawNameBytes(t *testing.T) {
	tbl := NewTable([]process.Record{rec(1, "b", 0, 0), rec(2, "B", 0, 0), rec(3, "a", 0, 0)})
	assert.Equal(t, []string{"B", "a", "b"}, names(tbl.Records()))
}

func TestSortToleratesNaN(t *testing.T) {
	tbl := NewTable([]process.Record{rec(1, "x", math.NaN(), 0), rec(2, "y", 3, 0), rec(3, "z", 1, 0)})
	assert.NotPanics(t, func() {
		tbl.SortBy(ByCPU)
		tbl.SortBy(ByCPU)
	})
	assert.Len(t, tbl.Records(), 3)
}

func TestFilter(t *testing.T) {
	tbl := NewTable([]process.Record{rec(1, "Firefox", 0, 0), rec(2, "bash", 0, 0), rec(3, "firewalld", 0, 0)})

	tests := []struct {
		filter string
		want   []string
	}{
		{"", []string{"Firefox", "bash", "firewalld"}},
		{"fire", []string{"Firefox", "firewalld"}},
		{"FIRE", []string{"Firefox", "firewalld"}},
		{"sh", []string{"bash"}},
		{"nope", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			tbl.SetFilter(tt.filter)
			got := names(tbl.Filtered())
			assert.Equal(t, tt.want, got)
			for _, r := range tbl.Records() {
				in := strings.Contains(strings.ToLower(r.Name), strings.ToLower(tt.filter))
				assert.Equal(t, in, contains(got, r.Name), r.Name)
			}
		})
	}
	// filtering never reorders the stored table
	assert.Equal(t, []string{"Firefox", "bash", "firewalld"}, names(tbl.Records()))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestAncestry(t *testing.T) {
	tbl := NewTable([]process.Record{
		rec(1, "init", 0, 0),
		child(10, 1, "sshd"),
		child(20, 10, "bash"),
		child(30, 20, "vim"),
		child(40, 999, "orphan"),
	})

	assert.Equal(t, []string{"init", "sshd", "bash", "vim"}, names(tbl.Ancestry(30, 10)))
	assert.Equal(t, []string{"bash", "vim"}, names(tbl.Ancestry(30, 1)))
	assert.Equal(t, []string{"orphan"}, names(tbl.Ancestry(40, 10)))
	assert.Nil(t, tbl.Ancestry(12345, 10))
}

func TestAncestryStopsOnCycle(t *testing.T) {
	tbl := NewTable([]process.Record{child(1, 2, "a"), child(2, 1, "b")})
	assert.Len(t, tbl.Ancestry(1, 10), 2)
}

func TestLogRingBound(t *testing.T) {
	var ring LogRing
	for i := 1; i <= 101; i++ {
		ring.Push(fmt.Sprintf("line %d", i))
	}
	lines := ring.Lines()
	require.Len(t, lines, LogCapacity)
	assert.NotContains(t, lines, "line 1")
	assert.Equal(t, "line 2", lines[0])
	assert.Equal(t, "line 101", lines[len(lines)-1])
}

func TestLogRingReplaceKeepsNewest(t *testing.T) {
	var ring LogRing
	in := make([]string, 150)
	for i := range in {
		in[i] = fmt.Sprintf("%d", i)
	}
	ring.Replace(in)
	lines := ring.Lines()
	require.Len(t, lines, LogCapacity)
	assert.Equal(t, "50", lines[0])
	assert.Equal(t, "149", lines[99])
}

func TestSelectionReconciledByPid(t *testing.T) {
	s := newState(rec(1, "a", 1, 10), rec(2, "b", 2, 20))
	s.Select(2)

	// re-sorted fresh snapshot with new stats for pid 2
	s.Refresh([]process.Record{rec(2, "b", 99, 2000), rec(1, "a", 1, 10)}, process.HostStats{CPUCores: 4, TotalMemory: 1 << 30})
	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, int32(2), sel.Pid)
	assert.Equal(t, 99.0, sel.CPU)
	assert.Equal(t, uint64(2000), sel.Memory)

	s.Refresh([]process.Record{rec(1, "a", 1, 10)}, s.Host())
	_, ok = s.Selected()
	assert.False(t, ok)
}

func TestSelectionSurvivesSort(t *testing.T) {
	s := newState(rec(1, "zebra", 0, 0), rec(2, "apple", 0, 0), rec(3, "middle", 0, 0))
	s.Select(1)
	s.SortBy(ByName)
	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "zebra", sel.Name)
}

func TestVanishedSelectionClearsPendingKill(t *testing.T) {
	s := newState(child(5, 1, "worker"))
	s.Select(5)
	require.True(t, s.RequestKill())

	s.Refresh(nil, s.Host())
	assert.False(t, s.KillPending())
}

func TestSelectUnknownPidClearsSelection(t *testing.T) {
	s := newState(rec(1, "a", 0, 0))
	s.Select(1)
	s.Select(42)
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestRequestKillWithoutSelectionIsNoop(t *testing.T) {
	s := newState(rec(1, "a", 0, 0))
	seq := s.ToastSeq()
	assert.False(t, s.RequestKill())
	assert.False(t, s.KillPending())
	assert.Equal(t, seq, s.ToastSeq())
}

func TestKillWorkflow(t *testing.T) {
	s := newState(child(7, 3, "sleep"), rec(3, "bash", 0, 0))
	s.Select(7)
	require.True(t, s.RequestKill())
	assert.True(t, s.KillPending())

	seq := s.ToastSeq()
	req, dispatch := s.ConfirmKill()
	assert.True(t, dispatch)
	assert.Equal(t, KillRequest{Name: "sleep", Pid: 7, ParentPid: 3, HasParent: true}, req)
	assert.False(t, s.KillPending())
	_, ok := s.Selected()
	assert.False(t, ok)

	s.KillResult(req, nil)
	assert.Equal(t, seq+1, s.ToastSeq())
	toast, ok := s.Toast()
	require.True(t, ok)
	assert.Equal(t, Toast{Message: "Successfully killed parent of sleep", Kind: ToastSuccess}, toast)
}

func TestKillFailureStillCompletes(t *testing.T) {
	s := newState(child(7, 3, "sleep"))
	s.Select(7)
	s.RequestKill()
	req, dispatch := s.ConfirmKill()
	require.True(t, dispatch)

	s.KillResult(req, errors.New("operation not permitted"))
	toast, ok := s.Toast()
	require.True(t, ok)
	assert.Equal(t, ToastError, toast.Kind)
	assert.Equal(t, "Failed to kill parent of sleep", toast.Message)
	assert.False(t, s.KillPending())

	lines := s.LogLines()
	last := lines[len(lines)-1]
	assert.Contains(t, last, "[ERROR] Failed to kill parent of sleep")
	assert.Contains(t, last, "hint=try running gomon with sudo")
}

func TestConfirmKillWithoutParent(t *testing.T) {
	s := newState(rec(1, "init", 0, 0))
	s.Select(1)
	s.RequestKill()

	seq := s.ToastSeq()
	_, dispatch := s.ConfirmKill()
	assert.False(t, dispatch)
	assert.Equal(t, seq+1, s.ToastSeq())
	toast, _ := s.Toast()
	assert.Equal(t, Toast{Message: "Failed to kill parent of init", Kind: ToastError}, toast)
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestCancelKeepsSelection(t *testing.T) {
	s := newState(child(7, 3, "sleep"))
	s.Select(7)
	s.RequestKill()
	s.CancelKill()
	assert.False(t, s.KillPending())
	_, ok := s.Selected()
	assert.True(t, ok)
}

func TestSelectClearsPendingKill(t *testing.T) {
	s := newState(child(7, 3, "sleep"), child(8, 3, "cat"))
	s.Select(7)
	s.RequestKill()
	s.Select(8)
	assert.False(t, s.KillPending())
}

func TestPressDeleteGates(t *testing.T) {
	t.Run("no selection", func(t *testing.T) {
		s := newState(rec(1, "a", 0, 0))
		assert.False(t, s.PressDelete())
	})
	t.Run("wrong tab", func(t *testing.T) {
		s := newState(rec(1, "a", 0, 0))
		s.Select(1)
		s.SetTab(TabSystem)
		assert.False(t, s.PressDelete())
		assert.False(t, s.KillPending())
	})
	t.Run("already pending", func(t *testing.T) {
		s := newState(rec(1, "a", 0, 0))
		s.Select(1)
		require.True(t, s.PressDelete())
		n := len(s.LogLines())
		assert.False(t, s.PressDelete())
		assert.Len(t, s.LogLines(), n)
	})
	t.Run("honoured", func(t *testing.T) {
		s := newState(rec(1, "a", 0, 0))
		s.Select(1)
		assert.True(t, s.PressDelete())
		assert.True(t, s.KillPending())
	})
}

func TestToastReplaceAndHide(t *testing.T) {
	s := newState()
	s.ShowToast("first", ToastSuccess)
	s.ShowToast("second", ToastError)
	toast, ok := s.Toast()
	require.True(t, ok)
	assert.Equal(t, "second", toast.Message)

	// a hide from the first toast's timer still clears the second one
	s.HideToast()
	_, ok = s.Toast()
	assert.False(t, ok)
}

func TestExportFlow(t *testing.T) {
	s := newState(rec(1, "nginx", 0, 0), rec(2, "bash", 0, 0))
	s.SetFilter("ngi")
	records, host := s.ExportSnapshot()
	assert.Equal(t, []string{"nginx"}, names(records))
	assert.Equal(t, 4, host.CPUCores)

	s.ExportStarted()
	toast, _ := s.Toast()
	assert.Equal(t, Toast{Message: "Exporting...", Kind: ToastSuccess}, toast)

	s.ExportResult("", errors.New("disk full"))
	toast, _ = s.Toast()
	assert.Equal(t, Toast{Message: "Error: disk full", Kind: ToastError}, toast)

	s.ExportResult("Export successful to /tmp/x.csv", nil)
	toast, _ = s.Toast()
	assert.Equal(t, Toast{Message: "Export successful to /tmp/x.csv", Kind: ToastSuccess}, toast)
}

func TestLogsLoadFlow(t *testing.T) {
	s := newState()
	s.LogsLoading()
	assert.Equal(t, []string{LoadingLogs}, s.LogLines())

	s.LogsLoaded([]string{"a", "b"}, nil)
	lines := s.LogLines()
	assert.Equal(t, []string{"a", "b"}, lines[:2])
	assert.Contains(t, lines[2], "Successfully loaded 2 log lines")

	s.LogsLoaded(nil, errors.New("failed to read log file: gone"))
	lines = s.LogLines()
	assert.Equal(t, "failed to read log file: gone", lines[0])
}

func TestSetTabRequestsLogLoadOnSettings(t *testing.T) {
	s := newState()
	assert.False(t, s.SetTab(TabSystem))
	assert.True(t, s.SetTab(TabSettings))
	assert.False(t, s.NextTab())
	assert.Equal(t, TabProcesses, s.Tab())
}

func TestToggleTheme(t *testing.T) {
	s := New(nil, Options{Theme: settings.Light})
	assert.Equal(t, settings.Dark, s.ToggleTheme())
	assert.Equal(t, settings.Light, s.ToggleTheme())
}

func TestEventsReachFileAndRing(t *testing.T) {
	var buf bytes.Buffer
	s := New([]process.Record{rec(1, "a", 0, 0)}, Options{Logger: slog.New(logging.NewHandler(&buf, slog.LevelInfo))})
	s.Select(1)
	s.RequestKill()

	ring := s.LogLines()
	require.Len(t, ring, 2)
	assert.Contains(t, ring[1], "[WARN] Kill requested for: a")
	assert.Equal(t, logging.LevelWarn, logging.LevelOf(ring[1]))
	assert.Equal(t, strings.Join(ring, "\n")+"\n", buf.String())
}
