package tui

import (
	"context"
	"time"

	"github.com/w31r4/gomon/internal/export"
	"github.com/w31r4/gomon/internal/logging"
	"github.com/w31r4/gomon/internal/monitor"
	"github.com/w31r4/gomon/internal/process"
	"github.com/w31r4/gomon/internal/settings"

	tea "github.com/charmbracelet/bubbletea"
)

// --- 消息类型 ---
// 所有异步任务的结果都以消息的形式回到 Update，和按键、定时器走同一个队列。

// tickMsg 由 1 秒定时器产生，触发一次刷新。
type tickMsg time.Time

// snapshotMsg 携带一次刷新的结果。
type snapshotMsg struct {
	records []process.Record
	host    process.HostStats
	err     error
}

// killDoneMsg 是 kill 任务的结果。
type killDoneMsg struct {
	req monitor.KillRequest
	err error
}

// exportDoneMsg 是导出任务的结果。
type exportDoneMsg struct {
	msg string
	err error
}

// logsLoadedMsg 是读取日志文件的结果。
type logsLoadedMsg struct {
	lines []string
	err   error
}

// settingsSavedMsg 在主题写盘后返回，只用于记录失败。
type settingsSavedMsg struct{ err error }

// hideToastMsg 清除当前 toast，不管它是不是触发这个定时器的那一个。
type hideToastMsg struct{}

const (
	snapshotTimeout = 5 * time.Second
	killTimeout     = 2 * time.Second
)

// tick 返回下一次刷新定时器。
func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// hideToastAfter 在 d 之后清除 toast。
func hideToastAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return hideToastMsg{} })
}

// takeSnapshot 在后台刷新 provider 并读取新的进程列表。
func takeSnapshot(p process.Provider) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		if err := p.Refresh(ctx); err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{records: p.Processes(), host: p.Host()}
	}
}

// killParent 终止 req 指向的父进程。
func killParent(p process.Provider, req monitor.KillRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), killTimeout)
		defer cancel()
		return killDoneMsg{req: req, err: p.Kill(ctx, req.ParentPid)}
	}
}

// exportCSV 把请求时刻的快照写入 path。records 由调用方复制，任务不会再看到之后的刷新。
func exportCSV(path, lockPath string, records []process.Record, host process.HostStats) tea.Cmd {
	return func() tea.Msg {
		msg, err := export.Write(path, lockPath, records, host)
		return exportDoneMsg{msg: msg, err: err}
	}
}

// loadLogs 读取日志文件。
func loadLogs(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logging.ReadLines(path)
		return logsLoadedMsg{lines: lines, err: err}
	}
}

// saveSettings 持久化主题。
func saveSettings(path string, theme settings.Theme) tea.Cmd {
	return func() tea.Msg {
		return settingsSavedMsg{err: settings.Save(path, settings.Settings{Theme: theme})}
	}
}
