package tui

import (
	"fmt"

	"github.com/w31r4/gomon/internal/monitor"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update 是唯一修改状态的入口。Bubble Tea 保证它一次只处理一条消息，
// 所以按键、定时器和任务结果之间不需要任何锁。
//
// 任何一次转换只要显示了新的 toast，就在这里统一挂上 3 秒后的隐藏定时器。
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	seq := m.state.ToastSeq()
	next, cmd := m.update(msg)
	if next.state.Tab() == monitor.TabSettings {
		next.syncLogView()
	}
	if next.state.ToastSeq() != seq {
		cmd = tea.Batch(cmd, hideToastAfter(next.cfg.ToastDuration))
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.logView.Width = max(msg.Width-6, 20)
		m.logView.Height = max(msg.Height-12, 5)
		m.syncLogView()
		return m, nil

	// 1. 定时刷新：上一个快照还没回来时不再派发新的，只重新挂定时器。
	case tickMsg:
		cmds := []tea.Cmd{tick(m.cfg.Interval)}
		if !m.refreshing {
			m.refreshing = true
			cmds = append(cmds, takeSnapshot(m.provider))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.refreshing = false
		if msg.err != nil {
			m.state.Logger().Error(fmt.Sprintf("Refresh failed: %s", msg.err))
			return m, nil
		}
		m.state.Refresh(msg.records, msg.host)
		return m, nil

	// 2. 异步任务结果
	case killDoneMsg:
		m.state.KillResult(msg.req, msg.err)
		return m, nil

	case exportDoneMsg:
		m.state.ExportResult(msg.msg, msg.err)
		return m, nil

	case logsLoadedMsg:
		m.state.LogsLoaded(msg.lines, msg.err)
		m.syncLogView()
		return m, nil

	case settingsSavedMsg:
		if msg.err != nil {
			m.state.Logger().Error(fmt.Sprintf("Failed to save settings: %s", msg.err))
		}
		return m, nil

	case hideToastMsg:
		m.state.HideToast()
		return m, nil

	// 3. 按键
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.state.Tab() == monitor.TabSettings {
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// 帮助层优先
	if m.helpOpen {
		switch {
		case key.Matches(msg, m.keys.Help), msg.String() == "esc":
			m.helpOpen = false
		case msg.String() == "ctrl+c", msg.String() == "q":
			return m, tea.Quit
		}
		return m, nil
	}

	// 确认 kill 时只接受确认/取消/退出
	if m.state.KillPending() {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m.confirmKill()
		case key.Matches(msg, m.keys.Cancel):
			m.state.CancelKill()
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		return m, nil
	}

	// delete 是全局快捷键，搜索框有焦点时也生效。
	if key.Matches(msg, m.keys.Delete) {
		m.state.PressDelete()
		return m, nil
	}

	if m.input.Focused() {
		switch msg.String() {
		case "enter", "esc":
			m.input.Blur()
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.state.SetFilter(m.input.Value())
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.helpOpen = true
		m.helpDoc = renderHelpDoc(m.state.Theme(), m.width)
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(m.state.NextTab())
	case key.Matches(msg, m.keys.Tab1):
		return m.switchTab(m.state.SetTab(monitor.TabProcesses))
	case key.Matches(msg, m.keys.Tab2):
		return m.switchTab(m.state.SetTab(monitor.TabSystem))
	case key.Matches(msg, m.keys.Tab3):
		return m.switchTab(m.state.SetTab(monitor.TabSettings))
	case key.Matches(msg, m.keys.Theme):
		theme := m.state.ToggleTheme()
		m.styles = newStyles(theme)
		m.syncLogView()
		return m, saveSettings(m.cfg.SettingsPath, theme)
	case key.Matches(msg, m.keys.Refresh):
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		return m, takeSnapshot(m.provider)
	}

	switch m.state.Tab() {
	case monitor.TabProcesses:
		return m.handleProcessKey(msg)
	case monitor.TabSettings:
		if key.Matches(msg, m.keys.Reload) {
			return m.reloadLogs()
		}
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleProcessKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Top):
		m.selectAt(0)
	case key.Matches(msg, m.keys.Bottom):
		m.selectAt(len(m.state.Filtered()) - 1)
	case key.Matches(msg, m.keys.SortN):
		m.state.SortBy(monitor.ByName)
	case key.Matches(msg, m.keys.SortC):
		m.state.SortBy(monitor.ByCPU)
	case key.Matches(msg, m.keys.SortM):
		m.state.SortBy(monitor.ByMemory)
	case key.Matches(msg, m.keys.Kill):
		m.state.RequestKill()
	case key.Matches(msg, m.keys.Export):
		records, host := m.state.ExportSnapshot()
		m.state.ExportStarted()
		return m, exportCSV(m.cfg.ExportPath, m.cfg.ExportLockPath, records, host)
	}
	return m, nil
}

// cursor 由选中进程的 pid 推导出来，而不是保存一个下标：重新排序或刷新后下标会失效。
func (m Model) cursor() int {
	sel, ok := m.state.Selected()
	if !ok {
		return -1
	}
	for i, r := range m.state.Filtered() {
		if r.Pid == sel.Pid {
			return i
		}
	}
	return -1
}

func (m Model) moveSelection(delta int) {
	filtered := m.state.Filtered()
	if len(filtered) == 0 {
		return
	}
	i := m.cursor()
	if i < 0 {
		i = 0
	} else {
		i += delta
	}
	m.selectAt(i)
}

func (m Model) selectAt(i int) {
	filtered := m.state.Filtered()
	if len(filtered) == 0 {
		return
	}
	i = max(0, min(i, len(filtered)-1))
	if sel, ok := m.state.Selected(); ok && sel.Pid == filtered[i].Pid {
		return
	}
	m.state.Select(filtered[i].Pid)
}

func (m Model) confirmKill() (Model, tea.Cmd) {
	req, dispatch := m.state.ConfirmKill()
	if !dispatch {
		return m, nil
	}
	return m, killParent(m.provider, req)
}

func (m Model) switchTab(wantLogs bool) (Model, tea.Cmd) {
	if m.input.Focused() {
		m.input.Blur()
	}
	if !wantLogs {
		return m, nil
	}
	return m.reloadLogs()
}

func (m Model) reloadLogs() (Model, tea.Cmd) {
	m.state.LogsLoading()
	m.syncLogView()
	m.logView.GotoTop()
	return m, loadLogs(m.cfg.LogPath)
}

// syncLogView 把日志环形缓冲区的内容同步到 viewport。
func (m *Model) syncLogView() {
	m.logView.SetContent(m.renderLogLines())
}
