package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/w31r4/gomon/internal/logging"
	"github.com/w31r4/gomon/internal/monitor"
	"github.com/w31r4/gomon/internal/process"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

const (
	minListHeight = 5
	ancestryLimit = 8
	nameWidth     = 24
)

// View 根据当前状态渲染整个界面。它是纯函数，不修改模型也不产生命令。
func (m Model) View() string {
	if m.helpOpen {
		return m.renderHelpView()
	}

	var body string
	switch m.state.Tab() {
	case monitor.TabSystem:
		body = m.renderSystemTab()
	case monitor.TabSettings:
		body = m.renderSettingsTab()
	default:
		body = m.renderProcessesTab()
	}

	parts := []string{m.renderTabs(), body}
	if t := m.renderToast(); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, m.renderFooter())
	return m.styles.doc.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// renderTabs 渲染标题和标签栏。
func (m Model) renderTabs() string {
	tabs := []string{m.styles.title.Render("gomon")}
	for i, t := range monitor.Tabs {
		label := fmt.Sprintf("%d %s", i+1, t)
		if t == m.state.Tab() {
			tabs = append(tabs, m.styles.tabActive.Render(label))
		} else {
			tabs = append(tabs, m.styles.tabInactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n"
}

func (m Model) renderProcessesTab() string {
	count := fmt.Sprintf("(%d/%d)", len(m.state.Filtered()), m.state.Total())
	sortInfo := m.styles.faint.Render("sort: " + m.state.SortKey().String())
	header := fmt.Sprintf("Search processes %s: %s  %s", m.styles.faint.Render(count), m.input.View(), sortInfo)

	list := m.renderProcessPane()
	var side string
	if m.state.KillPending() {
		side = m.renderConfirmPane()
	} else {
		side = m.renderDetailsPane()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.JoinHorizontal(lipgloss.Top, list, side))
}

func (m Model) listHeight() int {
	return max(m.height-12, minListHeight)
}

// renderProcessPane 渲染左侧进程列表，只显示光标附近的一屏。
func (m Model) renderProcessPane() string {
	filtered := m.state.Filtered()
	host := m.state.Host()
	var b strings.Builder

	fmt.Fprintln(&b, m.styles.header.Render(fmt.Sprintf("  %-7s %-*s %7s %7s  %s", "PID", nameWidth, "NAME", "CPU%", "MEM%", "STATUS")))

	if len(filtered) == 0 {
		fmt.Fprintln(&b, "  No results...")
		if s := m.suggestions(); s != "" {
			fmt.Fprintln(&b, m.styles.faint.Render("  Did you mean: "+s+"?"))
		}
		return m.styles.listPane.Render(strings.TrimRight(b.String(), "\n"))
	}

	height := m.listHeight()
	cursor := m.cursor()
	start := max(cursor, 0) - height/2
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > len(filtered) {
		end = len(filtered)
		start = max(end-height, 0)
	}

	for i := start; i < end; i++ {
		r := filtered[i]
		line := fmt.Sprintf("%-7d %-*s %7.2f %7.2f  %s",
			r.Pid, nameWidth, truncate(r.DisplayName(), nameWidth),
			host.CPUPercent(r), host.MemoryPercent(r), r.Status)
		if i == cursor {
			fmt.Fprintln(&b, m.styles.selected.Render("❯ "+line))
		} else {
			fmt.Fprintln(&b, "  "+m.styles.row.Render(line))
		}
	}
	return m.styles.listPane.Render(strings.TrimRight(b.String(), "\n"))
}

// suggestions 在子串过滤没有结果时，用模糊匹配给出最多三个候选名。
func (m Model) suggestions() string {
	filter := m.state.Filter()
	if filter == "" {
		return ""
	}
	records := m.state.Records()
	matches := fuzzy.FindFrom(filter, nameSource(records))
	seen := make(map[string]bool)
	var out []string
	for _, match := range matches {
		name := records[match.Index].DisplayName()
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
		if len(out) == 3 {
			break
		}
	}
	return strings.Join(out, ", ")
}

// nameSource 让进程列表满足 fuzzy.Source 接口。
type nameSource []process.Record

func (s nameSource) String(i int) string { return s[i].DisplayName() }
func (s nameSource) Len() int            { return len(s) }

// renderDetailsPane 渲染右侧选中进程的详情。
func (m Model) renderDetailsPane() string {
	r, ok := m.state.Selected()
	if !ok {
		return m.styles.detailPane.Render(m.styles.faint.Render("Select a process (↑/↓)"))
	}
	host := m.state.Host()

	parent := "N/A"
	if ppid, ok := r.ParentPID(); ok {
		parent = strconv.FormatInt(int64(ppid), 10)
	}

	lines := []string{
		m.styles.detailTitle.Render(truncate(r.DisplayName(), 40)),
		m.detailLine("Status", string(r.Status)),
		m.detailLine("Runtime", process.FormatDuration(r.RunTime)),
		m.detailLine("PID", strconv.FormatInt(int64(r.Pid), 10)),
		m.detailLine("Parent PID", parent),
		m.metricLine("CPU", fmt.Sprintf("%.2f%%", host.CPUPercent(r))),
		m.detailLine("CPU Time", process.FormatDuration(r.CPUTime/1000)),
		m.metricLine("Memory", fmt.Sprintf("%s (%.2f%%)", process.FormatBytes(r.Memory), host.MemoryPercent(r))),
		m.detailLine("Disk Read", fmt.Sprintf("%s / %s", process.FormatBytes(r.Disk.ReadBytes), process.FormatBytes(r.Disk.TotalReadBytes))),
		m.detailLine("Disk Write", fmt.Sprintf("%s / %s", process.FormatBytes(r.Disk.WrittenBytes), process.FormatBytes(r.Disk.TotalWrittenBytes))),
	}

	if chain := m.state.Ancestry(ancestryLimit); len(chain) > 1 {
		parts := make([]string, len(chain))
		for i, c := range chain {
			parts[i] = fmt.Sprintf("%s(%d)", c.DisplayName(), c.Pid)
		}
		lines = append(lines, "", m.styles.header.Render("Ancestry"), m.styles.value.Render(strings.Join(parts, " → ")))
	}

	if warnings := process.Warnings(r); len(warnings) > 0 {
		lines = append(lines, "")
		for _, w := range warnings {
			lines = append(lines, m.styles.warning.Render("⚠ "+w))
		}
	}

	lines = append(lines, "", m.styles.faint.Render("x/del: kill parent"))
	return m.styles.detailPane.Render(strings.Join(lines, "\n"))
}

func (m Model) detailLine(label, value string) string {
	return m.styles.label.Render(label+":") + " " + m.styles.value.Render(value)
}

func (m Model) metricLine(label, value string) string {
	return m.styles.label.Render(label+":") + " " + m.styles.metric.Render(value)
}

// renderConfirmPane 渲染 kill 确认框，明确写出将被终止的是父进程。
func (m Model) renderConfirmPane() string {
	title := m.styles.confirmTitle.Render("Confirm Kill")
	r, ok := m.state.Selected()
	if !ok {
		body := m.styles.confirmPane.Render(m.styles.confirmMessage.Render("Error: No process selected for kill confirmation."))
		return lipgloss.JoinVertical(lipgloss.Left, title, body, m.styles.faint.Render(" n/esc: cancel"))
	}
	parent := "N/A"
	if ppid, ok := r.ParentPID(); ok {
		parent = strconv.FormatInt(int64(ppid), 10)
	}
	msg := fmt.Sprintf("Are you sure?\n\nThis will kill the parent (PID: %s) of the selected process (PID: %d).", parent, r.Pid)
	body := m.styles.confirmPane.Render(m.styles.confirmMessage.Render(msg))
	return lipgloss.JoinVertical(lipgloss.Left, title, body, m.styles.faint.Render(" y/enter: confirm • n/esc: cancel"))
}

// renderSystemTab 渲染主机信息。
func (m Model) renderSystemTab() string {
	info := m.state.Info()
	host := m.state.Host()
	lines := []string{
		m.styles.detailTitle.Render("System Information"),
		"",
		m.detailLine("OS", info.OSName),
		m.detailLine("OS Version", info.OSVersion),
		m.detailLine("Kernel", info.KernelVersion),
		m.detailLine("Hostname", info.Hostname),
		m.detailLine("CPU", info.CPUBrand),
		m.detailLine("Cores", strconv.Itoa(host.CPUCores)),
		m.metricLine("Total Mem", fmt.Sprintf("%d MB", host.TotalMemory/1024/1024)),
		m.metricLine("Used Mem", fmt.Sprintf("%d MB", host.UsedMemory/1024/1024)),
	}
	return m.styles.listPane.Render(strings.Join(lines, "\n"))
}

// renderSettingsTab 渲染主题设置和日志视图。
func (m Model) renderSettingsTab() string {
	theme := m.detailLine("Theme", string(m.state.Theme())) + m.styles.faint.Render("  (t to toggle)")
	logs := m.styles.header.Render("Logs") + m.styles.faint.Render("  newest first • r: reload • ↑/↓: scroll")
	return lipgloss.JoinVertical(lipgloss.Left, theme, "", logs, m.styles.listPane.Render(m.logView.View()))
}

// renderLogLines 把日志从新到旧排列，并按行内的级别标记着色。
func (m Model) renderLogLines() string {
	lines := m.state.LogLines()
	out := make([]string, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		switch logging.LevelOf(line) {
		case logging.LevelError:
			out = append(out, m.styles.logError.Render(line))
		case logging.LevelWarn:
			out = append(out, m.styles.logWarn.Render(line))
		default:
			out = append(out, m.styles.logInfo.Render(line))
		}
	}
	return strings.Join(out, "\n")
}

func (m Model) renderToast() string {
	t, ok := m.state.Toast()
	if !ok {
		return ""
	}
	if t.Kind == monitor.ToastError {
		return m.styles.toastError.Render("✗ " + t.Message)
	}
	return m.styles.toastSuccess.Render("✓ " + t.Message)
}

// renderFooter 根据当前模式显示不同的按键提示。
func (m Model) renderFooter() string {
	switch {
	case m.state.KillPending():
		return m.help.View(confirmKeys{m.keys})
	case m.input.Focused():
		return m.help.View(searchKeys{m.keys})
	default:
		return m.help.View(m.keys)
	}
}

// renderHelpView 渲染帮助覆盖层。
func (m Model) renderHelpView() string {
	doc := m.helpDoc
	if doc == "" {
		doc = helpMarkdown
	}
	body := m.styles.helpPane.Render(doc)
	return m.styles.doc.Render(lipgloss.JoinVertical(lipgloss.Left, body, m.styles.faint.Render(" ?/esc: close help • q: quit")))
}

// truncate 保证字符串不超过 maxLen 个字符，超出时以 "…" 结尾。
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}
