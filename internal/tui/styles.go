package tui

import (
	"github.com/w31r4/gomon/internal/settings"

	"github.com/charmbracelet/lipgloss"
)

// palette 是一套主题用到的颜色。
type palette struct {
	accent  lipgloss.Color
	text    lipgloss.Color
	muted   lipgloss.Color
	selBg   lipgloss.Color
	selFg   lipgloss.Color
	label   lipgloss.Color
	metric  lipgloss.Color
	success lipgloss.Color
	warn    lipgloss.Color
	danger  lipgloss.Color
	confirm lipgloss.Color
}

var (
	darkPalette = palette{
		accent:  lipgloss.Color("62"),
		text:    lipgloss.Color("255"),
		muted:   lipgloss.Color("240"),
		selBg:   lipgloss.Color("62"),
		selFg:   lipgloss.Color("255"),
		label:   lipgloss.Color("214"),
		metric:  lipgloss.Color("220"),
		success: lipgloss.Color("46"),
		warn:    lipgloss.Color("220"),
		danger:  lipgloss.Color("9"),
		confirm: lipgloss.Color("178"),
	}
	lightPalette = palette{
		accent:  lipgloss.Color("25"),
		text:    lipgloss.Color("235"),
		muted:   lipgloss.Color("245"),
		selBg:   lipgloss.Color("153"),
		selFg:   lipgloss.Color("16"),
		label:   lipgloss.Color("130"),
		metric:  lipgloss.Color("94"),
		success: lipgloss.Color("28"),
		warn:    lipgloss.Color("136"),
		danger:  lipgloss.Color("160"),
		confirm: lipgloss.Color("166"),
	}
)

// styles 集中定义 TUI 的所有样式，切换主题时整体重建。
type styles struct {
	doc         lipgloss.Style
	title       lipgloss.Style
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	faint       lipgloss.Style
	header      lipgloss.Style
	row         lipgloss.Style
	selected    lipgloss.Style
	listPane    lipgloss.Style
	detailPane  lipgloss.Style
	detailTitle lipgloss.Style
	label       lipgloss.Style
	value       lipgloss.Style
	metric      lipgloss.Style
	warning     lipgloss.Style
	// confirm 覆盖层
	confirmTitle   lipgloss.Style
	confirmPane    lipgloss.Style
	confirmMessage lipgloss.Style
	// toast
	toastSuccess lipgloss.Style
	toastError   lipgloss.Style
	// 日志按级别着色
	logInfo  lipgloss.Style
	logWarn  lipgloss.Style
	logError lipgloss.Style
	helpPane lipgloss.Style
}

func newStyles(theme settings.Theme) styles {
	p := darkPalette
	if theme == settings.Light {
		p = lightPalette
	}
	pane := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	faint := lipgloss.NewStyle().Foreground(p.muted)

	return styles{
		doc:            lipgloss.NewStyle().Margin(0, 1),
		title:          lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		tabActive:      lipgloss.NewStyle().Foreground(p.selFg).Background(p.selBg).Bold(true).Padding(0, 1),
		tabInactive:    lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1),
		faint:          faint,
		header:         lipgloss.NewStyle().Foreground(p.label).Bold(true),
		row:            lipgloss.NewStyle().Foreground(p.text),
		selected:       lipgloss.NewStyle().Background(p.selBg).Foreground(p.selFg),
		listPane:       pane.BorderForeground(p.accent),
		detailPane:     pane.BorderForeground(p.accent).Width(44),
		detailTitle:    lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		label:          lipgloss.NewStyle().Foreground(p.label).Bold(true).Width(12).Align(lipgloss.Right),
		value:          lipgloss.NewStyle().Foreground(p.text),
		metric:         lipgloss.NewStyle().Foreground(p.metric),
		warning:        lipgloss.NewStyle().Foreground(p.danger).Bold(true),
		confirmTitle:   lipgloss.NewStyle().Foreground(p.confirm).Bold(true),
		confirmPane:    pane.BorderForeground(p.confirm).Width(76).Padding(1, 2),
		confirmMessage: lipgloss.NewStyle().Foreground(p.text),
		toastSuccess:   lipgloss.NewStyle().Foreground(p.success).Bold(true),
		toastError:     lipgloss.NewStyle().Foreground(p.danger).Bold(true),
		logInfo:        lipgloss.NewStyle().Foreground(p.text),
		logWarn:        lipgloss.NewStyle().Foreground(p.warn),
		logError:       lipgloss.NewStyle().Foreground(p.danger),
		helpPane:       pane.BorderForeground(p.accent).Padding(0, 1),
	}
}
