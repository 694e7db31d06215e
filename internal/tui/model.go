package tui

import (
	"github.com/w31r4/gomon/internal/config"
	"github.com/w31r4/gomon/internal/monitor"
	"github.com/w31r4/gomon/internal/process"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Model 是 Bubble Tea 的模型。控制器状态全部在 state 里，
// 这里只保存和终端相关的东西：输入框、视口、窗口尺寸、帮助层。
type Model struct {
	state    *monitor.State
	provider process.Provider
	cfg      config.Config

	keys    keyMap
	help    help.Model
	input   textinput.Model
	logView viewport.Model
	styles  styles

	width  int
	height int

	// refreshing 为 true 时已经有一个快照任务在跑，新的 tick 不再派发。
	refreshing bool

	helpOpen bool
	helpDoc  string
}

// New 用初始快照和配置构造模型。
func New(state *monitor.State, provider process.Provider, cfg config.Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Search processes"
	ti.CharLimit = 156
	ti.Width = 24
	ti.Prompt = "/ "

	if cfg.InitialFilter != "" {
		ti.SetValue(cfg.InitialFilter)
		state.SetFilter(cfg.InitialFilter)
	}

	h := help.New()
	h.ShowAll = false

	return Model{
		state:    state,
		provider: provider,
		cfg:      cfg,
		keys:     defaultKeyMap(),
		help:     h,
		input:    ti,
		logView:  viewport.New(80, 12),
		styles:   newStyles(state.Theme()),
		width:    100,
		height:   30,
	}
}

// Init 启动刷新定时器。
func (m Model) Init() tea.Cmd {
	return tick(m.cfg.Interval)
}

// State exposes the controller state, mainly for tests and the CLI.
func (m Model) State() *monitor.State { return m.state }

// Run 启动 TUI 并阻塞直到用户退出。
func Run(m Model) error {
	if m.cfg.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
