package tui

import (
	"strings"

	"github.com/w31r4/gomon/internal/settings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# gomon

## Processes

| Key | Action |
|---|---|
| ↑/k ↓/j | select previous / next process |
| g / G | first / last process |
| / | filter by name (enter/esc to finish) |
| n c m | sort by name, cpu, memory (again to reverse) |
| x / del | kill the **parent** of the selected process |
| y / n | confirm / cancel a pending kill |
| e | export the filtered list to CSV |

## Everywhere

| Key | Action |
|---|---|
| tab, 1 2 3 | switch tab |
| r | reload logs (Settings tab) |
| t | toggle light / dark theme |
| ctrl+r | refresh now |
| ? | close this help |
| q | quit |
`

// renderHelpDoc 用 glamour 渲染帮助文档，失败时退回原始 markdown。
func renderHelpDoc(theme settings.Theme, width int) string {
	style := "dark"
	if theme == settings.Light {
		style = "light"
	}
	wrap := width - 8
	if wrap < 40 {
		wrap = 40
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n")
}
