package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/w31r4/gomon/internal/logging"
	"github.com/w31r4/gomon/internal/monitor"
)

var logsTail int

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the log of the last run",
	Args:  cobra.NoArgs,
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().IntVarP(&logsTail, "lines", "n", monitor.LogCapacity, "number of trailing lines to print (0 for all)")
}

var (
	logWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	logErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func runLogs(cmd *cobra.Command, args []string) error {
	cfg := resolveConfig(cmd, args)
	if cfg.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	// 这里只读不写：logging.Open 会截断日志文件。
	lines, err := logging.ReadLines(cfg.LogPath)
	if err != nil {
		return err
	}
	if logsTail > 0 && len(lines) > logsTail {
		lines = lines[len(lines)-logsTail:]
	}

	out := cmd.OutOrStdout()
	for _, line := range lines {
		switch logging.LevelOf(line) {
		case logging.LevelError:
			line = logErrorStyle.Render(line)
		case logging.LevelWarn:
			line = logWarnStyle.Render(line)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
