// Package cmd provides the gomon command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/w31r4/gomon/internal/config"
	"github.com/w31r4/gomon/internal/logging"
	"github.com/w31r4/gomon/internal/monitor"
	"github.com/w31r4/gomon/internal/process"
	"github.com/w31r4/gomon/internal/settings"
	"github.com/w31r4/gomon/internal/tui"
	"golang.org/x/term"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

var (
	flagInterval  time.Duration
	flagConfigDir string
	flagExport    string
	flagLogFile   string
	flagNoColor   bool
)

var rootCmd = &cobra.Command{
	Use:     "gomon [filter]",
	Short:   "Interactive process monitor",
	Version: Version,
	Long: `gomon lists running processes, refreshes them every second and lets you
filter, sort, inspect and kill them from the terminal.

Any arguments are joined into the initial name filter.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runMonitor,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.DurationVar(&flagInterval, "interval", 0, "refresh interval (default 1s, env GOMON_INTERVAL_MS)")
	pf.StringVar(&flagConfigDir, "config-dir", "", "directory for settings and log files (env GOMON_CONFIG_DIR)")
	pf.StringVar(&flagExport, "export", "", "CSV export path (env GOMON_EXPORT_PATH)")
	pf.StringVar(&flagLogFile, "log-file", "", "log file path")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable colors (env NO_COLOR)")

	rootCmd.AddCommand(exportCmd, logsCmd)
}

// Execute runs the root command and returns an exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// resolveConfig layers flags over environment over defaults.
func resolveConfig(cmd *cobra.Command, args []string) config.Config {
	cfg := config.Load()
	flags := cmd.Flags()
	if flags.Changed("config-dir") && flagConfigDir != "" {
		cfg.SetConfigDir(flagConfigDir)
	}
	if flags.Changed("interval") && flagInterval > 0 {
		cfg.Interval = flagInterval
	}
	if flags.Changed("export") {
		cfg.ExportPath = flagExport
	}
	if flags.Changed("log-file") && flagLogFile != "" {
		cfg.LogPath = flagLogFile
	}
	if flagNoColor {
		cfg.NoColor = true
	}
	cfg.InitialFilter = strings.TrimSpace(strings.Join(args, " "))
	return cfg
}

// session is everything a run needs before the controller starts.
type session struct {
	id       string
	log      *slog.Logger
	closer   io.Closer
	provider *process.System
	settings settings.Settings
}

// openSession opens the log, loads settings and takes the first snapshot.
// Log and settings problems are reported and then ignored.
// Only the interactive monitor starts a fresh log; subcommands append to it.
func openSession(ctx context.Context, cfg config.Config, stderr io.Writer, freshLog bool) (*session, error) {
	if err := cfg.EnsureDirs(); err != nil {
		fmt.Fprintf(stderr, "warning: %v\n", err)
	}

	openLog := logging.Append
	if freshLog {
		openLog = logging.Open
	}
	logger, closer, err := openLog(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(stderr, "warning: logging disabled: %v\n", err)
	}

	s := &session{id: uuid.NewString(), log: logger, closer: closer}
	s.log.Info("Application started", "session", s.id, "version", Version)

	st, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Failed to load settings, using defaults: %s", err))
	}
	s.settings = st

	provider, err := process.NewSystem(ctx)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("reading process table: %w", err)
	}
	s.provider = provider
	return s, nil
}

func (s *session) state() *monitor.State {
	return monitor.New(s.provider.Processes(), monitor.Options{
		Theme:  s.settings.Theme,
		Host:   s.provider.Host(),
		Info:   s.provider.Info(),
		Logger: s.log,
	})
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("gomon needs an interactive terminal; use 'gomon export' for scripted use")
	}
	cfg := resolveConfig(cmd, args)

	s, err := openSession(cmd.Context(), cfg, cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer s.closer.Close()

	state := s.state()
	err = tui.Run(tui.New(state, s.provider, cfg))
	state.Logger().Info("Application stopped", "session", s.id)
	return err
}
