package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/w31r4/gomon/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export [filter]",
	Short: "Write one snapshot of the (filtered) process list to CSV",
	Long: `Take a single snapshot and write it to the export path, the same file
the interactive 'e' key produces. Arguments form the name filter.`,
	Args: cobra.ArbitraryArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := resolveConfig(cmd, args)
	s, err := openSession(cmd.Context(), cfg, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer s.closer.Close()

	state := s.state()
	state.SetFilter(cfg.InitialFilter)
	records, host := state.ExportSnapshot()
	state.ExportStarted()

	msg, err := export.Write(cfg.ExportPath, cfg.ExportLockPath, records, host)
	state.ExportResult(msg, err)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
