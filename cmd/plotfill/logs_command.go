package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"plotfill/internal/logging"
	"plotfill/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var runID string
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the plotfill log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			opts := logs.Options{Lines: lines, RunID: runID}

			out := cmd.OutOrStdout()
			existing, offset, err := logs.Last(path, opts)
			if err != nil {
				return err
			}
			for _, line := range existing {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(existing) == 0 {
					fmt.Fprintln(out, "No log entries available")
				}
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, opts, logs.DefaultPollInterval, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Only show lines for this run id")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new log lines")
	return cmd
}
