package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"plotfill/internal/moviestore"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent backfill runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := moviestore.OpenReadOnly(cmd.Context(), cfg.Paths.Database)
			if err != nil {
				return fmt.Errorf("open movie store: %w", err)
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No backfill runs recorded")
				return nil
			}

			spec := tableSpec{
				headers: []string{"Run", "Started", "Duration", "Files", "Targets", "Resolved", "Applied"},
				aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
			}
			for _, run := range runs {
				spec.add(
					shortID(run.ID),
					run.StartedAt.Local().Format(time.DateTime),
					run.Duration().Round(time.Millisecond).String(),
					fmt.Sprintf("%d (+%d skipped)", run.ReferenceFiles, run.SkippedFiles),
					strconv.Itoa(run.Targets),
					strconv.Itoa(run.Resolved),
					strconv.FormatInt(run.Applied, 10),
				)
			}
			fmt.Fprintln(out, spec.render())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to show (0 for all)")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
