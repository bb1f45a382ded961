package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"plotfill/internal/moviestore"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show plot coverage of the movies table",
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

			cov, err := store.Coverage(cmd.Context())
			if err != nil {
				return err
			}

			spec := tableSpec{
				title:   cfg.Paths.Database,
				headers: []string{"Movies", "With plot", "Missing", "Coverage"},
				aligns:  []columnAlignment{alignRight, alignRight, alignRight, alignRight},
			}
			spec.add(strconv.Itoa(cov.Total), strconv.Itoa(cov.WithPlot), strconv.Itoa(cov.Missing()), formatPercent(cov.Rate()))
			fmt.Fprintln(cmd.OutOrStdout(), spec.render())
			return nil
		},
	}
}
