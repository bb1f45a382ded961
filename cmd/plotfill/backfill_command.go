package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"plotfill/internal/backfill"
	"plotfill/internal/titlematch"
)

const samplePlotWidth = 60

func newBackfillCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var samples int
	var noFuzzy bool

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Resolve and store plots for movies that lack one",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCfg := *cfg
			if cmd.Flags().Changed("dry-run") {
				runCfg.Backfill.DryRun = dryRun
			}
			if cmd.Flags().Changed("samples") {
				if samples < 0 {
					return fmt.Errorf("--samples must be >= 0")
				}
				runCfg.Backfill.SampleSize = samples
			}
			if noFuzzy {
				runCfg.Matching.FuzzyEnabled = false
			}

			summary, err := backfill.Run(cmd.Context(), backfill.Options{Config: &runCfg, Logger: logger})
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve plots without writing to the database")
	cmd.Flags().IntVar(&samples, "samples", 0, "Number of resolved titles to show (overrides backfill.sample_size)")
	cmd.Flags().BoolVar(&noFuzzy, "no-fuzzy", false, "Disable the fuzzy fallback tier for this run")
	return cmd
}

func printSummary(out io.Writer, summary *backfill.Summary) {
	mode := "applied"
	if summary.DryRun {
		mode = "dry run (no changes written)"
	}
	fmt.Fprintf(out, "Run:               %s\n", summary.RunID)
	fmt.Fprintf(out, "Mode:              %s\n", mode)
	if summary.PlotColumnAdded {
		fmt.Fprintln(out, "Schema:            added movies.plot column")
	}
	fmt.Fprintf(out, "Reference files:   %d loaded, %d skipped\n", len(summary.Files), len(summary.Skipped))
	for _, skipped := range summary.Skipped {
		fmt.Fprintf(out, "  skipped %s\n", skipped.Error())
	}
	fmt.Fprintf(out, "Reference titles:  %d\n", summary.References)
	fmt.Fprintln(out)

	report := summary.Report
	strategies := tableSpec{
		title:   "Matches by strategy",
		headers: []string{"Strategy", "Matches"},
		aligns:  []columnAlignment{alignLeft, alignRight},
	}
	for _, name := range titlematch.TierNames() {
		if count := report.PerStrategy[name]; count > 0 {
			strategies.add(name, strconv.Itoa(count))
		}
	}
	strategies.add("unresolved", strconv.Itoa(report.Unresolved))
	strategies.footer = []string{"Resolved", fmt.Sprintf("%d / %d (%s)", report.Resolved, report.Targets, formatPercent(report.MatchRate()))}
	fmt.Fprintln(out, strategies.render())

	if !summary.DryRun {
		fmt.Fprintf(out, "Applied:           %d\n", summary.Applied)
	}
	cov := summary.Coverage
	fmt.Fprintf(out, "Coverage:          %d / %d (%s)\n", cov.WithPlot, cov.Total, formatPercent(cov.Rate()))

	if len(summary.Samples) == 0 {
		return
	}
	fmt.Fprintln(out)
	samples := tableSpec{
		title:   "Sample matches",
		headers: []string{"ID", "Title", "Strategy", "Plot"},
		aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	}
	for _, a := range summary.Samples {
		samples.add(strconv.FormatInt(a.ID, 10), a.Title, a.Strategy, truncate(a.Plot, samplePlotWidth))
	}
	fmt.Fprintln(out, samples.render())
}
