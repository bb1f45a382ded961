package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"plotfill/internal/backfill"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Inspect why titles fail to match the reference data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			analysis, err := backfill.Analyze(cmd.Context(), backfill.Options{Config: cfg, Logger: logger})
			if err != nil {
				return err
			}
			printAnalysis(cmd.OutOrStdout(), analysis)
			return nil
		},
	}
}

func printAnalysis(out io.Writer, analysis *backfill.Analysis) {
	overview := tableSpec{
		title:   "Title overlap",
		headers: []string{"Measure", "Count"},
		aligns:  []columnAlignment{alignLeft, alignRight},
	}
	overview.add("Database titles", strconv.Itoa(analysis.Titles))
	overview.add("Missing plots", strconv.Itoa(analysis.Missing))
	overview.add("Reference titles", strconv.Itoa(analysis.ReferenceTitles))
	overview.add("Exact overlap", strconv.Itoa(analysis.ExactOverlap))
	overview.add("Case-insensitive overlap", strconv.Itoa(analysis.CaseInsensitiveOverlap))
	fmt.Fprintln(out, overview.render())
	fmt.Fprintln(out)

	p := analysis.Patterns
	patterns := tableSpec{
		title:   "Patterns in titles missing plots",
		headers: []string{"Pattern", "Titles"},
		aligns:  []columnAlignment{alignLeft, alignRight},
	}
	patterns.add("with_years", strconv.Itoa(p.WithYears))
	patterns.add("with_colons", strconv.Itoa(p.WithColons))
	patterns.add("with_numbers", strconv.Itoa(p.WithNumbers))
	patterns.add("with_articles", strconv.Itoa(p.WithArticles))
	patterns.add("very_long", strconv.Itoa(p.VeryLong))
	patterns.add("very_short", strconv.Itoa(p.VeryShort))
	fmt.Fprintln(out, patterns.render())

	if len(analysis.Unmatched) == 0 {
		return
	}
	fmt.Fprintln(out)
	unmatched := tableSpec{
		title:   "Unmatched titles",
		headers: []string{"ID", "Title"},
		aligns:  []columnAlignment{alignRight, alignLeft},
	}
	for _, movie := range analysis.Unmatched {
		unmatched.add(strconv.FormatInt(movie.ID, 10), movie.Title)
	}
	fmt.Fprintln(out, unmatched.render())
}
