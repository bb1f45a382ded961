package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableSpec describes one rendered table. Rows shorter than the header are
// padded with empty cells.
type tableSpec struct {
	title   string
	headers []string
	aligns  []columnAlignment
	rows    [][]string
	footer  []string
}

func (s *tableSpec) add(cells ...string) {
	s.rows = append(s.rows, cells)
}

func (s tableSpec) render() string {
	columns := len(s.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if s.title != "" {
		tw.SetTitle(s.title)
	}
	tw.AppendHeader(toRow(s.headers, columns))
	for _, row := range s.rows {
		tw.AppendRow(toRow(row, columns))
	}
	if len(s.footer) > 0 {
		tw.AppendFooter(toRow(s.footer, columns))
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(s.aligns) && s.aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignFooter: align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func toRow(cells []string, columns int) table.Row {
	row := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

func formatPercent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if width <= 3 || text.RuneWidthWithoutEscSequences(value) <= width {
		return value
	}
	return text.Trim(value, width-3) + "..."
}
