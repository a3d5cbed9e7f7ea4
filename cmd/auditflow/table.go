package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// countPrinter groups large crawl counts for readability (12345 -> 12,345).
var countPrinter = message.NewPrinter(language.English)

func formatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}

func formatScore(score int) string {
	return fmt.Sprintf("%d / 100", score)
}

func formatRate(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}

// metricRow is one label/value line in a metric table. Values arrive already
// formatted so the table layer stays free of scoring rules.
type metricRow struct {
	label string
	value string
}

// renderMetricTable renders label/value rows under a titled header with the
// values right aligned. The score, crawl totals, and benchmark overview
// blocks all share this shape.
func renderMetricTable(title string, rows []metricRow) string {
	tw := newRoundedTable()
	tw.AppendHeader(table.Row{title, "Value"})
	for _, row := range rows {
		tw.AppendRow(table.Row{row.label, row.value})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// renderListingTable renders a multi-column listing such as the session
// history or per-query benchmark results. Columns named in numericColumns
// (1-based) are right aligned.
func renderListingTable(header table.Row, rows []table.Row, numericColumns ...int) string {
	tw := newRoundedTable()
	tw.AppendHeader(header)
	for _, row := range rows {
		tw.AppendRow(row)
	}
	configs := make([]table.ColumnConfig, 0, len(numericColumns))
	for _, column := range numericColumns {
		configs = append(configs, table.ColumnConfig{
			Number:      column,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func newRoundedTable() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
