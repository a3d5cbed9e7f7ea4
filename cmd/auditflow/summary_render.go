package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"auditflow/internal/api"
	"auditflow/internal/metrics"
)

// renderSummaryTables renders the derived metrics as a scores table and a
// crawl totals table.
func renderSummaryTables(summary *metrics.Summary) []string {
	if summary == nil {
		return nil
	}

	scores := renderMetricTable("Score", []metricRow{
		{"SEO", formatScore(summary.SEOScore)},
		{"Titles", formatScore(summary.TitleScore)},
		{"H1 headings", formatScore(summary.H1Score)},
		{"Descriptions", formatScore(summary.DescriptionScore)},
		{"Image alt text", formatScore(summary.AltScore)},
		{"Link health", formatScore(summary.LinkHealthScore)},
	})

	totals := renderMetricTable("Crawl", []metricRow{
		{"Pages", formatCount(summary.TotalPages)},
		{"Broken pages", formatCount(summary.BrokenPages)},
		{"Images", formatCount(summary.TotalImages)},
		{"Images missing alt", formatCount(summary.ImagesMissingAlt)},
		{"Links", formatCount(summary.TotalLinks)},
		{"Avg request time", fmt.Sprintf("%.0f ms", summary.AvgRequestMillis)},
		{"Avg DOM nodes", fmt.Sprintf("%.0f", summary.AvgDOMSize)},
		{"Avg HTML size", fmt.Sprintf("%.0f bytes", summary.AvgHTMLSize)},
	})

	return []string{scores, totals}
}

// renderBenchmarkTables renders benchmark results as an overall scores table
// and a per-query table.
func renderBenchmarkTables(bench *api.Benchmark) []string {
	if bench == nil {
		return nil
	}

	var out []string
	if bench.OverallScores != nil {
		out = append(out, renderMetricTable("Benchmark", []metricRow{
			{"Answerability", formatRate(bench.OverallScores.AnswerabilityRate)},
			{"Citation coverage", formatRate(bench.OverallScores.CitationCoverage)},
			{"Hallucination rate", formatRate(bench.OverallScores.HallucinationRate)},
			{"Completeness", formatRate(bench.OverallScores.Completeness)},
			{"Pages crawled", formatCount(bench.CrawledPages)},
			{"Chunks indexed", formatCount(bench.IndexedChunks)},
			{"Queries run", formatCount(bench.QueriesRun)},
		}))
	}

	if len(bench.QueryResults) > 0 {
		rows := make([]table.Row, 0, len(bench.QueryResults))
		for _, result := range bench.QueryResults {
			rows = append(rows, table.Row{
				truncate(result.Query, 48),
				result.Status,
				yesNo(result.Metrics.CitationOK),
				formatRate(result.Metrics.Completeness),
			})
		}
		out = append(out, renderListingTable(
			table.Row{"Query", "Status", "Cited", "Complete"},
			rows, 4,
		))
	}

	return out
}
