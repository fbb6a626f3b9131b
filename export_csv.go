package main

import (
	"strings"
	"time"
)

// csvHeadlineRows returns the six executive-summary rows in their fixed order
func csvHeadlineRows(s ExportSummary) [][]string {
	return [][]string{
		{"Total Population", plainNumber(s.TotalPopulation)},
		{"Foreign-Born Population", plainNumber(s.ForeignBorn)},
		{"LEP Population", plainNumber(s.LEPPopulation)},
		{"Market Opportunity (patients/year)", plainNumber(s.MarketOpportunity)},
		{"Projected Annual Revenue ($M)", plainNumber(s.ProjectedRevenue)},
		{"Year 1 ROI (%)", plainNumber(s.ROI)},
	}
}

// RenderCSV writes the summary report as CSV. Every cell is quoted and rows
// are joined with a bare newline.
func RenderCSV(data ExportData, generated time.Time) ([]byte, error) {
	rows := [][]string{
		{reportTitle(data.Brand, data.Title)},
		{"Generated: " + generated.UTC().Format("2006-01-02")},
		{""},
		{"Executive Summary"},
		{"Metric", "Value"},
	}
	rows = append(rows, csvHeadlineRows(data.Summary)...)
	rows = append(rows, []string{""})

	if len(data.MarketSegments) > 0 {
		rows = append(rows,
			[]string{"Market Segments"},
			[]string{"Segment", "Population", "ROI (%)", "Growth Rate (%)"},
		)
		for _, seg := range data.MarketSegments {
			rows = append(rows, []string{
				seg.Name,
				plainNumber(seg.Population),
				plainNumber(seg.ROI),
				plainNumber(seg.GrowthRate),
			})
		}
	}

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, cell := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quoteCSV(cell))
		}
	}
	return []byte(b.String()), nil
}

// quoteCSV wraps a cell in double quotes, doubling any embedded quote
func quoteCSV(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}
