package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"gonum.org/v1/plot/vg"
)

const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 14.0
	marginRight  = 14.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

const chartImageName = "scenario-chart"

// PDFSummaryReport lays out the executive summary report
type PDFSummaryReport struct {
	pdf       *fpdf.Fpdf
	data      ExportData
	brand     string
	generated time.Time
	tr        func(string) string
}

// RenderPDF creates the A4 summary report for data
func RenderPDF(data ExportData, brand string, generated time.Time) ([]byte, error) {
	if brand == "" {
		brand = "Noran Neurology"
	}
	report := &PDFSummaryReport{
		pdf:       fpdf.New("P", "mm", "A4", ""),
		data:      data,
		brand:     brand,
		generated: generated,
	}
	report.tr = report.pdf.UnicodeTranslatorFromDescriptor("")

	report.pdf.SetMargins(marginLeft, marginTop, marginRight)
	report.pdf.SetAutoPageBreak(true, marginBottom)
	report.pdf.AliasNbPages("")
	report.pdf.SetFooterFunc(report.drawFooter)

	report.addSummaryPage()
	if err := report.addProjectionChart(); err != nil {
		return nil, err
	}
	report.addSourcesPage()

	var buf bytes.Buffer
	if err := report.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *PDFSummaryReport) addSummaryPage() {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 20)
	r.pdf.SetTextColor(31, 41, 55)
	r.pdf.CellFormat(contentWidth, 10, r.tr(r.brand), "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "", 16)
	r.pdf.CellFormat(contentWidth, 10, "Globalization Analytics Report", "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(107, 114, 128)
	r.pdf.CellFormat(contentWidth, 6,
		fmt.Sprintf("Generated: %s", r.generated.UTC().Format("January 2, 2006")), "", 1, "C", false, 0, "")
	r.pdf.Ln(6)

	s := r.data.Summary
	r.drawSectionHeader("Executive Summary")
	widths := []float64{contentWidth * 0.55, contentWidth * 0.45}
	r.drawTableHeader([]string{"Metric", "Value"}, widths)
	rows := [][]string{
		{"Total Population", FormatNumber(s.TotalPopulation)},
		{"Foreign-Born Population", FormatNumber(s.ForeignBorn)},
		{"LEP Population", FormatNumber(s.LEPPopulation)},
		{"Market Opportunity", FormatNumber(s.MarketOpportunity) + " patients/year"},
		{"Projected Annual Revenue", FormatMillions(s.ProjectedRevenue)},
		{"Year 1 ROI", plainNumber(s.ROI) + "%"},
	}
	for i, row := range rows {
		r.drawTableRow(row, widths, i%2 == 1)
	}

	if len(r.data.MarketSegments) == 0 {
		return
	}
	r.pdf.Ln(8)
	r.drawSectionHeader("Market Segments Analysis")
	segWidths := []float64{contentWidth * 0.43, contentWidth * 0.21, contentWidth * 0.16, contentWidth * 0.20}
	r.drawTableHeader([]string{"Segment", "Population", "ROI", "Growth Rate"}, segWidths)
	for i, seg := range r.data.MarketSegments {
		r.drawTableRow([]string{
			seg.Name,
			FormatNumber(seg.Population),
			plainNumber(seg.ROI) + "%",
			plainNumber(seg.GrowthRate) + "%",
		}, segWidths, i%2 == 1)
	}
}

func (r *PDFSummaryReport) addProjectionChart() error {
	chart, err := RenderScenarioChart(r.data.Scenarios, 16*vg.Centimeter, 9*vg.Centimeter)
	if err != nil {
		return err
	}
	if chart == nil {
		return nil
	}

	const imgW, imgH = 160.0, 90.0
	if r.pdf.GetY()+imgH+18 > pageHeight-marginBottom {
		r.pdf.AddPage()
	} else {
		r.pdf.Ln(8)
	}
	r.drawSectionHeader("Population Projections")

	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	r.pdf.RegisterImageOptionsReader(chartImageName, opts, bytes.NewReader(chart))
	x := marginLeft + (contentWidth-imgW)/2
	r.pdf.ImageOptions(chartImageName, x, r.pdf.GetY(), imgW, imgH, true, opts, 0, "")
	return r.pdf.Error()
}

func (r *PDFSummaryReport) addSourcesPage() {
	r.pdf.AddPage()
	r.drawSectionHeader("Data Sources & Methodology")

	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(55, 65, 81)
	for _, src := range r.data.DataSources {
		r.pdf.MultiCell(contentWidth, 7, r.tr("• "+src.String()), "", "L", false)
	}
}

func (r *PDFSummaryReport) drawFooter() {
	r.pdf.SetY(-15)
	r.pdf.SetFont("Arial", "", 8)
	r.pdf.SetTextColor(156, 163, 175)
	text := fmt.Sprintf("Page %d of {nb} | %s Globalization Analytics | Confidential", r.pdf.PageNo(), r.brand)
	r.pdf.CellFormat(contentWidth, 10, r.tr(text), "", 0, "C", false, 0, "")
}

// Helper functions

func (r *PDFSummaryReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 14)
	r.pdf.SetTextColor(31, 41, 55)
	r.pdf.CellFormat(contentWidth, 9, r.tr(title), "", 1, "L", false, 0, "")
	r.pdf.Ln(2)
}

func (r *PDFSummaryReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(59, 130, 246)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 10)

	for i, header := range headers {
		r.pdf.CellFormat(widths[i], 8, r.tr(header), "", 0, "L", true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *PDFSummaryReport) drawTableRow(cells []string, widths []float64, striped bool) {
	if striped {
		r.pdf.SetFillColor(245, 245, 245)
	} else {
		r.pdf.SetFillColor(255, 255, 255)
	}
	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.SetFont("Arial", "", 10)

	for i, cell := range cells {
		r.pdf.CellFormat(widths[i], 7, r.tr(truncateString(cell, 60)), "", 0, "L", true, 0, "")
	}
	r.pdf.Ln(-1)
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
