package main

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary     = "Summary"
	sheetSegments    = "Market Segments"
	sheetPredictions = "Predictions"
)

// RenderXLSX writes the report as a workbook with one sheet per table.
// Numeric cells keep their numeric type.
func RenderXLSX(data ExportData, generated time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{sheetSegments, sheetPredictions} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	s := data.Summary
	summary := [][]interface{}{
		{reportTitle(data.Brand, data.Title)},
		{"Generated", generated.UTC().Format("2006-01-02")},
		{},
		{"Metric", "Value"},
		{"Total Population", s.TotalPopulation},
		{"Foreign-Born Population", s.ForeignBorn},
		{"LEP Population", s.LEPPopulation},
		{"Market Opportunity (patients/year)", s.MarketOpportunity},
		{"Projected Annual Revenue ($M)", s.ProjectedRevenue},
		{"Year 1 ROI (%)", s.ROI},
	}
	if err := writeSheetRows(f, sheetSummary, summary); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetSummary, "A1", "A1", bold); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetSummary, "A4", "B4", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetSummary, "A", "A", 38); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetSummary, "B", "B", 16); err != nil {
		return nil, err
	}

	segments := [][]interface{}{{"Segment", "Population", "ROI (%)", "Growth Rate (%)"}}
	for _, seg := range data.MarketSegments {
		segments = append(segments, []interface{}{seg.Name, seg.Population, seg.ROI, seg.GrowthRate})
	}
	if err := writeSheetRows(f, sheetSegments, segments); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetSegments, "A1", "D1", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetSegments, "A", "A", 32); err != nil {
		return nil, err
	}

	predictions := [][]interface{}{{"Year", "Predicted Population", "Predicted Foreign-Born", "Confidence"}}
	for _, p := range data.Predictions {
		predictions = append(predictions, []interface{}{p.Year, p.PredictedPopulation, p.PredictedForeignBorn, p.Confidence})
	}
	if err := writeSheetRows(f, sheetPredictions, predictions); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetPredictions, "A1", "D1", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetPredictions, "B", "C", 24); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheetRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
