package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var exportTestTime = time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

func sampleExportData() ExportData {
	return ExportData{
		Title: "Test Analytics",
		Summary: ExportSummary{
			TotalPopulation:   3700000,
			ForeignBorn:       490000,
			LEPPopulation:     135000,
			MarketOpportunity: 14500,
			ProjectedRevenue:  21.0,
			ROI:               674,
		},
		MarketSegments: []SegmentRow{
			{Name: "East African Community", Population: 115000, ROI: 276, GrowthRate: 5.1},
			{Name: `Somali "Horn" Community`, Population: 82000, ROI: 310, GrowthRate: 4.5},
		},
		DataSources: []DataSource{
			{Name: "US Census Bureau", Description: "Metro demographics"},
			{Name: "Minnesota Compass"},
		},
	}
}

func loadDefaultExportData(t *testing.T) ExportData {
	t.Helper()
	ds, err := LoadDataset("")
	require.NoError(t, err)
	return BuildExportData(ds, "")
}

// =============================================================================
// Formats and filenames
// =============================================================================

func TestParseExportFormat(t *testing.T) {
	for _, in := range []string{"pdf", "CSV", " json ", "Xlsx"} {
		f, err := ParseExportFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, ExportFormat(strings.ToLower(strings.TrimSpace(in))), f)
	}

	_, err := ParseExportFormat("docx")
	require.Error(t, err)
	code, ok := ErrorCodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, ErrCodeUnsupportedFormat, code)
}

func TestExporterFilename(t *testing.T) {
	e := NewExporter(ExportSettings{}, nil)
	assert.Equal(t, "noran-neurology-analytics-2024-03-05.pdf", e.Filename(FormatPDF, exportTestTime))

	e = NewExporter(ExportSettings{FilePrefix: "metro"}, nil)
	assert.Equal(t, "metro-2024-03-05.xlsx", e.Filename(FormatXLSX, exportTestTime))
}

// =============================================================================
// CSV
// =============================================================================

func TestRenderCSV(t *testing.T) {
	out, err := RenderCSV(sampleExportData(), exportTestTime)
	require.NoError(t, err)

	expected := []string{
		`"Test Analytics Report"`,
		`"Generated: 2024-03-05"`,
		`""`,
		`"Executive Summary"`,
		`"Metric","Value"`,
		`"Total Population","3700000"`,
		`"Foreign-Born Population","490000"`,
		`"LEP Population","135000"`,
		`"Market Opportunity (patients/year)","14500"`,
		`"Projected Annual Revenue ($M)","21"`,
		`"Year 1 ROI (%)","674"`,
		`""`,
		`"Market Segments"`,
		`"Segment","Population","ROI (%)","Growth Rate (%)"`,
		`"East African Community","115000","276","5.1"`,
		`"Somali ""Horn"" Community","82000","310","4.5"`,
	}
	assert.Equal(t, strings.Join(expected, "\n"), string(out))
}

func TestReportTitle(t *testing.T) {
	tests := []struct {
		name  string
		brand string
		title string
		want  string
	}{
		{"no brand", "", "Test Analytics", "Test Analytics Report"},
		{"brand joined", "Noran Neurology", "Test Analytics", "Noran Neurology - Test Analytics Report"},
		{"brand prefix not repeated", "Noran Neurology", "Noran Neurology Globalization Analytics",
			"Noran Neurology - Globalization Analytics Report"},
		{"title is the brand", "Noran Neurology", "Noran Neurology", "Noran Neurology Report"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, reportTitle(tc.brand, tc.title))
		})
	}
}

func TestRenderCSV_NoSegments(t *testing.T) {
	data := sampleExportData()
	data.MarketSegments = nil

	out, err := RenderCSV(data, exportTestTime)
	require.NoError(t, err)

	lines := strings.Split(string(out), "\n")
	assert.Len(t, lines, 12)
	assert.Equal(t, `""`, lines[len(lines)-1])
	assert.NotContains(t, string(out), "Market Segments")
}

func TestRenderCSV_ReadableByCSVReader(t *testing.T) {
	out, err := RenderCSV(sampleExportData(), exportTestTime)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	// Metric/Value header then the six headline rows
	assert.Equal(t, []string{"Metric", "Value"}, records[4])
	for i, row := range csvHeadlineRows(sampleExportData().Summary) {
		assert.Equal(t, row, records[5+i])
	}
	assert.Equal(t, `Somali "Horn" Community`, records[len(records)-1][0])
}

// =============================================================================
// JSON
// =============================================================================

func TestRenderJSON(t *testing.T) {
	out, err := RenderJSON(sampleExportData(), exportTestTime)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))

	for _, key := range []string{"title", "reportId", "generatedDate", "executiveSummary",
		"marketSegments", "demographics", "predictions", "competitive", "dataSources"} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, "Test Analytics", doc["title"])
	assert.Equal(t, "2024-03-05T14:30:00Z", doc["generatedDate"])
	assert.Len(t, doc["reportId"], 36)
	assert.Equal(t, []interface{}{"US Census Bureau", "Minnesota Compass"}, doc["dataSources"])

	summary := doc["executiveSummary"].(map[string]interface{})
	assert.Equal(t, 674.0, summary["roi"])
	assert.Equal(t, 21.0, summary["projectedRevenue"])

	// absent collections are arrays, not null
	assert.Equal(t, []interface{}{}, doc["predictions"])
	assert.Equal(t, []interface{}{}, doc["competitive"])
	assert.True(t, bytes.Contains(out, []byte("\n  \"title\"")), "two-space indentation")
}

func TestRenderJSON_ReportIDIsUnique(t *testing.T) {
	a, err := RenderJSON(sampleExportData(), exportTestTime)
	require.NoError(t, err)
	b, err := RenderJSON(sampleExportData(), exportTestTime)
	require.NoError(t, err)
	assert.NotEqual(t, string(a), string(b))
}

// =============================================================================
// XLSX
// =============================================================================

func TestRenderXLSX(t *testing.T) {
	out, err := RenderXLSX(sampleExportData(), exportTestTime)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetSummary, sheetSegments, sheetPredictions}, f.GetSheetList())

	title, err := f.GetCellValue(sheetSummary, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Test Analytics Report", title)

	data := sampleExportData()
	data.Brand = "Noran Neurology"
	out, err = RenderXLSX(data, exportTestTime)
	require.NoError(t, err)
	branded, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer branded.Close()
	title, err = branded.GetCellValue(sheetSummary, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Noran Neurology - Test Analytics Report", title)

	label, err := f.GetCellValue(sheetSummary, "A5")
	require.NoError(t, err)
	assert.Equal(t, "Total Population", label)

	roiLabel, err := f.GetCellValue(sheetSummary, "A10")
	require.NoError(t, err)
	assert.Equal(t, "Year 1 ROI (%)", roiLabel)

	rows, err := f.GetRows(sheetSegments)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Segment", "Population", "ROI (%)", "Growth Rate (%)"}, rows[0])
	assert.Equal(t, `Somali "Horn" Community`, rows[2][0])
}

// =============================================================================
// PDF
// =============================================================================

func TestRenderPDF(t *testing.T) {
	out, err := RenderPDF(loadDefaultExportData(t), "Noran Neurology", exportTestTime)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 2000)
}

func TestRenderPDF_EmptyData(t *testing.T) {
	out, err := RenderPDF(ExportData{}, "", exportTestTime)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "Zürich", truncateString("Zürich", 6))
	assert.Equal(t, "Ärzte Ö...", truncateString("Ärzte Ökonomie Zürich", 10))
	assert.Equal(t, "የአማ...", truncateString("የአማርኛ ተናጋሪዎች", 6))
}

func TestRenderScenarioChart(t *testing.T) {
	ds, err := LoadDataset("")
	require.NoError(t, err)

	png, err := RenderScenarioChart(ds.Predictions, 400, 240)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	none, err := RenderScenarioChart(PredictionScenarios{}, 400, 240)
	require.NoError(t, err)
	assert.Nil(t, none)
}

// =============================================================================
// Exporter
// =============================================================================

func TestExporterExport(t *testing.T) {
	e := NewExporter(ExportSettings{FilePrefix: "report"}, nil)
	e.now = func() time.Time { return exportTestTime }

	for _, format := range AllFormats {
		t.Run(string(format), func(t *testing.T) {
			a, err := e.Export(context.Background(), sampleExportData(), format)
			require.NoError(t, err)
			assert.Equal(t, format, a.Format)
			assert.Equal(t, "report-2024-03-05."+string(format), a.Filename)
			assert.Equal(t, format.ContentType(), a.ContentType)
			assert.NotEmpty(t, a.Body)
		})
	}
}

func TestExporterExport_BrandedTitleRow(t *testing.T) {
	e := NewExporter(ExportSettings{FilePrefix: "report", Brand: "Noran Neurology"}, nil)
	e.now = func() time.Time { return exportTestTime }

	a, err := e.Export(context.Background(), loadDefaultExportData(t), FormatCSV)
	require.NoError(t, err)
	first, _, _ := strings.Cut(string(a.Body), "\n")
	assert.Equal(t, `"Noran Neurology - Globalization Analytics Report"`, first)
}

func TestExporterExport_UnsupportedFormat(t *testing.T) {
	e := NewExporter(ExportSettings{}, nil)
	_, err := e.Export(context.Background(), sampleExportData(), ExportFormat("docx"))
	code, ok := ErrorCodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeUnsupportedFormat, code)
}

func TestExporterExport_DelayCancelled(t *testing.T) {
	e := NewExporter(ExportSettings{Delay: time.Hour}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := e.Export(ctx, sampleExportData(), FormatCSV)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestExporterExport_DelayObserved(t *testing.T) {
	e := NewExporter(ExportSettings{Delay: 20 * time.Millisecond}, nil)

	start := time.Now()
	_, err := e.Export(context.Background(), sampleExportData(), FormatJSON)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestExporterExportAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	e := NewExporter(ExportSettings{}, nil)
	e.now = func() time.Time { return exportTestTime }

	paths, err := e.ExportAll(context.Background(), sampleExportData(), dir, nil)
	require.NoError(t, err)
	require.Len(t, paths, len(AllFormats))

	for i, format := range AllFormats {
		assert.Equal(t, filepath.Join(dir, "noran-neurology-analytics-2024-03-05."+string(format)), paths[i])
		info, err := os.Stat(paths[i])
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestWriteArtifact_Failure(t *testing.T) {
	// a regular file where the directory should be
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := WriteArtifact(filepath.Join(blocker, "sub"), &Artifact{Filename: "a.csv", Body: []byte("a")})
	code, ok := ErrorCodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeWriteFailed, code)
}
