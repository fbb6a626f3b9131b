package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// jsonReport is the document written by the JSON export
type jsonReport struct {
	Title            string              `json:"title"`
	ReportID         string              `json:"reportId"`
	GeneratedDate    string              `json:"generatedDate"`
	ExecutiveSummary ExportSummary       `json:"executiveSummary"`
	MarketSegments   []SegmentRow        `json:"marketSegments"`
	Demographics     []DemographicRecord `json:"demographics"`
	Predictions      []Prediction        `json:"predictions"`
	Competitive      []Competitor        `json:"competitive"`
	DataSources      []string            `json:"dataSources"`
}

// RenderJSON writes the full payload as an indented JSON document.
// Absent collections are written as empty arrays, never null.
func RenderJSON(data ExportData, generated time.Time) ([]byte, error) {
	report := jsonReport{
		Title:            data.Title,
		ReportID:         uuid.NewString(),
		GeneratedDate:    generated.UTC().Format(time.RFC3339),
		ExecutiveSummary: data.Summary,
		MarketSegments:   emptyIfNil(data.MarketSegments),
		Demographics:     emptyIfNil(data.Demographics),
		Predictions:      emptyIfNil(data.Predictions),
		Competitive:      emptyIfNil(data.Competitive),
		DataSources:      make([]string, 0, len(data.DataSources)),
	}
	for _, src := range data.DataSources {
		report.DataSources = append(report.DataSources, src.Name)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return out, nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
