package main

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var scenarioColors = map[string]color.RGBA{
	"conservative": {R: 107, G: 114, B: 128, A: 255},
	"moderate":     {R: 59, G: 130, B: 246, A: 255},
	"aggressive":   {R: 16, G: 185, B: 129, A: 255},
}

// RenderScenarioChart draws the foreign-born projection of each prediction
// scenario as a PNG line chart. It returns nil when there is nothing to plot.
func RenderScenarioChart(scenarios PredictionScenarios, width, height vg.Length) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Foreign-Born Population Projection"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Foreign-born residents"
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	plotted := 0
	for _, name := range []string{"conservative", "moderate", "aggressive"} {
		preds, _ := scenarios.Scenario(name)
		if len(preds) == 0 {
			continue
		}
		points := make(plotter.XYs, len(preds))
		for i, pr := range preds {
			points[i].X = float64(pr.Year)
			points[i].Y = pr.PredictedForeignBorn
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s line: %w", name, err)
		}
		line.Color = scenarioColors[name]
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(name, line)
		plotted++
	}
	if plotted == 0 {
		return nil, nil
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
