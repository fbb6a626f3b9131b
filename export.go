package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ExportFormat is an output file format
type ExportFormat string

const (
	FormatPDF  ExportFormat = "pdf"
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
	FormatXLSX ExportFormat = "xlsx"
)

// AllFormats lists every supported export format
var AllFormats = []ExportFormat{FormatPDF, FormatCSV, FormatJSON, FormatXLSX}

// ContentType returns the MIME type of the format
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// ParseExportFormat validates a format name (case-insensitive)
func ParseExportFormat(s string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllFormats {
		if f == known {
			return f, nil
		}
	}
	return "", NewAnalyticsError(ErrCodeUnsupportedFormat,
		fmt.Sprintf("unsupported export format %q (use pdf, csv, json or xlsx)", s), nil)
}

// Artifact is a rendered export ready to download or write
type Artifact struct {
	Format      ExportFormat
	Filename    string
	ContentType string
	Body        []byte
}

// Exporter renders ExportData into downloadable artifacts
type Exporter struct {
	settings ExportSettings
	logger   *zap.Logger
	now      func() time.Time
}

// NewExporter creates an exporter. A nil logger disables logging.
func NewExporter(settings ExportSettings, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Filename builds <prefix>-<YYYY-MM-DD>.<ext> for the given generation time
func (e *Exporter) Filename(format ExportFormat, at time.Time) string {
	prefix := e.settings.FilePrefix
	if prefix == "" {
		prefix = "noran-neurology-analytics"
	}
	return fmt.Sprintf("%s-%s.%s", prefix, at.UTC().Format("2006-01-02"), format)
}

// Export renders data in the requested format. The configured delay is
// observed first and is interrupted by ctx.
func (e *Exporter) Export(ctx context.Context, data ExportData, format ExportFormat) (*Artifact, error) {
	if e.settings.Delay > 0 {
		timer := time.NewTimer(e.settings.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if data.Brand == "" {
		data.Brand = e.settings.Brand
	}
	generated := e.now()
	start := time.Now()

	var (
		body []byte
		err  error
	)
	switch format {
	case FormatPDF:
		body, err = RenderPDF(data, e.settings.Brand, generated)
	case FormatCSV:
		body, err = RenderCSV(data, generated)
	case FormatJSON:
		body, err = RenderJSON(data, generated)
	case FormatXLSX:
		body, err = RenderXLSX(data, generated)
	default:
		_, err = ParseExportFormat(string(format))
	}

	if err != nil {
		if _, ok := ErrorCodeOf(err); !ok {
			err = NewAnalyticsError(ErrCodeRenderFailed, fmt.Sprintf("failed to render %s report", format), err)
		}
		code, _ := ErrorCodeOf(err)
		ExportsFailed.WithLabelValues(string(format), string(code)).Inc()
		e.logger.Error("Export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, err
	}

	ExportsGenerated.WithLabelValues(string(format)).Inc()
	ExportDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())
	ExportBytes.WithLabelValues(string(format)).Observe(float64(len(body)))

	artifact := &Artifact{
		Format:      format,
		Filename:    e.Filename(format, generated),
		ContentType: format.ContentType(),
		Body:        body,
	}
	e.logger.Debug("Export rendered",
		zap.String("format", string(format)),
		zap.String("filename", artifact.Filename),
		zap.Int("bytes", len(body)))
	return artifact, nil
}

// WriteArtifact writes an artifact into dir, creating it if needed, and
// returns the file path.
func WriteArtifact(dir string, a *Artifact) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", NewAnalyticsError(ErrCodeWriteFailed, "failed to create export directory", err)
	}
	path := filepath.Join(dir, a.Filename)
	if err := os.WriteFile(path, a.Body, 0644); err != nil {
		return "", NewAnalyticsError(ErrCodeWriteFailed, "failed to write export", err)
	}
	return path, nil
}

// ExportAll renders every format concurrently and writes them into dir.
// The first failure cancels the remaining renders.
func (e *Exporter) ExportAll(ctx context.Context, data ExportData, dir string, formats []ExportFormat) ([]string, error) {
	if len(formats) == 0 {
		formats = AllFormats
	}
	paths := make([]string, len(formats))

	g, gctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		g.Go(func() error {
			artifact, err := e.Export(gctx, data, format)
			if err != nil {
				return err
			}
			path, err := WriteArtifact(dir, artifact)
			if err != nil {
				return err
			}
			paths[i] = path
			e.logger.Info("Report written", zap.String("path", path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// reportTitle builds the title row of the tabular reports, e.g.
// "Noran Neurology - Globalization Analytics Report". A title that already
// starts with the brand is not repeated.
func reportTitle(brand, title string) string {
	brand, title = strings.TrimSpace(brand), strings.TrimSpace(title)
	if brand == "" {
		return title + " Report"
	}
	rest := strings.TrimSpace(strings.TrimPrefix(title, brand))
	if rest == "" {
		return brand + " Report"
	}
	return brand + " - " + rest + " Report"
}
