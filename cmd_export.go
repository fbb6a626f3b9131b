package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportOpts struct {
	format string
	out    string
	title  string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the analytics report as PDF, CSV, JSON or XLSX",
	Example: `  outreach-analytics export --format pdf
  outreach-analytics export --format all --out ./reports`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		formats, err := parseFormatList(exportOpts.format)
		if err != nil {
			return err
		}
		dir := exportOpts.out
		if dir == "" {
			dir = settings.Export.OutputDir
		}
		title := exportOpts.title
		if title == "" {
			title = settings.Export.Title
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		exporter := NewExporter(settings.Export, logger)
		data := BuildExportData(dataset, title)
		logger.Debug("Exporting report",
			zap.Strings("formats", formatNames(formats)),
			zap.String("dir", dir))

		paths, err := exporter.ExportAll(ctx, data, dir, formats)
		if err != nil {
			return err
		}
		for _, p := range paths {
			cmd.Printf("Report written to %s\n", p)
		}
		return nil
	},
}

// parseFormatList accepts "all" or a comma separated list of formats
func parseFormatList(s string) ([]ExportFormat, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return AllFormats, nil
	}
	var formats []ExportFormat
	for _, part := range strings.Split(s, ",") {
		f, err := ParseExportFormat(part)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func formatNames(formats []ExportFormat) []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard, JSON API and report downloads over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr := serveAddr
		if addr == "" {
			addr = settings.Server.Addr
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := NewWebServer(settings, dataset, logger, addr)
		return server.Start(ctx, func(url string) {
			cmd.Printf("Dashboard available at %s\n", url)
		})
	},
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the dashboard in an embedded window",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return StartGUI(settings, dataset, logger)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOpts.format, "format", "f", "pdf", "Export format: pdf, csv, json, xlsx, all, or a comma separated list")
	exportCmd.Flags().StringVarP(&exportOpts.out, "out", "o", "", "Output directory (default from settings)")
	exportCmd.Flags().StringVar(&exportOpts.title, "title", "", "Report title (default from settings)")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from settings, use :0 for auto port)")

	rootCmd.AddCommand(exportCmd, serveCmd, uiCmd)
}
