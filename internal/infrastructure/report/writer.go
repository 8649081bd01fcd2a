package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"FeedSieve/internal/domain"
	"FeedSieve/internal/ports"
)

const (
	textReportFile  = "filtered_titles.txt"
	resultsHTMLFile = "filtered_results.html"
	indexHTMLFile   = "index.html"
)

// Options configures the artifact writer.
type Options struct {
	Dir          string
	BaseFilename string
	HTML         bool
	DisplayZones []string
	RunLink      string
}

// Writer persists run artifacts into the output directory: one filtered
// feed file per source, the plain-text report, and optionally the HTML
// results and index pages.
type Writer struct {
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.ReportPublisher = (*Writer)(nil)

// NewWriter builds an artifact writer.
func NewWriter(opts Options, logger *slog.Logger) *Writer {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.BaseFilename == "" {
		opts.BaseFilename = "filtered_feed"
	}
	return &Writer{opts: opts, logger: logger, now: time.Now}
}

// PublishFeed writes one source's filtered feed document.
func (w *Writer) PublishFeed(_ context.Context, source string, xml []byte) error {
	name := FeedFileName(w.opts.BaseFilename, source)
	path := filepath.Join(w.opts.Dir, name)
	if err := os.WriteFile(path, xml, 0o644); err != nil {
		return fmt.Errorf("write filtered feed %s: %w", name, err)
	}
	w.logger.Info("wrote filtered feed", "source", source, "file", name)
	return nil
}

// PublishRun writes the text report and, when enabled, the HTML pages.
// The report is written even for fatally failed runs so the diagnostic
// block reaches the reader.
func (w *Writer) PublishRun(_ context.Context, results []domain.SourceResult, diagnostic string) error {
	text := BuildText(results, diagnostic, w.opts.RunLink)
	if err := os.WriteFile(filepath.Join(w.opts.Dir, textReportFile), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write run report: %w", err)
	}

	if !w.opts.HTML {
		return nil
	}

	resultsHTML, err := BuildResultsHTML(results, diagnostic)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(w.opts.Dir, resultsHTMLFile), resultsHTML, 0o644); err != nil {
		return fmt.Errorf("write results page: %w", err)
	}

	sources := make([]string, 0, len(results))
	for _, res := range results {
		sources = append(sources, res.Source)
	}
	indexHTML, err := BuildIndexHTML(w.opts.BaseFilename, sources, w.now(), w.opts.DisplayZones)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(w.opts.Dir, indexHTMLFile), indexHTML, 0o644); err != nil {
		return fmt.Errorf("write index page: %w", err)
	}

	return nil
}
