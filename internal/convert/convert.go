// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns PDF files into Markdown text with pluggable
// backends and writes the results next to each other in a markdown
// directory.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfcraft/pkg/types"
)

// ErrEmptyOutput is returned when a backend produces only whitespace.
var ErrEmptyOutput = errors.New("conversion produced no text")

// Converter transforms a PDF file into Markdown text. The text, pdftotext
// and markitdown backends implement it.
type Converter interface {
	// Convert reads the PDF at pdfPath and returns its Markdown content.
	Convert(ctx context.Context, pdfPath string) (string, error)
}

// Output describes one written markdown file.
type Output struct {
	PDFPath      string  `json:"pdf_path" yaml:"pdf_path"`
	MarkdownPath string  `json:"markdown_path" yaml:"markdown_path"`
	Summary      Summary `json:"summary" yaml:"summary"`
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int // empty output
	Failed    int
	Outputs   []Output
}

// Total returns the total number of PDFs processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any PDF failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// MarkdownPath returns the .md path for pdfPath inside dir.
func MarkdownPath(dir, pdfPath string) string {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	return filepath.Join(dir, base+".md")
}

// ConvertFile converts one PDF and writes <stem>.md into cfg.MarkdownDir,
// overwriting any previous file. Output that is empty after trimming is not
// written and returns ErrEmptyOutput.
func ConvertFile(ctx context.Context, c Converter, pdfPath string, cfg types.ConversionConfig) (Output, error) {
	if err := os.MkdirAll(cfg.MarkdownDir, 0o755); err != nil {
		return Output{}, fmt.Errorf("creating markdown directory %s: %w", cfg.MarkdownDir, err)
	}

	raw, err := c.Convert(ctx, pdfPath)
	if err != nil {
		return Output{}, err
	}
	if strings.TrimSpace(raw) == "" {
		return Output{}, ErrEmptyOutput
	}

	content := raw
	if cfg.Frontmatter {
		content, err = addFrontmatter(pdfPath, cfg.Backend, raw)
		if err != nil {
			return Output{}, err
		}
	}

	mdPath := MarkdownPath(cfg.MarkdownDir, pdfPath)
	if err := os.WriteFile(mdPath, []byte(content), 0o644); err != nil {
		return Output{}, fmt.Errorf("writing %s: %w", mdPath, err)
	}

	return Output{
		PDFPath:      pdfPath,
		MarkdownPath: mdPath,
		Summary:      Summarize([]byte(raw)),
	}, nil
}

// ConvertBatch converts each PDF in turn, printing per-file status to w and
// returning a summary. Failures and empty results are logged and skipped.
// The batch stops early when ctx is done.
func ConvertBatch(ctx context.Context, c Converter, pdfPaths []string, cfg types.ConversionConfig, log logrus.FieldLogger, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range pdfPaths {
		if ctx.Err() != nil {
			log.Warn("conversion interrupted")
			break
		}

		base := filepath.Base(p)
		flog := log.WithField("pdf", p)

		out, err := ConvertFile(ctx, c, p, cfg)
		switch {
		case errors.Is(err, ErrEmptyOutput):
			flog.Warn("conversion produced empty output, skipping")
			fmt.Fprintf(w, "skipped: %s (empty output)\n", base)
			result.Skipped++
		case err != nil:
			flog.WithError(err).Error("conversion failed")
			fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
			result.Failed++
		default:
			flog.WithFields(logrus.Fields{
				"markdown": out.MarkdownPath,
				"headings": len(out.Summary.Headings),
				"words":    out.Summary.Words,
			}).Info("converted to markdown")
			fmt.Fprintf(w, "converted: %s\n", base)
			result.Converted++
			result.Outputs = append(result.Outputs, out)
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

type frontmatter struct {
	SourcePDF   string `yaml:"source_pdf"`
	ConvertedAt string `yaml:"converted_at"`
	Backend     string `yaml:"backend"`
}

// now is replaced in tests.
var now = time.Now

func addFrontmatter(pdfPath string, backend types.ConversionBackend, body string) (string, error) {
	fm := frontmatter{
		SourcePDF:   pdfPath,
		ConvertedAt: now().UTC().Format(time.RFC3339),
		Backend:     string(backend),
	}
	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(data)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String(), nil
}
