// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the stages of one split: load the source, read its
// outline, filter bookmarks, derive split points, write the split files and
// optionally convert them to Markdown and record the run in the catalog.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pdfcraft/internal/bookmarks"
	"github.com/pdiddy/pdfcraft/internal/catalog"
	"github.com/pdiddy/pdfcraft/internal/convert"
	"github.com/pdiddy/pdfcraft/internal/outline"
	"github.com/pdiddy/pdfcraft/internal/pdfdoc"
	"github.com/pdiddy/pdfcraft/internal/split"
	"github.com/pdiddy/pdfcraft/pkg/types"
)

// Empty-result conditions. They are not failures of any single stage but
// still end the run with a non-zero exit.
var (
	ErrNoBookmarks = errors.New("no bookmarks found in PDF")
	ErrNoMatches   = errors.New("no bookmarks match the filter")
	ErrNoOutput    = errors.New("no split files were created")
)

// Document is an opened PDF: an outline source and a page writer.
type Document interface {
	outline.Source
	split.Document
	Close() error
}

// Opener opens the PDF at path.
type Opener func(path string, log logrus.FieldLogger) (Document, error)

// OpenPDF opens path with pdfcpu.
func OpenPDF(path string, log logrus.FieldLogger) (Document, error) {
	doc, err := pdfdoc.Open(path, log)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Loader resolves a source to a local PDF and removes downloads afterwards.
type Loader interface {
	Load(ctx context.Context, source string) (string, error)
	Cleanup() (int, error)
}

// Recorder stores a finished run.
type Recorder interface {
	RecordRun(ctx context.Context, run catalog.Run) (string, error)
}

// Pipeline wires the stages together. Converter is only used when
// conversion is enabled; a nil Catalog disables run recording.
type Pipeline struct {
	Loader    Loader
	Open      Opener
	Converter convert.Converter
	Catalog   Recorder
	Log       logrus.FieldLogger

	// Out receives batch summaries; nil discards them.
	Out io.Writer
}

// Result describes what a run produced. Fields are filled as far as the
// run got, so a failed run still reports its earlier stages.
type Result struct {
	Source        string             `json:"source" yaml:"source"`
	PDFPath       string             `json:"pdf_path" yaml:"pdf_path"`
	PageCount     int                `json:"page_count" yaml:"page_count"`
	Bookmarks     []types.Bookmark   `json:"bookmarks" yaml:"bookmarks"`
	SplitPoints   []types.SplitPoint `json:"split_points" yaml:"split_points"`
	Sections      []types.Section    `json:"sections,omitempty" yaml:"sections,omitempty"`
	MarkdownFiles []string           `json:"markdown_files,omitempty" yaml:"markdown_files,omitempty"`
	RunID         string             `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

// Preview loads source and derives its split points without writing
// anything. Downloads are kept; cfg.Cleanup is honoured as in Run.
func (p *Pipeline) Preview(ctx context.Context, source string, cfg types.PipelineConfig) (*Result, error) {
	if cfg.Cleanup {
		defer p.cleanup()
	}
	res, doc, err := p.plan(ctx, source, cfg.Split.Filter)
	if doc != nil {
		doc.Close()
	}
	return res, err
}

// Run performs a full split of source. Downloaded PDFs are removed at the
// end when cfg.Cleanup is set, whether or not the run succeeded.
func (p *Pipeline) Run(ctx context.Context, source string, cfg types.PipelineConfig) (*Result, error) {
	if cfg.Cleanup {
		defer p.cleanup()
	}

	res, doc, err := p.plan(ctx, source, cfg.Split.Filter)
	if doc != nil {
		defer doc.Close()
	}
	if err != nil {
		return res, err
	}
	log := p.Log.WithField("source", source)

	sections, err := split.New(log).Split(ctx, doc, res.SplitPoints, cfg.Split.OutputDir)
	res.Sections = sections
	if err != nil {
		return res, fmt.Errorf("splitting %s: %w", res.PDFPath, err)
	}
	if len(sections) == 0 {
		return res, ErrNoOutput
	}

	created := time.Now()
	if cfg.Split.Manifest {
		m := NewManifest(res, cfg.Split.Filter, created)
		if path, err := WriteManifest(cfg.Split.OutputDir, m); err != nil {
			log.WithError(err).Warn("could not write manifest")
		} else {
			log.WithField("path", path).Debug("wrote manifest")
		}
	}

	words := map[string]int{}
	if cfg.Conversion.Enabled {
		if err := p.convert(ctx, res, cfg.Conversion, words, log); err != nil {
			return res, err
		}
	}

	if p.Catalog != nil {
		run := catalogRun(res, cfg.Split.Filter, created, words)
		id, err := p.Catalog.RecordRun(ctx, run)
		if err != nil {
			log.WithError(err).Warn("could not record run in catalog")
		} else {
			res.RunID = id
			log.WithField("run_id", id).Debug("recorded run")
		}
	}

	return res, nil
}

// plan runs the stages up to split point derivation. The returned document,
// when non-nil, must be closed by the caller.
func (p *Pipeline) plan(ctx context.Context, source string, filter types.Filter) (*Result, Document, error) {
	res := &Result{Source: source}
	if err := filter.Validate(); err != nil {
		return res, nil, err
	}

	pdfPath, err := p.Loader.Load(ctx, source)
	if err != nil {
		return res, nil, fmt.Errorf("loading %s: %w", source, err)
	}
	res.PDFPath = pdfPath

	log := p.Log.WithField("source", source)
	doc, err := p.Open(pdfPath, log)
	if err != nil {
		return res, nil, fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	res.PageCount = doc.PageCount()

	bms, err := outline.Extract(doc, log)
	if err != nil {
		return res, doc, fmt.Errorf("extracting bookmarks from %s: %w", pdfPath, err)
	}
	res.Bookmarks = bms
	if len(bms) == 0 {
		return res, doc, ErrNoBookmarks
	}

	filtered := bookmarks.Apply(bms, filter, log)
	if len(filtered) == 0 {
		return res, doc, ErrNoMatches
	}

	res.SplitPoints = bookmarks.SplitPoints(filtered, log)
	if len(res.SplitPoints) == 0 {
		return res, doc, ErrNoMatches
	}
	return res, doc, nil
}

func (p *Pipeline) convert(ctx context.Context, res *Result, cfg types.ConversionConfig, words map[string]int, log logrus.FieldLogger) error {
	if p.Converter == nil {
		return errors.New("conversion enabled but no converter configured")
	}

	paths := make([]string, len(res.Sections))
	for i, s := range res.Sections {
		paths[i] = s.PDFPath
	}

	out := p.Out
	if out == nil {
		out = io.Discard
	}
	batch := convert.ConvertBatch(ctx, p.Converter, paths, cfg, log, out)

	byPDF := make(map[string]convert.Output, len(batch.Outputs))
	for _, o := range batch.Outputs {
		byPDF[o.PDFPath] = o
	}
	for i := range res.Sections {
		if o, ok := byPDF[res.Sections[i].PDFPath]; ok {
			res.Sections[i].MarkdownPath = o.MarkdownPath
			res.MarkdownFiles = append(res.MarkdownFiles, o.MarkdownPath)
			words[o.PDFPath] = o.Summary.Words
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	log.WithField("count", len(res.MarkdownFiles)).Info("converted split files to markdown")
	return nil
}

func (p *Pipeline) cleanup() {
	n, err := p.Loader.Cleanup()
	if err != nil {
		p.Log.WithError(err).Warn("cleanup failed")
		return
	}
	p.Log.WithField("removed", n).Debug("cleanup finished")
}

func catalogRun(res *Result, filter types.Filter, created time.Time, words map[string]int) catalog.Run {
	run := catalog.Run{
		Source:    res.Source,
		PDFPath:   res.PDFPath,
		Filter:    filter.String(),
		PageCount: res.PageCount,
		CreatedAt: created,
	}
	for _, s := range res.Sections {
		run.Sections = append(run.Sections, catalog.Entry{
			Position:     s.Position,
			Title:        s.Title,
			Level:        s.Level,
			StartPage:    s.StartPage,
			EndPage:      s.EndPage,
			PDFPath:      s.PDFPath,
			MarkdownPath: s.MarkdownPath,
			Words:        words[s.PDFPath],
		})
	}
	return run
}
