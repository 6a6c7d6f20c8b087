// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfcraft/internal/catalog"
	"github.com/pdiddy/pdfcraft/internal/outline"
	"github.com/pdiddy/pdfcraft/pkg/types"
)

// --- fakes ---

type fakeLoader struct {
	path     string
	err      error
	cleanups int
}

func (f *fakeLoader) Load(context.Context, string) (string, error) {
	return f.path, f.err
}

func (f *fakeLoader) Cleanup() (int, error) {
	f.cleanups++
	return 1, nil
}

// fakeDoc numbers outline leaves sequentially through PageIndex targets.
type fakeDoc struct {
	pages  int
	nodes  []outline.Node
	closed bool
}

func (f *fakeDoc) Outline() ([]outline.Node, error) { return f.nodes, nil }

func (f *fakeDoc) ResolvePage(t outline.Target) (int, error) {
	if t.Kind != outline.TargetPageIndex {
		return 0, outline.ErrUnresolved
	}
	return t.Index + 1, nil
}

func (f *fakeDoc) PageCount() int { return f.pages }

func (f *fakeDoc) CheckPage(int) error { return nil }

func (f *fakeDoc) WritePages(pages []int, path string) error {
	return os.WriteFile(path, []byte("%PDF-1.7 fake"), 0o644)
}

func (f *fakeDoc) Close() error {
	f.closed = true
	return nil
}

func leaf(title string, page int) outline.Leaf {
	return outline.Leaf{Title: title, Target: outline.PageIndex(page - 1)}
}

type fakeConverter struct{ out string }

func (f fakeConverter) Convert(context.Context, string) (string, error) { return f.out, nil }

type fakeRecorder struct {
	runs []catalog.Run
	err  error
}

func (f *fakeRecorder) RecordRun(_ context.Context, run catalog.Run) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.runs = append(f.runs, run)
	return "run-1", nil
}

// --- helpers ---

func tenPageDoc() *fakeDoc {
	return &fakeDoc{
		pages: 10,
		nodes: []outline.Node{
			leaf("Intro", 1),
			outline.Group{Children: []outline.Node{leaf("Background", 2)}},
			leaf("Chapter 1", 3),
			leaf("Chapter 2", 7),
		},
	}
}

func newPipeline(t *testing.T, doc *fakeDoc) (*Pipeline, *fakeLoader, *logtest.Hook) {
	t.Helper()
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	loader := &fakeLoader{path: "/tmp/in.pdf"}
	p := &Pipeline{
		Loader: loader,
		Open: func(string, logrus.FieldLogger) (Document, error) {
			return doc, nil
		},
		Log: log,
	}
	return p, loader, hook
}

func levelConfig(t *testing.T, level int) types.PipelineConfig {
	return types.PipelineConfig{
		Split: types.SplitConfig{
			OutputDir: filepath.Join(t.TempDir(), "split"),
			Filter:    types.Filter{Mode: types.FilterLevel, MaxLevel: level},
			Manifest:  true,
		},
		Conversion: types.ConversionConfig{
			MarkdownDir: filepath.Join(t.TempDir(), "markdown"),
			Backend:     types.BackendText,
		},
	}
}

// --- tests ---

func TestRun_SplitsTopLevel(t *testing.T) {
	doc := tenPageDoc()
	p, loader, _ := newPipeline(t, doc)
	cfg := levelConfig(t, 0)

	res, err := p.Run(context.Background(), "in.pdf", cfg)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/in.pdf", res.PDFPath)
	assert.Equal(t, 10, res.PageCount)
	assert.Len(t, res.Bookmarks, 4)
	require.Len(t, res.SplitPoints, 3)
	assert.Equal(t, types.SplitPoint{Title: "Intro", StartPage: 1, EndPage: 2}, res.SplitPoints[0])
	assert.Equal(t, types.SplitPoint{Title: "Chapter 1", StartPage: 3, EndPage: 6}, res.SplitPoints[1])
	assert.True(t, res.SplitPoints[2].IsOpen())

	require.Len(t, res.Sections, 3)
	assert.Equal(t, filepath.Join(cfg.Split.OutputDir, "Chapter_2.pdf"), res.Sections[2].PDFPath)
	assert.Equal(t, 10, res.Sections[2].EndPage)
	assert.True(t, doc.closed)
	assert.Zero(t, loader.cleanups)

	m, err := ReadManifest(filepath.Join(cfg.Split.OutputDir, ManifestFile))
	require.NoError(t, err)
	assert.Equal(t, "level<=0", m.Filter)
	require.Len(t, m.Sections, 3)
	assert.Equal(t, "Intro.pdf", m.Sections[0].File)
	assert.Equal(t, 2, m.Sections[0].Pages)
}

func TestRun_ConvertsAndRecords(t *testing.T) {
	p, _, _ := newPipeline(t, tenPageDoc())
	rec := &fakeRecorder{}
	p.Catalog = rec
	p.Converter = fakeConverter{out: "# Heading\n\nfour words of text"}
	var out bytes.Buffer
	p.Out = &out

	cfg := levelConfig(t, 0)
	cfg.Conversion.Enabled = true

	res, err := p.Run(context.Background(), "in.pdf", cfg)
	require.NoError(t, err)

	assert.Len(t, res.MarkdownFiles, 3)
	assert.Equal(t, filepath.Join(cfg.Conversion.MarkdownDir, "Intro.md"), res.Sections[0].MarkdownPath)
	assert.FileExists(t, res.MarkdownFiles[0])
	assert.Contains(t, out.String(), "Batch summary: 3 converted")

	assert.Equal(t, "run-1", res.RunID)
	require.Len(t, rec.runs, 1)
	run := rec.runs[0]
	assert.Equal(t, "in.pdf", run.Source)
	assert.Equal(t, "level<=0", run.Filter)
	require.Len(t, run.Sections, 3)
	assert.Equal(t, 5, run.Sections[0].Words)
	assert.Equal(t, res.Sections[1].MarkdownPath, run.Sections[1].MarkdownPath)
}

func TestRun_CatalogFailureIsWarning(t *testing.T) {
	p, _, hook := newPipeline(t, tenPageDoc())
	p.Catalog = &fakeRecorder{err: errors.New("disk full")}

	res, err := p.Run(context.Background(), "in.pdf", levelConfig(t, 0))
	require.NoError(t, err)
	assert.Empty(t, res.RunID)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "could not record run in catalog" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestRun_KeywordFilter(t *testing.T) {
	p, _, _ := newPipeline(t, tenPageDoc())
	cfg := levelConfig(t, 0)
	cfg.Split.Filter = types.Filter{Mode: types.FilterKeywords, Keywords: []string{"chapter"}}

	res, err := p.Run(context.Background(), "in.pdf", cfg)
	require.NoError(t, err)
	require.Len(t, res.SplitPoints, 2)
	assert.Equal(t, "Chapter 1", res.SplitPoints[0].Title)
	assert.Equal(t, 3, res.SplitPoints[0].StartPage)
	assert.Equal(t, 6, res.SplitPoints[0].EndPage)
}

func TestRun_SentinelErrors(t *testing.T) {
	t.Run("no bookmarks", func(t *testing.T) {
		p, _, _ := newPipeline(t, &fakeDoc{pages: 3})
		_, err := p.Run(context.Background(), "in.pdf", levelConfig(t, 0))
		assert.ErrorIs(t, err, ErrNoBookmarks)
	})

	t.Run("no matches", func(t *testing.T) {
		p, _, _ := newPipeline(t, tenPageDoc())
		cfg := levelConfig(t, 0)
		cfg.Split.Filter = types.Filter{Mode: types.FilterKeywords, Keywords: []string{"zzz"}}
		_, err := p.Run(context.Background(), "in.pdf", cfg)
		assert.ErrorIs(t, err, ErrNoMatches)
	})

	t.Run("no output", func(t *testing.T) {
		// Bookmarks beyond the last page produce only invalid ranges.
		doc := &fakeDoc{pages: 2, nodes: []outline.Node{leaf("Late", 5), leaf("Later", 9)}}
		p, _, _ := newPipeline(t, doc)
		_, err := p.Run(context.Background(), "in.pdf", levelConfig(t, 0))
		assert.ErrorIs(t, err, ErrNoOutput)
	})

	t.Run("invalid filter", func(t *testing.T) {
		p, _, _ := newPipeline(t, tenPageDoc())
		cfg := levelConfig(t, 0)
		cfg.Split.Filter = types.Filter{}
		_, err := p.Run(context.Background(), "in.pdf", cfg)
		assert.ErrorIs(t, err, types.ErrNoFilter)
	})
}

func TestRun_LoadFailure(t *testing.T) {
	p, loader, _ := newPipeline(t, tenPageDoc())
	loader.err = errors.New("HTTP 404")

	cfg := levelConfig(t, 0)
	cfg.Cleanup = true
	_, err := p.Run(context.Background(), "https://example.com/x.pdf", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Equal(t, 1, loader.cleanups, "cleanup runs even when the run fails")
}

func TestRun_OpenFailure(t *testing.T) {
	p, _, _ := newPipeline(t, tenPageDoc())
	p.Open = func(string, logrus.FieldLogger) (Document, error) {
		return nil, errors.New("not a PDF")
	}
	_, err := p.Run(context.Background(), "in.pdf", levelConfig(t, 0))
	assert.ErrorContains(t, err, "not a PDF")
}

func TestRun_Cancelled(t *testing.T) {
	p, _, _ := newPipeline(t, tenPageDoc())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := p.Run(ctx, "in.pdf", levelConfig(t, 0))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Sections)
}

func TestRun_ConversionWithoutConverter(t *testing.T) {
	p, _, _ := newPipeline(t, tenPageDoc())
	cfg := levelConfig(t, 0)
	cfg.Conversion.Enabled = true
	_, err := p.Run(context.Background(), "in.pdf", cfg)
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	doc := tenPageDoc()
	p, loader, _ := newPipeline(t, doc)
	cfg := levelConfig(t, 1)
	cfg.Cleanup = true

	res, err := p.Preview(context.Background(), "in.pdf", cfg)
	require.NoError(t, err)
	assert.Len(t, res.SplitPoints, 4)
	assert.Empty(t, res.Sections)
	assert.NoDirExists(t, cfg.Split.OutputDir)
	assert.True(t, doc.closed)
	assert.Equal(t, 1, loader.cleanups)
}
