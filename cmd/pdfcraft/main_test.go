// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfcraft/internal/catalog"
	"github.com/pdiddy/pdfcraft/internal/pipeline"
	"github.com/pdiddy/pdfcraft/pkg/types"
)

// parseSplit builds a fresh split command, parses args and returns the
// resulting pipeline config.
func parseSplit(t *testing.T, args ...string) (types.PipelineConfig, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "split"}
	addFilterFlags(cmd)
	addSplitFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	bindFlags(cmd, splitKeys...)
	return splitConfig(cmd)
}

func TestSplitConfig_Defaults(t *testing.T) {
	cfg, err := parseSplit(t, "--level", "0")
	require.NoError(t, err)

	assert.Equal(t, types.Filter{Mode: types.FilterLevel, MaxLevel: 0}, cfg.Split.Filter)
	assert.Equal(t, defaultOutputDir, cfg.Split.OutputDir)
	assert.True(t, cfg.Split.Manifest)
	assert.False(t, cfg.Conversion.Enabled)
	assert.Equal(t, types.BackendText, cfg.Conversion.Backend)
	assert.Equal(t, defaultMarkdownDir, cfg.Conversion.MarkdownDir)
	assert.Equal(t, catalog.DefaultPath, cfg.Catalog.Path)
	assert.Equal(t, 30*time.Second, cfg.Loader.Timeout)
	assert.False(t, cfg.Cleanup)
}

func TestSplitConfig_FilterValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"neither filter", nil, types.ErrNoFilter},
		{"both filters", []string{"-l", "1", "-k", "intro"}, types.ErrConflictingFilters},
		{"blank keywords", []string{"-k", "  ", "-k", ""}, types.ErrNoFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSplit(t, tt.args...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSplitConfig_Keywords(t *testing.T) {
	cfg, err := parseSplit(t, "-k", "Chapter", "-k", " Index ", "--case-sensitive")
	require.NoError(t, err)
	assert.Equal(t, types.FilterKeywords, cfg.Split.Filter.Mode)
	assert.Equal(t, []string{"Chapter", "Index"}, cfg.Split.Filter.Keywords)
	assert.True(t, cfg.Split.Filter.CaseSensitive)
}

func TestSplitConfig_KeywordWithComma(t *testing.T) {
	cfg, err := parseSplit(t, "-k", "Part I, Introduction", "-k", `"Quoted" title`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Part I, Introduction", `"Quoted" title`}, cfg.Split.Filter.Keywords)
}

func TestSplitConfig_PostProcessing(t *testing.T) {
	t.Run("tomd any case", func(t *testing.T) {
		cfg, err := parseSplit(t, "-l", "1", "--post", "ToMD")
		require.NoError(t, err)
		assert.True(t, cfg.Conversion.Enabled)
	})

	t.Run("convert-markdown flag", func(t *testing.T) {
		cfg, err := parseSplit(t, "-l", "1", "-m", "--backend", "pdftotext", "--markdown-dir", "md")
		require.NoError(t, err)
		assert.True(t, cfg.Conversion.Enabled)
		assert.Equal(t, types.BackendPdftotext, cfg.Conversion.Backend)
		assert.Equal(t, "md", cfg.Conversion.MarkdownDir)
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := parseSplit(t, "-l", "1", "--post", "html")
		assert.ErrorContains(t, err, "unknown post-processing option")
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := parseSplit(t, "-l", "1", "--backend", "ocr")
		assert.ErrorContains(t, err, "unknown conversion backend")
	})
}

func TestSplitConfig_NoCatalogAndManifest(t *testing.T) {
	cfg, err := parseSplit(t, "-l", "0", "--no-catalog", "--no-manifest", "--cleanup")
	require.NoError(t, err)
	assert.Empty(t, cfg.Catalog.Path)
	assert.False(t, cfg.Split.Manifest)
	assert.True(t, cfg.Cleanup)
}

func TestSplitConfig_ConfigFileValues(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "split"}
	addFilterFlags(cmd)
	addSplitFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"-l", "0", "-o", "from-flag"}))
	bindFlags(cmd, splitKeys...)
	viper.SetConfigType("yaml")
	require.NoError(t, viper.ReadConfig(strings.NewReader("output_dir: from-config\nmarkdown_dir: from-config\n")))

	cfg, err := splitConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Split.OutputDir)
	assert.Equal(t, "from-config", cfg.Conversion.MarkdownDir)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"DEBUG", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"", logrus.InfoLevel},
		{"WARNING", logrus.WarnLevel},
		{"Error", logrus.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := parseLogLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseLogLevel("TRACE")
	assert.Error(t, err)
}

func TestFormatBookmarks(t *testing.T) {
	res := &pipeline.Result{
		Source:    "book.pdf",
		PDFPath:   "book.pdf",
		PageCount: 12,
		Bookmarks: []types.Bookmark{
			{Title: "Part I", Page: 1, Level: 0},
			{Title: "Chapter 1", Page: 2, Level: 1},
		},
		SplitPoints: []types.SplitPoint{
			{Title: "Part I", StartPage: 1, EndPage: 1},
			{Title: "Chapter 1", StartPage: 2, Level: 1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, formatBookmarks(&buf, res, false))
	out := buf.String()
	assert.Contains(t, out, "12 pages, 2 bookmarks")
	assert.Contains(t, out, "  Chapter 1  (p.2)")
	assert.Contains(t, out, "2-end")

	buf.Reset()
	require.NoError(t, formatBookmarks(&buf, res, true))
	var decoded struct {
		PageCount   int                `json:"page_count"`
		SplitPoints []types.SplitPoint `json:"split_points"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 12, decoded.PageCount)
	assert.Equal(t, res.SplitPoints, decoded.SplitPoints)
}

func TestFormatHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatHistory(&buf, nil, false))
	assert.Contains(t, buf.String(), "No sections found.")

	buf.Reset()
	require.NoError(t, formatHistory(&buf, nil, true))
	assert.JSONEq(t, "[]", buf.String())

	buf.Reset()
	entries := []catalog.Entry{{RunID: "0123456789abcdef", Position: 1, Title: "Intro", StartPage: 1, EndPage: 4, Source: "a.pdf", PDFPath: "split/Intro.pdf"}}
	require.NoError(t, formatHistory(&buf, entries, false))
	assert.Contains(t, buf.String(), "01234567")
	assert.Contains(t, buf.String(), "1-4")
	assert.Contains(t, buf.String(), "1 sections")
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "pdfcraft dev\n", buf.String())
}
