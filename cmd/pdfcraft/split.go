// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfcraft/internal/acquire"
	"github.com/pdiddy/pdfcraft/internal/catalog"
	"github.com/pdiddy/pdfcraft/internal/convert"
	"github.com/pdiddy/pdfcraft/internal/pipeline"
	"github.com/pdiddy/pdfcraft/pkg/types"
)

const (
	defaultOutputDir   = "./split_pdfs"
	defaultMarkdownDir = "./markdown"

	postToMarkdown = "tomd"
)

var splitCmd = &cobra.Command{
	Use:   "split SOURCE",
	Short: "Split a PDF into one file per selected bookmark",
	Long: `Split loads SOURCE (a local path or an http(s) URL), reads its bookmark
outline and writes one PDF per selected bookmark into the output directory.

Bookmarks are selected either by depth (--level, 0 = top level only) or by
title keywords (--keywords); exactly one of the two is required. With
--post tomd or --convert-markdown each split file is also converted to
Markdown.`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

// splitKeys are the split flags that config file and environment can set.
var splitKeys = []string{"output-dir", "markdown-dir", "backend", "frontmatter", "timeout", "catalog", "cleanup"}

func init() {
	addFilterFlags(splitCmd)
	addSplitFlags(splitCmd)

	rootCmd.AddCommand(splitCmd)
}

func addSplitFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output-dir", "o", defaultOutputDir, "directory for split PDF files")
	cmd.Flags().String("post", "", "post-processing step: tomd")
	cmd.Flags().BoolP("convert-markdown", "m", false, "convert split files to markdown (same as --post tomd)")
	cmd.Flags().String("markdown-dir", defaultMarkdownDir, "directory for markdown files")
	cmd.Flags().String("backend", string(types.BackendText), "conversion backend: text, pdftotext, markitdown")
	cmd.Flags().Bool("frontmatter", false, "prepend YAML frontmatter to markdown files")
	cmd.Flags().Bool("no-manifest", false, "do not write manifest.yaml to the output directory")
	cmd.Flags().String("catalog", catalog.DefaultPath, "catalog database recording each run")
	cmd.Flags().Bool("no-catalog", false, "do not record the run in the catalog")
}

// addFilterFlags declares the flags shared by split and bookmarks.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("level", "l", 0, "maximum bookmark level to split on (0 = top level)")
	cmd.Flags().StringArrayP("keywords", "k", nil, "split on bookmarks whose title contains this keyword (repeatable)")
	cmd.Flags().Bool("case-sensitive", false, "match keywords case-sensitively")
	cmd.Flags().Duration("timeout", acquire.DefaultTimeout, "HTTP timeout when SOURCE is a URL")
	cmd.Flags().Bool("cleanup", false, "remove downloaded PDFs when the command finishes")
}

func runSplit(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, splitKeys...)

	cfg, err := splitConfig(cmd)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	p := &pipeline.Pipeline{
		Loader: acquire.NewLoader(cfg.Loader, log),
		Open:   pipeline.OpenPDF,
		Log:    log,
		Out:    os.Stdout,
	}

	if cfg.Conversion.Enabled {
		conv, err := convert.NewConverter(ctx, cfg.Conversion.Backend)
		if err != nil {
			return fmt.Errorf("conversion backend %s: %w", cfg.Conversion.Backend, err)
		}
		p.Converter = conv
	}

	if cfg.Catalog.Path != "" {
		store, err := catalog.Open(cfg.Catalog)
		if err != nil {
			log.WithError(err).Warn("catalog unavailable, run will not be recorded")
		} else {
			defer store.Close()
			p.Catalog = store
		}
	}

	res, err := p.Run(ctx, args[0], cfg)
	if err != nil {
		log.WithError(err).Error("split failed")
		return err
	}

	printSplitSummary(os.Stdout, res)
	return nil
}

// splitConfig validates the split flags and assembles the pipeline config.
// It does no I/O so flag errors surface before anything is loaded.
func splitConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return types.PipelineConfig{}, err
	}

	post, _ := cmd.Flags().GetString("post")
	toMarkdown, err := parsePost(post)
	if err != nil {
		return types.PipelineConfig{}, err
	}
	convertMarkdown, _ := cmd.Flags().GetBool("convert-markdown")

	backend, err := convert.ParseBackend(viper.GetString("backend"))
	if err != nil {
		return types.PipelineConfig{}, err
	}

	noManifest, _ := cmd.Flags().GetBool("no-manifest")
	catalogPath := viper.GetString("catalog")
	if noCatalog, _ := cmd.Flags().GetBool("no-catalog"); noCatalog {
		catalogPath = ""
	}

	return types.PipelineConfig{
		Loader: loaderConfig(),
		Split: types.SplitConfig{
			OutputDir: stringOr(viper.GetString("output_dir"), defaultOutputDir),
			Filter:    filter,
			Manifest:  !noManifest,
		},
		Conversion: types.ConversionConfig{
			Enabled:     toMarkdown || convertMarkdown,
			Backend:     backend,
			MarkdownDir: stringOr(viper.GetString("markdown_dir"), defaultMarkdownDir),
			Frontmatter: viper.GetBool("frontmatter"),
		},
		Catalog: types.CatalogConfig{Path: catalogPath},
		Cleanup: viper.GetBool("cleanup"),
	}, nil
}

// filterFromFlags builds the bookmark filter. --level counts as given only
// when set explicitly, since 0 is a valid level.
func filterFromFlags(cmd *cobra.Command) (types.Filter, error) {
	level, _ := cmd.Flags().GetInt("level")
	raw, _ := cmd.Flags().GetStringArray("keywords")
	caseSensitive, _ := cmd.Flags().GetBool("case-sensitive")

	var keywords []string
	for _, k := range raw {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return types.NewFilter(cmd.Flags().Changed("level"), level, keywords, caseSensitive)
}

// parsePost reports whether the post-processing option asks for markdown.
func parsePost(post string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(post)) {
	case "":
		return false, nil
	case postToMarkdown:
		return true, nil
	default:
		return false, fmt.Errorf("unknown post-processing option %q: use %s", post, postToMarkdown)
	}
}

func loaderConfig() types.LoaderConfig {
	return types.LoaderConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: acquire.DefaultUserAgent,
		},
		TempDir:    viper.GetString("temp_dir"),
		SecretsDir: viper.GetString("secrets_dir"),
	}
}

func stringOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func printSplitSummary(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "\nSplit %s (%d pages) into %d files:\n", res.PDFPath, res.PageCount, len(res.Sections))
	for _, s := range res.Sections {
		fmt.Fprintf(w, "  %3d  %-40s  pages %d-%d  %s\n",
			s.Position, truncate(s.Title, 40), s.StartPage, s.EndPage, s.PDFPath)
		if s.MarkdownPath != "" {
			fmt.Fprintf(w, "       %-40s  markdown    %s\n", "", s.MarkdownPath)
		}
	}
	if res.RunID != "" {
		fmt.Fprintf(w, "\nRecorded as run %s\n", res.RunID)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
