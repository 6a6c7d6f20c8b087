// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfcraft/internal/convert"
	"github.com/pdiddy/pdfcraft/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert PDF...",
	Short: "Convert PDF files to Markdown",
	Long: `Convert turns each PDF into a Markdown file in the markdown directory,
using the same backends as split --post tomd. Existing Markdown files are
overwritten; PDFs that produce no text are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("markdown-dir", defaultMarkdownDir, "directory for markdown files")
	convertCmd.Flags().String("backend", string(types.BackendText), "conversion backend: text, pdftotext, markitdown")
	convertCmd.Flags().Bool("frontmatter", false, "prepend YAML frontmatter to markdown files")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, "markdown-dir", "backend", "frontmatter")

	backend, err := convert.ParseBackend(viper.GetString("backend"))
	if err != nil {
		return err
	}
	cfg := types.ConversionConfig{
		Enabled:     true,
		Backend:     backend,
		MarkdownDir: stringOr(viper.GetString("markdown_dir"), defaultMarkdownDir),
		Frontmatter: viper.GetBool("frontmatter"),
	}

	log, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	conv, err := convert.NewConverter(ctx, backend)
	if err != nil {
		return fmt.Errorf("conversion backend %s: %w", backend, err)
	}

	result := convert.ConvertBatch(ctx, conv, args, cfg, log, os.Stdout)
	if err := ctx.Err(); err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}
