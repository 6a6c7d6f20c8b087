// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfcraft/internal/acquire"
	"github.com/pdiddy/pdfcraft/internal/pipeline"
	"github.com/pdiddy/pdfcraft/pkg/types"
)

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks SOURCE",
	Short: "Show the bookmarks of a PDF and the split points a filter selects",
	Long: `Bookmarks prints the flattened outline of SOURCE and the split points
that split would produce with the same --level or --keywords flags.
Nothing is written to disk apart from a downloaded SOURCE.`,
	Args: cobra.ExactArgs(1),
	RunE: runBookmarks,
}

func init() {
	addFilterFlags(bookmarksCmd)
	bookmarksCmd.Flags().Bool("json", false, "output bookmarks and split points as JSON")

	rootCmd.AddCommand(bookmarksCmd)
}

func runBookmarks(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, "timeout", "cleanup")

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg := types.PipelineConfig{
		Loader: loaderConfig(),
		Split:  types.SplitConfig{Filter: filter},
	}
	cfg.Cleanup, _ = cmd.Flags().GetBool("cleanup")

	p := &pipeline.Pipeline{
		Loader: acquire.NewLoader(cfg.Loader, log),
		Open:   pipeline.OpenPDF,
		Log:    log,
	}
	res, err := p.Preview(cmd.Context(), args[0], cfg)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatBookmarks(os.Stdout, res, jsonOutput)
}

func formatBookmarks(w io.Writer, res *pipeline.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Source      string             `json:"source"`
			PageCount   int                `json:"page_count"`
			Bookmarks   []types.Bookmark   `json:"bookmarks"`
			SplitPoints []types.SplitPoint `json:"split_points"`
		}{res.Source, res.PageCount, res.Bookmarks, res.SplitPoints})
	}

	fmt.Fprintf(w, "%s: %d pages, %d bookmarks\n\n", res.PDFPath, res.PageCount, len(res.Bookmarks))
	for _, b := range res.Bookmarks {
		fmt.Fprintf(w, "%s%s  (p.%d)\n", strings.Repeat("  ", b.Level), b.Title, b.Page)
	}

	fmt.Fprintf(w, "\nSplit points (%d):\n", len(res.SplitPoints))
	fmt.Fprintf(w, "%-4s  %-50s  %s\n", "#", "Title", "Pages")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for i, sp := range res.SplitPoints {
		end := "end"
		if !sp.IsOpen() {
			end = fmt.Sprint(sp.EndPage)
		}
		fmt.Fprintf(w, "%-4d  %-50s  %d-%s\n", i+1, truncate(sp.Title, 50), sp.StartPage, end)
	}
	return nil
}
