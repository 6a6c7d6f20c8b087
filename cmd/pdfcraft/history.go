// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfcraft/internal/catalog"
	"github.com/pdiddy/pdfcraft/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history [query]",
	Short: "Search sections recorded by earlier split runs",
	Long: `History lists sections from the catalog, newest run first. A query
matches section titles by substring; --run and --source narrow the results
to one run or one source.`,
	RunE: runHistory,
}

var historyRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded split runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryRuns,
}

var historyExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export recorded runs to YAML or JSON",
	Long: `Export writes the runs matching the filters, each with its matching
sections, to stdout or to --output.`,
	RunE: runHistoryExport,
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Sections(cmd.Context(), historyQuery(cmd, args))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistory(os.Stdout, entries, jsonOutput)
}

func formatHistory(w io.Writer, entries []catalog.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if entries == nil {
			entries = []catalog.Entry{}
		}
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No sections found.")
		return nil
	}

	fmt.Fprintf(w, "%-8s  %-4s  %-40s  %-11s  %-30s  %s\n",
		"Run", "#", "Title", "Pages", "Source", "File")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, e := range entries {
		fmt.Fprintf(w, "%-8s  %-4d  %-40s  %-11s  %-30s  %s\n",
			shortID(e.RunID), e.Position, truncate(e.Title, 40),
			fmt.Sprintf("%d-%d", e.StartPage, e.EndPage),
			truncate(e.Source, 30), e.PDFPath)
	}
	fmt.Fprintf(w, "\n%d sections\n", len(entries))
	return nil
}

func runHistoryRuns(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if runs == nil {
			runs = []catalog.Run{}
		}
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  %-20s  %d pages  %s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Filter, r.PageCount, r.Source)
	}
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	opts := historyQuery(cmd, args)
	switch strings.ToLower(format) {
	case "yaml", "":
		err = store.ExportYAML(cmd.Context(), opts, w)
	case "json":
		err = store.ExportJSON(cmd.Context(), opts, w)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", output)
	}
	return nil
}

// --- shared helpers ---

func openCatalog(cmd *cobra.Command) (*catalog.Store, error) {
	bindFlags(cmd, "catalog")
	path := viper.GetString("catalog")
	if path == "" {
		path = catalog.DefaultPath
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no catalog at %s: run split first or pass --catalog", path)
	}
	return catalog.Open(types.CatalogConfig{Path: path})
}

func historyQuery(cmd *cobra.Command, args []string) catalog.QueryOptions {
	runID, _ := cmd.Flags().GetString("run")
	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")
	return catalog.QueryOptions{
		Query:      strings.Join(args, " "),
		RunID:      runID,
		Source:     source,
		MaxResults: limit,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	historyCmd.PersistentFlags().String("catalog", catalog.DefaultPath, "catalog database")
	historyCmd.PersistentFlags().Int("limit", 0, "maximum results (0 = use default)")
	historyCmd.PersistentFlags().Bool("json", false, "output results as JSON")

	for _, c := range []*cobra.Command{historyCmd, historyExportCmd} {
		c.Flags().String("run", "", "filter by run ID")
		c.Flags().String("source", "", "filter by source path or URL")
	}

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().StringP("output", "o", "", "write the export to a file instead of stdout")

	historyCmd.AddCommand(historyRunsCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
