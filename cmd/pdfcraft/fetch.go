// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfcraft/internal/acquire"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch URL...",
	Short: "Download PDFs into the temp directory",
	Long: `Fetch downloads each URL into the pdfcraft temp directory and prints the
local path. Failed downloads are reported and the remaining URLs are still
fetched. Use cleanup to remove the files afterwards.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", acquire.DefaultTimeout, "HTTP request timeout")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, "timeout")

	log, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	loader := acquire.NewLoader(loaderConfig(), log)
	result := loader.FetchBatch(cmd.Context(), args, os.Stdout)
	if err := cmd.Context().Err(); err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d download(s) failed", result.Failed)
	}
	return nil
}
