// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfcraft/internal/acquire"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove downloaded PDFs from the temp directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, closeLog, err := newLogger()
		if err != nil {
			return err
		}
		defer closeLog()

		loader := acquire.NewLoader(loaderConfig(), log)
		n, err := loader.Cleanup()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d file(s) from %s\n", n, loader.TempDir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
