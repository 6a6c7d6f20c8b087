// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfcraft CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfcraft/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultLogFile = "pdfcraft.log"

// rootCmd is the base command for the pdfcraft CLI.
var rootCmd = &cobra.Command{
	Use:   "pdfcraft",
	Short: "Split PDFs into sections along their bookmarks",
	Long: `pdfcraft reads the bookmark outline of a PDF (a local file or a URL),
selects bookmarks by depth or by title keywords, and writes one PDF per
selected section. Split files can optionally be converted to Markdown, and
every run is recorded in a local SQLite catalog.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdfcraft.yaml or ~/.config/pdfcraft/pdfcraft.yaml)")
	rootCmd.PersistentFlags().String("log-level", "INFO", "log level: DEBUG, INFO, WARNING, ERROR")
	rootCmd.PersistentFlags().String("log-file", defaultLogFile, "log file, in addition to stdout (empty disables)")
	rootCmd.PersistentFlags().String("temp-dir", "", "directory for downloaded PDFs (default $TMPDIR/pdfcraft)")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory of per-host bearer tokens for downloads")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("temp_dir", rootCmd.PersistentFlags().Lookup("temp-dir"))
	viper.BindPFlag("secrets_dir", rootCmd.PersistentFlags().Lookup("secrets-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdfcraft")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfcraft"))
		}
	}

	viper.SetEnvPrefix("PDFCRAFT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags binds the named flags of the running command to viper keys, so
// config file and environment values apply when the flag is not given.
// Flag "output-dir" maps to key "output_dir".
func bindFlags(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if f := cmd.Flags().Lookup(name); f != nil {
			viper.BindPFlag(strings.ReplaceAll(name, "-", "_"), f)
		}
	}
}

// parseLogLevel accepts DEBUG, INFO, WARNING and ERROR in any case.
func parseLogLevel(s string) (logrus.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return logrus.DebugLevel, nil
	case "INFO", "":
		return logrus.InfoLevel, nil
	case "WARNING", "WARN":
		return logrus.WarnLevel, nil
	case "ERROR":
		return logrus.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %q: use DEBUG, INFO, WARNING or ERROR", s)
	}
}

// newLogger builds the run's logger from the log flags. The returned close
// function releases the log file.
func newLogger() (*logrus.Logger, func(), error) {
	level, err := parseLogLevel(viper.GetString("log_level"))
	if err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	path := viper.GetString("log_file")
	if path == "" {
		log.SetOutput(os.Stdout)
		return log, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return log, func() { f.Close() }, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
