// Package main is the entry point for the pdfrotate CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bmharper/pdfrotate"
	"github.com/bmharper/pdfrotate/internal/config"
	"github.com/bmharper/pdfrotate/internal/log"
	"github.com/spf13/cobra"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := newRotateCmd(&envFile)
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to .env file")

	cmd.AddCommand(batchCmd(&envFile))
	cmd.AddCommand(detectCmd(&envFile))
	cmd.AddCommand(versionCmd())

	return cmd
}

// setup loads configuration and builds the logger for a command run.
func setup(cmd *cobra.Command, envFile string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, log.NewLogger(cmd.ErrOrStderr(), cfg), nil
}

// openDocument opens filename with the configured validation mode.
func openDocument(filename string, cfg config.Config, logger *slog.Logger) (*pdfrotate.Document, error) {
	opts := []pdfrotate.Option{pdfrotate.WithLogger(logger)}
	if cfg.Validation == config.ValidationStrict {
		opts = append(opts, pdfrotate.WithStrictValidation())
	}
	return pdfrotate.NewDocumentFromFile(filename, opts...)
}
