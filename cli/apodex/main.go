package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/apodex/internal/cli"
)

var (
	configPath   string
	verbose      bool
	outputFormat string
	logFormat    string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apodex",
		Short: "Export NASA Astronomy Pictures of the Day",
		Long: `apodex downloads NASA Astronomy Pictures of the Day for a list of dates and
writes them to local files, with bounded concurrency:
- export: fetch and save the images for a batch of dates
- report: list the images already exported
- config: manage the YAML configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format (text, json, yaml)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json, auto)")

	// Set up CLI package variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.OutputFormat = &outputFormat
	cli.LogFormat = &logFormat

	cmd.AddCommand(
		cli.NewExportCmd(),
		cli.NewReportCmd(),
		cli.NewConfigCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
