package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/apodex/pkg/report"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	var dir, pattern string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "List exported APOD files",
		Long:  "List the exported images in the output directory together with their sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, dir, pattern)
		},
	}

	cmd.Flags().StringVarP(&dir, "output-dir", "d", "", "directory to scan (default from config)")
	cmd.Flags().StringVar(&pattern, "pattern", "", "file name glob (default <artifact_prefix>*<artifact_ext>)")

	return cmd
}

func runReport(cmd *cobra.Command, dir, pattern string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.Settings.OutputDir
	}
	if pattern == "" {
		pattern = artifactPattern(cfg)
	}

	artifacts, err := report.ListArtifacts(dir, pattern)
	if err != nil {
		return fmt.Errorf("failed to list artifacts: %w", err)
	}

	reporter, err := report.NewReporter(cmd.OutOrStdout(), cfg.Settings.OutputFormat)
	if err != nil {
		return err
	}
	return reporter.Write(nil, artifacts)
}
