package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/apodex/internal/logger"
	"github.com/glorpus-work/apodex/pkg/apod"
	"github.com/glorpus-work/apodex/pkg/archive"
	"github.com/glorpus-work/apodex/pkg/config"
	"github.com/glorpus-work/apodex/pkg/errors"
	"github.com/glorpus-work/apodex/pkg/http"
	"github.com/glorpus-work/apodex/pkg/model"
	"github.com/glorpus-work/apodex/pkg/orchestrator"
	"github.com/glorpus-work/apodex/pkg/report"
	"github.com/glorpus-work/apodex/pkg/storage"
)

type exportOptions struct {
	concurrency       int
	exportConcurrency int
	outputDir         string
	bundle            string
	timeout           time.Duration
}

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export [DATE...]",
		Short: "Export APOD images for the given dates",
		Long: `Download the Astronomy Picture of the Day for each DATE (YYYY-MM-DD) and
write it to apod-export-<index>.jpg in the output directory, where index is
the position of the date on the command line. Without arguments the configured
default dates are used. The command fails if any date could not be exported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", 0, "maximum dates in flight (default from config)")
	cmd.Flags().IntVar(&opts.exportConcurrency, "export-concurrency", 0, "maximum concurrent file writes (default from config)")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "d", "", "directory to write images to (default from config)")
	cmd.Flags().StringVar(&opts.bundle, "bundle", "", "also pack the exported images into this .tar.gz file")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "timeout for each request and write (default from config)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string, opts *exportOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyExportFlags(cmd, cfg, opts); err != nil {
		return err
	}

	dates := args
	if len(dates) == 0 {
		dates = cfg.Settings.DefaultDates
	}
	keys := make([]model.Key, len(dates))
	for i, d := range dates {
		keys[i] = model.Key(d)
	}

	reporter, err := report.NewReporter(cmd.OutOrStdout(), cfg.Settings.OutputFormat)
	if err != nil {
		return err
	}
	if reporter.Format == report.FormatText {
		report.Banner(cmd.OutOrStdout(), report.BannerInfo{
			Title:                  bannerTitle,
			APIKey:                 cfg.Settings.APIKey,
			MaxConcurrentDownloads: cfg.Settings.MaxConcurrentDownloads,
			MaxConcurrentExports:   cfg.Settings.MaxConcurrentExports,
			Dates:                  dates,
		})
	}

	orch, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}

	result, err := orch.Run(cmd.Context(), keys, cfg.Settings.MaxConcurrentDownloads)
	if err != nil {
		return err
	}
	logger.Info("Batch finished", logger.Fields{
		"run_id":    result.RunID,
		"succeeded": len(result.Succeeded()),
		"failed":    len(result.Failures()),
		"bytes":     result.BytesWritten(),
	})

	artifacts, err := report.ListArtifacts(cfg.Settings.OutputDir, artifactPattern(cfg))
	if err != nil {
		return fmt.Errorf("failed to list artifacts: %w", err)
	}
	if err := reporter.Write(result, artifacts); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if opts.bundle != "" {
		if err := bundleResult(cmd, cfg, result, opts.bundle); err != nil {
			return err
		}
	}

	if !result.AllSucceeded {
		return fmt.Errorf("%w: %d of %d dates failed", errors.ErrBatchFailed, len(result.Failures()), len(result.Outcomes))
	}
	return nil
}

// applyExportFlags overrides settings with the export flags the user set.
func applyExportFlags(cmd *cobra.Command, cfg *config.Config, opts *exportOptions) error {
	flags := cmd.Flags()
	if flags.Changed("concurrency") {
		cfg.Settings.MaxConcurrentDownloads = opts.concurrency
	}
	if flags.Changed("export-concurrency") {
		cfg.Settings.MaxConcurrentExports = opts.exportConcurrency
	}
	if flags.Changed("output-dir") {
		cfg.Settings.OutputDir = opts.outputDir
	}
	if flags.Changed("timeout") {
		cfg.Settings.HTTPTimeout = opts.timeout
	}
	return cfg.Validate()
}

// newOrchestrator wires the APOD client, locator cache and directory persister.
func newOrchestrator(cfg *config.Config) (*orchestrator.Orchestrator, error) {
	s := cfg.Settings
	client := http.NewClient(s.HTTPTimeout, "")

	locator, err := apod.NewCachingLocator(apod.NewLocator(client, s.APIEndpoint, s.APIKey), s.LocatorCacheSize)
	if err != nil {
		return nil, err
	}

	orch := orchestrator.New(locator, apod.NewFetcher(client), storage.NewDirPersister(s.OutputDir), orchestrator.Hooks{
		OnEvent: logEvent,
	})
	orch.Naming = orchestrator.NameWith(s.ArtifactPrefix, s.ArtifactExt)
	orch.CallTimeout = s.HTTPTimeout
	orch.ExportLimit = s.MaxConcurrentExports
	return orch, nil
}

func logEvent(e orchestrator.Event) {
	fields := logger.Fields{"date": string(e.Key), "index": e.Index}
	switch e.Phase {
	case orchestrator.PhaseStarted:
		logger.Debug("Processing date", fields)
	case orchestrator.PhaseSucceeded:
		fields["file"] = e.Outcome.Artifact
		fields["bytes"] = e.Outcome.BytesWritten
		logger.Success("Exported APOD", fields)
	case orchestrator.PhaseFailed:
		fields["step"] = string(e.Outcome.Kind)
		fields["error"] = e.Outcome.Message
		logger.Error("Failed to export APOD", fields)
	}
}

func artifactPattern(cfg *config.Config) string {
	return cfg.Settings.ArtifactPrefix + "*" + cfg.Settings.ArtifactExt
}

func bundleResult(cmd *cobra.Command, cfg *config.Config, result *model.BatchResult, dest string) error {
	succeeded := result.Succeeded()
	if len(succeeded) == 0 {
		logger.Warn("Nothing to bundle, no date was exported", logger.Fields{"bundle": dest})
		return nil
	}
	names := make([]string, 0, len(succeeded))
	for _, o := range succeeded {
		names = append(names, o.Artifact)
	}

	if err := archive.NewBundler().Bundle(cmd.Context(), cfg.Settings.OutputDir, names, dest); err != nil {
		return fmt.Errorf("failed to bundle artifacts: %w", err)
	}
	abs, _ := filepath.Abs(dest)
	logger.Success("Bundle created", logger.Fields{"path": abs, "files": len(names)})
	return nil
}
