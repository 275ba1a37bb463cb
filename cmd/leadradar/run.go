package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the lead pipeline once",
	Long:  "Ingest, score and filter jobs, enrich and summarize each lead, then export the qualified leads.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath, true)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"source", cfg.Source.Type,
		"enrichment", cfg.Enrichment.Provider,
		"ai_enabled", cfg.AI.Enabled,
		"min_pain_score", cfg.Thresholds.MinPainScore,
		"min_contacts", cfg.Thresholds.MinContacts,
		"export", cfg.Export.Format,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setupApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("setup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	report, err := a.orchestrator.Run(ctx)
	if err != nil {
		if isExportLocked(err) {
			logger.Error("another run is writing to the export directory", "dir", cfg.Export.Dir)
		} else {
			logger.Error("pipeline failed", "error", err)
		}
		a.Close()
		os.Exit(1)
	}

	stats := a.cache.Stats()
	logger.Debug("contact cache", "hits", stats.Hits, "misses", stats.Misses)

	fmt.Print(report.String())
	return nil
}
