package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var creditsCmd = &cobra.Command{
	Use:   "credits",
	Short: "Show remaining Apollo credits",
	RunE:  runCredits,
}

func init() {
	rootCmd.AddCommand(creditsCmd)
}

func runCredits(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath, true)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Enrichment.Provider != "apollo" {
		logger.Error("credits requires enrichment.provider to be \"apollo\"", "provider", cfg.Enrichment.Provider)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	credits, err := newApollo(cfg.Enrichment, logger).Credits(ctx)
	if err != nil {
		logger.Error("credit check failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("remaining: %s\n", orNA(credits.Remaining))
	fmt.Printf("limit:     %s\n", orNA(credits.Limit))
	fmt.Printf("reset:     %s\n", orNA(credits.Reset))
	return nil
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
