package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/leadradar/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a sample run summary using the configured notifier.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath, false)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	// Only the webhook is needed here; provider keys are not.
	cfg.Enrichment.Provider = "mock"
	cfg.AI.Enabled = false
	if err := resolveConfigSecrets(cfg); err != nil {
		logger.Error("failed to resolve notification settings", "error", err)
		os.Exit(1)
	}

	if err := notifier.SendTestMessage(setupNotifier(cfg, logger)); err != nil {
		logger.Error("test notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("test notification sent successfully")
	return nil
}
