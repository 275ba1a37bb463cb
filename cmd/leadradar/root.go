package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/leadradar/internal/config"
	"github.com/amishk599/leadradar/internal/secrets"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "leadradar",
	Short: "Lead radar: turn stale job postings into sales leads",
	Long: "LeadRadar scores job postings by hiring pain, finds decision-makers at the " +
		"companies behind them, summarizes each role and exports a CRM-ready table.",
	// Default to `run` so that `leadradar` with no args runs the pipeline once.
	RunE:          runRun,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: LEADRADAR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// configFile resolves the config path.
// Priority: explicit path arg > LEADRADAR_CONFIG env var > "./config.yaml"
func configFile(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("LEADRADAR_CONFIG"); env != "" {
		return env
	}
	return "config.yaml"
}

// loadConfig parses the config file. A missing default config file falls
// back to built-in defaults; an explicitly named file must exist. With
// withSecrets, API keys and the webhook are resolved from the environment and
// the OS keychain.
func loadConfig(path string, withSecrets bool) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path == "" && os.Getenv("LEADRADAR_CONFIG") == "" {
		cfg, err = config.LoadOrDefault(configFile(path))
	} else {
		cfg, err = config.Load(configFile(path))
	}
	if err != nil {
		return nil, err
	}
	if !withSecrets {
		return cfg, nil
	}
	if err := resolveConfigSecrets(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveConfigSecrets(cfg *config.Config) error {
	return cfg.ResolveSecrets(secrets.Lookup)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}
