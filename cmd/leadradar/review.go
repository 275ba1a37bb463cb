package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/leadradar/internal/model"
	"github.com/amishk599/leadradar/internal/pipeline"
	"github.com/amishk599/leadradar/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review leads interactively (TUI)",
	Long:  "Runs the pipeline without writing a file, then opens a split-pane view of qualified and rejected leads. Press e to export.",
	RunE:  runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath, true)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Review runs a TUI and any log output while it is on screen corrupts
	// the display.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx := context.Background()
	a, err := setupApp(ctx, cfg, silentLogger)
	if err != nil {
		logger.Error("setup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	batch, err := review.RunLoader(ctx, "Collecting leads", a.orchestrator.Collect)
	if err != nil {
		fmt.Printf("Error collecting leads: %v\n", err)
		return nil
	}

	exported := false
	opts := review.Options{
		Criteria: model.Criteria{MinContacts: cfg.Thresholds.MinContacts, MinPainScore: cfg.Thresholds.MinPainScore},
		Explain:  a.engine.Explain,
		Export: func() (string, error) {
			if err := a.orchestrator.Export(batch); err != nil {
				return "", err
			}
			exported = true
			return batch.Report.OutputPath, nil
		},
	}
	if err := review.Run(batch.Qualified, batch.Rejected, opts); err != nil {
		fmt.Printf("TUI error: %v\n", err)
	}

	if exported {
		fmt.Print(batch.Report.String())
	} else {
		printUnexported(batch)
	}
	return nil
}

func printUnexported(batch *pipeline.Batch) {
	fmt.Printf("Reviewed %d qualified and %d rejected leads; nothing exported.\n",
		len(batch.Qualified), len(batch.Rejected))
}
