package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/leadradar/internal/model"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score and filter jobs without enrichment",
	Long:  "Ingests the job batch and prints each job's verdict and pain score. Makes no external calls.",
	RunE:  runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath, false)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	source, err := setupSource(cfg, logger)
	if err != nil {
		logger.Error("failed to set up job source", "error", err)
		os.Exit(1)
	}

	raw, err := source.FetchJobs(context.Background())
	if err != nil {
		logger.Error("fetch jobs failed", "error", err)
		os.Exit(1)
	}

	_, engine := setupFilter(cfg, logger)
	now := time.Now()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERDICT\tSCORE\tDAYS\tCOMPANY\tTITLE\tRULES")
	for _, r := range raw {
		job := model.NewJobRecord(r, now)
		if reason, excluded := engine.ExclusionReason(job); excluded {
			fmt.Fprintf(w, "excluded\t-\t%d\t%s\t%s\t%s\n", job.DaysOpen, job.CompanyName, job.Title, reason)
			continue
		}

		bd := engine.Explain(job)
		verdict := "retained"
		if bd.Total < cfg.Thresholds.MinPainScore {
			verdict = "below"
		}
		rules := fmt.Sprintf("base %d", bd.Base)
		for _, c := range bd.Contributions {
			rules += fmt.Sprintf(", %s %+d", c.Rule, c.Weight)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\n", verdict, bd.Total, job.DaysOpen, job.CompanyName, job.Title, rules)
	}
	return w.Flush()
}
