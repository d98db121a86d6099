package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent scan run history",
	Long: `Reads recent runs from the database, newest first.

Requires DATABASE_URL to be configured.

Example:
  go run ./cmd/supascan runs
  go run ./cmd/supascan runs --limit 20`,
	RunE: runRuns,
}

var runsLimit int

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "number of runs to show")
}

func runRuns(cmd *cobra.Command, args []string) error {
	deps, err := initDeps(false)
	if err != nil {
		return err
	}
	defer deps.Close()

	if deps.store == nil {
		return fmt.Errorf("run history requires DATABASE_URL")
	}

	runs, err := deps.store.RecentRuns(cmd.Context(), runsLimit)
	if err != nil {
		return fmt.Errorf("load runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("Recent runs (%d):\n\n", len(runs))
	for _, run := range runs {
		fmt.Printf("📊 %s — %s (%.1fs)\n", run.RunID, run.Status, run.Duration.Seconds())
		fmt.Printf("   %d universe → %d quality → %d price action → %d analyzed → %d ranked\n",
			run.Stages.Universe, run.Stages.QualityPassed, run.Stages.PriceActionPassed,
			run.Stages.Analyzed, run.Stages.Ranked)
		for _, f := range run.Finalists {
			fmt.Printf("   %d. %-6s %.2f/5.0 %s (%s)\n",
				f.Rank, f.Ticker, f.CompositeScore, f.Rating, f.Conviction)
		}
		fmt.Println()
	}

	return nil
}
