package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/supascan/internal/contracts"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one full candidate scan",
	Long: `Runs the complete pipeline once: regime gate, universe, filters,
social and technical scoring, AI synthesis, and final ranking.

Example:
  go run ./cmd/supascan scan
  go run ./cmd/supascan scan --synthetic`,
	RunE: runScan,
}

var scanSynthetic bool

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanSynthetic, "synthetic", false, "use the deterministic synthetic data provider")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Supascan Daily Scan ===")

	deps, err := initDeps(scanSynthetic)
	if err != nil {
		return err
	}
	defer deps.Close()

	result, err := deps.pipeline.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	printRunResult(result)
	return nil
}

func printRunResult(result *contracts.RunResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("  Run %s — %s (%.1fs)\n", result.RunID, result.Status, result.Duration.Seconds())
	fmt.Println(strings.Repeat("=", 50))

	if result.Regime != nil {
		printRegimeState(result.Regime)
	}

	if result.Status == contracts.RunPaused {
		return
	}

	fmt.Println()
	fmt.Println("📊 Funnel")
	fmt.Printf("  Universe:      %d\n", result.Stages.Universe)
	fmt.Printf("  Quality:       %d\n", result.Stages.QualityPassed)
	fmt.Printf("  Price action:  %d\n", result.Stages.PriceActionPassed)
	fmt.Printf("  Analyzed:      %d\n", result.Stages.Analyzed)
	fmt.Printf("  Ranked:        %d\n", result.Stages.Ranked)

	if len(result.Finalists) == 0 {
		fmt.Println("\n💡 No candidates survived today's scan.")
		return
	}

	fmt.Println()
	fmt.Println("🎯 Finalists")
	for _, f := range result.Finalists {
		fmt.Printf("\n  %d. %s (%s) — $%.2f\n", f.Rank, f.Ticker, f.Company, f.Price)
		fmt.Printf("     Score: %.2f/5.0  %s (%s conviction)\n", f.CompositeScore, f.Rating, f.Conviction)
		fmt.Printf("     Plan:  stop $%.2f · size %.1f%% · hold %s\n",
			f.StopLoss, f.PositionPct*100, f.HoldPeriod)
		if f.Social != nil {
			fmt.Printf("     Buzz:  %s, %d recent mentions, %d catalysts\n",
				f.Social.Strength, f.Social.RecentMentions, f.Social.CatalystCount)
		}
		if f.Analysis != nil && f.Analysis.Thesis != "" {
			fmt.Printf("     Thesis: %s\n", f.Analysis.Thesis)
		}
	}
}

func printRegimeState(state *contracts.MarketRegimeState) {
	fmt.Println()
	if state.Tradeable() {
		fmt.Println("✅ Market regime: TRADEABLE")
	} else {
		fmt.Println("⛔ Market regime: PAUSED")
		for _, reason := range state.Reasons {
			fmt.Printf("   - %s\n", reason)
		}
	}

	fmt.Printf("   VIX %.1f · 5d %+.1f%% · 10d %+.1f%% · volume %.2fx · %d red weeks\n",
		state.Volatility, state.Change5D, state.Change10D, state.VolumeRatio, state.RedWeeks)
	if state.FetchError != "" {
		fmt.Printf("   ⚠️  feed error (failed open): %s\n", state.FetchError)
	}
}
