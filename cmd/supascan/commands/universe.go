package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Print today's scan universe",
	Long: `Builds and prints the ticker universe from the screener, falling
back to the curated static list when the screener is unreachable.

Example:
  go run ./cmd/supascan universe`,
	RunE: runUniverse,
}

func init() {
	rootCmd.AddCommand(universeCmd)
}

func runUniverse(cmd *cobra.Command, args []string) error {
	deps, err := initDeps(false)
	if err != nil {
		return err
	}
	defer deps.Close()

	tickers := deps.universeProvider().Tickers(cmd.Context())

	fmt.Printf("Universe (%d tickers):\n", len(tickers))
	for i, ticker := range tickers {
		fmt.Printf("  %-6s", ticker)
		if (i+1)%8 == 0 {
			fmt.Println()
		}
	}
	fmt.Println()

	return nil
}
