package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var regimeCmd = &cobra.Command{
	Use:   "regime",
	Short: "Evaluate the market regime gate",
	Long: `Evaluates the market-wide go/no-go decision without running the
scan: VIX level, index momentum, distribution days, down-week streak.

Example:
  go run ./cmd/supascan regime
  go run ./cmd/supascan regime --synthetic`,
	RunE: runRegime,
}

var regimeSynthetic bool

func init() {
	rootCmd.AddCommand(regimeCmd)
	regimeCmd.Flags().BoolVar(&regimeSynthetic, "synthetic", false, "use the deterministic synthetic data provider")
}

func runRegime(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Market Regime ===")

	deps, err := initDeps(regimeSynthetic)
	if err != nil {
		return err
	}
	defer deps.Close()

	gate := deps.regimeGate()
	state, err := gate.Evaluate(cmd.Context())
	if err != nil {
		return fmt.Errorf("evaluate regime: %w", err)
	}

	printRegimeState(state)
	return nil
}
