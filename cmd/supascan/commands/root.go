package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "supascan",
	Short: "Supascan - daily equity candidate scanner",
	Long: `Supascan scans the US equity market for a handful of actionable
candidates per day: regime gate, screener universe, quality and price
action filters, social and technical scoring, multi-dimension AI
synthesis, and final ranking with trade plans.

Usage:
  go run ./cmd/supascan [command]

Examples:
  go run ./cmd/supascan scan
  go run ./cmd/supascan scan --synthetic
  go run ./cmd/supascan regime
  go run ./cmd/supascan schedule`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}
