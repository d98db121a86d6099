package config_test

import (
	"fmt"

	"github.com/wonny/supascan/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	// Access configuration values
	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Scan limit: %d\n", cfg.Scanner.ScanLimit)
	fmt.Printf("Finalists per run: %d\n", cfg.Scanner.TopK)
	fmt.Printf("Provider mode: %s\n", cfg.Provider.Mode)
}
