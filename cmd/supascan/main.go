package main

import (
	"os"

	"github.com/wonny/supascan/cmd/supascan/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
