package main

import (
	"os"

	"github.com/wonny/capexwatch/cmd/capexwatch/commands"
)

// main is the entry point for the capexwatch CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/capexwatch [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
