// Package main is the entry point for the plan-advisor CLI.
package main

import (
	"os"

	"plan-advisor/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
