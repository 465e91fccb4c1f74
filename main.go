// ABOUTME: Entry point for the papayal CLI
// ABOUTME: Command-line client for the Papayal gift card wallet

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/papayal/wallet-cli/cmd"
)

func main() {
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
