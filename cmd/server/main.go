// Package main is the entry point for the dailies HTTP server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dailies-api",
	Short: "Daily preparation HTTP server",
	Long:  `dailies-api serves the daily preparation engine: rendering preparation forms, validating drops, and applying accepted preparations to characters.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
