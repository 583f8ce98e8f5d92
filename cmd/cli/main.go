package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/TulasiR141/otopilot/cmd/cli/seed"
	"github.com/TulasiR141/otopilot/cmd/cli/tree"
)

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(tree.Group)
	rootCmd.AddCommand(tree.Check)
	rootCmd.AddGroup(seed.Group)
	rootCmd.AddCommand(seed.Devices)
}

var rootCmd = &cobra.Command{
	Use:  "otopilot-cli",
	Long: `Command line utilities for Otopilot https://github.com/TulasiR141/otopilot`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
