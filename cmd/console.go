package cmd

import (
	"github.com/spf13/cobra"
)

// consoleCmd groups the operator console subcommands.
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Operator console",
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
