package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "complaintctl",
		Short: "Operator tooling for the complaint service",
		Long:  `complaintctl mints operator tokens for the guarded complaint endpoints and applies database migrations.`,
	}

	rootCmd.AddCommand(
		newTokenCommand(),
		newMigrateCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
