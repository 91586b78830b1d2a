package main

import (
	"os"

	"github.com/spf13/cobra"

	"cadence/internal/interfaces/cli/migrate"
	"cadence/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cadence",
		Short: "Cadence - multi-tenant subscription billing service",
		Long:  `Cadence manages plan catalogs, subscription lifecycles, and billing analytics for multi-tenant SaaS platforms.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
