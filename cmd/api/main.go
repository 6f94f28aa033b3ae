package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/choreboard/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "choreboard",
		Short: "Choreboard API Server",
		Long:  `Choreboard is a household task management system with rotating chore schedules, shared inventory and lending between connected households.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewHouseholdCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
