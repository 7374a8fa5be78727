// Package main provides the entry point for the gear report admin CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"gearreport/cmd/adm/commands"
	"gearreport/internal/config"
	"gearreport/internal/database"
	"gearreport/internal/observability"
	"gearreport/internal/services"

	"github.com/spf13/cobra"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override log level for the admin tool
	cfg.Server.LogLevel = "error"

	// Disable all OpenTelemetry features for the CLI to avoid connection errors
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	_, _, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "gearreport-admin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}

	// Initialize database connection (no migrations for the admin tool)
	dbManager := database.NewManager(logger)
	db, err := dbManager.InitDBWithoutMigrations(cfg.Database)
	if err != nil {
		logger.Error(ctx, "Failed to connect to database", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "Failed to close database connection", map[string]interface{}{"error": err.Error()})
		}
	}()

	adminUserService := services.NewAdminUserService(db, logger)

	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "Gear Report Administration Tool",
		Long: `Gear Report Administration Tool

CLI tool for administering the gear report service.
Provides commands for moderator account management and database operations.`,

		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(commands.UserCommands(adminUserService, logger))
	rootCmd.AddCommand(commands.DatabaseCommands(dbManager, logger, db, cfg.Database.URL))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
