// Package commands provides CLI commands for the admin tool
package commands

import (
	"context"
	"database/sql"
	"fmt"

	"gearreport/internal/database"
	"gearreport/internal/observability"
	contextutils "gearreport/internal/utils"

	"github.com/spf13/cobra"
)

// DatabaseCommands returns the database management commands
func DatabaseCommands(dbManager *database.Manager, logger *observability.Logger, db *sql.DB, databaseURL string) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands for the gear report service.

Available commands:
  migrate - Apply pending schema migrations
  status  - Show migration version and submission counts`,
	}

	dbCmd.AddCommand(migrateCmd(dbManager, logger, databaseURL))
	dbCmd.AddCommand(statusCmd(dbManager, logger, db, databaseURL))

	return dbCmd
}

func migrateCmd(dbManager *database.Manager, logger *observability.Logger, databaseURL string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := context.Background()
			logger.Info(ctx, "Applying migrations", map[string]interface{}{"database_url": maskDatabaseURL(databaseURL)})

			if err := dbManager.RunMigrations(databaseURL); err != nil {
				return contextutils.WrapError(err, "migrations failed")
			}
			fmt.Println("Migrations applied")
			return nil
		},
	}
}

func statusCmd(dbManager *database.Manager, logger *observability.Logger, db *sql.DB, databaseURL string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration version and submission counts",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := context.Background()
			logger.Info(ctx, "Diagnostic info", map[string]interface{}{"database": getDatabaseInfo(db)})

			version, dirty, err := dbManager.MigrationVersion(databaseURL)
			if err != nil {
				return contextutils.WrapError(err, "failed to read migration version")
			}
			fmt.Printf("Migration version: %d (dirty: %t)\n", version, dirty)

			rows, err := db.QueryContext(ctx, "SELECT status, COUNT(*) FROM submissions GROUP BY status ORDER BY status")
			if err != nil {
				return contextutils.WrapError(err, "failed to count submissions")
			}
			defer func() {
				_ = rows.Close()
			}()

			fmt.Println("Submissions by status:")
			for rows.Next() {
				var status string
				var count int
				if err := rows.Scan(&status, &count); err != nil {
					return contextutils.WrapError(err, "failed to scan status count")
				}
				fmt.Printf("  %-10s %d\n", status, count)
			}
			return rows.Err()
		},
	}
}
