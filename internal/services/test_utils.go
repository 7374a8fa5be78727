//go:build integration

package services

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"gearreport/internal/config"
	"gearreport/internal/database"
	"gearreport/internal/observability"

	"github.com/stretchr/testify/require"
)

// SharedTestDBSetup provides a clean, migrated database for each integration test.
func SharedTestDBSetup(t *testing.T) *sql.DB {
	t.Helper()

	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	dbManager := database.NewManager(logger)

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Fatal("TEST_DATABASE_URL environment variable must be set for integration tests")
	}

	db, err := dbManager.InitDB(databaseURL)
	require.NoError(t, err)

	CleanupTestDatabase(db, t)

	return db
}

// CleanupTestDatabase empties all tables touched by the service tests.
func CleanupTestDatabase(db *sql.DB, t *testing.T) {
	t.Helper()

	ctx := context.Background()
	for _, query := range []string{
		"TRUNCATE TABLE submissions CASCADE",
		"TRUNCATE TABLE admin_users RESTART IDENTITY CASCADE",
	} {
		_, err := db.ExecContext(ctx, query)
		require.NoError(t, err, "cleanup query failed: %s", query)
	}
}

func testLogger() *observability.Logger {
	return observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
}
