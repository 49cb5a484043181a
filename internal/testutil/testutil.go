package testutil

import (
	"database/sql"
	"testing"

	"github.com/hostwatch/hostwatch/internal/repository/postgres"
	"github.com/hostwatch/hostwatch/migrations"
	_ "modernc.org/sqlite"
)

// NewTestDB creates an in-memory SQLite database with the real schema applied,
// so repository tests run against exactly what production migrations produce.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A second connection would get its own empty :memory: database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if err := postgres.RunMigrations(db, migrations.GetFS()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
