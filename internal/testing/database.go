package testing

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// CreateTestDB creates an in-memory SQLite test database and runs each setup
// function against it (typically store.Migrate).
// Automatically registers cleanup via t.Cleanup().
func CreateTestDB(t *testing.T, setup ...func(*sql.DB) error) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	// Every connection to :memory: is a fresh database; pin to one.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	for _, fn := range setup {
		if err := fn(db); err != nil {
			t.Fatalf("Failed to set up test database: %v", err)
		}
	}

	return db
}
