package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenForTesting opens a migrated SQLite database in a per-test temp dir.
func OpenForTesting(t testing.TB) *sql.DB {
	t.Helper()

	d, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "inventory.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	return d
}
