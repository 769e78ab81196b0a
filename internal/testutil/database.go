package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // Test Package

	"github.com/carteira-app/carteira/internal/database"
)

// testPragmas mirror the production connection settings; the journal lives in
// memory because the database does.
var testPragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = MEMORY",
}

// SetupTestDB returns a migrated in-memory SQLite ledger that is closed when
// the test ends. Every call gets its own database, so tests may run in parallel.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    testutil.CreateScenarioLedger(t, db, "ana", "PETR4.SA")
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "open test database")
	// a second connection to :memory: would see an empty database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, pragma := range testPragmas {
		_, err := db.Exec(pragma)
		require.NoErrorf(t, err, "apply %q", pragma)
	}

	_, err = database.Migrate(context.Background(), db)
	require.NoError(t, err, "migrate test database")

	return db
}
