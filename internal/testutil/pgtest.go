// Package testutil holds shared helpers for Postgres-backed store
// tests.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	_ "github.com/lib/pq"
)

// The schema these tests run against. Teardown truncates exactly these
// so goose bookkeeping tables survive between packages.
var appTables = []string{"transactions", "sessions", "users"}

// PGTest connects to the database named by POSTGRES_URL, brings its
// schema up to date, and returns the connection with a teardown func
// that wipes the application tables. Tests without POSTGRES_URL are
// skipped, so the store suites are opt-in:
//
//	db, cleanup := testutil.PGTest(t)
//	defer cleanup()
func PGTest(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	dsn := os.Getenv("POSTGRES_URL")
	if dsn == "" {
		t.Skip("POSTGRES_URL not set, skipping integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("pgtest: open database: %v", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		t.Fatalf("pgtest: connect to database: %v", err)
	}

	ctx := context.Background()
	if err := applyMigrations(ctx, db, migrationsDir(t)); err != nil {
		_ = db.Close()
		t.Fatalf("pgtest: migrate: %v", err)
	}

	return db, func() {
		stmt := "TRUNCATE " + strings.Join(appTables, ", ") + " CASCADE"
		_, _ = db.ExecContext(ctx, stmt)
		_ = db.Close()
	}
}

// migrationsDir locates the repo-level migrations/ directory by
// walking up from wherever `go test` set the working directory.
func migrationsDir(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("pgtest: getwd: %v", err)
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("pgtest: no migrations/ directory above the test working directory")
		}
		dir = parent
	}
}

// applyMigrations executes each .sql file in lexical order. The files
// carry goose annotations; only the text before the "-- +goose Down"
// marker runs, so rollback DDL never touches the test schema.
func applyMigrations(ctx context.Context, db *sql.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name)) // #nosec G304 -- dir discovered by migrationsDir, not user input
		if err != nil {
			return err
		}
		ddl := string(data)
		if i := strings.Index(ddl, "-- +goose Down"); i >= 0 {
			ddl = ddl[:i]
		}
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}
