// Command fraudadmin performs operational tasks against the FraudSight
// database.
//
// Usage:
//
//	go run ./cmd/fraudadmin check             # Verify database connectivity
//	go run ./cmd/fraudadmin init              # Ensure tables exist, create default admin
//	go run ./cmd/fraudadmin create-users      # Seed demo analyst accounts
//	go run ./cmd/fraudadmin stats             # Print user/transaction summary
//	go run ./cmd/fraudadmin prune-sessions    # Delete expired session rows
//
// All subcommands require DATABASE_URL.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/aberkane/fraudsight/internal/idgen"
	"github.com/aberkane/fraudsight/internal/session"
	"github.com/aberkane/fraudsight/internal/transactions"
	"github.com/aberkane/fraudsight/internal/users"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: fraudadmin <command>")
		fmt.Println("Commands: check, init, create-users, stats, prune-sessions")
		os.Exit(1)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "check":
		fmt.Println("database connection OK")
	case "init":
		if err := initDatabase(ctx, db); err != nil {
			log.Fatalf("init failed: %v", err)
		}
	case "create-users":
		if err := createDemoUsers(ctx, db); err != nil {
			log.Fatalf("create-users failed: %v", err)
		}
	case "stats":
		if err := printStats(ctx, db); err != nil {
			log.Fatalf("stats failed: %v", err)
		}
	case "prune-sessions":
		if err := pruneSessions(ctx, db); err != nil {
			log.Fatalf("prune-sessions failed: %v", err)
		}
	default:
		log.Fatalf("unknown command %q", os.Args[1])
	}
}

// initDatabase ensures all tables exist and creates the default admin
// account if no admin is present. The generated password is printed
// once; change it after first login.
func initDatabase(ctx context.Context, db *sql.DB) error {
	userStore := users.NewPostgresStore(db)
	if err := userStore.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	if err := session.NewPostgresStore(db).Migrate(ctx); err != nil {
		return fmt.Errorf("migrate sessions: %w", err)
	}
	if err := transactions.NewPostgresStore(db).Migrate(ctx); err != nil {
		return fmt.Errorf("migrate transactions: %w", err)
	}
	fmt.Println("tables ready")

	admins, err := userStore.CountByRole(ctx, users.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		fmt.Printf("%d admin account(s) already present\n", admins)
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin-" + randomSuffix()
	}
	admin, err := users.New("admin", "", password, users.RoleAdmin)
	if err != nil {
		return err
	}
	if err := userStore.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Printf("created admin account %q with password %q\n", admin.Username, password)
	return nil
}

// createDemoUsers seeds a handful of analyst accounts for demos.
// Existing usernames are skipped.
func createDemoUsers(ctx context.Context, db *sql.DB) error {
	store := users.NewPostgresStore(db)

	seeds := []struct {
		username string
		password string
	}{
		{"alice", "alice-demo-pass"},
		{"bob", "bob-demo-pass"},
		{"carol", "carol-demo-pass"},
	}

	for _, seed := range seeds {
		u, err := users.New(seed.username, "", seed.password, users.RoleUser)
		if err != nil {
			return err
		}
		if err := store.Create(ctx, u); err != nil {
			if errors.Is(err, users.ErrUsernameTaken) {
				fmt.Printf("skipping %s (already exists)\n", seed.username)
				continue
			}
			return fmt.Errorf("create %s: %w", seed.username, err)
		}
		fmt.Printf("created user %s (password %s)\n", seed.username, seed.password)
	}
	return nil
}

// printStats prints a global summary of accounts and scored transactions.
func printStats(ctx context.Context, db *sql.DB) error {
	userStore := users.NewPostgresStore(db)
	txStore := transactions.NewPostgresStore(db)

	total, err := userStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	admins, err := userStore.CountByRole(ctx, users.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}

	// Empty owner means global scope.
	sum, err := txStore.Summarize(ctx, "")
	if err != nil {
		return fmt.Errorf("summarize transactions: %w", err)
	}

	fmt.Printf("users:           %d (%d admin)\n", total, admins)
	fmt.Printf("transactions:    %d\n", sum.Total)
	fmt.Printf("flagged fraud:   %d\n", sum.FraudCount)
	fmt.Printf("fraud rate:      %.1f%%\n", sum.FraudRate*100)
	fmt.Printf("avg probability: %.3f\n", sum.AverageProbability)
	return nil
}

// pruneSessions reclaims rows for sessions past their expiry. Expired
// tokens are already rejected at validation time; this is housekeeping
// meant for a cron job.
func pruneSessions(ctx context.Context, db *sql.DB) error {
	mgr := session.NewManager(session.NewPostgresStore(db), 0)
	n, err := mgr.PruneExpired(ctx)
	if err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	fmt.Printf("deleted %d expired session(s)\n", n)
	return nil
}

func randomSuffix() string {
	return idgen.Hex(4)
}
