package health

import (
	"context"
	"database/sql"
	"time"
)

// DBChecker pings the database with a short timeout.
func DBChecker(db *sql.DB) Checker {
	return func(ctx context.Context) Status {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return Status{Name: "database", Healthy: false, Detail: err.Error()}
		}
		return Status{Name: "database", Healthy: true}
	}
}

// ArtifactChecker reports whether a model artifact is loaded. The
// loaded state never changes after startup, so a degraded process
// stays degraded until restart.
func ArtifactChecker(name string, loaded func() bool) Checker {
	return func(ctx context.Context) Status {
		if !loaded() {
			return Status{Name: name, Healthy: false, Detail: "artifact not loaded"}
		}
		return Status{Name: name, Healthy: true}
	}
}
