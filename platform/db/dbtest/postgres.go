// Package dbtest boots a migrated PostgreSQL container for integration tests.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"bighome_hub/platform/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type dsn string

func (d dsn) GetDatabaseURL() string { return string(d) }

// Start returns a pool against a freshly migrated database. TEST_DATABASE_URL
// reuses an existing database instead of starting a container. The test is
// skipped under -short or when no container provider is reachable.
func Start(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)

		ctr, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("bighome"),
			postgres.WithUsername("bighome"),
			postgres.WithPassword("bighome"),
			postgres.BasicWaitStrategies(),
		)
		testcontainers.CleanupContainer(t, ctr)
		if err != nil {
			t.Fatalf("start postgres container: %v", err)
		}

		url, err = ctr.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("resolve connection string: %v", err)
		}
	}

	if err := db.RunMigrations(ctx, dsn(url)); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := db.NewPool(ctx, dsn(url))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}
