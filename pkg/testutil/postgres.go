package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pkgpostgres "github.com/bibbank/riskcore/pkg/postgres"
)

// PostgresContainer is a disposable riskcore_test database.
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DSN       string
	Pool      *pgxpool.Pool
}

// NewPostgresContainer starts Postgres, applies the migrations found in dir
// inside fsys and opens a pool. Everything is torn down when the test ends.
func NewPostgresContainer(ctx context.Context, t *testing.T, fsys fs.FS, dir string) *PostgresContainer {
	t.Helper()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("riskcore_test"),
		postgres.WithUsername("riskcore"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	pc := &PostgresContainer{Container: container}
	t.Cleanup(func() { pc.terminate(t) })

	if pc.DSN, err = container.ConnectionString(ctx, "sslmode=disable"); err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}
	if err := pkgpostgres.RunMigrationsFS(pc.DSN, fsys, dir); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	if pc.Pool, err = pgxpool.New(ctx, pc.DSN); err != nil {
		t.Fatalf("failed to create pgxpool: %v", err)
	}
	return pc
}

// Truncate empties tables so subtests sharing a container start clean.
func (pc *PostgresContainer) Truncate(t *testing.T, tables ...string) {
	t.Helper()

	sql := fmt.Sprintf("TRUNCATE %s CASCADE", strings.Join(tables, ", "))
	if _, err := pc.Pool.Exec(context.Background(), sql); err != nil {
		t.Fatalf("failed to truncate %v: %v", tables, err)
	}
}

func (pc *PostgresContainer) terminate(t *testing.T) {
	if pc.Pool != nil {
		pc.Pool.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pc.Container.Terminate(ctx); err != nil {
		t.Logf("warning: failed to terminate postgres container: %v", err)
	}
}
