// Package testutil provides a disposable PostgreSQL instance for repository tests.
package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/tilequest/internal/config"
	"github.com/cory-johannsen/tilequest/internal/storage/postgres"
)

const (
	pgImage = "postgres:16-alpine"
	pgCreds = "tilequest"
)

// PostgresContainer is a migrated database owned by one test.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	RawPool   *pgxpool.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts postgres, applies migrations/ and connects a
// Pool. Everything is torn down by t.Cleanup. Skipped under -short.
//
// Precondition: Docker must be available.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests need docker; skipped in -short mode")
	}
	ctx := context.Background()
	began := time.Now()

	c, cfg := startPostgres(ctx, t)
	migrateUp(t, cfg.DSN())

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		t.Fatalf("connecting to %s: %v", pgImage, err)
	}
	t.Cleanup(pool.Close)
	t.Logf("party database ready in %s", time.Since(began))
	return &PostgresContainer{container: c, Pool: pool, RawPool: pool.DB(), Config: cfg}
}

func startPostgres(ctx context.Context, t *testing.T) (testcontainers.Container, config.DatabaseConfig) {
	t.Helper()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgCreds,
				"POSTGRES_PASSWORD": pgCreds,
				"POSTGRES_DB":       pgCreds,
			},
			// postgres logs readiness twice: once for the init server, once for the real one.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(45 * time.Second),
		},
	})
	if err != nil {
		t.Fatalf("starting %s: %v", pgImage, err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	return c, config.DatabaseConfig{
		Enabled:         true,
		Host:            host,
		Port:            port.Int(),
		User:            pgCreds,
		Password:        pgCreds,
		Name:            pgCreds,
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Minute,
	}
}

// MigrationsDir is the absolute path of the repository's migrations/ directory.
func MigrationsDir() string {
	_, here, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(here), "..", "..", "migrations")
}

func migrateUp(t *testing.T, dsn string) {
	t.Helper()
	m, err := migrate.New("file://"+MigrationsDir(), dsn)
	if err != nil {
		t.Fatalf("opening migrations: %v", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrating party schema: %v", err)
	}
}
