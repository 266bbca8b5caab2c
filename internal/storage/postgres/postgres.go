// Package postgres persists the party between sessions using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/tilequest/internal/config"
)

// ErrSchemaMissing is returned by NewPool when the party tables have not been
// created. Run cmd/migrate against the same database first.
var ErrSchemaMissing = errors.New("party schema missing; run cmd/migrate")

// requiredTables must all exist before the repository can be used.
var requiredTables = []string{"parties", "party_members", "member_equipment", "party_items", "party_gear"}

// Pool owns the connection pool backing PartyRepository.
type Pool struct {
	db *pgxpool.Pool
}

// NewPool connects, pings and verifies the migrated schema.
//
// Precondition: cfg.Enabled is true and cfg passes Validate.
// Postcondition: Returns a ready Pool, or a non-nil error wrapping
// ErrSchemaMissing when any party table is absent.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}
	pc.MaxConns, pc.MinConns = cfg.MaxConns, cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime

	db, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}
	p := &Pool{db: db}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	if err := p.checkSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *Pool) checkSchema(ctx context.Context) error {
	var missing []string
	err := p.db.QueryRow(ctx,
		`SELECT coalesce(array_agg(t), '{}') FROM unnest($1::text[]) AS t
		 WHERE to_regclass('public.' || t) IS NULL`,
		requiredTables,
	).Scan(&missing)
	if err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrSchemaMissing, missing)
	}
	return nil
}

// Health pings the database, giving up after timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.db.Ping(ctx)
}

// Close releases every connection. The Pool is unusable afterwards.
func (p *Pool) Close() { p.db.Close() }

// DB exposes the raw pool to repositories.
func (p *Pool) DB() *pgxpool.Pool { return p.db }
