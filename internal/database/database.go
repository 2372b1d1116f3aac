package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sigainv/siga-backend/internal/config"
	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/migrations"
)

type Database struct {
	pool    *pgxpool.Pool
	queries *db.Queries
}

func New(cfg *config.DatabaseConfig) (*Database, error) {
	pool, err := pgxpool.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return FromPool(pool), nil
}

// FromPool wraps an existing pool; used by the test harness.
func FromPool(pool *pgxpool.Pool) *Database {
	return &Database{
		pool:    pool,
		queries: db.New(pool),
	}
}

// Migrate applies the embedded goose migrations, including the idempotent
// seeds (request states, the principal office).
func (d *Database) Migrate() error {
	sqlDB := stdlib.OpenDBFromPool(d.pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(sqlDB, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (d *Database) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

func (d *Database) Queries() *db.Queries {
	return d.queries
}

func (d *Database) Pool() *pgxpool.Pool {
	return d.pool
}
