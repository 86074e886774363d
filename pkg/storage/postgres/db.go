// Package postgres implements the directory, social-graph and feed
// collaborator interfaces against the platform's relational store.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	cfg  *Config
	pool *pgxpool.Pool
}

func NewDB(cfg *Config) *DB {
	return &DB{cfg: cfg}
}

// Connect opens the connection pool and verifies connectivity.
func (d *DB) Connect(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, d.cfg.DSN())
	if err != nil {
		return fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	d.pool = pool
	return nil
}

func (d *DB) Pool() *pgxpool.Pool {
	if d.pool == nil {
		panic("db not connected, call DB.Connect() first")
	}
	return d.pool
}

func (d *DB) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}
