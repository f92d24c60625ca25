// Package database wraps sqlx with connection pooling, health reporting,
// and translation of PostgreSQL constraint violations into AppErrors.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/timegrid/timegrid-backend/pkg/config"
	"github.com/timegrid/timegrid-backend/pkg/logger"
)

const healthTimeout = time.Second

// DB is the service's database handle.
type DB struct {
	*sqlx.DB
	logger *logger.Logger
}

// New opens a pooled connection and verifies it with a ping.
func New(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	pool, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info().
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("database connected")

	return &DB{DB: pool, logger: log}, nil
}

// NewFromSqlx wraps an existing sqlx.DB. Used by tests with sqlmock.
func NewFromSqlx(db *sqlx.DB, log *logger.Logger) *DB {
	return &DB{DB: db, logger: log}
}

// Ping checks the database connection
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Health reports connectivity for the /health endpoint.
func (db *DB) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return map[string]string{"status": "down", "error": err.Error()}
	}
	return map[string]string{"status": "up"}
}

// Transaction runs fn inside a transaction, committing on a nil return and
// rolling back otherwise. fn owns the per-statement error handling; only the
// error it returns aborts the transaction.
func (db *DB) Transaction(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error().Err(rbErr).Msg("transaction rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
