package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garyjia/claimdesk/internal/application/port"
	"github.com/garyjia/claimdesk/pkg/database"
	"go.uber.org/zap"
)

type txContextKey struct{}

// DB is the session database. It carries the open transaction through the
// context so repository calls made inside WithTransaction join it.
type DB struct {
	conn   *database.DB
	logger *zap.Logger
}

// Open creates a migrated session database
func Open(ctx context.Context, name string, logger *zap.Logger) (*DB, error) {
	conn, err := database.New(database.Config{Name: name}, logger)
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, conn, logger); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate session database: %w", err)
	}

	return &DB{conn: conn, logger: logger}, nil
}

// WithTransaction implements port.TransactionManager. A nested call reuses the outer transaction.
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := extractTx(ctx); tx != nil {
		return fn(ctx)
	}

	return db.conn.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// Ping verifies the session database connection
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close discards the session database
func (db *DB) Close() error {
	return db.conn.Close()
}

func extractTx(ctx context.Context) *sql.Tx {
	if tx, ok := ctx.Value(txContextKey{}).(*sql.Tx); ok {
		return tx
	}
	return nil
}

// getExecutor returns the context's transaction or the database.
// The pool holds one connection, so calls inside a transaction must use it.
func (db *DB) getExecutor(ctx context.Context) executor {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return db.conn.DB
}

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Verify interface compliance
var _ port.TransactionManager = (*DB)(nil)
