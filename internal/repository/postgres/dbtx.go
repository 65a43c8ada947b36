package postgres

import (
	"context"
	"database/sql"
)

// DBTX is the common surface of *sqlx.DB and *sqlx.Tx.
// Repositories accept it so integration tests can run against a
// transaction that is rolled back when the test ends.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row

	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}
