// Package postgres provides pgx-backed repositories for users, workout logs
// and workout templates.
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryer is satisfied by both *pgxpool.Pool and pgx.Tx, so read helpers can
// run inside or outside a transaction.
type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// undefinedColumn is the Postgres error code for a reference to a column that
// does not exist (42703).
const undefinedColumn = "42703"

// missingColumn reports whether err is an undefined-column failure naming the
// given column. Used for schema-drift tolerance: optional columns added in
// later migrations may be absent in older stores.
func missingColumn(err error, column string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == undefinedColumn && strings.Contains(pgErr.Message, column)
}
