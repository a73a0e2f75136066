// Package db provides the PostgreSQL pool interface and bulk COPY loading.
package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// CopySlice streams items into table over the COPY protocol, encoding each
// one with row. A short write from the server is an error.
func CopySlice[T any](ctx context.Context, c Copier, table string, columns []string, items []T, row func(T) []any) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	src := pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
		return row(items[i]), nil
	})
	n, err := c.CopyFrom(ctx, pgx.Identifier{table}, columns, src)
	if err != nil {
		return 0, eris.Wrapf(err, "db: copy %d rows into %s", len(items), table)
	}
	if n != int64(len(items)) {
		return n, eris.Errorf("db: copy into %s: wrote %d of %d rows", table, n, len(items))
	}
	return n, nil
}
