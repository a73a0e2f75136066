package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Pool = pgxmock.PgxPoolIface(nil)

type pair struct {
	id   int
	name string
}

func pairRow(p pair) []any { return []any{p.id, p.name} }

func TestCopySlice_Empty(t *testing.T) {
	n, err := CopySlice(context.TODO(), nil, "run_scores", []string{"a", "b"}, []pair(nil), pairRow)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopySlice_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"run_scores"}, []string{"a", "b"}).WillReturnResult(3)

	items := []pair{{1, "x"}, {2, "y"}, {3, "z"}}
	n, err := CopySlice(context.Background(), mock, "run_scores", []string{"a", "b"}, items, pairRow)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopySlice_ShortWrite(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"run_scores"}, []string{"a", "b"}).WillReturnResult(1)

	n, err := CopySlice(context.Background(), mock, "run_scores", []string{"a", "b"}, []pair{{1, "x"}, {2, "y"}}, pairRow)
	require.Error(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, err.Error(), "wrote 1 of 2 rows")
}

func TestCopySlice_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"run_scores"}, []string{"a", "b"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopySlice(context.Background(), mock, "run_scores", []string{"a", "b"}, []pair{{1, "x"}}, pairRow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db: copy 1 rows into run_scores")
	assert.Contains(t, err.Error(), "copy failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopySlice_EncodesEachItem(t *testing.T) {
	var seen []int
	c := copierFunc(func(src pgx.CopyFromSource) (int64, error) {
		var n int64
		for src.Next() {
			vals, err := src.Values()
			if err != nil {
				return n, err
			}
			seen = append(seen, vals[0].(int))
			n++
		}
		return n, src.Err()
	})

	n, err := CopySlice(context.Background(), c, "t", []string{"a", "b"}, []pair{{7, "x"}, {9, "y"}}, pairRow)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, []int{7, 9}, seen)
}

type copierFunc func(pgx.CopyFromSource) (int64, error)

func (f copierFunc) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, src pgx.CopyFromSource) (int64, error) {
	return f(src)
}

func TestConnect_BadURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://localhost:badport/scout", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db: parse database url")
}
