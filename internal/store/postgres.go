package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-scout/internal/db"
	"github.com/sells-group/site-scout/internal/model"
)

// PostgresStore implements RunStore using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	maxConns := int32(10)
	if poolCfg != nil && poolCfg.MaxConns > 0 {
		maxConns = poolCfg.MaxConns
	}
	pool, err := db.Connect(ctx, connString, maxConns)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

var runScoreColumns = []string{
	"run_id", "rank", "location_id", "city", "latitude", "longitude", "ai_score", "grade", "verdict",
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS scoring_runs (
	id          TEXT PRIMARY KEY,
	schema_name TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	weights     JSONB NOT NULL,
	config_hash TEXT NOT NULL,
	records     INTEGER NOT NULL,
	recommended INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_scores (
	run_id      TEXT NOT NULL REFERENCES scoring_runs(id) ON DELETE CASCADE,
	rank        INTEGER NOT NULL,
	location_id TEXT NOT NULL,
	city        TEXT NOT NULL,
	latitude    DOUBLE PRECISION NOT NULL,
	longitude   DOUBLE PRECISION NOT NULL,
	ai_score    DOUBLE PRECISION NOT NULL,
	grade       TEXT NOT NULL DEFAULT '',
	verdict     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_scoring_runs_created ON scoring_runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_scoring_runs_schema ON scoring_runs(schema_name);
CREATE INDEX IF NOT EXISTS idx_run_scores_location ON run_scores(location_id);
`

// Ping checks the connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

// Migrate creates the run history tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// SaveRun inserts the run row and COPYs its scores inside one transaction.
func (s *PostgresStore) SaveRun(ctx context.Context, run *Run, scores []RunScore) error {
	weights, err := json.Marshal(run.Weights)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal weights")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO scoring_runs (id, schema_name, source, weights, config_hash, records, recommended, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.Schema, run.Source, weights, run.ConfigHash, run.Records, run.Recommended, run.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert run %s", run.ID)
	}

	scoreRow := func(sc RunScore) []any {
		return []any{
			run.ID, sc.Rank, sc.LocationID, sc.City, sc.Latitude, sc.Longitude,
			sc.Score, string(sc.Grade), string(sc.Verdict),
		}
	}
	if _, err := db.CopySlice(ctx, tx, "run_scores", runScoreColumns, scores, scoreRow); err != nil {
		return eris.Wrap(err, "postgres: copy scores")
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit run")
	}

	zap.L().Info("postgres: saved scoring run",
		zap.String("run_id", run.ID),
		zap.Int("scores", len(scores)),
	)
	return nil
}

// GetRun loads one run by ID.
func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, schema_name, source, weights, config_hash, records, recommended, created_at
		 FROM scoring_runs WHERE id = $1`, runID)
	r, err := scanPgRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrRunNotFound, "postgres: get run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get run")
	}
	return r, nil
}

// ListRuns returns runs newest first.
func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, schema_name, source, weights, config_hash, records, recommended, created_at
		FROM scoring_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Schema != "" {
		query += fmt.Sprintf(` AND schema_name = $%d`, argIdx)
		args = append(args, filter.Schema)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, listLimit(filter.Limit))
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// GetRunScores returns the scores of a run in rank order.
func (s *PostgresStore) GetRunScores(ctx context.Context, runID string, limit int) ([]RunScore, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	query := `SELECT run_id, rank, location_id, city, latitude, longitude, ai_score, grade, verdict
		FROM run_scores WHERE run_id = $1 ORDER BY rank`
	args := []any{runID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get run scores")
	}
	defer rows.Close()

	var out []RunScore
	for rows.Next() {
		var sc RunScore
		var grade, verdict string
		if err := rows.Scan(&sc.RunID, &sc.Rank, &sc.LocationID, &sc.City, &sc.Latitude, &sc.Longitude,
			&sc.Score, &grade, &verdict); err != nil {
			return nil, eris.Wrap(err, "postgres: scan score")
		}
		sc.Grade = model.Grade(grade)
		sc.Verdict = model.Verdict(verdict)
		out = append(out, sc)
	}
	return out, eris.Wrap(rows.Err(), "postgres: run scores iterate")
}

func scanPgRun(row pgx.Row) (*Run, error) {
	var r Run
	var weights []byte
	if err := row.Scan(&r.ID, &r.Schema, &r.Source, &weights, &r.ConfigHash, &r.Records, &r.Recommended, &r.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(weights, &r.Weights); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal weights")
	}
	return &r, nil
}
