package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/site-scout/internal/model"
)

// sqliteTime sorts lexically in time order.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements RunStore using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS scoring_runs (
	id          TEXT PRIMARY KEY,
	schema_name TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	weights     TEXT NOT NULL,
	config_hash TEXT NOT NULL,
	records     INTEGER NOT NULL,
	recommended INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_scores (
	run_id      TEXT NOT NULL REFERENCES scoring_runs(id) ON DELETE CASCADE,
	rank        INTEGER NOT NULL,
	location_id TEXT NOT NULL,
	city        TEXT NOT NULL,
	latitude    REAL NOT NULL,
	longitude   REAL NOT NULL,
	ai_score    REAL NOT NULL,
	grade       TEXT NOT NULL DEFAULT '',
	verdict     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_scoring_runs_created ON scoring_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_scoring_runs_schema ON scoring_runs(schema_name);
CREATE INDEX IF NOT EXISTS idx_run_scores_location ON run_scores(location_id);
`

// Migrate creates the run history tables.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts the run and all of its scores in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run, scores []RunScore) error {
	weights, err := json.Marshal(run.Weights)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal weights")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scoring_runs (id, schema_name, source, weights, config_hash, records, recommended, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Schema, run.Source, string(weights), run.ConfigHash, run.Records, run.Recommended,
		run.CreatedAt.UTC().Format(sqliteTime),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_scores (run_id, rank, location_id, city, latitude, longitude, ai_score, grade, verdict)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare score insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, sc := range scores {
		if _, err := stmt.ExecContext(ctx, run.ID, sc.Rank, sc.LocationID, sc.City, sc.Latitude, sc.Longitude,
			sc.Score, string(sc.Grade), string(sc.Verdict)); err != nil {
			return eris.Wrapf(err, "sqlite: insert score %s", sc.LocationID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit run")
}

// GetRun loads one run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, schema_name, source, weights, config_hash, records, recommended, created_at
		 FROM scoring_runs WHERE id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrRunNotFound, "sqlite: get run %s", runID)
	}
	return r, err
}

// ListRuns returns runs newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, schema_name, source, weights, config_hash, records, recommended, created_at
		FROM scoring_runs WHERE 1=1`
	var args []any

	if filter.Schema != "" {
		query += ` AND schema_name = ?`
		args = append(args, filter.Schema)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, listLimit(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// GetRunScores returns the scores of a run in rank order. A non-positive
// limit returns every score.
func (s *SQLiteStore) GetRunScores(ctx context.Context, runID string, limit int) ([]RunScore, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	query := `SELECT run_id, rank, location_id, city, latitude, longitude, ai_score, grade, verdict
		FROM run_scores WHERE run_id = ? ORDER BY rank`
	args := []any{runID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get run scores")
	}
	defer rows.Close() //nolint:errcheck

	var out []RunScore
	for rows.Next() {
		var sc RunScore
		var grade, verdict string
		if err := rows.Scan(&sc.RunID, &sc.Rank, &sc.LocationID, &sc.City, &sc.Latitude, &sc.Longitude,
			&sc.Score, &grade, &verdict); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan score")
		}
		sc.Grade = model.Grade(grade)
		sc.Verdict = model.Verdict(verdict)
		out = append(out, sc)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: run scores iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*Run, error) {
	var r Run
	var weights, created string

	err := row.Scan(&r.ID, &r.Schema, &r.Source, &weights, &r.ConfigHash, &r.Records, &r.Recommended, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(weights), &r.Weights); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal weights")
	}
	r.CreatedAt, err = time.Parse(sqliteTime, created)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: parse created_at")
	}
	return &r, nil
}
