// Package store reads and writes location datasets and keeps a history of
// scoring runs in SQLite or PostgreSQL.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/site-scout/internal/model"
	"github.com/sells-group/site-scout/internal/scorer"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = eris.New("run not found")

// Run is one recorded scoring invocation.
type Run struct {
	ID          string         `json:"id"`
	Schema      string         `json:"schema"`
	Source      string         `json:"source"`
	Weights     scorer.Weights `json:"weights"`
	ConfigHash  string         `json:"config_hash"`
	Records     int            `json:"records"`
	Recommended int            `json:"recommended"`
	CreatedAt   time.Time      `json:"created_at"`
}

// RunScore is the outcome for one location within a run.
type RunScore struct {
	RunID      string        `json:"run_id"`
	Rank       int           `json:"rank"`
	LocationID string        `json:"location_id"`
	City       string        `json:"city"`
	Latitude   float64       `json:"latitude"`
	Longitude  float64       `json:"longitude"`
	Score      float64       `json:"ai_score"`
	Grade      model.Grade   `json:"grade"`
	Verdict    model.Verdict `json:"verdict"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Schema string `json:"schema,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// RunStore persists scoring runs. It is an audit trail, never the source of
// a dataset.
type RunStore interface {
	SaveRun(ctx context.Context, run *Run, scores []RunScore) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
	GetRunScores(ctx context.Context, runID string, limit int) ([]RunScore, error)

	Migrate(ctx context.Context) error
	Close() error
}

// NewRun builds a run record and its ranked scores from a scored dataset.
// Rank 1 is the highest score; ties keep dataset order.
func NewRun(source string, cfg scorer.RunConfig, ds *model.Dataset) (*Run, []RunScore) {
	run := &Run{
		ID:         uuid.New().String(),
		Schema:     cfg.Schema,
		Source:     source,
		Weights:    cfg.Weights,
		ConfigHash: cfg.Hash(),
		Records:    ds.Len(),
		CreatedAt:  time.Now().UTC(),
	}

	ranked := scorer.View{SortByScore: true}.Apply(ds)
	scores := make([]RunScore, 0, ranked.Len())
	for i, r := range ranked.Records {
		if r.Verdict == model.VerdictRecommended {
			run.Recommended++
		}
		scores = append(scores, RunScore{
			RunID:      run.ID,
			Rank:       i + 1,
			LocationID: r.ID,
			City:       r.City,
			Latitude:   r.Latitude,
			Longitude:  r.Longitude,
			Score:      r.Score,
			Grade:      r.Grade,
			Verdict:    r.Verdict,
		})
	}
	return run, scores
}

func listLimit(n int) int {
	if n <= 0 {
		return 100
	}
	return n
}
