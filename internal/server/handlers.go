package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/site-scout/internal/model"
	"github.com/sells-group/site-scout/internal/scorer"
)

// ScoreRequest is the body of POST /v1/score. Weights are merged over the
// server defaults, so a request may name only the metrics it changes.
type ScoreRequest struct {
	Weights    scorer.Weights    `json:"weights"`
	WorkingSet scorer.WorkingSet `json:"working_set"`
	View       scorer.View       `json:"view"`
}

// ScoreResponse reports one scoring pass.
type ScoreResponse struct {
	// Count is the size of the working set that was scored.
	Count         int                   `json:"count"`
	Returned      int                   `json:"returned"`
	Weights       scorer.Weights        `json:"weights"`
	Degenerate    []string              `json:"degenerate"`
	RawDegenerate bool                  `json:"raw_degenerate"`
	Verdicts      map[model.Verdict]int `json:"verdicts"`
	Records       []Record              `json:"records"`
}

// Record is a location with its metrics keyed by name.
type Record struct {
	ID        string             `json:"id"`
	City      string             `json:"city"`
	Region    string             `json:"region"`
	Address   string             `json:"address,omitempty"`
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	Metrics   map[string]float64 `json:"metrics"`
	SeedScore float64            `json:"seed_score"`
	Score     float64            `json:"ai_score"`
	Grade     model.Grade        `json:"grade"`
	Verdict   model.Verdict      `json:"verdict"`
}

// SchemaResponse describes the loaded dataset.
type SchemaResponse struct {
	Name           string             `json:"name"`
	Metrics        []model.MetricSpec `json:"metrics"`
	Columns        []string           `json:"columns"`
	DefaultWeights scorer.Weights     `json:"default_weights"`
	Thresholds     scorer.Thresholds  `json:"thresholds"`
	Records        int                `json:"records"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": s.data.Len()})
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	schema := s.data.Schema
	writeJSON(w, http.StatusOK, SchemaResponse{
		Name:           schema.Name,
		Metrics:        schema.Metrics,
		Columns:        schema.Header(),
		DefaultWeights: s.cfg.Weights,
		Thresholds:     s.cfg.Options.Thresholds,
		Records:        s.data.Len(),
	})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	weights := s.cfg.Weights.Merge(req.Weights)
	ws, err := req.WorkingSet.Apply(s.data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := scorer.Score(ws, weights, s.cfg.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	view := req.View.Apply(res.Dataset)
	resp := ScoreResponse{
		Count:         res.Dataset.Len(),
		Returned:      view.Len(),
		Weights:       weights,
		Degenerate:    res.Scaled.DegenerateKeys(),
		RawDegenerate: res.RawDegenerate,
		Verdicts:      res.Counts(),
		Records:       make([]Record, 0, view.Len()),
	}
	if resp.Degenerate == nil {
		resp.Degenerate = []string{}
	}
	for i := range view.Records {
		resp.Records = append(resp.Records, toRecord(view.Schema, &view.Records[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("server: score request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func toRecord(schema *model.Schema, r *model.LocationRecord) Record {
	metrics := make(map[string]float64, len(schema.Metrics))
	for j, spec := range schema.Metrics {
		metrics[spec.Key] = r.Metrics[j]
	}
	return Record{
		ID:        r.ID,
		City:      r.City,
		Region:    r.Region,
		Address:   r.Address,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Metrics:   metrics,
		SeedScore: r.SeedScore,
		Score:     r.Score,
		Grade:     r.Grade,
		Verdict:   r.Verdict,
	}
}
