// Package scorer ranks location records with a weighted linear combination
// of min-max normalized metrics, rescaled to 0-100 over the working set.
//
// Scores are relative. The same record can score differently when the
// working set changes, because both the per-metric scaling and the final
// 0-100 rescale use the minimum and maximum of the records being scored.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/site-scout/internal/model"
	"github.com/sells-group/site-scout/internal/normalize"
)

// Thresholds split a 0-100 score into the three scoring verdicts.
type Thresholds struct {
	Recommended float64 `json:"recommended" mapstructure:"recommended"`
	Potential   float64 `json:"potential" mapstructure:"potential"`
}

// DefaultThresholds is >=70 Recommended, >=40 Potential.
func DefaultThresholds() Thresholds {
	return Thresholds{Recommended: 70, Potential: 40}
}

// Verdict returns the verdict for score.
func (t Thresholds) Verdict(score float64) model.Verdict {
	switch {
	case score >= t.Recommended:
		return model.VerdictRecommended
	case score >= t.Potential:
		return model.VerdictPotential
	default:
		return model.VerdictNotRecommended
	}
}

// Validate checks 0 <= potential < recommended <= 100.
func (t Thresholds) Validate() error {
	var errs []string
	if t.Potential < 0 {
		errs = append(errs, "potential must be >= 0")
	}
	if t.Recommended > 100 {
		errs = append(errs, "recommended must be <= 100")
	}
	if t.Potential >= t.Recommended {
		errs = append(errs, "potential must be < recommended")
	}
	if len(errs) > 0 {
		return eris.Wrapf(model.ErrInvalidParams, "scorer: thresholds: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Options tune a scoring call. They never change which records are scored.
type Options struct {
	// Workers > 1 splits the per-record combine step across goroutines.
	Workers    int
	Thresholds Thresholds
	Ladder     model.Ladder
}

// DefaultOptions returns single-worker scoring with the stock thresholds.
func DefaultOptions() Options {
	return Options{Workers: 1, Thresholds: DefaultThresholds(), Ladder: model.DefaultLadder()}
}

// Result is the outcome of one scoring call.
type Result struct {
	Dataset *model.Dataset
	Weights Weights
	Scaled  *normalize.Scaled
	// Raw is the weighted sum before the 0-100 rescale, per record.
	Raw []float64
	// RawDegenerate is set when every record had the same raw score, in
	// which case every ai_score is 0.
	RawDegenerate bool
}

// Counts tallies records per verdict.
func (r *Result) Counts() map[model.Verdict]int {
	out := make(map[model.Verdict]int)
	for i := range r.Dataset.Records {
		out[r.Dataset.Records[i].Verdict]++
	}
	return out
}

// Score normalizes the scorable metrics of ds, combines them with w, and
// rescales the result to 0-100 across ds. The ai_score, grade and verdict
// of each record are overwritten in place; metric values are not touched.
// Callers scoring a subset should pass a working set from WorkingSet.Apply.
func Score(ds *model.Dataset, w Weights, opts Options) (*Result, error) {
	if ds == nil || ds.Schema == nil {
		return nil, eris.Wrap(model.ErrEmptyDataset, "scorer: no dataset")
	}
	if err := ValidateWeights(ds.Schema, w); err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, eris.Wrap(model.ErrEmptyDataset, "scorer: working set has no records")
	}
	if err := ds.Validate(); err != nil {
		return nil, eris.Wrap(err, "scorer: validate dataset")
	}
	if err := opts.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if !opts.Ladder.Valid() {
		return nil, eris.Wrap(model.ErrInvalidParams, "scorer: grade ladder thresholds must descend within 0-100")
	}

	keys := ds.Schema.ScorableKeys()
	scaled, err := normalize.Normalize(ds, keys)
	if err != nil {
		return nil, eris.Wrap(err, "scorer: normalize")
	}

	coef := make([]float64, len(keys))
	for j, key := range keys {
		spec, _ := ds.Schema.Metric(key)
		coef[j] = spec.Role.Sign() * w[key]
	}

	raw, err := combine(scaled, coef, ds.Len(), opts.Workers)
	if err != nil {
		return nil, err
	}

	lo, hi := raw[0], raw[0]
	for _, v := range raw[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	degenerate := hi == lo

	for i := range ds.Records {
		var s float64
		if !degenerate {
			s = round2((raw[i] - lo) / (hi - lo) * 100)
		}
		r := &ds.Records[i]
		r.Score = s
		r.Grade = opts.Ladder.Grade(s)
		r.Verdict = opts.Thresholds.Verdict(s)
	}

	zap.L().Debug("scorer: scored working set",
		zap.String("schema", ds.Schema.Name),
		zap.Int("records", ds.Len()),
		zap.Int("workers", opts.Workers),
		zap.Bool("raw_degenerate", degenerate),
		zap.Strings("degenerate_metrics", scaled.DegenerateKeys()),
	)

	return &Result{
		Dataset:       ds,
		Weights:       w,
		Scaled:        scaled,
		Raw:           raw,
		RawDegenerate: degenerate,
	}, nil
}

// combine computes raw_i = sum_j coef_j * scaled_j,i. With more than one
// worker the records are split into contiguous chunks; each chunk writes
// only its own slice range.
func combine(s *normalize.Scaled, coef []float64, n, workers int) ([]float64, error) {
	raw := make([]float64, n)
	sum := func(from, to int) error {
		for i := from; i < to; i++ {
			var v float64
			for j, c := range coef {
				v += c * s.Values[j][i]
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return eris.Errorf("scorer: raw score for record %d is not finite", i)
			}
			raw[i] = v
		}
		return nil
	}

	if workers <= 1 || n < 2*workers {
		return raw, sum(0, n)
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for from := 0; from < n; from += chunk {
		to := min(from+chunk, n)
		g.Go(func() error { return sum(from, to) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return raw, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Describe renders weights with their metric roles, e.g. "+0.50 traffic".
func Describe(schema *model.Schema, w Weights) []string {
	var out []string
	for _, key := range schema.ScorableKeys() {
		spec, _ := schema.Metric(key)
		sign := "+"
		if spec.Role == model.RoleCost {
			sign = "-"
		}
		out = append(out, fmt.Sprintf("%s%.2f %s", sign, w[key], key))
	}
	return out
}
