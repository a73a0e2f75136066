package model

import (
	"math"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
)

// Grade is the letter bucket of a score.
type Grade string

// Grades, best first.
const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// Verdict is the human-readable bucket of a score.
type Verdict string

// Verdicts, best first.
const (
	VerdictRecommended    Verdict = "Recommended"
	VerdictPotential      Verdict = "Potential"
	VerdictNeedsStrategy  Verdict = "Needs Strategy"
	VerdictNotRecommended Verdict = "Not Recommended"
)

// ParseGrade accepts a grade letter; unknown input yields "".
func ParseGrade(s string) Grade {
	switch Grade(s) {
	case GradeA, GradeB, GradeC, GradeD:
		return Grade(s)
	}
	return ""
}

// legacyVerdicts maps labels written by older Indonesian and Malaysian
// exports, with trailing emoji stripped.
var legacyVerdicts = map[string]Verdict{
	"Sangat Direkomendasikan": VerdictRecommended,
	"Potensial":               VerdictPotential,
	"Cukup (Perlu Strategi)":  VerdictNeedsStrategy,
	"Tidak Disarankan":        VerdictNotRecommended,
	"Sangat Cocok":            VerdictRecommended,
	"Cocok":                   VerdictPotential,
	"Tidak Cocok":             VerdictNotRecommended,
}

// ParseVerdict accepts a verdict label, including legacy export labels;
// unknown input yields "".
func ParseVerdict(s string) Verdict {
	label := strings.TrimRightFunc(s, func(r rune) bool {
		return r != ')' && !unicode.IsLetter(r)
	})
	switch Verdict(label) {
	case VerdictRecommended, VerdictPotential, VerdictNeedsStrategy, VerdictNotRecommended:
		return Verdict(label)
	}
	return legacyVerdicts[label]
}

// LocationRecord is one candidate location. Metrics is aligned with the
// owning schema's Metrics slice.
type LocationRecord struct {
	ID        string    `json:"id"`
	City      string    `json:"city"`
	Region    string    `json:"region"`
	Address   string    `json:"address,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Metrics   []float64 `json:"metrics"`

	SeedScore float64 `json:"seed_score"`
	Score     float64 `json:"ai_score"`
	Grade     Grade   `json:"grade,omitempty"`
	Verdict   Verdict `json:"verdict,omitempty"`
}

// Dataset is an ordered collection of records sharing one schema.
type Dataset struct {
	Schema  *Schema
	Records []LocationRecord
}

// NewDataset returns an empty dataset for the schema.
func NewDataset(schema *Schema, capacity int) *Dataset {
	return &Dataset{Schema: schema, Records: make([]LocationRecord, 0, capacity)}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Value returns the metric value of record i for a metric key.
func (d *Dataset) Value(i int, key string) (float64, error) {
	idx, ok := d.Schema.MetricIndex(key)
	if !ok {
		return 0, eris.Wrapf(ErrSchemaMismatch, "model: metric %q not in schema %s", key, d.Schema.Name)
	}
	return d.Records[i].Metrics[idx], nil
}

// Column returns a copy of one metric column across all records.
func (d *Dataset) Column(key string) ([]float64, error) {
	idx, ok := d.Schema.MetricIndex(key)
	if !ok {
		return nil, eris.Wrapf(ErrSchemaMismatch, "model: metric %q not in schema %s", key, d.Schema.Name)
	}
	out := make([]float64, len(d.Records))
	for i := range d.Records {
		out[i] = d.Records[i].Metrics[idx]
	}
	return out, nil
}

// Validate enforces that every record has a unique non-empty ID and carries
// one finite value per metric.
func (d *Dataset) Validate() error {
	if d.Schema == nil {
		return eris.Wrap(ErrSchemaMismatch, "model: dataset has no schema")
	}
	want := len(d.Schema.Metrics)
	seen := make(map[string]int, len(d.Records))
	for i := range d.Records {
		r := &d.Records[i]
		if strings.TrimSpace(r.ID) == "" {
			return eris.Wrapf(ErrSchemaMismatch, "model: record %d has an empty id", i+1)
		}
		if first, dup := seen[r.ID]; dup {
			return eris.Wrapf(ErrSchemaMismatch, "model: duplicate id %s at records %d and %d", r.ID, first+1, i+1)
		}
		seen[r.ID] = i
		if len(r.Metrics) != want {
			return eris.Wrapf(ErrSchemaMismatch, "model: record %s has %d metrics, schema %s declares %d",
				r.ID, len(r.Metrics), d.Schema.Name, want)
		}
		for j, v := range r.Metrics {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return eris.Wrapf(ErrSchemaMismatch, "model: record %s metric %s is not finite",
					r.ID, d.Schema.Metrics[j].Key)
			}
		}
	}
	return nil
}

// Select returns a new dataset holding copies of the records matching pred.
// The receiver is never modified.
func (d *Dataset) Select(pred func(*LocationRecord) bool) *Dataset {
	out := NewDataset(d.Schema, len(d.Records))
	for i := range d.Records {
		if pred != nil && !pred(&d.Records[i]) {
			continue
		}
		out.Records = append(out.Records, d.Records[i].clone())
	}
	return out
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	return d.Select(nil)
}

func (r LocationRecord) clone() LocationRecord {
	r.Metrics = append([]float64(nil), r.Metrics...)
	return r
}
