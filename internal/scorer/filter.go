package scorer

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-scout/internal/model"
)

// WorkingSet selects the records that are scored together. Empty fields
// match everything. Because scores are relative, narrowing the working set
// changes the scores of the records that remain.
type WorkingSet struct {
	Cities  []string      `json:"cities,omitempty" mapstructure:"cities"`
	Regions []string      `json:"regions,omitempty" mapstructure:"regions"`
	Grades  []model.Grade `json:"grades,omitempty" mapstructure:"grades"`
	// Flags lists flag metrics that must be set (value 1), e.g. "halal".
	Flags []string `json:"flags,omitempty" mapstructure:"flags"`
}

// Empty reports whether the working set selects every record.
func (f WorkingSet) Empty() bool {
	return len(f.Cities) == 0 && len(f.Regions) == 0 && len(f.Grades) == 0 && len(f.Flags) == 0
}

// Apply returns a copy of the matching records. City and region matching
// ignores case. Grades match the grade carried on input, which for freshly
// generated data is the seed grade.
func (f WorkingSet) Apply(ds *model.Dataset) (*model.Dataset, error) {
	flags := make([]int, 0, len(f.Flags))
	for _, key := range f.Flags {
		spec, ok := ds.Schema.Metric(key)
		if !ok {
			return nil, eris.Wrapf(model.ErrSchemaMismatch, "scorer: filter flag %q not in schema %s", key, ds.Schema.Name)
		}
		if spec.Kind != model.KindFlag {
			return nil, eris.Wrapf(model.ErrSchemaMismatch, "scorer: filter metric %q is not a flag", key)
		}
		idx, _ := ds.Schema.MetricIndex(key)
		flags = append(flags, idx)
	}

	cities := foldSet(f.Cities)
	regions := foldSet(f.Regions)
	grades := make(map[model.Grade]bool, len(f.Grades))
	for _, g := range f.Grades {
		grades[g] = true
	}

	return ds.Select(func(r *model.LocationRecord) bool {
		if len(cities) > 0 && !cities[strings.ToLower(r.City)] {
			return false
		}
		if len(regions) > 0 && !regions[strings.ToLower(r.Region)] {
			return false
		}
		if len(grades) > 0 && !grades[r.Grade] {
			return false
		}
		for _, idx := range flags {
			if r.Metrics[idx] != 1 {
				return false
			}
		}
		return true
	}), nil
}

// View narrows and orders scored records for display. It never changes
// scores.
type View struct {
	Verdicts []model.Verdict `json:"verdicts,omitempty"`
	MinScore *float64        `json:"min_score,omitempty"`
	MaxScore *float64        `json:"max_score,omitempty"`
	// SortByScore orders by ai_score descending, ties by ID.
	SortByScore bool `json:"sort_by_score,omitempty"`
	Limit       int  `json:"limit,omitempty"`
}

// Apply returns a copy of the matching records of a scored dataset.
func (v View) Apply(ds *model.Dataset) *model.Dataset {
	verdicts := make(map[model.Verdict]bool, len(v.Verdicts))
	for _, vd := range v.Verdicts {
		verdicts[vd] = true
	}

	out := ds.Select(func(r *model.LocationRecord) bool {
		if len(verdicts) > 0 && !verdicts[r.Verdict] {
			return false
		}
		if v.MinScore != nil && r.Score < *v.MinScore {
			return false
		}
		if v.MaxScore != nil && r.Score > *v.MaxScore {
			return false
		}
		return true
	})

	if v.SortByScore {
		sort.SliceStable(out.Records, func(i, j int) bool {
			a, b := out.Records[i], out.Records[j]
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.ID < b.ID
		})
	}
	if v.Limit > 0 && len(out.Records) > v.Limit {
		out.Records = out.Records[:v.Limit]
	}
	return out
}

func foldSet(vals []string) map[string]bool {
	out := make(map[string]bool, len(vals))
	for _, s := range vals {
		if s = strings.TrimSpace(s); s != "" {
			out[strings.ToLower(s)] = true
		}
	}
	return out
}
