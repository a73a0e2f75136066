// Package normalize min-max scales dataset metric columns relative to the
// records currently in the dataset.
package normalize

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-scout/internal/model"
)

// Scaled holds min-max scaled copies of metric columns. Values[j][i] is the
// scaled value of Metrics[j] for record i. The source dataset is not touched.
type Scaled struct {
	Metrics    []string
	Values     [][]float64
	Min        []float64
	Max        []float64
	Degenerate []bool
}

// Column returns the scaled values of a metric key.
func (s *Scaled) Column(key string) ([]float64, bool) {
	for j, m := range s.Metrics {
		if m == key {
			return s.Values[j], true
		}
	}
	return nil, false
}

// DegenerateKeys lists the metrics whose min equals their max.
func (s *Scaled) DegenerateKeys() []string {
	var out []string
	for j, d := range s.Degenerate {
		if d {
			out = append(out, s.Metrics[j])
		}
	}
	return out
}

// Normalize rescales each named metric to (v - min) / (max - min) using the
// min and max of ds itself. A column whose min equals its max scales to all
// zeros and is flagged in Degenerate.
func Normalize(ds *model.Dataset, metrics []string) (*Scaled, error) {
	if ds.Len() == 0 {
		return nil, eris.Wrap(model.ErrEmptyDataset, "normalize: no records")
	}

	idx := make([]int, len(metrics))
	for j, key := range metrics {
		i, ok := ds.Schema.MetricIndex(key)
		if !ok {
			return nil, eris.Wrapf(model.ErrSchemaMismatch, "normalize: metric %q not in schema %s", key, ds.Schema.Name)
		}
		idx[j] = i
	}

	n := ds.Len()
	out := &Scaled{
		Metrics:    append([]string(nil), metrics...),
		Values:     make([][]float64, len(metrics)),
		Min:        make([]float64, len(metrics)),
		Max:        make([]float64, len(metrics)),
		Degenerate: make([]bool, len(metrics)),
	}

	for j := range metrics {
		col := idx[j]
		lo, hi := ds.Records[0].Metrics[col], ds.Records[0].Metrics[col]
		for i := 1; i < n; i++ {
			v := ds.Records[i].Metrics[col]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		out.Min[j], out.Max[j] = lo, hi

		vals := make([]float64, n)
		if hi == lo {
			out.Degenerate[j] = true
		} else {
			span := hi - lo
			for i := 0; i < n; i++ {
				vals[i] = (ds.Records[i].Metrics[col] - lo) / span
			}
		}
		out.Values[j] = vals
	}

	if keys := out.DegenerateKeys(); len(keys) > 0 {
		zap.L().Debug("normalize: degenerate columns zero-filled",
			zap.Strings("metrics", keys),
			zap.Int("records", n),
		)
	}
	return out, nil
}
