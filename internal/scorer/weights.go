package scorer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-scout/internal/model"
)

// Weights maps a metric key to its non-negative weight. The sign a metric
// contributes comes from its schema role, never from the weight. Scorable
// metrics missing from the map weigh 0.
type Weights map[string]float64

// DefaultWeights returns the stock weights for a schema variant.
func DefaultWeights(schema *model.Schema) Weights {
	switch schema.Name {
	case model.SchemaGeneric:
		return Weights{"traffic": 0.5, "income": 0.5, "rent": 0.5, "competitor": 0.5}
	case model.SchemaDensity:
		return Weights{
			"population": 0.3,
			"income":     0.25,
			"mall":       0.2,
			"office":     0.15,
			"tourism":    0.1,
			"competitor": 0.2,
		}
	default:
		w := make(Weights)
		for _, key := range schema.ScorableKeys() {
			w[key] = 1
		}
		return w
	}
}

// Keys returns the weight keys in sorted order.
func (w Weights) Keys() []string {
	keys := make([]string, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a copy of w with the entries of o applied on top.
func (w Weights) Merge(o Weights) Weights {
	out := make(Weights, len(w)+len(o))
	for k, v := range w {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

// ValidateWeights checks every key names a scorable metric of the schema
// and every value is a finite, non-negative number. Unknown keys fail with
// ErrSchemaMismatch before any value is inspected.
func ValidateWeights(schema *model.Schema, w Weights) error {
	var unknown, bad []string
	for _, key := range w.Keys() {
		spec, ok := schema.Metric(key)
		if !ok {
			unknown = append(unknown, fmt.Sprintf("%q not in schema %s", key, schema.Name))
			continue
		}
		if !spec.Scorable() {
			unknown = append(unknown, fmt.Sprintf("%q is not scorable (%s)", key, spec.Role))
			continue
		}
		v := w[key]
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			bad = append(bad, fmt.Sprintf("%s must be a finite number >= 0 (got %v)", key, v))
		}
	}
	if len(unknown) > 0 {
		return eris.Wrapf(model.ErrSchemaMismatch, "scorer: weights: %s", strings.Join(unknown, "; "))
	}
	if len(bad) > 0 {
		return eris.Wrapf(model.ErrInvalidWeight, "scorer: weights: %s", strings.Join(bad, "; "))
	}
	return nil
}

// ParseWeights parses "key=value" pairs separated by commas, for example
// "traffic=1,rent=0.5". Keys are lowercased.
func ParseWeights(s string) (Weights, error) {
	w := make(Weights)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return nil, eris.Wrapf(model.ErrInvalidWeight, "scorer: weight %q is not key=value", part)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, eris.Wrapf(model.ErrInvalidWeight, "scorer: weight %q: %v", part, err)
		}
		w[strings.ToLower(strings.TrimSpace(key))] = v
	}
	return w, nil
}
