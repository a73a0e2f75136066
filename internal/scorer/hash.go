package scorer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
)

// RunConfig is everything that determines the scores of a run, given the
// input dataset.
type RunConfig struct {
	Schema     string     `json:"schema"`
	Weights    Weights    `json:"weights"`
	Thresholds Thresholds `json:"thresholds"`
	WorkingSet WorkingSet `json:"working_set"`
}

// Hash returns a 32-character digest identifying runs with comparable
// scores. Zero weights are dropped and working-set lists sorted first, as
// neither affects the outcome. Unencodable configs (NaN weights) hash to "".
func (c RunConfig) Hash() string {
	canon := c
	canon.Weights = make(Weights, len(c.Weights))
	for k, v := range c.Weights {
		if v != 0 {
			canon.Weights[k] = v
		}
	}
	ws := c.WorkingSet
	canon.WorkingSet = WorkingSet{
		Cities:  sortedCopy(ws.Cities),
		Regions: sortedCopy(ws.Regions),
		Grades:  sortedCopy(ws.Grades),
		Flags:   sortedCopy(ws.Flags),
	}

	data, err := json.Marshal(canon)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

func sortedCopy[S ~[]E, E ~string](s S) S {
	if len(s) == 0 {
		return nil
	}
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}
