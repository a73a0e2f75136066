package scorer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-scout/internal/model"
)

func TestDefaultWeightsValid(t *testing.T) {
	for _, name := range model.SchemaNames() {
		t.Run(name, func(t *testing.T) {
			s, err := model.LookupSchema(name)
			require.NoError(t, err)
			w := DefaultWeights(s)
			require.NoError(t, ValidateWeights(s, w))
			assert.Greater(t, w.Sum(), 0.0)
		})
	}
}

func TestDefaultWeightsCustomSchema(t *testing.T) {
	s := &model.Schema{Name: "custom", Metrics: []model.MetricSpec{
		{Key: "foot", Role: model.RoleBenefit},
		{Key: "cost", Role: model.RoleCost},
		{Key: "tag", Role: model.RoleAttribute},
	}}
	assert.Equal(t, Weights{"foot": 1, "cost": 1}, DefaultWeights(s))
}

func TestValidateWeights(t *testing.T) {
	s := model.DensitySchema()
	tests := []struct {
		name string
		w    Weights
		want error
	}{
		{"ok", Weights{"population": 1, "competitor": 0}, nil},
		{"empty", Weights{}, nil},
		{"unknown", Weights{"traffic": 1}, model.ErrSchemaMismatch},
		{"attribute", Weights{"halal": 1}, model.ErrSchemaMismatch},
		{"negative", Weights{"mall": -0.1}, model.ErrInvalidWeight},
		{"nan", Weights{"mall": math.NaN()}, model.ErrInvalidWeight},
		{"inf", Weights{"mall": math.Inf(1)}, model.ErrInvalidWeight},
		{"mismatch wins", Weights{"mall": -1, "traffic": 1}, model.ErrSchemaMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeights(s, tt.w)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseWeights(t *testing.T) {
	w, err := ParseWeights(" Traffic=1, rent = 0.5,,")
	require.NoError(t, err)
	assert.Equal(t, Weights{"traffic": 1, "rent": 0.5}, w)

	w, err = ParseWeights("")
	require.NoError(t, err)
	assert.Empty(t, w)

	_, err = ParseWeights("traffic")
	assert.ErrorIs(t, err, model.ErrInvalidWeight)

	_, err = ParseWeights("traffic=lots")
	assert.ErrorIs(t, err, model.ErrInvalidWeight)
}

func TestWeightsMerge(t *testing.T) {
	base := Weights{"traffic": 0.5, "rent": 0.5}
	got := base.Merge(Weights{"rent": 1, "income": 0.2})
	assert.Equal(t, Weights{"traffic": 0.5, "rent": 1, "income": 0.2}, got)
	assert.Equal(t, 0.5, base["rent"])
	assert.Equal(t, []string{"income", "rent", "traffic"}, got.Keys())
}

func TestRunConfigHash(t *testing.T) {
	a := RunConfig{Schema: "generic", Weights: Weights{"traffic": 1, "rent": 0.5}, Thresholds: DefaultThresholds()}
	b := RunConfig{Schema: "generic", Weights: Weights{"rent": 0.5, "traffic": 1, "income": 0}, Thresholds: DefaultThresholds()}
	c := RunConfig{Schema: "generic", Weights: Weights{"traffic": 1}, Thresholds: DefaultThresholds()}

	assert.Len(t, a.Hash(), 32)
	assert.Equal(t, a.Hash(), b.Hash(), "zero weights do not change the hash")
	assert.NotEqual(t, a.Hash(), c.Hash())

	d := a
	d.WorkingSet = WorkingSet{Cities: []string{"Medan", "Bandung"}}
	e := a
	e.WorkingSet = WorkingSet{Cities: []string{"Bandung", "Medan"}}
	assert.NotEqual(t, a.Hash(), d.Hash())
	assert.Equal(t, d.Hash(), e.Hash())

	bad := RunConfig{Weights: Weights{"traffic": math.NaN()}}
	assert.Empty(t, bad.Hash())
}
