package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-scout/internal/model"
)

func density() *model.Dataset {
	ds := model.NewDataset(model.DensitySchema(), 4)
	add := func(id, city, region string, halal float64, grade model.Grade) {
		ds.Records = append(ds.Records, model.LocationRecord{
			ID: id, City: city, Region: region, Grade: grade,
			Metrics: []float64{8000, 5000, 30, 2, 3, 50, halal},
		})
	}
	add("MY-00001", "Kuala Lumpur", "W.P. Kuala Lumpur", 1, model.GradeA)
	add("MY-00002", "George Town", "Pulau Pinang", 0, model.GradeB)
	add("MY-00003", "Kuala Lumpur", "W.P. Kuala Lumpur", 0, model.GradeC)
	add("MY-00004", "Johor Bahru", "Johor", 1, model.GradeA)
	return ds
}

func ids(ds *model.Dataset) []string {
	out := make([]string, 0, ds.Len())
	for _, r := range ds.Records {
		out = append(out, r.ID)
	}
	return out
}

func TestWorkingSetApply(t *testing.T) {
	tests := []struct {
		name string
		ws   WorkingSet
		want []string
	}{
		{"empty matches all", WorkingSet{}, []string{"MY-00001", "MY-00002", "MY-00003", "MY-00004"}},
		{"city ignores case", WorkingSet{Cities: []string{"kuala lumpur"}}, []string{"MY-00001", "MY-00003"}},
		{"region", WorkingSet{Regions: []string{"Johor", "Pulau Pinang"}}, []string{"MY-00002", "MY-00004"}},
		{"grade", WorkingSet{Grades: []model.Grade{model.GradeA}}, []string{"MY-00001", "MY-00004"}},
		{"flag", WorkingSet{Flags: []string{"halal"}}, []string{"MY-00001", "MY-00004"}},
		{"combined", WorkingSet{Cities: []string{"Kuala Lumpur"}, Flags: []string{"halal"}}, []string{"MY-00001"}},
		{"no match", WorkingSet{Cities: []string{"Ipoh"}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := density()
			got, err := tt.ws.Apply(src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, 4, src.Len())
		})
	}
}

func TestWorkingSetEmptyAfterFilterFailsScoring(t *testing.T) {
	ws, err := WorkingSet{Cities: []string{"Ipoh"}}.Apply(density())
	require.NoError(t, err)
	_, err = Score(ws, DefaultWeights(ws.Schema), DefaultOptions())
	assert.ErrorIs(t, err, model.ErrEmptyDataset)
}

func TestWorkingSetFlagErrors(t *testing.T) {
	_, err := WorkingSet{Flags: []string{"wifi"}}.Apply(density())
	assert.ErrorIs(t, err, model.ErrSchemaMismatch)

	_, err = WorkingSet{Flags: []string{"mall"}}.Apply(density())
	assert.ErrorIs(t, err, model.ErrSchemaMismatch)
}

func TestViewApply(t *testing.T) {
	ds := density()
	scores := []float64{40, 90, 70, 90}
	th := DefaultThresholds()
	for i := range ds.Records {
		ds.Records[i].Score = scores[i]
		ds.Records[i].Verdict = th.Verdict(scores[i])
	}
	lo, hi := 50.0, 80.0

	tests := []struct {
		name string
		view View
		want []string
	}{
		{"zero value keeps order", View{}, []string{"MY-00001", "MY-00002", "MY-00003", "MY-00004"}},
		{"sorted", View{SortByScore: true}, []string{"MY-00002", "MY-00004", "MY-00003", "MY-00001"}},
		{"limit", View{SortByScore: true, Limit: 2}, []string{"MY-00002", "MY-00004"}},
		{"verdict", View{Verdicts: []model.Verdict{model.VerdictPotential}}, []string{"MY-00001"}},
		{"score band", View{MinScore: &lo, MaxScore: &hi}, []string{"MY-00003"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.view.Apply(ds)
			assert.Equal(t, tt.want, ids(got))
		})
	}
	assert.Equal(t, 40.0, ds.Records[0].Score)
}
