package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset() *Dataset {
	ds := NewDataset(GenericSchema(), 3)
	ds.Records = append(ds.Records,
		LocationRecord{ID: "ID_1", City: "Bandung", Metrics: []float64{5_000_000, 12_000, 40, 60_000_000}},
		LocationRecord{ID: "ID_2", City: "Medan", Metrics: []float64{4_000_000, 9_000, 20, 45_000_000}},
		LocationRecord{ID: "ID_3", City: "Bandung", Metrics: []float64{6_000_000, 15_000, 70, 80_000_000}},
	)
	return ds
}

func TestDatasetColumn(t *testing.T) {
	ds := testDataset()
	col, err := ds.Column("traffic")
	require.NoError(t, err)
	assert.Equal(t, []float64{12_000, 9_000, 15_000}, col)

	_, err = ds.Column("tourism")
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestDatasetValue(t *testing.T) {
	ds := testDataset()
	v, err := ds.Value(2, "rent")
	require.NoError(t, err)
	assert.Equal(t, 80_000_000.0, v)
}

func TestDatasetValidate(t *testing.T) {
	ds := testDataset()
	require.NoError(t, ds.Validate())

	ds.Records[1].Metrics = ds.Records[1].Metrics[:3]
	assert.ErrorIs(t, ds.Validate(), ErrSchemaMismatch)

	ds = testDataset()
	ds.Records[0].Metrics[2] = math.NaN()
	assert.ErrorIs(t, ds.Validate(), ErrSchemaMismatch)
}

func TestDatasetValidateIDs(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		wantMsg string
	}{
		{"duplicate", []string{"X", "X", "Y"}, "duplicate id X at records 1 and 2"},
		{"empty", []string{"ID_1", "", "ID_3"}, "record 2 has an empty id"},
		{"blank", []string{"ID_1", "ID_2", "  "}, "record 3 has an empty id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := testDataset()
			for i, id := range tt.ids {
				ds.Records[i].ID = id
			}
			err := ds.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchemaMismatch)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDatasetSelectCopies(t *testing.T) {
	ds := testDataset()
	sub := ds.Select(func(r *LocationRecord) bool { return r.City == "Bandung" })
	require.Equal(t, 2, sub.Len())

	sub.Records[0].Score = 99
	sub.Records[0].Metrics[0] = 1

	assert.Equal(t, 0.0, ds.Records[0].Score, "source score must not change")
	assert.Equal(t, 5_000_000.0, ds.Records[0].Metrics[0], "source metrics must not change")
}

func TestParseGradeVerdict(t *testing.T) {
	assert.Equal(t, GradeB, ParseGrade("B"))
	assert.Equal(t, Grade(""), ParseGrade("E"))
	assert.Equal(t, VerdictNeedsStrategy, ParseVerdict("Needs Strategy"))
	assert.Equal(t, Verdict(""), ParseVerdict("maybe"))
	assert.Equal(t, Verdict(""), ParseVerdict(""))
}

func TestParseVerdictLegacyLabels(t *testing.T) {
	tests := []struct {
		in   string
		want Verdict
	}{
		{"Sangat Direkomendasikan ⭐", VerdictRecommended},
		{"Potensial ✅", VerdictPotential},
		{"Cukup (Perlu Strategi) ⚠️", VerdictNeedsStrategy},
		{"Tidak Disarankan ❌", VerdictNotRecommended},
		{"Sangat Cocok", VerdictRecommended},
		{"Cocok", VerdictPotential},
		{"Tidak Cocok", VerdictNotRecommended},
		{"Recommended ⭐", VerdictRecommended},
		{"Cukup", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseVerdict(tt.in))
		})
	}
}
