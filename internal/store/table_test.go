package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-scout/internal/model"
)

func TestEncodeGeneric(t *testing.T) {
	ds := model.NewDataset(model.GenericSchema(), 1)
	ds.Records = append(ds.Records, model.LocationRecord{
		ID: "ID_10000", City: "Bandung", Region: "Jawa Barat", Address: "Jl. Merdeka No. 5, Bandung",
		Latitude: -6.91754321, Longitude: 107.6191,
		Metrics: []float64{4_500_000.9, 12000, 3, 60_000_000},
		Score:   87.5, Grade: model.GradeA, Verdict: model.VerdictRecommended,
	})

	header, rows := Encode(ds)
	assert.Equal(t, []string{
		"Location_ID", "City", "Province", "Address", "Latitude", "Longitude",
		"Avg_Income", "Traffic_Daily", "Competitors", "Rent_Per_Year", "AI_Score", "Grade", "Verdict",
	}, header)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{
		"ID_10000", "Bandung", "Jawa Barat", "Jl. Merdeka No. 5, Bandung", "-6.917543", "107.6191",
		"4500000", "12000", "3", "60000000", "87.5", "A", "Recommended",
	}, rows[0])
}

func TestEncodeDensity(t *testing.T) {
	ds := model.NewDataset(model.DensitySchema(), 1)
	ds.Records = append(ds.Records, model.LocationRecord{
		ID: "MY-00001", City: "Ipoh", Region: "Perak", Address: "ignored",
		Latitude: 4.597479123, Longitude: 101.090106,
		Metrics:   []float64{9000, 5200, 12, 1.25, 3.5, 66.125, 1},
		SeedScore: 61,
	})

	header, rows := Encode(ds)
	assert.Equal(t, "branch_id", header[0])
	assert.Equal(t, []string{
		"MY-00001", "Malaysia", "Perak", "Ipoh", "4.597479123", "101.090106",
		"9000", "5200", "12", "1.25", "3.5", "66.125", "1", "61", "0", "",
	}, rows[0])
}

func TestDecode(t *testing.T) {
	header := []string{"\ufeffLocation_ID", "City", "Province", "Latitude", "Longitude",
		"Avg_Income", "Traffic_Daily", "Competitors", "Rent_Per_Year", "AI_Score", "Extra"}
	rows := [][]string{
		{"L1", "Medan", "Sumatera Utara", "3.59", "98.67", "4000000", "9000", "20", "30000000", "", "x"},
		{"", "", "", "", "", "", "", "", "", "", ""},
		{"L2", "Medan", "Sumatera Utara", "3.6", "98.7", "5000000", "11000", "25", "40000000", "55.5", "y"},
	}

	ds, err := Decode(model.GenericSchema(), header, rows)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	assert.Equal(t, "L1", ds.Records[0].ID)
	assert.Equal(t, "Sumatera Utara", ds.Records[0].Region)
	assert.Equal(t, []float64{4000000, 9000, 20, 30000000}, ds.Records[0].Metrics)
	assert.Equal(t, 0.0, ds.Records[0].Score)
	assert.Equal(t, 55.5, ds.Records[1].Score)
	assert.Empty(t, ds.Records[1].Address)
}

func TestDecodeErrors(t *testing.T) {
	full := model.GenericSchema().Header()
	good := []string{"L1", "Medan", "Sumut", "addr", "3.59", "98.67", "1", "2", "3", "4", "50", "B", "Potential"}

	replace := func(i int, v string) []string {
		row := append([]string(nil), good...)
		row[i] = v
		return row
	}

	tests := []struct {
		name    string
		header  []string
		rows    [][]string
		wantMsg string
	}{
		{"missing column", full[:8], [][]string{good[:8]}, "missing columns: Competitors, Rent_Per_Year"},
		{"bad number", full, [][]string{replace(6, "lots")}, "not a number"},
		{"empty metric", full, [][]string{replace(7, "")}, "value is empty"},
		{"bad grade", full, [][]string{replace(11, "Z")}, "unknown grade"},
		{"short row", full, [][]string{good[:5]}, "has 5 fields"},
		{"nan", full, [][]string{replace(4, "NaN")}, "not finite"},
		{"duplicate id", full, [][]string{good, good}, "duplicate id L1"},
		{"empty id", full, [][]string{good, replace(0, "")}, "record 2 has an empty id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(model.GenericSchema(), tt.header, tt.rows)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrSchemaMismatch)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDecodeVerdictLabels(t *testing.T) {
	s := model.GenericSchema()
	row := func(id, verdict string) []string {
		return []string{id, "Medan", "Sumut", "addr", "3.59", "98.67", "1", "2", "3", "4", "87", "A", verdict}
	}
	tests := []struct {
		in   string
		want model.Verdict
	}{
		{"Sangat Direkomendasikan ⭐", model.VerdictRecommended},
		{"Potensial ✅", model.VerdictPotential},
		{"Cukup (Perlu Strategi) ⚠️", model.VerdictNeedsStrategy},
		{"Tidak Disarankan ❌", model.VerdictNotRecommended},
		{"Not Recommended", model.VerdictNotRecommended},
		{"Maybe", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ds, err := Decode(s, s.Header(), [][]string{row("L1", tt.in)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ds.Records[0].Verdict)
			assert.Equal(t, model.GradeA, ds.Records[0].Grade)
		})
	}

	d := model.DensitySchema()
	ds, err := Decode(d, d.Header(), [][]string{
		{"MY-1", "Malaysia", "Perak", "Ipoh", "4.5", "101.1", "9000", "5000", "10", "1", "2", "50", "1", "72", "72", "Sangat Cocok"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.VerdictRecommended, ds.Records[0].Verdict)
}

func TestDecodeFlags(t *testing.T) {
	s := model.DensitySchema()
	row := func(flag string) []string {
		return []string{"MY-1", "Malaysia", "Perak", "Ipoh", "4.5", "101.1", "9000", "5000", "10", "1", "2", "50", flag, "", "", ""}
	}
	for _, v := range []string{"1", "true", "YES"} {
		ds, err := Decode(s, s.Header(), [][]string{row(v)})
		require.NoError(t, err)
		assert.Equal(t, 1.0, ds.Records[0].Metrics[6])
	}
	_, err := Decode(s, s.Header(), [][]string{row("maybe")})
	assert.ErrorIs(t, err, model.ErrSchemaMismatch)
}

func TestEncodeDecodePreservesRecords(t *testing.T) {
	ds := scored(t, "malaysia", 40)
	header, rows := Encode(ds)

	got, err := Decode(ds.Schema, header, rows)
	require.NoError(t, err)
	require.Equal(t, ds.Len(), got.Len())
	for i := range ds.Records {
		want := ds.Records[i]
		want.Address = ""
		want.Grade = ""
		assert.Equal(t, want, got.Records[i])
	}
}
