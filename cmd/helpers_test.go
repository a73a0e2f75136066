package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-scout/internal/anchor"
	"github.com/sells-group/site-scout/internal/config"
	"github.com/sells-group/site-scout/internal/generator"
	"github.com/sells-group/site-scout/internal/model"
	"github.com/sells-group/site-scout/internal/scorer"
)

func TestBuildProfile_Defaults(t *testing.T) {
	p, c, err := buildProfile(config.GeneratorConfig{Profile: "malaysia"})
	require.NoError(t, err)
	assert.Equal(t, generator.MalaysiaProfile().Name, p.Name)
	assert.Equal(t, generator.MalaysiaProfile().JitterDeg, p.JitterDeg)
	assert.Equal(t, generator.SamplingStratified, p.Sampling, "empty sampling keeps the profile mode")

	want, err := anchor.Builtin(anchor.CatalogMalaysia)
	require.NoError(t, err)
	assert.Equal(t, want, c)
}

func TestBuildProfile_Overrides(t *testing.T) {
	p, c, err := buildProfile(config.GeneratorConfig{
		Profile:         "indonesia",
		Sampling:        "stratified",
		Catalog:         anchor.CatalogMalaysia,
		JitterKM:        5,
		TierMultipliers: map[string]float64{"1": 3},
		Floors:          map[string]float64{"income": 4_000_000},
		Caps:            map[string]float64{"competitor": 0},
	})
	require.NoError(t, err)

	assert.Equal(t, generator.SamplingStratified, p.Sampling)
	assert.InDelta(t, 3.0, p.TierMultipliers[1], 1e-9)
	assert.Equal(t, generator.IndonesiaProfile().TierMultipliers[2], p.TierMultipliers[2])
	assert.NotEqual(t, generator.IndonesiaProfile().JitterDeg, p.JitterDeg)
	for _, m := range p.Metrics {
		switch m.Key {
		case "income":
			assert.InDelta(t, 4_000_000.0, m.Floor, 1e-9)
		case "competitor":
			require.NotNil(t, m.Cap)
			assert.Zero(t, *m.Cap)
		}
	}
	assert.Equal(t, "Kuala Lumpur", c[0].Name)
}

func TestBuildProfile_AnchorsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anchors.yaml")
	yaml := `anchors:
  - {name: Alpha, region: North, lat: 1.5, lng: 103.2, tier: 1, weight: 3}
  - {name: Beta, region: South, lat: 2.5, lng: 102.1, tier: 3, weight: 1}
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	_, c, err := buildProfile(config.GeneratorConfig{AnchorsFile: path, Catalog: anchor.CatalogMalaysia})
	require.NoError(t, err)
	require.Len(t, c, 2)
	assert.Equal(t, "Alpha", c[0].Name)
	assert.InDelta(t, 4.0, c.TotalWeight(), 1e-9)
}

func TestBuildProfile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.GeneratorConfig
		wantMsg string
	}{
		{"unknown profile", config.GeneratorConfig{Profile: "thailand"}, "unknown profile"},
		{"unknown floor", config.GeneratorConfig{Floors: map[string]float64{"parking": 1}}, `unknown metric "parking"`},
		{"unknown cap", config.GeneratorConfig{Caps: map[string]float64{"parking": 1}}, `cap for unknown metric "parking"`},
		{"bad tier", config.GeneratorConfig{TierMultipliers: map[string]float64{"9": 1}}, "tier multipliers"},
		{"unknown catalog", config.GeneratorConfig{Catalog: "atlantis"}, "atlantis"},
		{"missing anchors file", config.GeneratorConfig{AnchorsFile: "/nonexistent/anchors.yaml"}, "anchor: read"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := buildProfile(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestResolveWeights(t *testing.T) {
	schema := model.GenericSchema()

	w, err := resolveWeights(schema, nil, "")
	require.NoError(t, err)
	assert.Equal(t, scorer.DefaultWeights(schema), w)

	w, err = resolveWeights(schema, map[string]float64{"traffic": 2}, "rent=0,Income=1")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, w["traffic"], 1e-9)
	assert.InDelta(t, 0.0, w["rent"], 1e-9)
	assert.InDelta(t, 1.0, w["income"], 1e-9)
	assert.InDelta(t, 0.5, w["competitor"], 1e-9)

	// Flag overrides configured weights.
	w, err = resolveWeights(schema, map[string]float64{"traffic": 2}, "traffic=0.1")
	require.NoError(t, err)
	assert.InDelta(t, 0.1, w["traffic"], 1e-9)

	_, err = resolveWeights(schema, nil, "mall=1")
	assert.ErrorIs(t, err, model.ErrSchemaMismatch)

	_, err = resolveWeights(schema, nil, "rent=-1")
	assert.ErrorIs(t, err, model.ErrInvalidWeight)

	_, err = resolveWeights(schema, nil, "rent")
	assert.ErrorIs(t, err, model.ErrInvalidWeight)
}

// newFlagCommand returns a fresh command carrying the score filter flags.
func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	f := cmd.Flags()
	f.StringSlice("city", nil, "")
	f.StringSlice("region", nil, "")
	f.StringSlice("grade", nil, "")
	f.StringSlice("flag", nil, "")
	f.StringSlice("verdict", nil, "")
	f.Float64("min-score", 0, "")
	f.Float64("max-score", 100, "")
	f.Int("top", 0, "")
	require.NoError(t, f.Parse(args))
	return cmd
}

func TestWorkingSetFromFlags(t *testing.T) {
	cmd := newFlagCommand(t, "--city", "Jakarta Selatan,Bandung", "--region", "Jawa Barat", "--grade", "a, b", "--flag", "halal")
	ws, err := workingSetFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jakarta Selatan", "Bandung"}, ws.Cities)
	assert.Equal(t, []string{"Jawa Barat"}, ws.Regions)
	assert.Equal(t, []model.Grade{model.GradeA, model.GradeB}, ws.Grades)
	assert.Equal(t, []string{"halal"}, ws.Flags)

	_, err = workingSetFromFlags(newFlagCommand(t, "--grade", "E"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidParams)
}

func TestViewFromFlags(t *testing.T) {
	v, err := viewFromFlags(newFlagCommand(t))
	require.NoError(t, err)
	assert.True(t, v.SortByScore)
	assert.Nil(t, v.MinScore)
	assert.Nil(t, v.MaxScore)
	assert.Zero(t, v.Limit)

	v, err = viewFromFlags(newFlagCommand(t, "--verdict", "Recommended", "--min-score", "40", "--top", "5"))
	require.NoError(t, err)
	assert.Equal(t, []model.Verdict{model.VerdictRecommended}, v.Verdicts)
	require.NotNil(t, v.MinScore)
	assert.InDelta(t, 40.0, *v.MinScore, 1e-9)
	assert.Nil(t, v.MaxScore)
	assert.Equal(t, 5, v.Limit)

	_, err = viewFromFlags(newFlagCommand(t, "--verdict", "Maybe"))
	assert.ErrorIs(t, err, model.ErrInvalidParams)
}

func TestWriteScoreTable(t *testing.T) {
	ds := &model.Dataset{
		Schema: model.GenericSchema(),
		Records: []model.LocationRecord{
			{ID: "ID_10001", City: "Bandung", Region: "Jawa Barat", Score: 100, Grade: model.GradeA, Verdict: model.VerdictRecommended},
			{ID: "ID_10000", City: "Medan", Region: "Sumatera Utara", Score: 12.345, Grade: model.GradeD, Verdict: model.VerdictNotRecommended},
		},
	}

	var buf bytes.Buffer
	writeScoreTable(&buf, ds)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "AI_SCORE")
	assert.True(t, strings.HasPrefix(lines[1], "1 "))
	assert.Contains(t, lines[1], "100.00")
	assert.Contains(t, lines[2], "12.35")
	assert.Contains(t, lines[2], "Not Recommended")
}

func TestPrintSummary(t *testing.T) {
	s := generator.Summary{
		Records:      12000,
		Cities:       []generator.CityCount{{City: "Kuala Lumpur", Count: 8000}, {City: "Ipoh", Count: 4000}},
		MinLat:       1.4,
		MaxLat:       6.4,
		MinLng:       100.1,
		MaxLng:       118.1,
		MeanAnchorKM: 1.234,
		MaxAnchorKM:  7.5,
		Spread:       map[string]int{"urban_core": 11990, "suburban": 10},
		Grades:       map[string]int{"A": 100, "C": 11900},
	}

	var buf bytes.Buffer
	printSummary(&buf, s)

	output := buf.String()
	assert.Contains(t, output, "12,000")
	assert.Contains(t, output, "mean 1.23 km")
	assert.Contains(t, output, "urban_core")
	assert.Contains(t, output, "11,990")
	assert.NotContains(t, output, "rural")
	assert.Contains(t, output, "Grade A")
	assert.NotContains(t, output, "Grade B")
	assert.Contains(t, output, "Kuala Lumpur")
	assert.Contains(t, output, "8,000")
	assert.Less(t, strings.Index(output, "Kuala Lumpur"), strings.Index(output, "Ipoh"))
}

func TestFormatCatalog(t *testing.T) {
	c, err := anchor.Builtin(anchor.CatalogMalaysia)
	require.NoError(t, err)

	var buf bytes.Buffer
	formatCatalog(&buf, c)

	output := buf.String()
	assert.Contains(t, output, "SHARE")
	assert.Contains(t, output, "Kuala Lumpur")
	assert.Contains(t, output, "TOTAL")
	assert.Contains(t, output, "5,850")
	assert.Contains(t, output, "100.00%")
	lines := strings.Split(strings.TrimSpace(output), "\n")
	assert.Len(t, lines, len(c)+2)
}
