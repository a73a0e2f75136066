package anchor

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-scout/internal/model"
	"github.com/sells-group/site-scout/internal/rng"
)

func TestBuiltinCatalogsValidate(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := Builtin(name)
			require.NoError(t, err)
			assert.NoError(t, c.Validate())
		})
	}
	ind, _ := Builtin(CatalogIndonesia)
	assert.Len(t, ind, 22)
	my, _ := Builtin(CatalogMalaysia)
	assert.Len(t, my, 30)
}

func TestBuiltinReturnsCopy(t *testing.T) {
	a, err := Builtin(CatalogIndonesia)
	require.NoError(t, err)
	a[0].Weight = 1000

	b, err := Builtin(CatalogIndonesia)
	require.NoError(t, err)
	assert.Equal(t, 5.0, b[0].Weight)
}

func TestBuiltinUnknown(t *testing.T) {
	_, err := Builtin("atlantis")
	assert.ErrorIs(t, err, model.ErrInvalidParams)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		catalog Catalog
		wantMsg string
	}{
		{"empty", Catalog{}, "catalog is empty"},
		{"zero weight", Catalog{{Name: "A", Tier: 1, Weight: 0}}, "weight must be > 0"},
		{"bad tier", Catalog{{Name: "A", Tier: 4, Weight: 1}}, "tier must be 1, 2 or 3"},
		{"bad coords", Catalog{{Name: "A", Tier: 1, Weight: 1, Latitude: 95}}, "coordinates out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.catalog.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrInvalidParams)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSamplerIndexBoundaries(t *testing.T) {
	s, err := NewSampler(Catalog{
		{Name: "A", Tier: 1, Weight: 1},
		{Name: "B", Tier: 2, Weight: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, s.Index(0))
	assert.Equal(t, 0, s.Index(0.2499))
	assert.Equal(t, 1, s.Index(0.25))
	assert.Equal(t, 1, s.Index(0.9999))
	assert.InDelta(t, 0.75, s.Probability(1), 1e-12)
}

func TestSamplerConvergence(t *testing.T) {
	c, err := Builtin(CatalogIndonesia)
	require.NoError(t, err)
	s, err := NewSampler(c)
	require.NoError(t, err)

	const n = 100_000
	src := rng.New(2024)
	counts := make([]int, len(c))
	for i := 0; i < n; i++ {
		counts[s.Index(src.Float64())]++
	}

	for i := range c {
		p := s.Probability(i)
		stderr := math.Sqrt(p * (1 - p) / n)
		got := float64(counts[i]) / n
		assert.InDelta(t, p, got, 4*stderr, "anchor %s", c[i].Name)
	}
}

func TestAllocateSumsToCount(t *testing.T) {
	c, err := Builtin(CatalogMalaysia)
	require.NoError(t, err)

	for _, count := range []int{1, 7, 2000, 5850} {
		parts := c.Allocate(count)
		sum := 0
		for _, p := range parts {
			sum += p
		}
		assert.Equal(t, count, sum, "count %d", count)
	}

	// Total weight is 5850, so allocating 5850 reproduces the weights exactly.
	parts := c.Allocate(5850)
	for i, a := range c {
		assert.Equal(t, int(a.Weight), parts[i], a.Name)
	}
}

func TestAllocateZero(t *testing.T) {
	c := Catalog{{Name: "A", Tier: 1, Weight: 1}}
	assert.Equal(t, []int{0}, c.Allocate(0))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anchors.yaml")
	body := `
anchors:
  - name: Alpha
    region: North
    lat: 1.5
    lng: 103.2
    tier: 1
    weight: 5
  - name: Beta
    region: South
    lat: -2.0
    lng: 110.0
    tier: 3
    weight: 1
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, c, 2)
	assert.Equal(t, "Alpha", c[0].Name)
	assert.Equal(t, 103.2, c[0].Longitude)
	assert.Equal(t, 3, c[1].Tier)
	assert.Equal(t, 6.0, c.TotalWeight())
}

func TestLoadFileInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anchors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("anchors: []\n"), 0o644))

	_, err := LoadFile(path)
	assert.ErrorIs(t, err, model.ErrInvalidParams)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
