// Package anchor holds the catalogs of named city centers that synthetic
// locations are clustered around.
package anchor

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/site-scout/internal/model"
)

// CityAnchor is a named reference point with a market tier and a sampling weight.
type CityAnchor struct {
	Name      string  `yaml:"name" json:"name"`
	Region    string  `yaml:"region" json:"region"`
	Latitude  float64 `yaml:"lat" json:"latitude"`
	Longitude float64 `yaml:"lng" json:"longitude"`
	Tier      int     `yaml:"tier" json:"tier"`
	Weight    float64 `yaml:"weight" json:"weight"`
}

// Catalog is an ordered, read-only set of anchors.
type Catalog []CityAnchor

// Validate rejects catalogs the generator cannot sample from.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return eris.Wrap(model.ErrInvalidParams, "anchor: catalog is empty")
	}
	var errs []string
	for i, a := range c {
		if a.Name == "" {
			errs = append(errs, fmt.Sprintf("anchor %d has no name", i))
		}
		if a.Tier < 1 || a.Tier > 3 {
			errs = append(errs, fmt.Sprintf("%s: tier must be 1, 2 or 3 (got %d)", a.Name, a.Tier))
		}
		if !(a.Weight > 0) || math.IsInf(a.Weight, 0) {
			errs = append(errs, fmt.Sprintf("%s: weight must be > 0", a.Name))
		}
		if a.Latitude < -90 || a.Latitude > 90 || a.Longitude < -180 || a.Longitude > 180 {
			errs = append(errs, fmt.Sprintf("%s: coordinates out of range", a.Name))
		}
	}
	if len(errs) > 0 {
		return eris.Wrapf(model.ErrInvalidParams, "anchor: %s", strings.Join(errs, "; "))
	}
	return nil
}

// TotalWeight returns the sum of all sampling weights.
func (c Catalog) TotalWeight() float64 {
	var sum float64
	for _, a := range c {
		sum += a.Weight
	}
	return sum
}

// Sampler draws anchors with probability proportional to their weight.
type Sampler struct {
	catalog    Catalog
	cumulative []float64
	total      float64
}

// NewSampler validates the catalog and precomputes cumulative weights.
func NewSampler(c Catalog) (*Sampler, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	cum := make([]float64, len(c))
	var running float64
	for i, a := range c {
		running += a.Weight
		cum[i] = running
	}
	return &Sampler{catalog: c, cumulative: cum, total: running}, nil
}

// Index maps a uniform draw u in [0, 1) to an anchor index.
func (s *Sampler) Index(u float64) int {
	target := u * s.total
	i := sort.Search(len(s.cumulative), func(i int) bool { return s.cumulative[i] > target })
	if i >= len(s.cumulative) {
		i = len(s.cumulative) - 1
	}
	return i
}

// Pick maps a uniform draw to an anchor.
func (s *Sampler) Pick(u float64) CityAnchor {
	return s.catalog[s.Index(u)]
}

// Probability returns the selection probability of anchor i.
func (s *Sampler) Probability(i int) float64 {
	return s.catalog[i].Weight / s.total
}

// Allocate splits count across anchors in proportion to weight using the
// largest-remainder method, so the parts always sum to count.
func (c Catalog) Allocate(count int) []int {
	out := make([]int, len(c))
	total := c.TotalWeight()
	if count <= 0 || total <= 0 {
		return out
	}

	type rem struct {
		idx  int
		frac float64
	}
	rems := make([]rem, len(c))
	assigned := 0
	for i, a := range c {
		exact := float64(count) * a.Weight / total
		out[i] = int(math.Floor(exact))
		assigned += out[i]
		rems[i] = rem{idx: i, frac: exact - float64(out[i])}
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })
	for k := 0; assigned < count; k++ {
		out[rems[k%len(rems)].idx]++
		assigned++
	}
	return out
}

type catalogFile struct {
	Anchors Catalog `yaml:"anchors"`
}

// LoadFile reads a YAML catalog of the form `anchors: [{name, region, lat, lng, tier, weight}]`.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "anchor: read %s", path)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "anchor: parse %s", path)
	}
	if err := f.Anchors.Validate(); err != nil {
		return nil, err
	}
	return f.Anchors, nil
}
