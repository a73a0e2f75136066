// Package generator synthesizes plausible location datasets around city
// anchors for demos and test fixtures.
package generator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-scout/internal/anchor"
	"github.com/sells-group/site-scout/internal/geo"
	"github.com/sells-group/site-scout/internal/model"
)

// Dist names the distribution a metric is drawn from.
type Dist string

// Supported distributions.
const (
	DistNormal    Dist = "normal"    // N(base * tier multiplier, stddev)
	DistUniform   Dist = "uniform"   // U[min, max)
	DistBernoulli Dist = "bernoulli" // 1 with probability p
)

// Sampling selects how anchors are assigned to records.
type Sampling string

// Sampling modes.
const (
	SamplingWeighted   Sampling = "weighted"   // independent draws, P(i) = w_i / sum(w)
	SamplingStratified Sampling = "stratified" // fixed per-anchor quotas proportional to weight
)

// MetricGen describes how one schema metric is synthesized.
type MetricGen struct {
	Key    string
	Dist   Dist
	Base   float64
	StdDev float64
	Min    float64
	Max    float64
	P      float64
	Floor  float64
	Cap    *float64 // nil means uncapped
}

// SeedFormula is the fixed linear formula that gives each generated record
// an initial score before any weight-driven rescoring.
type SeedFormula struct {
	Base      float64
	Weights   map[string]float64
	JitterMin int
	JitterMax int
	Min       float64
	Max       float64
}

// Profile bundles everything needed to synthesize one dataset variant.
type Profile struct {
	Name            string
	Schema          *model.Schema
	Catalog         string
	Metrics         []MetricGen
	TierMultipliers map[int]float64
	JitterDeg       float64
	Sampling        Sampling
	Seed            SeedFormula
	Ladder          model.Ladder
	Streets         []string
	AddressFormat   string // fmt verbs: %[1]s street, %[2]d number, %[3]s city
	IDFormat        string
	IDOffset        int
}

// Built-in profile names.
const (
	ProfileIndonesia = "indonesia"
	ProfileMalaysia  = "malaysia"
)

func defaultTierMultipliers() map[int]float64 {
	return map[int]float64{1: 1.5, 2: 1.2, 3: 0.9}
}

// IndonesiaProfile produces the generic income/traffic/rent/competitor dataset.
func IndonesiaProfile() Profile {
	return Profile{
		Name:    ProfileIndonesia,
		Schema:  model.GenericSchema(),
		Catalog: anchor.CatalogIndonesia,
		Metrics: []MetricGen{
			// Floor is the regional minimum wage.
			{Key: "income", Dist: DistNormal, Base: 4_500_000, StdDev: 1_500_000, Floor: 2_800_000},
			{Key: "traffic", Dist: DistNormal, Base: 12_000, StdDev: 4_000, Floor: 2_000},
			{Key: "competitor", Dist: DistNormal, Base: 50, StdDev: 20, Floor: 0},
			{Key: "rent", Dist: DistNormal, Base: 60_000_000, StdDev: 20_000_000, Floor: 15_000_000},
		},
		TierMultipliers: defaultTierMultipliers(),
		JitterDeg:       0.04,
		Sampling:        SamplingWeighted,
		Seed: SeedFormula{
			Base: 50,
			Weights: map[string]float64{
				"traffic":    0.002,
				"income":     0.000005,
				"rent":       -0.0000004,
				"competitor": -0.3,
			},
			JitterMin: -5,
			JitterMax: 10,
			Min:       10,
			Max:       99,
		},
		Ladder: model.DefaultLadder(),
		Streets: []string{
			"Jend. Sudirman", "Gatot Subroto", "Ahmad Yani", "Diponegoro", "Imam Bonjol",
			"Gajah Mada", "Hayam Wuruk", "Merdeka", "Pahlawan", "Sisingamangaraja",
			"Pattimura", "Antasari", "Raden Saleh", "Cikini Raya", "Kemang", "Pasteur",
		},
		AddressFormat: "Jl. %[1]s No. %[2]d, %[3]s",
		IDFormat:      "ID_%d",
		IDOffset:      10_000,
	}
}

// MalaysiaProfile produces the density/mall/office/tourism/halal dataset.
func MalaysiaProfile() Profile {
	return Profile{
		Name:    ProfileMalaysia,
		Schema:  model.DensitySchema(),
		Catalog: anchor.CatalogMalaysia,
		Metrics: []MetricGen{
			{Key: "population", Dist: DistNormal, Base: 9_500, StdDev: 2_500, Floor: 5_000, Cap: capAt(15_000)},
			// Floor is the national minimum wage.
			{Key: "income", Dist: DistNormal, Base: 5_000, StdDev: 1_200, Floor: 1_500},
			{Key: "competitor", Dist: DistNormal, Base: 35, StdDev: 15, Floor: 0},
			{Key: "mall", Dist: DistUniform, Min: 0.5, Max: 4.0, Floor: 0.5},
			{Key: "office", Dist: DistUniform, Min: 0.5, Max: 5.0, Floor: 0.5},
			{Key: "tourism", Dist: DistUniform, Min: 20, Max: 85, Floor: 0, Cap: capAt(100)},
			{Key: "halal", Dist: DistBernoulli, P: 0.7},
		},
		TierMultipliers: defaultTierMultipliers(),
		JitterDeg:       0.015,
		Sampling:        SamplingStratified,
		Seed: SeedFormula{
			Base: 30,
			Weights: map[string]float64{
				"population": 0.001,
				"income":     0.002,
				"mall":       2,
				"office":     2,
				"tourism":    0.1,
				"competitor": -0.3,
			},
			JitterMin: -5,
			JitterMax: 10,
			Min:       10,
			Max:       99,
		},
		Ladder: model.DefaultLadder(),
		Streets: []string{
			"Bukit Bintang", "Ampang", "Tun Razak", "Sultan Ismail", "Raja Chulan",
			"Masjid India", "Petaling", "Penang", "Burma", "Tebrau",
			"Gaya", "Padungan", "Sultan Idris Shah", "Hang Tuah",
		},
		AddressFormat: "No. %[2]d, Jalan %[1]s, %[3]s",
		IDFormat:      "MY-%05d",
		IDOffset:      1,
	}
}

// LookupProfile returns a built-in profile by name or by schema name.
func LookupProfile(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProfileIndonesia, model.SchemaGeneric, "":
		return IndonesiaProfile(), nil
	case ProfileMalaysia, model.SchemaDensity:
		return MalaysiaProfile(), nil
	default:
		return Profile{}, eris.Wrapf(model.ErrInvalidParams, "generator: unknown profile %q", name)
	}
}

// WithTierMultipliers returns a copy with the given tier multipliers merged in.
func (p Profile) WithTierMultipliers(m map[int]float64) Profile {
	merged := make(map[int]float64, len(p.TierMultipliers)+len(m))
	for k, v := range p.TierMultipliers {
		merged[k] = v
	}
	for k, v := range m {
		merged[k] = v
	}
	p.TierMultipliers = merged
	return p
}

// WithFloors returns a copy with per-metric floors overridden.
func (p Profile) WithFloors(floors map[string]float64) Profile {
	metrics := append([]MetricGen(nil), p.Metrics...)
	for i := range metrics {
		if f, ok := floors[metrics[i].Key]; ok {
			metrics[i].Floor = f
		}
	}
	p.Metrics = metrics
	return p
}

// WithCaps returns a copy with per-metric caps overridden. A cap of 0 is a
// real cap; metrics not named keep their own.
func (p Profile) WithCaps(caps map[string]float64) Profile {
	metrics := append([]MetricGen(nil), p.Metrics...)
	for i := range metrics {
		if c, ok := caps[metrics[i].Key]; ok {
			metrics[i].Cap = capAt(c)
		}
	}
	p.Metrics = metrics
	return p
}

func capAt(v float64) *float64 { return &v }

// WithJitterKM returns a copy with the coordinate jitter given in kilometers.
func (p Profile) WithJitterKM(km float64) Profile {
	p.JitterDeg = geo.KMToDegrees(km)
	return p
}

// Validate checks the profile is internally consistent and matches its schema.
func (p Profile) Validate() error {
	var errs []string

	if p.Schema == nil {
		return eris.Wrap(model.ErrInvalidParams, "generator: profile has no schema")
	}
	if err := p.Schema.Validate(); err != nil {
		return eris.Wrapf(model.ErrInvalidParams, "generator: %v", err)
	}

	gens := make(map[string]bool, len(p.Metrics))
	for _, m := range p.Metrics {
		if _, ok := p.Schema.MetricIndex(m.Key); !ok {
			errs = append(errs, fmt.Sprintf("metric %q not in schema %s", m.Key, p.Schema.Name))
		}
		if gens[m.Key] {
			errs = append(errs, fmt.Sprintf("metric %q generated twice", m.Key))
		}
		gens[m.Key] = true

		switch m.Dist {
		case DistNormal:
			if m.StdDev < 0 {
				errs = append(errs, fmt.Sprintf("%s: stddev must be >= 0", m.Key))
			}
		case DistUniform:
			if !(m.Max > m.Min) {
				errs = append(errs, fmt.Sprintf("%s: max must be > min", m.Key))
			}
		case DistBernoulli:
			if m.P < 0 || m.P > 1 {
				errs = append(errs, fmt.Sprintf("%s: p must be within [0, 1]", m.Key))
			}
		default:
			errs = append(errs, fmt.Sprintf("%s: unknown distribution %q", m.Key, m.Dist))
		}
		if m.Cap != nil && *m.Cap < m.Floor {
			errs = append(errs, fmt.Sprintf("%s: cap must be >= floor", m.Key))
		}
	}
	for _, key := range p.Schema.MetricKeys() {
		if !gens[key] {
			errs = append(errs, fmt.Sprintf("metric %q has no generator", key))
		}
	}

	tiers := make([]int, 0, len(p.TierMultipliers))
	for tier := range p.TierMultipliers {
		tiers = append(tiers, tier)
	}
	sort.Ints(tiers)
	for _, tier := range tiers {
		if m := p.TierMultipliers[tier]; !(m > 0) || math.IsInf(m, 0) {
			errs = append(errs, fmt.Sprintf("tier %d multiplier must be > 0", tier))
		}
	}

	if p.JitterDeg < 0 || math.IsNaN(p.JitterDeg) {
		errs = append(errs, "jitter must be >= 0")
	}
	switch p.Sampling {
	case SamplingWeighted, SamplingStratified:
	default:
		errs = append(errs, fmt.Sprintf("unknown sampling mode %q", p.Sampling))
	}

	seedKeys := make([]string, 0, len(p.Seed.Weights))
	for key := range p.Seed.Weights {
		seedKeys = append(seedKeys, key)
	}
	sort.Strings(seedKeys)
	for _, key := range seedKeys {
		if _, ok := p.Schema.MetricIndex(key); !ok {
			errs = append(errs, fmt.Sprintf("seed weight %q not in schema %s", key, p.Schema.Name))
		}
	}
	if p.Seed.JitterMin > p.Seed.JitterMax {
		errs = append(errs, "seed jitter min must be <= max")
	}
	if p.Seed.Min > p.Seed.Max {
		errs = append(errs, "seed score min must be <= max")
	}
	if !p.Ladder.Valid() {
		errs = append(errs, "grade ladder thresholds must descend within 0-100")
	}
	if len(p.Streets) == 0 {
		errs = append(errs, "at least one street name is required")
	}
	if p.IDFormat == "" {
		errs = append(errs, "id format is required")
	}

	if len(errs) > 0 {
		return eris.Wrapf(model.ErrInvalidParams, "generator: profile %s: %s", p.Name, strings.Join(errs, "; "))
	}
	return nil
}
