package generator

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-scout/internal/anchor"
	"github.com/sells-group/site-scout/internal/model"
	"github.com/sells-group/site-scout/internal/rng"
)

// Generate synthesizes count records around the given anchors. The output is
// fully determined by (profile, anchors, count) and the state of src, so a
// freshly seeded source always yields the same dataset.
func Generate(p Profile, anchors anchor.Catalog, count int, src rng.Source) (*model.Dataset, error) {
	if count <= 0 {
		return nil, eris.Wrapf(model.ErrInvalidParams, "generator: count must be > 0 (got %d)", count)
	}
	if src == nil {
		return nil, eris.Wrap(model.ErrInvalidParams, "generator: random source is required")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	sampler, err := anchor.NewSampler(anchors)
	if err != nil {
		return nil, err
	}
	for _, a := range anchors {
		if _, ok := p.TierMultipliers[a.Tier]; !ok {
			return nil, eris.Wrapf(model.ErrInvalidParams, "generator: no multiplier for tier %d (anchor %s)", a.Tier, a.Name)
		}
	}

	log := zap.L().With(
		zap.String("profile", p.Name),
		zap.String("sampling", string(p.Sampling)),
		zap.Int("count", count),
		zap.Int("anchors", len(anchors)),
	)
	log.Debug("generator: starting")

	var picks []anchor.CityAnchor
	if p.Sampling == SamplingStratified {
		picks = stratified(anchors, count)
	}

	g := &synth{profile: p, src: src}
	ds := model.NewDataset(p.Schema, count)
	for i := 0; i < count; i++ {
		var a anchor.CityAnchor
		if picks != nil {
			a = picks[i]
		} else {
			a = sampler.Pick(src.Float64())
		}
		ds.Records = append(ds.Records, g.record(i, a))
	}

	if err := ds.Validate(); err != nil {
		return nil, eris.Wrap(err, "generator: validate output")
	}

	log.Info("generator: dataset generated", zap.Int("records", ds.Len()))
	return ds, nil
}

func stratified(anchors anchor.Catalog, count int) []anchor.CityAnchor {
	parts := anchors.Allocate(count)
	out := make([]anchor.CityAnchor, 0, count)
	for i, n := range parts {
		for j := 0; j < n; j++ {
			out = append(out, anchors[i])
		}
	}
	return out
}

type synth struct {
	profile Profile
	src     rng.Source
}

func (g *synth) record(i int, a anchor.CityAnchor) model.LocationRecord {
	p := g.profile
	factor := p.TierMultipliers[a.Tier]

	rec := model.LocationRecord{
		ID:        fmt.Sprintf(p.IDFormat, p.IDOffset+i),
		City:      a.Name,
		Region:    a.Region,
		Latitude:  rng.Normal(g.src, a.Latitude, p.JitterDeg),
		Longitude: rng.Normal(g.src, a.Longitude, p.JitterDeg),
		Metrics:   make([]float64, len(p.Schema.Metrics)),
	}

	for _, m := range p.Metrics {
		idx, _ := p.Schema.MetricIndex(m.Key)
		spec := p.Schema.Metrics[idx]
		rec.Metrics[idx] = g.metric(m, spec.Kind, factor)
	}

	rec.SeedScore = g.seedScore(rec.Metrics)
	rec.Score = rec.SeedScore
	rec.Grade, rec.Verdict = p.Ladder.Classify(rec.SeedScore)

	street := p.Streets[g.src.IntN(len(p.Streets))]
	number := rng.IntRange(g.src, 1, 200)
	rec.Address = fmt.Sprintf(p.AddressFormat, street, number, a.Name)

	return rec
}

func (g *synth) metric(m MetricGen, kind model.Kind, factor float64) float64 {
	var v float64
	switch m.Dist {
	case DistNormal:
		v = rng.Normal(g.src, m.Base*factor, m.StdDev)
	case DistUniform:
		v = rng.Uniform(g.src, m.Min, m.Max)
	case DistBernoulli:
		if rng.Bernoulli(g.src, m.P) {
			v = 1
		}
	}
	if kind == model.KindInteger {
		v = math.Trunc(v)
	}
	return clampMetric(v, m)
}

func clampMetric(v float64, m MetricGen) float64 {
	if v < m.Floor {
		v = m.Floor
	}
	if m.Cap != nil && v > *m.Cap {
		v = *m.Cap
	}
	return v
}

// seedScore applies the profile's fixed formula plus an integer jitter,
// truncates, and clamps the result.
func (g *synth) seedScore(metrics []float64) float64 {
	p := g.profile
	raw := p.Seed.Base
	for _, spec := range p.Schema.Metrics {
		w, ok := p.Seed.Weights[spec.Key]
		if !ok {
			continue
		}
		idx, _ := p.Schema.MetricIndex(spec.Key)
		raw += w * metrics[idx]
	}
	raw += float64(rng.IntRange(g.src, p.Seed.JitterMin, p.Seed.JitterMax))
	return math.Min(p.Seed.Max, math.Max(p.Seed.Min, math.Trunc(raw)))
}
