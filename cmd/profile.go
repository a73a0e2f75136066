package main

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/site-scout/internal/anchor"
	"github.com/sells-group/site-scout/internal/config"
	"github.com/sells-group/site-scout/internal/generator"
	"github.com/sells-group/site-scout/internal/model"
)

// buildProfile resolves the generator profile and anchor catalog from
// configuration. A zero jitter_km keeps the profile's own spread.
func buildProfile(g config.GeneratorConfig) (generator.Profile, anchor.Catalog, error) {
	p, err := generator.LookupProfile(g.Profile)
	if err != nil {
		return generator.Profile{}, nil, err
	}

	if g.Sampling != "" {
		p.Sampling = generator.Sampling(g.Sampling)
	}
	tiers, err := g.Tiers()
	if err != nil {
		return generator.Profile{}, nil, eris.Wrap(err, "generate: tier multipliers")
	}
	if len(tiers) > 0 {
		p = p.WithTierMultipliers(tiers)
	}
	if err := checkMetricKeys(p, "floor", g.Floors); err != nil {
		return generator.Profile{}, nil, err
	}
	if err := checkMetricKeys(p, "cap", g.Caps); err != nil {
		return generator.Profile{}, nil, err
	}
	if len(g.Floors) > 0 {
		p = p.WithFloors(g.Floors)
	}
	if len(g.Caps) > 0 {
		p = p.WithCaps(g.Caps)
	}
	if g.JitterKM > 0 {
		p = p.WithJitterKM(g.JitterKM)
	}

	var catalog anchor.Catalog
	switch {
	case g.AnchorsFile != "":
		catalog, err = anchor.LoadFile(g.AnchorsFile)
	case g.Catalog != "":
		catalog, err = anchor.Builtin(g.Catalog)
	default:
		catalog, err = anchor.Builtin(p.Catalog)
	}
	if err != nil {
		return generator.Profile{}, nil, err
	}
	return p, catalog, nil
}

func checkMetricKeys(p generator.Profile, what string, m map[string]float64) error {
	for key := range m {
		if _, ok := p.Schema.MetricIndex(key); !ok {
			return eris.Wrapf(model.ErrInvalidParams,
				"generate: %s for unknown metric %q in profile %s", what, key, p.Name)
		}
	}
	return nil
}
