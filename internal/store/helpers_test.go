package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-scout/internal/anchor"
	"github.com/sells-group/site-scout/internal/generator"
	"github.com/sells-group/site-scout/internal/model"
	"github.com/sells-group/site-scout/internal/rng"
	"github.com/sells-group/site-scout/internal/scorer"
)

func generated(t *testing.T, profile string, count int) *model.Dataset {
	t.Helper()
	p, err := generator.LookupProfile(profile)
	require.NoError(t, err)
	c, err := anchor.Builtin(p.Catalog)
	require.NoError(t, err)
	ds, err := generator.Generate(p, c, count, rng.New(17))
	require.NoError(t, err)
	return ds
}

func scored(t *testing.T, profile string, count int) *model.Dataset {
	t.Helper()
	ds := generated(t, profile, count)
	_, err := scorer.Score(ds, scorer.DefaultWeights(ds.Schema), scorer.DefaultOptions())
	require.NoError(t, err)
	return ds
}
