package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/site-scout/internal/generator"
	"github.com/sells-group/site-scout/internal/model"
	"github.com/sells-group/site-scout/internal/rng"
	"github.com/sells-group/site-scout/internal/scorer"
	"github.com/sells-group/site-scout/internal/server"
	"github.com/sells-group/site-scout/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring API",
	Long: `Serve POST /v1/score over one dataset held in memory.

The dataset comes from --data (or dataset.path); without one, a dataset is
generated from the generator settings, which then need a seed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		f := cmd.Flags()
		if f.Changed("data") {
			cfg.Dataset.Path, _ = f.GetString("data")
		}
		if f.Changed("seed") {
			seed, _ := f.GetUint64("seed")
			cfg.Generator.Seed = &seed
		}
		if port, _ := f.GetInt("port"); port > 0 {
			cfg.Server.Port = port
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ds, err := serveDataset(ctx)
		if err != nil {
			return err
		}

		schemaWeights := scorer.DefaultWeights(ds.Schema).Merge(scorer.Weights(cfg.Scoring.Weights))
		srv, err := server.New(ds, server.Config{
			RateLimit:   cfg.Server.RateLimit,
			Burst:       cfg.Server.Burst,
			CORSOrigins: cfg.Server.CORSOrigins,
			Weights:     schemaWeights,
			Options: scorer.Options{
				Workers:    cfg.Scoring.Workers,
				Thresholds: scorer.Thresholds{Recommended: cfg.Scoring.Recommended, Potential: cfg.Scoring.Potential},
				Ladder:     model.DefaultLadder(),
			},
		})
		if err != nil {
			return err
		}
		return srv.ListenAndServe(ctx, cfg.Server.Port)
	},
}

// serveDataset loads dataset.path, or generates a dataset when no path is set.
func serveDataset(ctx context.Context) (*model.Dataset, error) {
	if cfg.Dataset.Path != "" {
		schema, err := model.LookupSchema(cfg.Dataset.Schema)
		if err != nil {
			return nil, err
		}
		return store.Load(ctx, cfg.Dataset.Path, schema)
	}

	p, catalog, err := buildProfile(cfg.Generator)
	if err != nil {
		return nil, err
	}
	ds, err := generator.Generate(p, catalog, cfg.Generator.Count, rng.New(*cfg.Generator.Seed))
	if err != nil {
		return nil, err
	}
	zap.L().Info("serve: using generated dataset",
		zap.String("profile", p.Name),
		zap.Uint64("seed", *cfg.Generator.Seed),
		zap.Int("records", ds.Len()),
	)
	return ds, nil
}

func init() {
	serveCmd.Flags().Int("port", 0, "server port (default from config)")
	serveCmd.Flags().String("data", "", "dataset file to serve (default dataset.path)")
	serveCmd.Flags().Uint64("seed", 0, "generate the served dataset with this seed when no file is given")
	rootCmd.AddCommand(serveCmd)
}
