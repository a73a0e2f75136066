package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/site-scout/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "site-scout",
	Short: "Synthetic location datasets and weighted site scoring",
	Long: `Generates reproducible synthetic location datasets clustered around city
anchors, and ranks candidate sites with a weighted min-max scoring model.

Scores are relative: every ai_score is computed against the other records in
the same working set, so filtering the set before scoring changes the result.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		pf := cmd.Flags()
		if pf.Changed("log-level") {
			cfg.Log.Level, _ = pf.GetString("log-level")
		}
		if pf.Changed("log-format") {
			cfg.Log.Format, _ = pf.GetString("log-format")
		}
		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "override log.format (json or console)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
