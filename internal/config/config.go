package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset" mapstructure:"dataset"`
	Generator GeneratorConfig `yaml:"generator" mapstructure:"generator"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DatasetConfig selects the schema variant and the default input file.
type DatasetConfig struct {
	Schema string `yaml:"schema" mapstructure:"schema"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// GeneratorConfig configures synthetic dataset generation. An empty Sampling
// keeps the profile's own mode.
type GeneratorConfig struct {
	Profile         string             `yaml:"profile" mapstructure:"profile"`
	Count           int                `yaml:"count" mapstructure:"count"`
	Seed            *uint64            `yaml:"seed" mapstructure:"seed"`
	JitterKM        float64            `yaml:"jitter_km" mapstructure:"jitter_km"`
	Sampling        string             `yaml:"sampling" mapstructure:"sampling"`
	Catalog         string             `yaml:"catalog" mapstructure:"catalog"`
	AnchorsFile     string             `yaml:"anchors_file" mapstructure:"anchors_file"`
	TierMultipliers map[string]float64 `yaml:"tier_multipliers" mapstructure:"tier_multipliers"`
	Floors          map[string]float64 `yaml:"floors" mapstructure:"floors"`
	Caps            map[string]float64 `yaml:"caps" mapstructure:"caps"`
}

// ScoringConfig configures the weighted scoring model.
type ScoringConfig struct {
	Weights     map[string]float64 `yaml:"weights" mapstructure:"weights"`
	Recommended float64            `yaml:"recommended" mapstructure:"recommended"`
	Potential   float64            `yaml:"potential" mapstructure:"potential"`
	Workers     int                `yaml:"workers" mapstructure:"workers"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// ServerConfig configures the scoring API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst       int      `yaml:"burst" mapstructure:"burst"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// No default exists for the seed, so AutomaticEnv alone would never see it.
	_ = v.BindEnv("generator.seed")
	_ = v.BindEnv("store.database_url")

	// Defaults
	v.SetDefault("dataset.schema", "generic")
	v.SetDefault("generator.profile", "indonesia")
	v.SetDefault("generator.count", 10000)
	v.SetDefault("generator.jitter_km", 0)
	v.SetDefault("scoring.recommended", 70)
	v.SetDefault("scoring.potential", 40)
	v.SetDefault("scoring.workers", 4)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "site-scout.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.burst", 40)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command needs. Mode is one of generate,
// score, serve or store. All problems are reported together.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Dataset.Schema {
	case "generic", "density":
	default:
		errs = append(errs, fmt.Sprintf("dataset.schema %q is not generic or density", c.Dataset.Schema))
	}
	errs = append(errs, c.Scoring.problems()...)

	switch mode {
	case "generate":
		errs = append(errs, c.Generator.problems()...)
	case "score":
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if !(c.Server.RateLimit > 0) {
			errs = append(errs, "server.rate_limit must be > 0")
		}
		if c.Server.Burst < 1 {
			errs = append(errs, "server.burst must be >= 1")
		}
		if c.Dataset.Path == "" {
			if c.Generator.Seed == nil {
				errs = append(errs, "dataset.path or generator.seed is required")
			} else {
				errs = append(errs, c.Generator.problems()...)
			}
		}
	case "store":
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.Path == "" {
				errs = append(errs, "store.path is required for sqlite")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				errs = append(errs, "store.database_url is required for postgres")
			}
		default:
			errs = append(errs, fmt.Sprintf("store.driver %q is not sqlite or postgres", c.Store.Driver))
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (s ScoringConfig) problems() []string {
	var errs []string
	for _, key := range sortedKeys(s.Weights) {
		if w := s.Weights[key]; w < 0 || math.IsNaN(w) {
			errs = append(errs, fmt.Sprintf("scoring.weights.%s must be >= 0", key))
		}
	}
	if s.Potential < 0 || s.Recommended > 100 || s.Potential >= s.Recommended {
		errs = append(errs, "scoring thresholds must satisfy 0 <= potential < recommended <= 100")
	}
	if s.Workers < 1 || s.Workers > 64 {
		errs = append(errs, "scoring.workers must be between 1 and 64")
	}
	return errs
}

func (g GeneratorConfig) problems() []string {
	var errs []string
	if g.Count <= 0 {
		errs = append(errs, "generator.count must be > 0")
	}
	if g.JitterKM < 0 {
		errs = append(errs, "generator.jitter_km must be >= 0")
	}
	switch g.Sampling {
	case "", "weighted", "stratified":
	default:
		errs = append(errs, fmt.Sprintf("generator.sampling %q is not weighted or stratified", g.Sampling))
	}
	for _, key := range sortedKeys(g.Caps) {
		if c, ok := g.Floors[key]; ok && g.Caps[key] < c {
			errs = append(errs, fmt.Sprintf("generator.caps.%s must be >= its floor", key))
		}
	}
	if _, err := g.Tiers(); err != nil {
		errs = append(errs, err.Error())
	}
	return errs
}

// Tiers converts the configured tier multipliers to tier-keyed form.
func (g GeneratorConfig) Tiers() (map[int]float64, error) {
	out := make(map[int]float64, len(g.TierMultipliers))
	for _, key := range sortedKeys(g.TierMultipliers) {
		tier, err := strconv.Atoi(key)
		if err != nil || tier < 1 || tier > 3 {
			return nil, eris.Errorf("generator.tier_multipliers key %q is not a tier 1-3", key)
		}
		m := g.TierMultipliers[key]
		if !(m > 0) || math.IsInf(m, 0) {
			return nil, eris.Errorf("generator.tier_multipliers.%s must be > 0", key)
		}
		out[tier] = m
	}
	return out, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
