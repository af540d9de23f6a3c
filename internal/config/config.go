package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/churn-cli/internal/dataset"
	"github.com/sells-group/churn-cli/internal/forest"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig   `yaml:"store" mapstructure:"store"`
	Split  SplitConfig   `yaml:"split" mapstructure:"split"`
	Forest forest.Config `yaml:"forest" mapstructure:"forest"`
	Log    LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SplitConfig configures the train/eval partition.
type SplitConfig struct {
	EvalFraction float64 `yaml:"eval_fraction" mapstructure:"eval_fraction"`
	Seed         int64   `yaml:"seed" mapstructure:"seed"`
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
	v.SetEnvPrefix("CHURN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "churn.db")
	v.SetDefault("split.eval_fraction", dataset.DefaultEvalFraction)
	v.SetDefault("split.seed", dataset.DefaultSeed)
	v.SetDefault("forest.estimators", forest.DefaultEstimators)
	v.SetDefault("forest.max_depth", forest.DefaultMaxDepth)
	v.SetDefault("forest.min_samples_split", forest.DefaultMinSamplesSplit)
	v.SetDefault("forest.min_rows", forest.DefaultMinRows)
	v.SetDefault("forest.seed", forest.DefaultSeed)
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

// Validate checks configuration invariants before a command runs.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			return eris.New("config: store.path required for sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url required for postgres driver")
		}
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}

	if c.Split.EvalFraction <= 0 || c.Split.EvalFraction >= 1 {
		return eris.Errorf("config: split.eval_fraction must be in (0,1) (got %g)", c.Split.EvalFraction)
	}
	if c.Forest.Estimators <= 0 {
		return eris.Errorf("config: forest.estimators must be positive (got %d)", c.Forest.Estimators)
	}
	if c.Forest.MinRows <= 1 {
		return eris.Errorf("config: forest.min_rows must be greater than 1 (got %d)", c.Forest.MinRows)
	}
	return nil
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
