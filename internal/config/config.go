package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/solandes-viajes/cost-console/internal/rates"
	"github.com/solandes-viajes/cost-console/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig  `yaml:"store" mapstructure:"store"`
	Rates     rates.Table  `yaml:"rates" mapstructure:"rates"`
	RatesFile string       `yaml:"rates_file" mapstructure:"rates_file"`
	Review    ReviewConfig `yaml:"review" mapstructure:"review"`
	Eval      EvalConfig   `yaml:"eval" mapstructure:"eval"`
	Server    ServerConfig `yaml:"server" mapstructure:"server"`
	Log       LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the document-store backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	Path        string           `yaml:"path" mapstructure:"path"`     // sqlite file
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// ReviewConfig holds the review-unlock shared secret. An empty secret
// disables unlocking entirely.
type ReviewConfig struct {
	Secret string `yaml:"secret" mapstructure:"secret"`
}

// EvalConfig configures evaluation behavior.
type EvalConfig struct {
	MaxConcurrentGroups int `yaml:"max_concurrent_groups" mapstructure:"max_concurrent_groups"`
}

// ServerConfig configures the console HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	WriteRPS       float64  `yaml:"write_rps" mapstructure:"write_rps"`
	WriteBurst     int      `yaml:"write_burst" mapstructure:"write_burst"`
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
	v.SetEnvPrefix("COSTCONSOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "cost-console.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.write_rps", 10.0)
	v.SetDefault("server.write_burst", 20)
	v.SetDefault("eval.max_concurrent_groups", 4)
	v.SetDefault("rates.hotel_nightly_default", 0.0)
	v.SetDefault("rates.lunch", 0.0)
	v.SetDefault("rates.dinner", 0.0)
	v.SetDefault("rates.coordinator_per_day", 0.0)
	v.SetDefault("rates.coordinator_per_pax", 0.0)

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

	// A standalone rates file wins over config-embedded rates.
	if cfg.RatesFile != "" {
		t, err := rates.LoadFile(cfg.RatesFile)
		if err != nil {
			return nil, err
		}
		cfg.Rates = t
	}

	return &cfg, nil
}

// Validate checks the configuration for the given run mode. Commands
// that only read and evaluate use "eval"; the HTTP console additionally
// needs a usable listen port and limiter.
func (c *Config) Validate(mode string) error {
	var missing []string

	switch c.Store.Driver {
	case "", "sqlite":
		if c.Store.Path == "" {
			missing = append(missing, "store.path is required for sqlite")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url is required for postgres")
		}
	default:
		missing = append(missing, fmt.Sprintf("unknown store.driver %q", c.Store.Driver))
	}

	if c.Eval.MaxConcurrentGroups < 1 || c.Eval.MaxConcurrentGroups > 64 {
		missing = append(missing, "eval.max_concurrent_groups must be between 1 and 64")
	}

	switch mode {
	case "eval":
	case "serve":
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
		if c.Server.WriteRPS <= 0 {
			missing = append(missing, "server.write_rps must be > 0")
		}
		if c.Server.WriteBurst < 1 {
			missing = append(missing, "server.write_burst must be >= 1")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: invalid configuration:\n  - %s", strings.Join(missing, "\n  - "))
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
