// Package config provides Viper-based hierarchical configuration: defaults,
// then an optional YAML config file, then STMT_-prefixed environment
// variables, strongest last.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Files struct {
		MaxSizeBytes int64  `mapstructure:"max_size_bytes" yaml:"max_size_bytes"`
		ProfileDir   string `mapstructure:"profile_dir" yaml:"profile_dir"`
	} `mapstructure:"files" yaml:"files"`

	Database struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"database" yaml:"database"`

	Duplicates struct {
		LikelyThreshold    float64 `mapstructure:"likely_threshold" yaml:"likely_threshold"`
		InclusionThreshold float64 `mapstructure:"inclusion_threshold" yaml:"inclusion_threshold"`
		DateWindowDays     int     `mapstructure:"date_window_days" yaml:"date_window_days"`
	} `mapstructure:"duplicates" yaml:"duplicates"`

	Categories map[string]string `mapstructure:"categories" yaml:"categories"`
}

// Load initializes the configuration.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.statement-import")
	v.AddConfigPath(".statement-import")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STMT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadEnv loads a .env file from the working directory when one exists.
// Absence is not an error.
func LoadEnv() {
	_ = godotenv.Load()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("files.max_size_bytes", 10<<20)
	v.SetDefault("files.profile_dir", "profiles")

	v.SetDefault("database.path", "statement-import.db")

	v.SetDefault("duplicates.likely_threshold", 0.7)
	v.SetDefault("duplicates.inclusion_threshold", 0.5)
	v.SetDefault("duplicates.date_window_days", 3)
}

func validate(cfg *Config) error {
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", cfg.Log.Format)
	}
	if cfg.Duplicates.LikelyThreshold < cfg.Duplicates.InclusionThreshold {
		return fmt.Errorf("likely_threshold must be >= inclusion_threshold")
	}
	if cfg.Duplicates.LikelyThreshold > 1 {
		return fmt.Errorf("likely_threshold must be in [0,1]")
	}
	return nil
}
