package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
	// LogFormat selects "json" or "console" encoding.
	LogFormat string `mapstructure:"log_format"`

	ProfilesFile string `mapstructure:"profiles_file"`
	EmittersFile string `mapstructure:"emitters_file"`

	StoreType string `mapstructure:"store_type"`
	StorePath string `mapstructure:"store_path"`

	FetchTimeoutSeconds int64         `mapstructure:"fetch_timeout_seconds"`
	FetchTimeout        time.Duration `mapstructure:"-"`
	MaxRedirects        int           `mapstructure:"max_redirects"`

	// Discovery heuristics. The defaults mirror the values the job has
	// always run with; they are configurable, not re-derived.
	RecencyWindowDays int           `mapstructure:"recency_window_days"`
	RecencyWindow     time.Duration `mapstructure:"-"`
	MaxFeedItems      int           `mapstructure:"max_feed_items"`
	FuzzyRatio        float64       `mapstructure:"fuzzy_ratio"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "release-scout")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("profiles_file", "./configs/providers.yaml")
	v.SetDefault("emitters_file", "./configs/emitters.yaml")
	v.SetDefault("store_type", "markdown")
	v.SetDefault("store_path", "./data/releases.md")
	v.SetDefault("fetch_timeout_seconds", 30)
	v.SetDefault("max_redirects", 5)
	v.SetDefault("recency_window_days", 7)
	v.SetDefault("max_feed_items", 10)
	v.SetDefault("fuzzy_ratio", 0.7)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.FetchTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid fetch_timeout_seconds (must be positive seconds)")
	}
	cfg.FetchTimeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second

	if cfg.MaxRedirects < 0 {
		return nil, fmt.Errorf("invalid max_redirects (must not be negative)")
	}
	if cfg.RecencyWindowDays <= 0 {
		return nil, fmt.Errorf("invalid recency_window_days (must be positive days)")
	}
	cfg.RecencyWindow = time.Duration(cfg.RecencyWindowDays) * 24 * time.Hour

	if cfg.MaxFeedItems <= 0 {
		return nil, fmt.Errorf("invalid max_feed_items (must be positive)")
	}
	if cfg.FuzzyRatio <= 0 || cfg.FuzzyRatio >= 1 {
		return nil, fmt.Errorf("invalid fuzzy_ratio (must be between 0 and 1)")
	}

	return &cfg, nil
}
