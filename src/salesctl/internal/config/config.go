// Package config provides Viper-based configuration management for salesctl
package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config represents the complete salesctl configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// APIConfig points at the sales backend
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StoreConfig selects where the token and cart are kept between runs
type StoreConfig struct {
	Backend     string `mapstructure:"backend"`
	Path        string `mapstructure:"path"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// Load reads configuration from file and environment variables
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".salesctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/salesctl")
	}

	// SALESCTL_API_BASE_URL overrides api.base_url
	v.SetEnvPrefix("SALESCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "reading config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.timeout", 10*time.Second)

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.path", "$HOME/.config/salesctl/state.json")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_prefix", "salesctl:")

	v.SetDefault("logging.level", "info")

	v.SetDefault("output.colors", true)
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Errorf("invalid api base url: %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout <= 0 {
		return errors.Errorf("invalid api timeout: %s (must be positive)", cfg.API.Timeout)
	}

	validBackends := map[string]bool{"file": true, "redis": true, "memory": true}
	if !validBackends[cfg.Store.Backend] {
		return errors.Errorf("invalid store backend: %s (must be file, redis, or memory)", cfg.Store.Backend)
	}
	if cfg.Store.Backend == "file" && cfg.Store.Path == "" {
		return errors.New("store path is required for the file backend")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return errors.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}
	return nil
}

// StorePath returns the store path with environment variables expanded.
func (c *Config) StorePath() string {
	return os.ExpandEnv(c.Store.Path)
}
