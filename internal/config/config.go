package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Search      SearchConfig      `mapstructure:"search"`
	Development DevelopmentConfig `mapstructure:"development"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// SearchConfig bounds the game tree. A zero limit is unbounded.
type SearchConfig struct {
	MaxDepth   int `mapstructure:"max_depth"`
	MaxBreadth int `mapstructure:"max_breadth"`
	Workers    int `mapstructure:"workers"`
}

type DevelopmentConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

func Load() (*Config, error) {
	return LoadFrom(".", "./config")
}

// LoadFrom reads config.yaml from the first of paths that has one, layered
// under NAIVECHESS_* environment variables and the defaults.
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	// Enable environment variables
	v.SetEnvPrefix("NAIVECHESS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and environment
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("search.max_depth", 3)
	v.SetDefault("search.max_breadth", 0)
	v.SetDefault("search.workers", 1)
	v.SetDefault("development.debug", false)
	v.SetDefault("development.log_level", "info")
}

func (c *Config) Validate() error {
	if c.Search.MaxDepth < 0 || c.Search.MaxBreadth < 0 {
		return fmt.Errorf("search limits must not be negative")
	}
	if c.Search.MaxDepth == 0 && c.Search.MaxBreadth == 0 {
		return fmt.Errorf("at least one of search.max_depth or search.max_breadth must be set")
	}
	if c.Search.Workers < 1 {
		return fmt.Errorf("search.workers must be at least 1, got %d", c.Search.Workers)
	}
	if _, err := zerolog.ParseLevel(c.Development.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Development.LogLevel, err)
	}
	return nil
}

// Level is the configured log level, forced to debug in debug mode.
func (c *Config) Level() zerolog.Level {
	if c.Development.Debug {
		return zerolog.DebugLevel
	}
	level, err := zerolog.ParseLevel(c.Development.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// Addr is the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
