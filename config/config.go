package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "SBANKEN"
	DefaultBaseURL = "https://api.sbanken.no"
	DefaultTimeout = 30 * time.Second
	DefaultThreads = 5
)

// Config is the merged view of config.yaml and SBANKEN_* environment variables.
type Config struct {
	BaseURL   string        `mapstructure:"base_url"`
	ClientID  string        `mapstructure:"client_id"`
	Secret    string        `mapstructure:"secret"`
	UserID    string        `mapstructure:"user_id"`
	DBPath    string        `mapstructure:"db_path"`
	LogLevel  string        `mapstructure:"log_level"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	Threads   int           `mapstructure:"threads"`
}

// HasCredentials reports whether both halves of the client credentials are configured.
func (c Config) HasCredentials() bool {
	return c.ClientID != "" && c.Secret != ""
}

// DefaultSearchPaths returns the directories searched for config.yaml: the working
// directory, then ~/.sbanken.
func DefaultSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".sbanken"))
	}
	return paths
}

// Load reads configuration from the first config.yaml found in searchPaths (or the
// default paths when none are given) and overlays the environment.
// A missing config file is not an error; a malformed one is.
func Load(searchPaths ...string) (Config, error) {
	v := viper.New()
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("rate_limit", 0)
	v.SetDefault("threads", DefaultThreads)
	v.SetDefault("log_level", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(searchPaths) == 0 {
		searchPaths = DefaultSearchPaths()
	}
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("Loaded configuration file")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// explicit bindings so Unmarshal sees env-only keys
	for _, key := range []string{"base_url", "client_id", "secret", "user_id", "db_path", "log_level", "timeout", "rate_limit", "threads"} {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit < 0 {
		return Config{}, fmt.Errorf("rate_limit must not be negative, got %v", c.RateLimit)
	}
	return c, nil
}
