// Package config loads the service configuration from defaults, an optional
// YAML file and FEEDAPP_* environment variables, in that order of
// precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "FEEDAPP_"
	// ConfigPathEnvVar names the variable holding the config file path.
	ConfigPathEnvVar = "FEEDAPP_CONFIG"
	// DefaultConfigPath is used when ConfigPathEnvVar is unset.
	DefaultConfigPath = "config.yaml"
	// DefaultBadgerPath is where the embedded database lives unless
	// storage.badger_path says otherwise.
	DefaultBadgerPath = "data/badger"

	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Storage  StorageConfig  `koanf:"storage"`
	Auth     AuthConfig     `koanf:"auth"`
	Feed     FeedConfig     `koanf:"feed"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver           string `koanf:"driver"`
	BadgerPath       string `koanf:"badger_path"`
	PostgresDSN      string `koanf:"postgres_dsn"`
	PostgresMaxConns int32  `koanf:"postgres_max_conns"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	Issuer    string        `koanf:"issuer"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

type FeedConfig struct {
	InterestLimit int `koanf:"interest_limit"`
	GeneralLimit  int `koanf:"general_limit"`
}

type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver:           DriverBadger,
			BadgerPath:       DefaultBadgerPath,
			PostgresMaxConns: 10,
		},
		Auth: AuthConfig{
			Issuer:   "feedapp",
			TokenTTL: 24 * time.Hour,
		},
		Feed: FeedConfig{
			InterestLimit: 10,
			GeneralLimit:  5,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. An empty path means the file named by
// FEEDAPP_CONFIG, or config.yaml when that exists.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// FEEDAPP_SERVER_READ_TIMEOUT -> server.read_timeout
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return DefaultConfigPath
	}
	return ""
}

// envTransformFunc strips the prefix and turns the first underscore into
// the section separator.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated environment values for slice
// settings.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	switch c.Storage.Driver {
	case DriverBadger:
		if c.Storage.BadgerPath == "" {
			errs = append(errs, errors.New("storage.badger_path is required for the badger driver"))
		}
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.postgres_dsn is required for the postgres driver"))
		}
		if c.Storage.PostgresMaxConns <= 0 {
			errs = append(errs, errors.New("storage.postgres_max_conns must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of badger, postgres", c.Storage.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Feed.InterestLimit <= 0 || c.Feed.GeneralLimit <= 0 {
		errs = append(errs, errors.New("feed limits must be positive"))
	}
	if c.Security.RateLimitRequests < 0 {
		errs = append(errs, errors.New("security.rate_limit_requests cannot be negative"))
	}
	if c.Security.RateLimitRequests > 0 && c.Security.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("security.rate_limit_window must be positive"))
	}
	return errors.Join(errs...)
}
