// Package config loads runtime configuration from defaults, an optional
// YAML file, a .env file, TRACKER_* environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"crypto-tracker/internal/coingecko"
	"crypto-tracker/internal/leaderboard"
	"crypto-tracker/internal/storage"
	"crypto-tracker/internal/storage/file"
	"crypto-tracker/internal/storage/redis"
	"crypto-tracker/internal/storage/sqlite"
)

// EnvPrefix prefixes every environment variable ("api.timeout" is read
// from TRACKER_API_TIMEOUT).
const EnvPrefix = "TRACKER"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration for the application.
type Config struct {
	API         APIConfig         `mapstructure:"api" yaml:"api"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard" yaml:"leaderboard"`
	Storage     StorageConfig     `mapstructure:"storage" yaml:"storage"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

// APIConfig configures the price provider client.
type APIConfig struct {
	BaseURL         string        `mapstructure:"base_url" yaml:"base_url"`
	RequestInterval time.Duration `mapstructure:"request_interval" yaml:"request_interval"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries" yaml:"max_retries"`
	UserAgent       string        `mapstructure:"user_agent" yaml:"user_agent"`
}

type LeaderboardConfig struct {
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// StorageConfig selects and configures the watchlist backend.
type StorageConfig struct {
	Backend  string         `mapstructure:"backend" yaml:"backend"`
	File     FileConfig     `mapstructure:"file" yaml:"file"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite" yaml:"sqlite"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
}

type FileConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Key      string `mapstructure:"key" yaml:"key"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// keys lists every configuration key, for env binding.
var keys = []string{
	"api.base_url", "api.request_interval", "api.timeout", "api.max_retries", "api.user_agent",
	"leaderboard.page_size",
	"storage.backend", "storage.file.path", "storage.postgres.dsn", "storage.sqlite.path",
	"storage.redis.addr", "storage.redis.password", "storage.redis.db", "storage.redis.key",
	"server.addr",
	"log.level", "log.format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", coingecko.DefaultBaseURL)
	v.SetDefault("api.request_interval", coingecko.DefaultRequestInterval)
	v.SetDefault("api.timeout", coingecko.DefaultTimeout)
	v.SetDefault("api.max_retries", 0)
	v.SetDefault("api.user_agent", coingecko.DefaultUserAgent)

	v.SetDefault("leaderboard.page_size", leaderboard.DefaultPageSize)

	v.SetDefault("storage.backend", storage.BackendFile)
	v.SetDefault("storage.file.path", file.DefaultPath)
	v.SetDefault("storage.postgres.dsn", "")
	v.SetDefault("storage.sqlite.path", sqlite.DefaultPath)
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.key", redis.DefaultKey)

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit YAML file. When empty, tracker.yaml in the
	// working directory is used if present.
	ConfigFile string
	// EnvFile is loaded into the environment if it exists. Defaults to .env.
	EnvFile string
	// Flags, when set, overrides keys for every flag in FlagKeys that was
	// registered on it.
	Flags *pflag.FlagSet
}

// Load reads configuration. Precedence, highest first: flags, environment,
// config file, defaults.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// A missing .env file is normal; existing env vars are never overridden.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v, keys...)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("tracker")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindEnv is a helper to bind multiple keys at once
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}

// Validate checks value ranges and backend requirements.
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url must not be empty"))
	}
	if c.API.RequestInterval < 0 {
		errs = append(errs, fmt.Errorf("api.request_interval must not be negative, got %s", c.API.RequestInterval))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout))
	}
	if c.API.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("api.max_retries must not be negative, got %d", c.API.MaxRetries))
	}
	if c.Leaderboard.PageSize < 1 || c.Leaderboard.PageSize > coingecko.MaxPerPage {
		errs = append(errs, fmt.Errorf("leaderboard.page_size must be in 1..%d, got %d", coingecko.MaxPerPage, c.Leaderboard.PageSize))
	}

	switch c.Storage.Backend {
	case storage.BackendPostgres:
		if c.Storage.Postgres.DSN == "" {
			errs = append(errs, errors.New("storage.postgres.dsn is required for the postgres backend"))
		}
	case storage.BackendRedis:
		if c.Storage.Redis.Addr == "" {
			errs = append(errs, errors.New("storage.redis.addr is required for the redis backend"))
		}
	default:
		if !slices.Contains(storage.Backends, c.Storage.Backend) {
			errs = append(errs, fmt.Errorf("storage.backend %q is not one of %s", c.Storage.Backend, strings.Join(storage.Backends, ", ")))
		}
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %v", err))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
