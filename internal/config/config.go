package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the logbook service
type Config struct {
	AppEnv       string
	Log          LogConfig
	Server       ServerConfig
	Database     DatabaseConfig
	Cache        CacheConfig
	Collaborator CollaboratorConfig
	Ingest       IngestConfig
}

// LogConfig.Level accepts zap level names; empty keeps the environment preset.
type LogConfig struct {
	Level string
}

type ServerConfig struct {
	Addr           string
	RateLimit      float64
	RateBurst      int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type CacheConfig struct {
	Backend       string
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// CollaboratorConfig configures the column-suggestion and aircraft-inference service.
type CollaboratorConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

type IngestConfig struct {
	SampleRows         int
	DefaultTimezone    string
	ResolveConcurrency int
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Load reads .env, an optional config.yaml and FLIGHTLOG_* environment variables.
func Load() (*Config, error) {
	// A missing .env is fine outside local development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/logbook")
	v.AddConfigPath(".")

	if configPath := os.Getenv("FLIGHTLOG_CONFIG_PATH"); configPath != "" {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("FLIGHTLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("log.level", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	v.SetDefault("collaborator.base_url", "http://localhost:9000")
	v.SetDefault("collaborator.api_key", "")
	v.SetDefault("collaborator.timeout", 15*time.Second)
	v.SetDefault("collaborator.rate_limit", 5.0)
	v.SetDefault("collaborator.rate_burst", 5)

	v.SetDefault("ingest.sample_rows", 5)
	v.SetDefault("ingest.default_timezone", "UTC")
	v.SetDefault("ingest.resolve_concurrency", 4)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppEnv: v.GetString("app_env"),
		Log:    LogConfig{Level: strings.ToLower(v.GetString("log.level"))},
		Server: ServerConfig{
			Addr:           v.GetString("server.addr"),
			RateLimit:      v.GetFloat64("server.rate_limit"),
			RateBurst:      v.GetInt("server.rate_burst"),
			AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("database.driver")),
			DSN:             v.GetString("database.dsn"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Cache: CacheConfig{
			Backend:       strings.ToLower(v.GetString("cache.backend")),
			TTL:           v.GetDuration("cache.ttl"),
			RedisAddr:     v.GetString("cache.redis_addr"),
			RedisPassword: v.GetString("cache.redis_password"),
			RedisDB:       v.GetInt("cache.redis_db"),
		},
		Collaborator: CollaboratorConfig{
			BaseURL:   strings.TrimRight(v.GetString("collaborator.base_url"), "/"),
			APIKey:    v.GetString("collaborator.api_key"),
			Timeout:   v.GetDuration("collaborator.timeout"),
			RateLimit: v.GetFloat64("collaborator.rate_limit"),
			RateBurst: v.GetInt("collaborator.rate_burst"),
		},
		Ingest: IngestConfig{
			SampleRows:         v.GetInt("ingest.sample_rows"),
			DefaultTimezone:    v.GetString("ingest.default_timezone"),
			ResolveConcurrency: v.GetInt("ingest.resolve_concurrency"),
		},
	}
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("invalid database driver: %s (must be postgres or sqlite)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	switch c.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid cache backend: %s (must be memory or redis)", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be greater than 0")
	}

	if c.Collaborator.BaseURL == "" {
		return fmt.Errorf("collaborator.base_url is required")
	}
	if c.Collaborator.Timeout <= 0 {
		return fmt.Errorf("collaborator.timeout must be greater than 0")
	}
	if c.Collaborator.RateLimit <= 0 || c.Collaborator.RateBurst <= 0 {
		return fmt.Errorf("collaborator.rate_limit and collaborator.rate_burst must be greater than 0")
	}

	if c.Ingest.SampleRows <= 0 {
		return fmt.Errorf("ingest.sample_rows must be greater than 0")
	}
	if c.Ingest.ResolveConcurrency <= 0 {
		return fmt.Errorf("ingest.resolve_concurrency must be greater than 0")
	}
	if _, err := c.Ingest.Location(); err != nil {
		return err
	}

	return nil
}

// Location returns the zone applied to timestamps without one, or nil when unset.
func (c IngestConfig) Location() (*time.Location, error) {
	if c.DefaultTimezone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid ingest.default_timezone %q: %w", c.DefaultTimezone, err)
	}
	return loc, nil
}
