package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/honeycombo/combo-service/internal/catalogcache"
	"github.com/honeycombo/combo-service/internal/combo"
	"github.com/honeycombo/combo-service/internal/database"
	"github.com/honeycombo/combo-service/internal/http/ratelimit"
	"github.com/honeycombo/combo-service/internal/middleware"
	"github.com/honeycombo/combo-service/internal/telemetry"
)

// Catalog sources
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceURL      = "url"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig                 `mapstructure:"server"`
	Database  database.Config              `mapstructure:"database"`
	RateLimit middleware.RateLimiterConfig `mapstructure:"rate_limit"`
	Catalog   CatalogConfig                `mapstructure:"catalog"`
	Engine    combo.Config                 `mapstructure:"engine"`
	Logging   LoggingConfig                `mapstructure:"logging"`
	Telemetry telemetry.Config             `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	Host           string        `mapstructure:"host"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	InternalAPIKey string        `mapstructure:"internal_api_key"`
}

// CatalogConfig selects where the catalog comes from and how it is cached
type CatalogConfig struct {
	Source       string              `mapstructure:"source"` // file | postgres | url
	Path         string              `mapstructure:"path"`   // file or directory for the file source
	URLs         []string            `mapstructure:"urls"`   // CSV/XLSX exports for the url source
	DefaultBrand string              `mapstructure:"default_brand"`
	Cache        catalogcache.Config `mapstructure:"cache"`
	Fetch        ratelimit.Config    `mapstructure:"fetch"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := loadEnvFile(); err != nil {
		// .env is optional
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.SetEnvPrefix("COMBO_SERVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Catalog.Source {
	case SourceFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for the file source")
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url (or DATABASE_URL) is required for the postgres source")
		}
	case SourceURL:
		if len(c.Catalog.URLs) == 0 {
			return fmt.Errorf("catalog.urls is required for the url source")
		}
		if err := c.Catalog.Fetch.Validate(); err != nil {
			return fmt.Errorf("catalog.fetch: %w", err)
		}
	default:
		return fmt.Errorf("catalog.source must be one of %q, %q, %q, got %q", SourceFile, SourcePostgres, SourceURL, c.Catalog.Source)
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstSize <= 0 {
		return fmt.Errorf("rate_limit.requests_per_second and rate_limit.burst_size must be positive")
	}
	return nil
}

// loadEnvFile loads the first .env file found by parsing KEY=VALUE lines
// into the process environment
func loadEnvFile() error {
	for _, path := range []string{".", "./config"} {
		envFile := fmt.Sprintf("%s/.env", path)
		if _, err := os.Stat(envFile); err == nil {
			return loadDotEnvFile(envFile)
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads a .env file and sets environment variables that are
// not already set
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), "\"'")
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// bindEnvVars binds unprefixed environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Database
	v.BindEnv("database.url", "COMBO_SERVICE_DATABASE_URL", "DATABASE_URL")

	// Server
	v.BindEnv("server.port", "COMBO_SERVICE_SERVER_PORT", "PORT")
	v.BindEnv("server.host", "COMBO_SERVICE_SERVER_HOST", "HOST")
	v.BindEnv("server.internal_api_key", "COMBO_SERVICE_SERVER_INTERNAL_API_KEY", "INTERNAL_API_KEY")

	// Logging
	v.BindEnv("logging.level", "COMBO_SERVICE_LOGGING_LEVEL", "LOG_LEVEL")

	// Catalog
	v.BindEnv("catalog.source", "COMBO_SERVICE_CATALOG_SOURCE", "CATALOG_SOURCE")
	v.BindEnv("catalog.path", "COMBO_SERVICE_CATALOG_PATH", "CATALOG_PATH")
	v.BindEnv("catalog.urls", "COMBO_SERVICE_CATALOG_URLS", "CATALOG_URLS")

	// Telemetry
	v.BindEnv("telemetry.endpoint", "COMBO_SERVICE_TELEMETRY_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 5*time.Second)

	// Database defaults
	db := database.DefaultConfig()
	v.SetDefault("database.max_connections", db.MaxConnections)
	v.SetDefault("database.min_connections", db.MinConnections)
	v.SetDefault("database.max_conn_lifetime", db.MaxConnLifetime)
	v.SetDefault("database.max_conn_idle_time", db.MaxConnIdleTime)

	// Rate limit defaults
	rl := middleware.DefaultRateLimiterConfig()
	v.SetDefault("rate_limit.requests_per_second", rl.RequestsPerSecond)
	v.SetDefault("rate_limit.burst_size", rl.BurstSize)
	v.SetDefault("rate_limit.idle_ttl", rl.IdleTTL)

	// Catalog defaults
	cache := catalogcache.DefaultConfig()
	v.SetDefault("catalog.source", SourceFile)
	v.SetDefault("catalog.path", "./data")
	v.SetDefault("catalog.default_brand", "")
	v.SetDefault("catalog.cache.ttl", cache.TTL)
	v.SetDefault("catalog.cache.refresh_jitter", cache.RefreshJitter)
	v.SetDefault("catalog.cache.load_timeout", cache.LoadTimeout)
	v.SetDefault("catalog.cache.breaker_failures", cache.BreakerFailures)
	v.SetDefault("catalog.cache.breaker_timeout", cache.BreakerTimeout)
	fetch := ratelimit.DefaultConfig()
	v.SetDefault("catalog.fetch.requests_per_second", fetch.RequestsPerSecond)
	v.SetDefault("catalog.fetch.max_retries", fetch.MaxRetries)
	v.SetDefault("catalog.fetch.initial_backoff_ms", fetch.InitialBackoffMs)
	v.SetDefault("catalog.fetch.max_backoff_ms", fetch.MaxBackoffMs)

	// Engine defaults
	engine := combo.Defaults()
	v.SetDefault("engine.price_ceiling_ratio", engine.PriceCeilingRatio)
	v.SetDefault("engine.superset_size", engine.SupersetSize)
	v.SetDefault("engine.sample_size", engine.SampleSize)
	v.SetDefault("engine.starch_pool_size", engine.StarchPoolSize)
	v.SetDefault("engine.side_pool_size", engine.SidePoolSize)
	v.SetDefault("engine.max_seeds", engine.MaxSeeds)
	v.SetDefault("engine.max_accepted", engine.MaxAccepted)
	v.SetDefault("engine.result_limit", engine.ResultLimit)
	v.SetDefault("engine.min_members", engine.MinMembers)
	v.SetDefault("engine.max_members", engine.MaxMembers)
	v.SetDefault("engine.top_up_threshold", engine.TopUpThreshold)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", telemetry.DefaultServiceName)
	v.SetDefault("telemetry.export_interval", time.Minute)
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// GetDatabaseURL returns the database URL from config or environment
func GetDatabaseURL() string {
	if cfg := Get(); cfg != nil && cfg.Database.URL != "" {
		return cfg.Database.URL
	}
	return os.Getenv("DATABASE_URL")
}
