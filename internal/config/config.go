package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store backends.
const (
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	Store         StoreConfig
	Database      DatabaseConfig
	Redirect      RedirectConfig
	App           AppConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration. Only loaded by the
// long-running server.
type ServerConfig struct {
	Port            string        `envconfig:"SERVER_PORT" default:"8080"`
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"5s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"5s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}

// StoreConfig selects and configures the short link store. Lambda@Edge
// functions get no environment variables, so the defaults must describe the
// production table.
type StoreConfig struct {
	Backend       string        `envconfig:"STORE_BACKEND" default:"dynamodb"` // dynamodb, postgres, memory
	LookupTimeout time.Duration `envconfig:"STORE_LOOKUP_TIMEOUT" default:"300ms"`

	DynamoTable     string `envconfig:"DYNAMODB_TABLE" default:"url-shortener"`
	ConsistentRead  bool   `envconfig:"DYNAMODB_CONSISTENT_READ" default:"false"`
	AWSRegion       string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSEndpointURL  string `envconfig:"AWS_ENDPOINT_URL"` // LocalStack / dynamodb-local
	AccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`

	MemorySeedFile string `envconfig:"MEMORY_SEED_FILE"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	switch c.Backend {
	case BackendDynamoDB:
		if c.DynamoTable == "" {
			return fmt.Errorf("dynamodb table cannot be empty")
		}
		if c.AWSRegion == "" {
			return fmt.Errorf("aws region cannot be empty")
		}
		if c.AWSEndpointURL != "" {
			if err := validateAbsoluteURL(c.AWSEndpointURL); err != nil {
				return fmt.Errorf("invalid aws endpoint url: %w", err)
			}
		}
		if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
			return fmt.Errorf("aws access key id and secret access key must be set together")
		}
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("invalid store backend: %s (must be one of: dynamodb, postgres, memory)", c.Backend)
	}

	if c.LookupTimeout <= 0 {
		return fmt.Errorf("lookup timeout must be positive")
	}
	return nil
}

// DatabaseConfig holds database connection configuration. Only loaded when
// the postgres backend is selected.
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" required:"true"`
	Port        string `envconfig:"DB_PORT" required:"true"`
	User        string `envconfig:"DB_USER" required:"true"`
	Password    string `envconfig:"DB_PASSWORD" required:"true"`
	Name        string `envconfig:"DB_NAME" required:"true"`
	SSLMode     string `envconfig:"DB_SSLMODE" required:"true"`
	MaxConns    int32  `envconfig:"DB_MAX_CONNS" required:"true"`
	MinConns    int32  `envconfig:"DB_MIN_CONNS" required:"true"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.User == "" {
		return fmt.Errorf("user cannot be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("database name cannot be empty")
	}
	if c.MaxConns <= 0 {
		return fmt.Errorf("max connections must be positive")
	}
	if c.MinConns <= 0 {
		return fmt.Errorf("min connections must be positive")
	}
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("min connections (%d) cannot be greater than max connections (%d)", c.MinConns, c.MaxConns)
	}

	validSSLModes := map[string]bool{
		"disable":     true,
		"require":     true,
		"verify-ca":   true,
		"verify-full": true,
	}
	if !validSSLModes[c.SSLMode] {
		return fmt.Errorf("invalid SSL mode: %s (must be one of: disable, require, verify-ca, verify-full)", c.SSLMode)
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedirectConfig holds the resolution and response policy.
type RedirectConfig struct {
	RedirectTTL     time.Duration `envconfig:"REDIRECT_TTL" default:"300s"`
	NotFoundTTL     time.Duration `envconfig:"NOT_FOUND_TTL" default:"60s"`
	RootMode        string        `envconfig:"ROOT_MODE" default:"not_found"` // not_found, redirect
	RootRedirectURL string        `envconfig:"ROOT_REDIRECT_URL"`
	CacheMode       string        `envconfig:"CACHE_MODE" default:"max_age"` // max_age, private
	StaticSuffixes  []string      `envconfig:"STATIC_SUFFIXES" default:"favicon.ico"`
	CountryHeader   string        `envconfig:"COUNTRY_HEADER" default:"CloudFront-Viewer-Country"`
}

// Validate validates the redirect configuration.
func (c *RedirectConfig) Validate() error {
	if c.RedirectTTL < time.Second {
		return fmt.Errorf("redirect ttl must be at least 1s")
	}
	if c.NotFoundTTL < time.Second {
		return fmt.Errorf("not found ttl must be at least 1s")
	}

	switch c.RootMode {
	case "not_found":
	case "redirect":
		if c.RootRedirectURL == "" {
			return fmt.Errorf("root redirect url is required when root mode is redirect")
		}
		if err := validateAbsoluteURL(c.RootRedirectURL); err != nil {
			return fmt.Errorf("invalid root redirect url: %w", err)
		}
	default:
		return fmt.Errorf("invalid root mode: %s (must be one of: not_found, redirect)", c.RootMode)
	}

	switch c.CacheMode {
	case "max_age", "private":
	default:
		return fmt.Errorf("invalid cache mode: %s (must be one of: max_age, private)", c.CacheMode)
	}

	if c.CountryHeader == "" {
		return fmt.Errorf("country header cannot be empty")
	}
	return nil
}

// AppConfig holds application-specific configuration.
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"production"` // development, staging, production, test
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`     // debug, info, warn, error
}

// Validate validates the app configuration.
func (c *AppConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Environment)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// ObservabilityConfig holds configuration for tracing/metrics.
type ObservabilityConfig struct {
	Enabled           bool    `envconfig:"OTEL_ENABLED" default:"false"`
	ServiceName       string  `envconfig:"OTEL_SERVICE_NAME" default:"georedirect"`
	ServiceVersion    string  `envconfig:"OTEL_SERVICE_VERSION" default:"dev"`
	OTelEndpoint      string  `envconfig:"OTEL_ENDPOINT"`
	OTelInsecure      bool    `envconfig:"OTEL_INSECURE"`
	TracingSampleRate float64 `envconfig:"OTEL_TRACING_SAMPLE_RATE" default:"1.0"`
	MetricsEnabled    bool    `envconfig:"METRICS_ENABLED" default:"true"`
}

// Validate validates the observability configuration.
func (c *ObservabilityConfig) Validate() error {
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("tracing sample rate must be between 0 and 1, got %f", c.TracingSampleRate)
	}

	if c.Enabled {
		if c.ServiceName == "" {
			return fmt.Errorf("service name is required when observability is enabled")
		}
		if c.OTelEndpoint == "" {
			return fmt.Errorf("OTEL endpoint is required when observability is enabled")
		}
	}

	return nil
}

// Load loads the full configuration used by the HTTP server.
func Load() (*Config, error) {
	cfg, err := LoadEdge()
	if err != nil {
		return nil, err
	}

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load Server config: %w", err)
	}
	if err := cfg.Server.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Server config: %w", err)
	}

	return cfg, nil
}

// LoadEdge loads every section except Server. Used by the Lambda@Edge entry
// point, which has no listener of its own.
func LoadEdge() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process("", &cfg.App); err != nil {
		return nil, fmt.Errorf("failed to load App config: %w", err)
	}
	if err := cfg.App.Validate(); err != nil {
		return nil, fmt.Errorf("invalid App config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Store); err != nil {
		return nil, fmt.Errorf("failed to load Store config: %w", err)
	}
	if err := cfg.Store.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Store config: %w", err)
	}

	if cfg.Store.Backend == BackendPostgres {
		if err := envconfig.Process("", &cfg.Database); err != nil {
			return nil, fmt.Errorf("failed to load Database config: %w", err)
		}
		if err := cfg.Database.Validate(); err != nil {
			return nil, fmt.Errorf("invalid Database config: %w", err)
		}
	}

	if err := envconfig.Process("", &cfg.Redirect); err != nil {
		return nil, fmt.Errorf("failed to load Redirect config: %w", err)
	}
	if err := cfg.Redirect.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Redirect config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Observability); err != nil {
		return nil, fmt.Errorf("failed to load Observability config: %w", err)
	}
	if err := cfg.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Observability config: %w", err)
	}

	return cfg, nil
}

func validateAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
