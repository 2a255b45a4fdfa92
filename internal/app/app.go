package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/sundayezeilo/georedirect/internal/config"
	"github.com/sundayezeilo/georedirect/internal/edge"
	"github.com/sundayezeilo/georedirect/internal/metrics"
	"github.com/sundayezeilo/georedirect/internal/redirect"
	"github.com/sundayezeilo/georedirect/internal/server"
	"github.com/sundayezeilo/georedirect/internal/store"
	"github.com/sundayezeilo/georedirect/internal/store/dynamo"
	"github.com/sundayezeilo/georedirect/internal/store/memory"
	"github.com/sundayezeilo/georedirect/internal/store/postgres"
	"github.com/sundayezeilo/georedirect/internal/telemetry"
)

// App holds the application dependencies and configuration.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DBPool   *pgxpool.Pool
	Resolver redirect.Resolver

	// Server is set by New, Edge by NewEdge.
	Server *server.Server
	Edge   *edge.Handler

	shutdownTracing telemetry.ShutdownFunc
}

// New initializes the long-running HTTP redirect service.
func New(ctx context.Context) (*App, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a, err := build(ctx, cfg)
	if err != nil {
		return nil, err
	}

	handler := redirect.NewHandler(redirect.HandlerConfig{
		Resolver:       a.Resolver,
		Policy:         policyFromConfig(cfg.Redirect),
		StaticSuffixes: cfg.Redirect.StaticSuffixes,
		CountryHeader:  cfg.Redirect.CountryHeader,
		Logger:         a.Logger,
	})
	a.Server = server.New(cfg, a.Logger, handler)

	a.Logger.Info("application initialized",
		"mode", "server",
		"port", cfg.Server.Port,
		"store", cfg.Store.Backend,
	)
	return a, nil
}

// NewEdge initializes the Lambda@Edge origin-request handler. It is called
// once per execution environment, so the store client is shared by every
// invocation.
func NewEdge(ctx context.Context) (*App, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.LoadEdge()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a, err := build(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a.Edge = edge.NewHandler(edge.HandlerConfig{
		Resolver:       a.Resolver,
		Policy:         policyFromConfig(cfg.Redirect),
		StaticSuffixes: cfg.Redirect.StaticSuffixes,
		CountryHeader:  cfg.Redirect.CountryHeader,
		Logger:         a.Logger,
	})

	a.Logger.Info("application initialized",
		"mode", "edge",
		"store", cfg.Store.Backend,
	)
	return a, nil
}

// build wires everything shared by both entry points.
func build(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := setupLogger(cfg.App.LogLevel)

	logger.Info("starting application",
		"env", cfg.App.Environment,
		"version", cfg.Observability.ServiceVersion,
	)

	if cfg.Observability.MetricsEnabled {
		metrics.Init()
	}

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}

	a := &App{
		Config:          cfg,
		Logger:          logger,
		shutdownTracing: shutdownTracing,
	}

	backend, pool, err := openStore(ctx, cfg, logger)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	a.DBPool = pool

	// Timeout sits outside Instrument so the recorded latency includes
	// lookups that were cut short.
	st := store.WithTimeout(store.Instrument(backend, cfg.Store.Backend), cfg.Store.LookupTimeout)

	a.Resolver = redirect.NewResolver(redirect.ResolverConfig{
		Store:  st,
		Policy: policyFromConfig(cfg.Redirect),
		Logger: logger,
	})

	return a, nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	if a.Server == nil {
		return errors.New("app was not built in server mode")
	}

	a.Logger.Info("server starting", "port", a.Config.Server.Port)

	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Info("database connection closed")
	}

	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			return fmt.Errorf("failed to flush traces: %w", err)
		}
	}

	return nil
}

func policyFromConfig(c config.RedirectConfig) redirect.Policy {
	return redirect.Policy{
		RedirectTTL:     c.RedirectTTL,
		NotFoundTTL:     c.NotFoundTTL,
		RootMode:        redirect.RootMode(c.RootMode),
		RootRedirectURL: c.RootRedirectURL,
		CacheMode:       redirect.CacheMode(c.CacheMode),
	}
}

// openStore returns the configured backend. The pool is non-nil only for
// the postgres backend and is owned by the caller.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (redirect.Store, *pgxpool.Pool, error) {
	switch cfg.Store.Backend {
	case config.BackendDynamoDB:
		client, err := dynamo.NewClient(ctx, dynamo.ClientConfig{
			Region:          cfg.Store.AWSRegion,
			EndpointURL:     cfg.Store.AWSEndpointURL,
			AccessKeyID:     cfg.Store.AccessKeyID,
			SecretAccessKey: cfg.Store.SecretAccessKey,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using dynamodb store",
			"table", cfg.Store.DynamoTable,
			"region", cfg.Store.AWSRegion,
		)
		return dynamo.New(client, dynamo.Config{
			Table:          cfg.Store.DynamoTable,
			ConsistentRead: cfg.Store.ConsistentRead,
		}), nil, nil

	case config.BackendPostgres:
		pool, err := connectDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		st := postgres.New(pool)
		if cfg.Database.AutoMigrate {
			if err := st.EnsureSchema(ctx); err != nil {
				pool.Close()
				return nil, nil, err
			}
			logger.Info("database schema ensured")
		}
		return st, pool, nil

	case config.BackendMemory:
		if cfg.Store.MemorySeedFile == "" {
			logger.Warn("memory store has no seed file, every lookup will miss")
			return memory.New(), nil, nil
		}
		st, err := memory.Load(cfg.Store.MemorySeedFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using memory store",
			"seed_file", cfg.Store.MemorySeedFile,
			"records", st.Len(),
		)
		return st, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// loadEnv loads .env file only in non-production environments.
func loadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "development" || env == "test" {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// setupLogger creates a structured logger based on the log level.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

// connectDatabase establishes a connection to the PostgreSQL database.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")

	return pool, nil
}
