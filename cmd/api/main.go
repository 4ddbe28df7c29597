// Package main is the entrypoint for the mangadock API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/mangadock/mangadock/internal/auth"
	"github.com/mangadock/mangadock/internal/cache"
	"github.com/mangadock/mangadock/internal/config"
	"github.com/mangadock/mangadock/internal/handler"
	"github.com/mangadock/mangadock/internal/metrics"
	"github.com/mangadock/mangadock/internal/middleware"
	"github.com/mangadock/mangadock/internal/proxy"
	"github.com/mangadock/mangadock/internal/repository"
	"github.com/mangadock/mangadock/internal/server"
	"github.com/mangadock/mangadock/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Redis is optional unless it also holds the records.
	var cacheClient *cache.Cache
	if cfg.HasRedis() {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		logger.Info("connected to Redis")
	}

	store, err := openStore(ctx, cfg, cacheClient)
	if err != nil {
		logger.Error(
			"failed to open record store",
			slog.String("backend", cfg.StorageBackend),
			slog.String("error", sanitizeError(err, cfg.DatabaseURL, cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("record store ready", "backend", cfg.StorageBackend)

	tokens, err := auth.NewTokenService(cfg.SecretKey, cfg.Password, cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to initialize token service", "error", err)
		os.Exit(1)
	}

	metricsRecorder := metrics.NewInMemory()
	records := service.NewRecords(store, metricsRecorder)

	fetcher := proxy.NewFetcher(proxy.Config{
		Timeout:      cfg.ProxyTimeout,
		MaxBytes:     cfg.ProxyMaxBytes,
		AllowPrivate: cfg.ProxyAllowPrivate,
	})

	authCfg := middleware.AuthConfig{
		Logger:   logger,
		Verifier: tokens,
		Metrics:  metricsRecorder,
	}
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Enabled: cfg.RateLimitEnabled,
		RPS:     cfg.RateLimitRPS,
		Burst:   cfg.RateLimitBurst,
	}
	var cacheChecker handler.HealthChecker
	if cacheClient != nil {
		authCfg.Cache = cacheClient
		rateLimitCfg.Limiter = cacheClient
		cacheChecker = cacheClient
	} else if cfg.RateLimitEnabled {
		logger.Warn("rate limiting disabled: REDIS_URL not set")
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := handler.NewRouter(handler.RouterConfig{
		Logger:    logger,
		Metrics:   metricsRecorder,
		Index:     handler.New(),
		Health:    handler.NewHealthHandler(cfg.StorageBackend, store, cacheChecker),
		Exporter:  handler.NewMetricsHandler(metricsRecorder),
		Tokens:    handler.NewTokenHandler(tokens, metricsRecorder, logger),
		Favorites: handler.NewFavoritesHandler(service.NewFavoritesService(records), logger),
		Finished:  handler.NewFinishedHandler(service.NewFinishedService(records), logger),
		Users:     handler.NewUserHandler(service.NewUserService(records), logger),
		Proxy:     handler.NewProxyHandler(fetcher, metricsRecorder, logger),
		Auth:      authCfg,
		RateLimit: rateLimitCfg,
		CORS:      corsCfg,
		Security: middleware.SecurityConfig{
			IsDevelopment: cfg.IsDevelopment(),
		},
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	srv.OnShutdown("record store", func(context.Context) error {
		return store.Close()
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"backend", cfg.StorageBackend,
		"token_ttl", cfg.TokenTTL.String(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore opens the record store selected by STORAGE_BACKEND.
// The redis backend shares the cache's client.
func openStore(ctx context.Context, cfg *config.Config, cacheClient *cache.Cache) (repository.RecordStore, error) {
	switch cfg.StorageBackend {
	case config.BackendFile:
		return repository.NewFileStore(cfg.StorageDir)
	case config.BackendPostgres:
		return repository.NewPostgresStore(ctx, cfg.DatabaseURL)
	case config.BackendRedis:
		if cacheClient == nil {
			return nil, config.ErrMissingRedisURL
		}
		return repository.NewRedisStore(cacheClient.Client()), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.StorageBackend)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
