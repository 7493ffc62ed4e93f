// Package main is the entrypoint for the mywallet API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mywallet/mywallet/internal/auth"
	"github.com/mywallet/mywallet/internal/cache"
	"github.com/mywallet/mywallet/internal/config"
	"github.com/mywallet/mywallet/internal/handler"
	"github.com/mywallet/mywallet/internal/metrics"
	"github.com/mywallet/mywallet/internal/middleware"
	"github.com/mywallet/mywallet/internal/server"
	"github.com/mywallet/mywallet/internal/service"
	"github.com/mywallet/mywallet/internal/storage"
	"github.com/mywallet/mywallet/internal/sweeper"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	db, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to open database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database", "driver", storage.Driver(cfg.DatabaseURL))

	// Session store: the database unless Redis is requested
	var sessionStore service.SessionStore = db
	var redisCheck handler.HealthChecker
	var redisClient *cache.Cache
	if cfg.SessionStore == config.SessionStoreRedis {
		redisClient, err = cache.New(ctx, cfg.RedisURL, cache.Options{
			PoolSize:  cfg.RedisPoolSize,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			_ = db.Close()
			os.Exit(1)
		}
		sessionStore = redisClient
		redisCheck = redisClient
		logger.Info("connected to Redis")
	}

	hasher, err := auth.NewHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		logger.Error("invalid password hasher", "error", err)
		os.Exit(1)
	}

	// Initialize services
	recorder := metrics.NewInMemory()
	sessions := service.NewSessionManager(sessionStore, cfg.SessionTTL, recorder)
	userService := service.NewUserService(db, sessions, hasher, recorder)
	ledgerService := service.NewLedgerService(db, recorder)

	// Setup router
	r := setupRouter(routes{
		root:     handler.New(),
		health:   handler.NewHealthHandler(db, redisCheck, logger),
		metrics:  handler.NewMetricsHandler(recorder),
		users:    handler.NewUserHandler(userService, logger),
		entries:  handler.NewEntryHandler(ledgerService, logger),
		sessions: sessions,
		recorder: recorder,
	}, cfg, logger)

	// Create and run server
	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Stores close last, after everything that uses them (LIFO)
	srv.OnShutdown("database", func(context.Context) error { return db.Close() })
	if redisClient != nil {
		srv.OnShutdown("redis", func(context.Context) error { return redisClient.Close() })
	} else if cfg.SessionTTL > 0 {
		sw := sweeper.New(db, logger, cfg.SessionSweepInterval)
		go func() {
			if err := sw.Run(ctx); err != nil {
				logger.Error("session sweeper error", "error", err)
			}
		}()
		srv.OnShutdown("session-sweeper", sw.Shutdown)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"session_store", cfg.SessionStore,
		"password_hasher", cfg.PasswordHasher,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if strings.EqualFold(cfg.LogFormat, "json") {
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

// routes groups the handlers mounted by setupRouter.
type routes struct {
	root     *handler.Handler
	health   *handler.HealthHandler
	metrics  *handler.MetricsHandler
	users    *handler.UserHandler
	entries  *handler.EntryHandler
	sessions middleware.SessionResolver
	recorder metrics.Recorder
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(rt routes, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", rt.health.Healthz)
	r.Get("/readyz", rt.health.Readyz)
	r.Get("/metrics", rt.metrics.Metrics)

	// Root info endpoint
	r.Get("/", rt.root.Hello)

	// Accounts
	r.Post("/users", rt.users.Register)
	r.Get("/users", rt.users.List)
	r.Post("/sign-in", rt.users.SignIn)

	// Ledger (requires a session token)
	r.Route("/data", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Logger:   logger,
			Sessions: rt.sessions,
			Metrics:  rt.recorder,
		}))

		r.Get("/", rt.entries.List)
		r.Post("/", rt.entries.Create)
		r.Get("/summary", rt.entries.Summary)
		r.Delete("/{id}", rt.entries.Delete)
	})

	// 404 and 405 handlers
	r.NotFound(rt.root.NotFound)
	r.MethodNotAllowed(rt.root.MethodNotAllowed)

	return r
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
