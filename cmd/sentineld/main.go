// Command sentineld is the SentinelLite backend server. It loads a YAML
// configuration file (or falls back to flags), opens the configured
// storage layer — PostgreSQL when a DSN is set, a seeded in-memory store
// otherwise — serves the REST API, and shuts down gracefully on SIGTERM
// or SIGINT.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sentinellite/sentinel/internal/config"
	"github.com/sentinellite/sentinel/internal/server/rest"
	"github.com/sentinellite/sentinel/internal/server/storage"
)

func main() {
	var (
		configPath string
		httpAddr   string
		dsn        string
		jwtSecret  string
		logLevel   string
	)
	flag.StringVar(&configPath, "config", "", "path to YAML config file (overrides the other flags)")
	flag.StringVar(&httpAddr, "http-addr", ":8080", "HTTP listener address")
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (empty: seeded in-memory store, dev mode)")
	flag.StringVar(&jwtSecret, "jwt-secret", "", "secret used to sign login tokens")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug | info | warn | error")
	flag.Parse()

	var cfg *config.ServerConfig
	if configPath != "" {
		loaded, err := config.LoadServerConfig(configPath)
		if err != nil {
			slog.Error("failed to load config", slog.Any("error", err))
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg = &config.ServerConfig{
			HTTPAddr:  httpAddr,
			DSN:       dsn,
			JWTSecret: jwtSecret,
			TokenTTL:  config.Duration(12 * time.Hour),
			SeedLogs:  500,
			LogLevel:  logLevel,
		}
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("sentineld starting", slog.String("http_addr", cfg.HTTPAddr))

	if cfg.JWTSecret == "" {
		logger.Error("jwt secret is required (set -jwt-secret or jwt_secret in the config file)")
		os.Exit(1)
	}

	ctx := context.Background()

	// ── Storage ───────────────────────────────────────────────────────────────
	var store rest.Store
	if cfg.DSN != "" {
		pg, err := storage.NewPostgres(ctx, cfg.DSN)
		if err != nil {
			logger.Error("failed to open storage", slog.Any("error", err))
			os.Exit(1)
		}
		defer pg.Close()
		if err := pg.SeedDemo(ctx, time.Now().UTC(), cfg.SeedLogs); err != nil {
			logger.Error("failed to seed demo data", slog.Any("error", err))
			os.Exit(1)
		}
		store = pg
		logger.Info("PostgreSQL storage connected")
	} else {
		store = storage.NewMemory(time.Now().UTC(), cfg.SeedLogs)
		logger.Warn("no DSN configured; using seeded in-memory store (dev mode)")
	}

	// ── REST API server ───────────────────────────────────────────────────────
	srv := rest.NewServer(store, []byte(cfg.JWTSecret), cfg.TokenTTL.Std())
	handler := rest.NewRouter(srv, []byte(cfg.JWTSecret), logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", slog.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// ── Wait for shutdown signal or fatal error ───────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", slog.Any("error", err))
	}

	logger.Info("sentineld exited cleanly")
}

// newLogger constructs a *slog.Logger that writes JSON-structured log
// records to stderr at the requested minimum level.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
