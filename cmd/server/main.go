package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"orderbridge/internal/catalog"
	"orderbridge/internal/config"
	"orderbridge/internal/export"
	"orderbridge/internal/history"
	"orderbridge/internal/importer"
	"orderbridge/internal/logging"
	"orderbridge/internal/lyra"
	"orderbridge/internal/mapping"
	"orderbridge/internal/metrics"
	"orderbridge/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"lyra_url", cfg.Lyra.URL,
		"export_max_pages", cfg.Export.MaxPages,
		"history_enabled", cfg.Database.URL != "",
	)

	ctx := context.Background()

	// The import history ledger only runs when a database is configured
	var store *history.Store
	if cfg.Database.URL != "" {
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			slog.Error("failed to parse database URL", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to ping database", "error", err)
			os.Exit(1)
		}

		store = history.New(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare import history schema", "error", err)
			os.Exit(1)
		}
		slog.Info("import history ledger enabled")
	}

	// Column-alias profile: built-in unless overridden
	profile := mapping.Default()
	if cfg.Upload.MappingProfile != "" {
		profile, err = mapping.Load(cfg.Upload.MappingProfile)
		if err != nil {
			slog.Error("failed to load mapping profile", "path", cfg.Upload.MappingProfile, "error", err)
			os.Exit(1)
		}
		slog.Info("loaded mapping profile", "path", cfg.Upload.MappingProfile)
	}

	client := lyra.New(cfg.Lyra.URL, cfg.Lyra.Token, cfg.Lyra.Timeout)
	cat := catalog.New(client, cfg.Lyra.CatalogPageSize)
	m := metrics.New()
	imp := importer.New(client, cat, profile, cfg.Lyra.FulfilmentClientID, m)
	exp := &export.Driver{Client: client, MaxPages: cfg.Export.MaxPages, Metrics: m}

	server := web.NewServer(cfg, client, cat, imp, exp, store, m)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
