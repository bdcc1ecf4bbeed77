package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/mkallberg/pagesync/internal/config"
	"github.com/mkallberg/pagesync/internal/core"
	"github.com/mkallberg/pagesync/internal/logging"
	"github.com/mkallberg/pagesync/internal/notify"
	"github.com/mkallberg/pagesync/internal/notion"
	"github.com/mkallberg/pagesync/internal/store"
	"github.com/mkallberg/pagesync/internal/web"
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
		"db_max_conns", cfg.Database.MaxConns,
		"notion_database", cfg.Notion.DatabaseID,
		"mappings_file", cfg.Sync.MappingsFile,
	)

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
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

	rows, err := store.NewRowStore(pool, cfg.Sync.RowTable)
	if err != nil {
		slog.Error("failed to create row store", "error", err)
		os.Exit(1)
	}
	if err := rows.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure row table", "error", err)
		os.Exit(1)
	}
	slog.Info("row store ready", "table", cfg.Sync.RowTable)

	// Load and validate the column mappings
	mappings, err := config.LoadMappings(cfg.Sync.MappingsFile)
	if err != nil {
		slog.Error("failed to load column mappings", "error", err)
		os.Exit(1)
	}
	slog.Info("column mappings loaded", "file", cfg.Sync.MappingsFile, "count", len(mappings))

	pageIDSlot, err := core.ResolveColumn(cfg.Sync.PageIDColumn)
	if err != nil {
		slog.Error("failed to resolve page id column", "error", err)
		os.Exit(1)
	}

	client := notion.NewClient(notion.ClientOptions{
		Token:       cfg.Notion.Token,
		BaseURL:     cfg.Notion.BaseURL,
		APIVersion:  cfg.Notion.APIVersion,
		UserAgent:   "pagesync/1.0",
		HTTPClient:  &http.Client{Timeout: cfg.Notion.RequestTimeout},
		MaxRetries:  cfg.Notion.MaxRetries,
		MinInterval: cfg.Notion.MinRequestInterval,
	})

	// Verify credentials and the database schema before accepting syncs
	db, err := client.DescribeDatabase(ctx, cfg.Notion.DatabaseID)
	if err != nil {
		slog.Error("failed to describe Notion database", "database", cfg.Notion.DatabaseID, "error", err)
		os.Exit(1)
	}
	slog.Info("Notion database reachable", "database", db.ID, "properties", len(db.Properties))

	var notifier core.Notifier = notify.NewLogNotifier(slog.Default())
	if cfg.Sync.NotifyWebhookURL != "" {
		notifier = notify.Multi{
			notify.NewLogNotifier(slog.Default()),
			notify.NewWebhookNotifier(cfg.Sync.NotifyWebhookURL, slog.Default()),
		}
	}

	syncer, err := core.NewSyncer(core.SyncerOptions{
		DatabaseID:      cfg.Notion.DatabaseID,
		Mappings:        mappings,
		PageIDSlot:      pageIDSlot,
		Rows:            rows,
		Pages:           client,
		Notifier:        notifier,
		Logger:          slog.Default(),
		HistoryCapacity: cfg.Sync.HistorySize,
	})
	if err != nil {
		slog.Error("failed to create syncer", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(syncer, client, cfg)

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

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
