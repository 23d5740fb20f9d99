// Command sheetlensd is the sheetlens API service. It serves the workspace,
// file history, comparison and share endpoints plus a health check.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/sheetlens/sheetlens/internal/analyzer"
	"github.com/sheetlens/sheetlens/internal/api"
	"github.com/sheetlens/sheetlens/internal/notify"
	"github.com/sheetlens/sheetlens/internal/platform"
	"github.com/sheetlens/sheetlens/internal/share"
	"github.com/sheetlens/sheetlens/internal/storage"
	"github.com/sheetlens/sheetlens/internal/workspace"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := platform.LoadServerConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := platform.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	defer zap.ReplaceGlobals(logger)()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("sheetlensd stopped", zap.Error(err))
	}
}

func run(cfg *platform.ServerConfig, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifications := notify.NewRegistry()
	notifications.Register("log", notify.NewLogSink(logger.Named("notify")))
	defer notifications.Close()

	wsRepo, shareRepo, closeDB, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	blobs, err := storage.New(ctx, cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	logger.Info("storage ready", zap.String("backend", cfg.Storage.Backend))

	wsSvc := workspace.NewService(wsRepo, blobs,
		workspace.WithSink(notifications),
		workspace.WithLogger(logger.Named("workspace")))
	shareSvc := share.NewService(shareRepo,
		share.WithTTL(cfg.ShareTTL()),
		share.WithRetention(cfg.ShareRetention()),
		share.WithSink(notifications),
		share.WithLogger(logger.Named("share")))
	client := analyzer.NewClient(cfg.Analyzer.URL, cfg.AnalyzerTimeout(),
		analyzer.WithMaxUploadSize(cfg.MaxUploadBytes()),
		analyzer.WithLogger(logger.Named("analyzer")))

	handler := api.NewHandler(api.Config{
		Workspaces: wsSvc,
		Shares:     shareSvc,
		Analyzer:   client,
		Cache:      api.NewAnalysisCache(cfg.CacheSize),
		Sink:       notifications,
		Logger:     logger.Named("api"),
		MaxUpload:  cfg.MaxUploadBytes(),
	})

	if cfg.PurgeInterval() > 0 {
		go shareSvc.RunPurger(ctx, cfg.PurgeInterval())
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Router(cfg.APIKey),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting sheetlensd", zap.String("addr", srv.Addr), zap.Bool("auth", cfg.APIKey != ""))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	return nil
}

// openRepositories connects to Postgres and migrates the schema. Without a
// DATABASE_URL everything is kept in memory, which is enough for local use.
func openRepositories(ctx context.Context, cfg *platform.ServerConfig, logger *zap.Logger) (workspace.Repository, share.Repository, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set; using in-memory repositories")
		return workspace.NewMemoryRepository(), share.NewMemoryRepository(), func() {}, nil
	}

	db, err := sqlx.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := platform.AutoMigrate(db.DB, logger.Named("migrate")); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Warn("close database", zap.Error(err))
		}
	}
	return workspace.NewPostgresRepository(db), share.NewPostgresRepository(db), closeDB, nil
}
