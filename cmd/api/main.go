package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/partsboard/internal/api"
	"github.com/your-org/partsboard/internal/api/handlers"
	"github.com/your-org/partsboard/internal/auth"
	"github.com/your-org/partsboard/internal/config"
	"github.com/your-org/partsboard/internal/observability"
	"github.com/your-org/partsboard/internal/queue"
	"github.com/your-org/partsboard/internal/storage"
	"github.com/your-org/partsboard/internal/upstream"
	"github.com/your-org/partsboard/internal/workspace"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	if err := config.LoadEnv(*envPath); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting partsboard API", "port", cfg.Server.Port, "upstream", cfg.Upstream.BaseURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("migrate schema", "error", err)
		os.Exit(1)
	}

	// Connect to MinIO
	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := minioStore.EnsureBucket(ctx); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(ctx); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	backend := upstream.NewClient(cfg.Upstream)
	authSvc := auth.NewService(db, backend, cfg.Server.SessionTTL)

	workspaces := workspace.NewManager(func(sess workspace.Session) *workspace.Workspace {
		return workspace.New(sess, backend, cfg.Dashboard, workspace.WithNotifier(producer))
	}, cfg.Dashboard.WorkspaceIdleTTL)
	go workspaces.Run(ctx, time.Minute)

	// Expired sessions are purged hourly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := db.DeleteExpiredSessions(ctx, time.Now())
				if err != nil {
					slog.Warn("purge expired sessions", "error", err)
				} else if n > 0 {
					slog.Info("expired sessions purged", "count", n)
				}
			}
		}
	}()

	// Setup router
	router := api.NewRouter(api.RouterConfig{
		Auth:         authSvc,
		CookieSecure: cfg.Server.CookieSecure,
		Backend:      backend,
		Workspaces:   workspaces,
		History:      db,
		Receipts:     minioStore,
		DBPing:       db,
		MinIOPing:    minioStore,
		NATSPing:     handlers.PingFunc(producer.Ping),
	})

	// Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	cancel()

	slog.Info("API server stopped")
}
