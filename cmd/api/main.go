package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pennyledger/backend/internal/amqp"
	"github.com/pennyledger/backend/internal/config"
	"github.com/pennyledger/backend/internal/handler"
	"github.com/pennyledger/backend/internal/service/ai"
	chatservice "github.com/pennyledger/backend/internal/service/chat"
	ledgerservice "github.com/pennyledger/backend/internal/service/ledger"
	"github.com/pennyledger/backend/internal/session"
	"github.com/pennyledger/backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file loaded, using system environment", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Pick the durable backend for session blobs and the transaction
	// archive.
	var (
		blobs   session.BlobStore
		archive ledgerservice.Archive
	)
	switch cfg.Storage.Backend {
	case "sqlite":
		store, err := storage.Open(cfg.Storage.SQLitePath)
		if err != nil {
			logger.Error("failed to open sqlite store", "error", err, "path", cfg.Storage.SQLitePath)
			os.Exit(1)
		}
		defer store.Close()
		blobs, archive = store, store
		logger.Info("sqlite backend initialized", "path", cfg.Storage.SQLitePath)
	default:
		mem := storage.NewMemory()
		blobs, archive = mem, mem
		logger.Info("memory backend initialized")
	}

	sessions := session.NewStore(blobs)

	// Event fan-out is optional; the creation path works without it.
	var events ledgerservice.Publisher
	if cfg.AMQP.Enabled() {
		client, err := amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			logger.Error("failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		events = client
		logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQP.Exchange, "queue", cfg.AMQP.Queue)
	} else {
		logger.Info("AMQP not configured, transaction events disabled")
	}

	ledgerSvc := ledgerservice.NewService(archive, sessions, events)

	// Without model credentials the service still runs: chat returns
	// unavailable and add-by-sentence degrades to the regex parser.
	var gateway chatservice.Gateway
	if cfg.AI.Enabled() {
		aiSvc, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			logger.Warn("failed to initialize AI service, continuing degraded", "error", err)
		} else {
			gateway = aiSvc
			logger.Info("AI service initialized", "model", cfg.AI.Model)
		}
	} else {
		logger.Info("ark credentials not configured, running degraded")
	}

	chatSvc := chatservice.NewService(sessions, gateway, ledgerSvc)

	router := handler.NewRouter(chatSvc, ledgerSvc)

	startServer(ctx, cfg.Server, router, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("pennyledger backend listening", "addr", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
