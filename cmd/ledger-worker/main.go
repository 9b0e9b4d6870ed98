// ledger-worker consumes transaction-created events and appends the full
// archived rows to a JSONL export file. Events carry only identifiers;
// the row is fetched from the sqlite archive.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/pennyledger/backend/internal/amqp"
	"github.com/pennyledger/backend/internal/config"
	"github.com/pennyledger/backend/internal/model/ledger"
	"github.com/pennyledger/backend/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting ledger-worker")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if !cfg.AMQP.Enabled() {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Storage.SQLitePath)
	if err != nil {
		logger.Error("failed to open sqlite store", "error", err, "path", cfg.Storage.SQLitePath)
		os.Exit(1)
	}
	defer store.Close()

	client, err := amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
	if err != nil {
		logger.Error("failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	exporter, err := newExporter(cfg.Worker.ExportPath)
	if err != nil {
		logger.Error("failed to open export file", "error", err, "path", cfg.Worker.ExportPath)
		os.Exit(1)
	}
	defer exporter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := client.ConsumeTransactionCreated(ctx, func(msg *amqp.TransactionCreatedMessage) error {
			t, sessionKey, err := store.GetTransaction(ctx, msg.ID)
			if errors.Is(err, storage.ErrTransactionNotFound) {
				// The event outran the archive write, or the message
				// references a row from another backend. Drop it.
				logger.Warn("event for unknown transaction dropped", "id", msg.ID)
				return nil
			}
			if err != nil {
				return err
			}
			return exporter.Append(t, sessionKey)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				logger.Info("ledger-worker alive", "exported", exporter.Count())
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("ledger-worker stopped")
}

type exporter struct {
	mu    sync.Mutex
	file  *os.File
	count int64
}

func newExporter(path string) (*exporter, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create export directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open export file: %w", err)
	}
	return &exporter{file: file}, nil
}

type exportRecord struct {
	SessionKey  string             `json:"sessionKey"`
	Transaction ledger.Transaction `json:"transaction"`
	ExportedAt  time.Time          `json:"exportedAt"`
}

func (e *exporter) Append(t ledger.Transaction, sessionKey string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	line, err := json.Marshal(exportRecord{
		SessionKey:  sessionKey,
		Transaction: t,
		ExportedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal export record: %w", err)
	}
	if _, err := e.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write export record: %w", err)
	}
	e.count++
	return nil
}

func (e *exporter) Count() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

func (e *exporter) Close() error {
	return e.file.Close()
}
