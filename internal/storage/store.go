// Package storage provides the sqlite-backed durable collaborators: the
// per-key session blob store and the transaction archive. A memory
// variant with the same surface backs tests and the default backend.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pennyledger/backend/internal/model/ledger"

	_ "modernc.org/sqlite"
)

// ErrTransactionNotFound is returned when an archive lookup misses.
var ErrTransactionNotFound = errors.New("transaction not found")

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get implements session.BlobStore. Unknown keys yield "".
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, `SELECT history FROM sessions WHERE key = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get session blob: %w", err)
	}
	return blob, nil
}

// Put implements session.BlobStore, upserting the full blob atomically.
func (s *Store) Put(ctx context.Context, key, blob string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (key, history, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET history = excluded.history, updated_at = CURRENT_TIMESTAMP`,
		key, blob)
	if err != nil {
		return fmt.Errorf("put session blob: %w", err)
	}
	return nil
}

// InsertTransaction records a created transaction in the archive. Rows
// are written once and never edited; session reset does not touch them.
func (s *Store) InsertTransaction(ctx context.Context, sessionKey string, t ledger.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, session_key, date, description, amount_cents, category, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, sessionKey, t.Date, t.Description, t.AmountCents, t.Category, t.Notes)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "transaction archived",
		"id", t.ID,
		"session", sessionKey,
		"description", t.Description,
		"amount_cents", t.AmountCents,
		"category", t.Category)

	return nil
}

// GetTransaction fetches one archived transaction by id, returning the
// owning session key alongside it. The export worker uses this to
// resolve event payloads that carry only the id.
func (s *Store) GetTransaction(ctx context.Context, id string) (ledger.Transaction, string, error) {
	var (
		t          ledger.Transaction
		sessionKey string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_key, date, description, amount_cents, category, notes
		FROM transactions WHERE id = ?`, id).
		Scan(&t.ID, &sessionKey, &t.Date, &t.Description, &t.AmountCents, &t.Category, &t.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Transaction{}, "", ErrTransactionNotFound
	}
	if err != nil {
		return ledger.Transaction{}, "", fmt.Errorf("get transaction: %w", err)
	}
	return t, sessionKey, nil
}
