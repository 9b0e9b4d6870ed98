// Package ledger implements the transaction creation path shared by the
// direct-create endpoint and the tool-call reconciler: archive insert,
// history echo, optional event publish.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pennyledger/backend/internal/model/convo"
	"github.com/pennyledger/backend/internal/model/ledger"
	"github.com/pennyledger/backend/internal/session"
)

// Archive is the durable transaction store. Rows are written once; the
// session actor never guards them, the store is atomic per write.
type Archive interface {
	InsertTransaction(ctx context.Context, sessionKey string, t ledger.Transaction) error
}

// Publisher fans out created transactions to interested consumers.
type Publisher interface {
	PublishTransactionCreated(ctx context.Context, id, sessionKey string) error
}

// CreateInput is the caller-facing shape of a new transaction. Category,
// notes and date are optional.
type CreateInput struct {
	Description string
	AmountCents int64
	Category    string
	Notes       string
	Date        string
}

// Summary aggregates a session's spending.
type Summary struct {
	TotalCents int64            `json:"totalCents"`
	ByCategory map[string]int64 `json:"byCategory"`
	TopDeltas  []CategoryDelta  `json:"topDeltas"`
}

// CategoryDelta is one of the heaviest categories in a summary.
type CategoryDelta struct {
	Category   string `json:"category"`
	DeltaCents int64  `json:"deltaCents"`
}

type Service struct {
	archive  Archive
	sessions *session.Store
	events   Publisher // nil when AMQP is not configured
}

func NewService(archive Archive, sessions *session.Store, events Publisher) *Service {
	return &Service{
		archive:  archive,
		sessions: sessions,
		events:   events,
	}
}

// Create validates the input, archives the transaction and echoes it
// into the session's history so the assistant can reference it. Exactly
// one archive insert and one history append happen on success. The event
// publish is best-effort and never fails the request.
func (s *Service) Create(ctx context.Context, sessionKey string, in CreateInput) (ledger.Transaction, error) {
	t := ledger.New(in.Description, in.AmountCents, in.Category, in.Notes, in.Date)
	if err := t.Validate(); err != nil {
		return ledger.Transaction{}, err
	}

	if err := s.archive.InsertTransaction(ctx, sessionKey, t); err != nil {
		return ledger.Transaction{}, fmt.Errorf("archive transaction: %w", err)
	}

	if _, err := s.sessions.Append(ctx, sessionKey, convo.TransactionNote(t)); err != nil {
		return ledger.Transaction{}, fmt.Errorf("echo transaction into history: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishTransactionCreated(ctx, t.ID, sessionKey); err != nil {
			slog.WarnContext(ctx, "transaction event publish failed", "id", t.ID, "error", err)
		}
	}

	return t, nil
}

// List returns the session's transactions newest first, derived from the
// history entries that carry transaction fields. After a reset the list
// is empty even though archived rows survive.
func (s *Service) List(ctx context.Context, sessionKey string) ([]ledger.Transaction, error) {
	history, err := s.sessions.History(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	transactions := make([]ledger.Transaction, 0, len(history))
	for _, entry := range history {
		if t, ok := entry.Transaction(); ok {
			transactions = append(transactions, t)
		}
	}
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date > transactions[j].Date
	})
	return transactions, nil
}

// Summarize totals the session's transactions overall and per category,
// surfacing the three heaviest categories.
func (s *Service) Summarize(ctx context.Context, sessionKey string) (Summary, error) {
	transactions, err := s.List(ctx, sessionKey)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{ByCategory: make(map[string]int64)}
	for _, t := range transactions {
		summary.TotalCents += t.AmountCents
		summary.ByCategory[t.Category] += t.AmountCents
	}

	deltas := make([]CategoryDelta, 0, len(summary.ByCategory))
	for category, cents := range summary.ByCategory {
		deltas = append(deltas, CategoryDelta{Category: category, DeltaCents: cents})
	}
	sort.Slice(deltas, func(i, j int) bool {
		if deltas[i].DeltaCents != deltas[j].DeltaCents {
			return deltas[i].DeltaCents > deltas[j].DeltaCents
		}
		return deltas[i].Category < deltas[j].Category
	})
	if len(deltas) > 3 {
		deltas = deltas[:3]
	}
	summary.TopDeltas = deltas

	return summary, nil
}
