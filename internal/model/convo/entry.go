package convo

import (
	"fmt"
	"time"

	"github.com/pennyledger/backend/internal/model/ledger"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Entry is one turn in a session's history. A user entry that carries
// transaction fields is a transaction note: the transaction echoed into
// the conversation so the assistant can reference it. Entries are
// immutable once appended.
type Entry struct {
	Role          string    `json:"role"`
	Content       string    `json:"content,omitempty"`
	TransactionID string    `json:"transactionId,omitempty"`
	Description   string    `json:"description,omitempty"`
	AmountCents   int64     `json:"amountCents,omitempty"`
	Category      string    `json:"category,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Date          string    `json:"date,omitempty"`
	Timestamp     time.Time `json:"ts"`
}

// UserMessage wraps a free-form user message.
func UserMessage(content string) Entry {
	return Entry{Role: RoleUser, Content: content, Timestamp: time.Now().UTC()}
}

// AssistantReply wraps a model reply.
func AssistantReply(content string) Entry {
	return Entry{Role: RoleAssistant, Content: content, Timestamp: time.Now().UTC()}
}

// TransactionNote echoes a created transaction into the history.
func TransactionNote(t ledger.Transaction) Entry {
	return Entry{
		Role:          RoleUser,
		Content:       RenderNote(t),
		TransactionID: t.ID,
		Description:   t.Description,
		AmountCents:   t.AmountCents,
		Category:      t.Category,
		Notes:         t.Notes,
		Date:          t.Date,
		Timestamp:     time.Now().UTC(),
	}
}

// IsTransactionNote reports whether the entry carries transaction fields.
func (e Entry) IsTransactionNote() bool {
	return e.Description != ""
}

// Transaction reconstructs the echoed transaction from a note entry.
func (e Entry) Transaction() (ledger.Transaction, bool) {
	if !e.IsTransactionNote() {
		return ledger.Transaction{}, false
	}
	return ledger.Transaction{
		ID:          e.TransactionID,
		Date:        e.Date,
		Description: e.Description,
		AmountCents: e.AmountCents,
		Category:    e.Category,
		Notes:       e.Notes,
	}, true
}

// RenderNote produces the deterministic sentence a note contributes to
// model prompts: "On {date} - {description} ({category}) for $X.XX",
// with " — {notes}" appended when notes are present.
func RenderNote(t ledger.Transaction) string {
	category := t.Category
	if category == "" {
		category = ledger.DefaultCategory
	}
	s := fmt.Sprintf("On %s - %s (%s) for $%s", t.Date, t.Description, category, ledger.FormatCents(t.AmountCents))
	if t.Notes != "" {
		s += " — " + t.Notes
	}
	return s
}
