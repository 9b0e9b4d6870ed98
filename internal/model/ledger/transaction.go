package ledger

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCategory is assigned when the caller (or the model) supplies none.
const DefaultCategory = "Uncategorized"

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
)

// Transaction is a recorded spending item. Amounts are integer cents;
// the ledger never does float currency arithmetic.
type Transaction struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	AmountCents int64  `json:"amountCents"`
	Category    string `json:"category"`
	Notes       string `json:"notes,omitempty"`
}

// New builds a transaction with a fresh id, applying the default category
// and today's UTC date where the input leaves them blank.
func New(description string, amountCents int64, category, notes, date string) Transaction {
	if category == "" {
		category = DefaultCategory
	}
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	return Transaction{
		ID:          "t-" + uuid.NewString(),
		Date:        date,
		Description: description,
		AmountCents: amountCents,
		Category:    category,
		Notes:       notes,
	}
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.AmountCents < 0 {
		return ErrInvalidAmount
	}
	if _, err := time.Parse("2006-01-02", t.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
