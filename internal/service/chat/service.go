// Package chat orchestrates the session-scoped conversational flows:
// free-form Q&A, add-by-sentence reconciliation and reset.
package chat

import (
	"context"
	"errors"

	"github.com/pennyledger/backend/internal/model/convo"
	"github.com/pennyledger/backend/internal/model/ledger"
	"github.com/pennyledger/backend/internal/service/ai"
	ledgerservice "github.com/pennyledger/backend/internal/service/ledger"
	"github.com/pennyledger/backend/internal/session"
)

var (
	ErrMessageRequired  = errors.New("message is required")
	ErrModelUnavailable = errors.New("chat model not configured")
)

// Gateway is the inference capability consumed by the flows. A nil
// gateway disables chat and routes add-by-sentence through the degraded
// instruction parser.
type Gateway interface {
	GenerateReply(ctx context.Context, history []convo.Entry, message string) (string, error)
	ExtractTransaction(ctx context.Context, history []convo.Entry, instruction string) (ai.Result, error)
}

// Ledger is the transaction creation path invoked by the reconciler.
type Ledger interface {
	Create(ctx context.Context, sessionKey string, in ledgerservice.CreateInput) (ledger.Transaction, error)
}

type Service struct {
	sessions *session.Store
	gateway  Gateway
	ledger   Ledger
}

func NewService(sessions *session.Store, gateway Gateway, ledgerSvc Ledger) *Service {
	return &Service{
		sessions: sessions,
		gateway:  gateway,
		ledger:   ledgerSvc,
	}
}

// ChatResult is the outcome of one chat turn.
type ChatResult struct {
	Reply   string
	History []convo.Entry
}

// Chat answers a free-form question against the session's history. The
// whole turn runs inside the session's critical section: the model call
// happens between load and append, and the user message and reply are
// appended together, so a model failure leaves the history untouched.
func (s *Service) Chat(ctx context.Context, sessionKey, message string) (ChatResult, error) {
	if message == "" {
		return ChatResult{}, ErrMessageRequired
	}
	if s.gateway == nil {
		return ChatResult{}, ErrModelUnavailable
	}

	var reply string
	history, err := s.sessions.Update(ctx, sessionKey, func(history []convo.Entry) ([]convo.Entry, error) {
		var err error
		reply, err = s.gateway.GenerateReply(ctx, history, message)
		if err != nil {
			return nil, err
		}
		return []convo.Entry{
			convo.UserMessage(message),
			convo.AssistantReply(reply),
		}, nil
	})
	if err != nil {
		return ChatResult{}, err
	}

	return ChatResult{Reply: reply, History: history}, nil
}

// Reset clears the session's history while preserving its key.
func (s *Service) Reset(ctx context.Context, sessionKey string) error {
	return s.sessions.Reset(ctx, sessionKey)
}
