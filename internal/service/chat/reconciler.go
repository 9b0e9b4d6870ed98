package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/pennyledger/backend/internal/model/ledger"
	"github.com/pennyledger/backend/internal/service/ai"
	ledgerservice "github.com/pennyledger/backend/internal/service/ledger"
)

// FallbackMessage is returned when neither a tool call nor any model
// text explains what went wrong.
const FallbackMessage = "Unable to parse. Please correct your message"

// AddOutcome is the structured result of an add-by-sentence request.
// Added is false when no usable tool call was produced or the creation
// call failed; Message then carries a best-effort explanation.
type AddOutcome struct {
	Added       bool                `json:"added"`
	Transaction *ledger.Transaction `json:"transaction,omitempty"`
	Message     string              `json:"message,omitempty"`
}

// AddBySentence extracts a structured transaction from a natural-language
// instruction and, when the model produced a well-formed addTransaction
// call, records it through the ordinary creation path so the result is
// also echoed into the session's history. The reconciler trusts whatever
// a well-formed call supplies; keeping the model from guessing fields is
// the framing prompt's job. Failures are reported, never retried.
func (s *Service) AddBySentence(ctx context.Context, sessionKey, instruction string) (AddOutcome, error) {
	if instruction == "" {
		return AddOutcome{}, ErrMessageRequired
	}

	if s.gateway == nil {
		return s.addParsed(ctx, sessionKey, instruction)
	}

	history, err := s.sessions.History(ctx, sessionKey)
	if err != nil {
		return AddOutcome{}, err
	}

	result, err := s.gateway.ExtractTransaction(ctx, history, instruction)
	if err != nil {
		return AddOutcome{}, err
	}

	call, ok := result.ToolCall(ai.AddTransactionToolName)
	if !ok {
		return AddOutcome{Added: false, Message: explain(result)}, nil
	}

	input, err := inputFromArguments(call.Function.Arguments)
	if err != nil {
		slog.WarnContext(ctx, "tool call arguments unusable", "session", sessionKey, "error", err)
		return AddOutcome{Added: false, Message: explain(result)}, nil
	}

	t, err := s.ledger.Create(ctx, sessionKey, input)
	if err != nil {
		slog.WarnContext(ctx, "reconciled transaction not created", "session", sessionKey, "error", err)
		return AddOutcome{Added: false, Message: explain(result)}, nil
	}

	return AddOutcome{Added: true, Transaction: &t}, nil
}

// addParsed is the degraded mode used when no model is configured: the
// instruction goes through the documented regex grammar instead of a
// tool-calling exchange, behind the same creation path.
func (s *Service) addParsed(ctx context.Context, sessionKey, instruction string) (AddOutcome, error) {
	input := parseInstruction(instruction)

	t, err := s.ledger.Create(ctx, sessionKey, input)
	if err != nil {
		slog.WarnContext(ctx, "parsed transaction not created", "session", sessionKey, "error", err)
		return AddOutcome{Added: false, Message: FallbackMessage}, nil
	}

	return AddOutcome{Added: true, Transaction: &t}, nil
}

// inputFromArguments normalizes tool-call arguments into a typed create
// input. Arguments arrive as a JSON object, sometimes double-encoded as
// a JSON string; both forms are accepted. Decoding goes through
// json.Number so the amount's decimal literal reaches the cents parser
// verbatim (half-up on the third decimal, see ledger.ParseDecimalToCents).
func inputFromArguments(raw string) (ledgerservice.CreateInput, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, `"`) {
		var unquoted string
		if err := json.Unmarshal([]byte(trimmed), &unquoted); err != nil {
			return ledgerservice.CreateInput{}, err
		}
		trimmed = unquoted
	}

	decoder := json.NewDecoder(strings.NewReader(trimmed))
	decoder.UseNumber()
	args := make(map[string]any)
	if err := decoder.Decode(&args); err != nil {
		return ledgerservice.CreateInput{}, err
	}

	description, _ := args["description"].(string)
	if description == "" {
		description = "Untitled"
	}

	category, _ := args["category"].(string)
	if category == "" {
		category = ledger.DefaultCategory
	}

	var amountCents int64
	switch amount := args["amount"].(type) {
	case json.Number:
		cents, err := ledger.ParseDecimalToCents(amount.String())
		if err != nil {
			return ledgerservice.CreateInput{}, err
		}
		amountCents = cents
	case string:
		cents, err := ledger.ParseDecimalToCents(amount)
		if err != nil {
			return ledgerservice.CreateInput{}, err
		}
		amountCents = cents
	case nil:
		return ledgerservice.CreateInput{}, ledger.ErrInvalidAmount
	default:
		return ledgerservice.CreateInput{}, ledger.ErrInvalidAmount
	}

	return ledgerservice.CreateInput{
		Description: description,
		AmountCents: amountCents,
		Category:    category,
	}, nil
}

// explain picks the failure message: model text first, then the fixed
// default.
func explain(result ai.Result) string {
	if text := strings.TrimSpace(result.Text()); text != "" {
		return text
	}
	return FallbackMessage
}
