package ai

import (
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/pennyledger/backend/internal/model/convo"
	"github.com/pennyledger/backend/internal/model/ledger"
)

func TestBuildMessagesOrdering(t *testing.T) {
	history := []convo.Entry{
		convo.UserMessage("hello"),
		convo.AssistantReply("hi there"),
	}

	messages := BuildMessages("system framing", history, "what did I spend?")

	if len(messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(messages))
	}
	if messages[0].Role != schema.System || messages[0].Content != "system framing" {
		t.Fatalf("first message = %s %q, want system framing", messages[0].Role, messages[0].Content)
	}
	if messages[1].Role != schema.User || messages[1].Content != "hello" {
		t.Fatalf("second message = %s %q", messages[1].Role, messages[1].Content)
	}
	if messages[2].Role != schema.Assistant || messages[2].Content != "hi there" {
		t.Fatalf("third message = %s %q", messages[2].Role, messages[2].Content)
	}
	if messages[3].Role != schema.User || messages[3].Content != "what did I spend?" {
		t.Fatalf("final message = %s %q, want the new input last", messages[3].Role, messages[3].Content)
	}
}

func TestBuildMessagesEmptyHistory(t *testing.T) {
	messages := BuildMessages("system framing", nil, "first question")
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}
	if messages[0].Role != schema.System || messages[1].Role != schema.User {
		t.Fatalf("roles = %s, %s", messages[0].Role, messages[1].Role)
	}
}

func TestBuildMessagesRendersBareNoteEntries(t *testing.T) {
	// Entries persisted without content still contribute the rendered
	// note sentence.
	note := convo.TransactionNote(ledger.Transaction{
		ID: "t-1", Date: "2026-08-30", Description: "Coffee", AmountCents: 450, Category: "Food & Drink",
	})
	note.Content = ""

	messages := BuildMessages("system framing", []convo.Entry{note}, "anything")

	want := "On 2026-08-30 - Coffee (Food & Drink) for $4.50"
	if messages[1].Content != want {
		t.Fatalf("note message = %q, want %q", messages[1].Content, want)
	}
	if messages[1].Role != schema.User {
		t.Fatalf("note role = %s, want user", messages[1].Role)
	}
}
