package ledger

import (
	"context"
	"errors"
	"testing"

	ledgermodel "github.com/pennyledger/backend/internal/model/ledger"
	"github.com/pennyledger/backend/internal/session"
	"github.com/pennyledger/backend/internal/storage"
)

type recordingPublisher struct {
	published []string
	err       error
}

func (p *recordingPublisher) PublishTransactionCreated(_ context.Context, id, _ string) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, id)
	return nil
}

func newTestService(events Publisher) (*Service, *storage.Memory, *session.Store) {
	mem := storage.NewMemory()
	sessions := session.NewStore(mem)
	return NewService(mem, sessions, events), mem, sessions
}

func TestCreateArchivesAndEchoes(t *testing.T) {
	ctx := context.Background()
	svc, mem, sessions := newTestService(nil)

	created, err := svc.Create(ctx, "s1", CreateInput{
		Description: "Coffee",
		AmountCents: 450,
		Category:    "Food & Drink",
	})
	if err != nil {
		t.Fatalf("create err: %v", err)
	}
	if created.ID == "" || created.Category != "Food & Drink" {
		t.Fatalf("created = %+v", created)
	}

	archived, sessionKey, err := mem.GetTransaction(ctx, created.ID)
	if err != nil {
		t.Fatalf("archive lookup err: %v", err)
	}
	if sessionKey != "s1" || archived != created {
		t.Fatalf("archived = %+v under %q", archived, sessionKey)
	}

	history, err := sessions.History(ctx, "s1")
	if err != nil {
		t.Fatalf("history err: %v", err)
	}
	if len(history) != 1 || !history[0].IsTransactionNote() {
		t.Fatalf("history = %+v, want one transaction note", history)
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _, _ := newTestService(nil)

	created, err := svc.Create(context.Background(), "s1", CreateInput{
		Description: "Coffee",
		AmountCents: 450,
	})
	if err != nil {
		t.Fatalf("create err: %v", err)
	}
	if created.Category != ledgermodel.DefaultCategory {
		t.Fatalf("category = %q, want default", created.Category)
	}
	if created.Date == "" {
		t.Fatal("date not defaulted")
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _, sessions := newTestService(nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "s1", CreateInput{AmountCents: 450}); !errors.Is(err, ledgermodel.ErrEmptyDescription) {
		t.Fatalf("err = %v, want ErrEmptyDescription", err)
	}
	if _, err := svc.Create(ctx, "s1", CreateInput{Description: "Coffee", AmountCents: -1}); !errors.Is(err, ledgermodel.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}

	history, err := sessions.History(ctx, "s1")
	if err != nil {
		t.Fatalf("history err: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("rejected creates left %d history entries", len(history))
	}
}

func TestCreatePublishesEvent(t *testing.T) {
	events := &recordingPublisher{}
	svc, _, _ := newTestService(events)

	created, err := svc.Create(context.Background(), "s1", CreateInput{Description: "Coffee", AmountCents: 450})
	if err != nil {
		t.Fatalf("create err: %v", err)
	}
	if len(events.published) != 1 || events.published[0] != created.ID {
		t.Fatalf("published = %v", events.published)
	}
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	events := &recordingPublisher{err: errors.New("broker down")}
	svc, _, _ := newTestService(events)

	if _, err := svc.Create(context.Background(), "s1", CreateInput{Description: "Coffee", AmountCents: 450}); err != nil {
		t.Fatalf("create failed on publish error: %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(nil)

	for _, in := range []CreateInput{
		{Description: "Older", AmountCents: 100, Date: "2026-08-01"},
		{Description: "Newest", AmountCents: 300, Date: "2026-08-30"},
		{Description: "Middle", AmountCents: 200, Date: "2026-08-15"},
	} {
		if _, err := svc.Create(ctx, "s1", in); err != nil {
			t.Fatalf("create err: %v", err)
		}
	}

	transactions, err := svc.List(ctx, "s1")
	if err != nil {
		t.Fatalf("list err: %v", err)
	}
	want := []string{"Newest", "Middle", "Older"}
	if len(transactions) != len(want) {
		t.Fatalf("list has %d transactions, want %d", len(transactions), len(want))
	}
	for i, w := range want {
		if transactions[i].Description != w {
			t.Fatalf("position %d = %q, want %q", i, transactions[i].Description, w)
		}
	}
}

func TestListEmptyAfterResetArchiveSurvives(t *testing.T) {
	ctx := context.Background()
	svc, mem, sessions := newTestService(nil)

	created, err := svc.Create(ctx, "s1", CreateInput{Description: "Coffee", AmountCents: 450})
	if err != nil {
		t.Fatalf("create err: %v", err)
	}
	if err := sessions.Reset(ctx, "s1"); err != nil {
		t.Fatalf("reset err: %v", err)
	}

	transactions, err := svc.List(ctx, "s1")
	if err != nil {
		t.Fatalf("list err: %v", err)
	}
	if len(transactions) != 0 {
		t.Fatalf("list after reset has %d transactions", len(transactions))
	}

	// The archived row is write-once and outlives the reset.
	if _, _, err := mem.GetTransaction(ctx, created.ID); err != nil {
		t.Fatalf("archived row gone after reset: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(nil)

	for _, in := range []CreateInput{
		{Description: "Coffee", AmountCents: 450, Category: "Food & Drink"},
		{Description: "Lunch", AmountCents: 1200, Category: "Food & Drink"},
		{Description: "Taxi", AmountCents: 1800, Category: "Transport"},
		{Description: "Movie", AmountCents: 1500, Category: "Entertainment"},
		{Description: "Pens", AmountCents: 300, Category: "Office"},
	} {
		if _, err := svc.Create(ctx, "s1", in); err != nil {
			t.Fatalf("create err: %v", err)
		}
	}

	summary, err := svc.Summarize(ctx, "s1")
	if err != nil {
		t.Fatalf("summarize err: %v", err)
	}
	if summary.TotalCents != 5250 {
		t.Fatalf("total = %d, want 5250", summary.TotalCents)
	}
	if summary.ByCategory["Food & Drink"] != 1650 {
		t.Fatalf("food total = %d, want 1650", summary.ByCategory["Food & Drink"])
	}
	if len(summary.TopDeltas) != 3 {
		t.Fatalf("top deltas = %+v, want 3", summary.TopDeltas)
	}
	if summary.TopDeltas[0].Category != "Transport" || summary.TopDeltas[0].DeltaCents != 1800 {
		t.Fatalf("heaviest = %+v", summary.TopDeltas[0])
	}
	if summary.TopDeltas[1].Category != "Food & Drink" || summary.TopDeltas[2].Category != "Entertainment" {
		t.Fatalf("top deltas = %+v", summary.TopDeltas)
	}
}

func TestSummarizeEmptySession(t *testing.T) {
	svc, _, _ := newTestService(nil)

	summary, err := svc.Summarize(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("summarize err: %v", err)
	}
	if summary.TotalCents != 0 || len(summary.TopDeltas) != 0 {
		t.Fatalf("summary = %+v, want empty", summary)
	}
}
