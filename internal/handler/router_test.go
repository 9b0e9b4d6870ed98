package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ledgermodel "github.com/pennyledger/backend/internal/model/ledger"
	chatservice "github.com/pennyledger/backend/internal/service/chat"
	ledgerservice "github.com/pennyledger/backend/internal/service/ledger"
	"github.com/pennyledger/backend/internal/session"
	"github.com/pennyledger/backend/internal/storage"
)

// newTestServer runs the full router against in-memory storage with no
// chat model configured, i.e. degraded mode.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mem := storage.NewMemory()
	sessions := session.NewStore(mem)
	ledgerSvc := ledgerservice.NewService(mem, sessions, nil)
	chatSvc := chatservice.NewService(sessions, nil, ledgerSvc)

	server := httptest.NewServer(NewRouter(chatSvc, ledgerSvc))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]bool
	decodeBody(t, resp, &body)
	if !body["ok"] {
		t.Fatalf("body = %v", body)
	}
}

func TestSessionHeaderMintedAndEchoed(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/transactions")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	minted := resp.Header.Get(session.Header)
	if minted == "" {
		t.Fatal("no session key minted")
	}

	resp, err = http.Get(server.URL + "/api/transactions?session=" + minted)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(session.Header); got != minted {
		t.Fatalf("echoed key = %q, want %q", got, minted)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/chat", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("allow-origin = %q", resp.Header.Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(resp.Header.Get("Access-Control-Allow-Headers"), session.Header) {
		t.Fatalf("allow-headers = %q", resp.Header.Get("Access-Control-Allow-Headers"))
	}
	if resp.Header.Get("Access-Control-Expose-Headers") != session.Header {
		t.Fatalf("expose-headers = %q", resp.Header.Get("Access-Control-Expose-Headers"))
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["error"] != "not found" {
		t.Fatalf("body = %v", body)
	}
}

func TestChatWithoutModelIsUnavailable(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/chat", `{"message":"hello"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}

func TestChatBlankMessageRejected(t *testing.T) {
	server := newTestServer(t)

	for _, body := range []string{`{"message":""}`, `{"message":"   "}`, `{}`, `not json`} {
		resp := postJSON(t, server.URL+"/api/chat", body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestCreateListFlow(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/transaction?session=s1", `{"description":"Coffee","amountCents":450,"category":"Food & Drink"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created ledgermodel.Transaction
	decodeBody(t, resp, &created)
	if !strings.HasPrefix(created.ID, "t-") {
		t.Fatalf("created id = %q", created.ID)
	}
	if created.AmountCents != 450 || created.Category != "Food & Drink" {
		t.Fatalf("created = %+v", created)
	}

	resp, err := http.Get(server.URL + "/api/transactions?session=s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var listed []ledgermodel.Transaction
	decodeBody(t, resp, &listed)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("listed = %+v", listed)
	}

	// Another session sees nothing.
	resp, err = http.Get(server.URL + "/api/transactions?session=other")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var other []ledgermodel.Transaction
	decodeBody(t, resp, &other)
	if len(other) != 0 {
		t.Fatalf("other session listed = %+v", other)
	}
}

func TestCreateValidation(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing description", `{"amountCents":450}`},
		{"missing amount", `{"description":"Coffee"}`},
		{"non-integer amount", `{"description":"Coffee","amountCents":4.5}`},
		{"negative amount", `{"description":"Coffee","amountCents":-1}`},
		{"bad date", `{"description":"Coffee","amountCents":450,"date":"30/08/2026"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, server.URL+"/api/transaction", tt.body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestAddBySentenceDegraded(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/chat/add?session=s1", `{"instruction":"add Coffee, it costs $4.50 in Food & Drink category"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var outcome struct {
		Added       bool                     `json:"added"`
		Transaction *ledgermodel.Transaction `json:"transaction"`
	}
	decodeBody(t, resp, &outcome)
	if !outcome.Added || outcome.Transaction == nil {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.Transaction.AmountCents != 450 || outcome.Transaction.Category != "Food & Drink" {
		t.Fatalf("transaction = %+v", outcome.Transaction)
	}

	resp = postJSON(t, server.URL+"/api/chat/add", `{"instruction":""}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank instruction status = %d, want 400", resp.StatusCode)
	}
}

func TestResetEmptiesListKeepsKey(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/transaction?session=s1", `{"description":"Coffee","amountCents":450}`)
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/api/reset?session=s1", ``)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status = %d", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["sessionId"] != "s1" {
		t.Fatalf("reset body = %v", body)
	}

	listResp, err := http.Get(server.URL + "/api/transactions?session=s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var listed []ledgermodel.Transaction
	decodeBody(t, listResp, &listed)
	if len(listed) != 0 {
		t.Fatalf("list after reset = %+v", listed)
	}

	// Resetting a fresh session is still a success.
	resp = postJSON(t, server.URL+"/api/reset?session=s1", ``)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second reset status = %d", resp.StatusCode)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	server := newTestServer(t)

	for _, body := range []string{
		`{"description":"Coffee","amountCents":450,"category":"Food & Drink"}`,
		`{"description":"Taxi","amountCents":1800,"category":"Transport"}`,
	} {
		resp := postJSON(t, server.URL+"/api/transaction?session=s1", body)
		resp.Body.Close()
	}

	resp, err := http.Get(server.URL + "/api/summary?session=s1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var summary ledgerservice.Summary
	decodeBody(t, resp, &summary)
	if summary.TotalCents != 2250 {
		t.Fatalf("total = %d, want 2250", summary.TotalCents)
	}
	if len(summary.TopDeltas) != 2 || summary.TopDeltas[0].Category != "Transport" {
		t.Fatalf("top deltas = %+v", summary.TopDeltas)
	}
}
