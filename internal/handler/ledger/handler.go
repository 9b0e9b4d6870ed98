package ledger

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pennyledger/backend/internal/middleware"
	ledgermodel "github.com/pennyledger/backend/internal/model/ledger"
	ledgerservice "github.com/pennyledger/backend/internal/service/ledger"
	"github.com/pennyledger/backend/pkg/utils"
)

// Handler exposes direct transaction creation and the history-derived
// listing and summary.
type Handler struct {
	ledgerSvc *ledgerservice.Service
}

func New(ledgerSvc *ledgerservice.Service) *Handler {
	return &Handler{ledgerSvc: ledgerSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/transaction", h.handleCreate)
	r.Get("/transactions", h.handleList)
	r.Get("/summary", h.handleSummary)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Description string `json:"description"`
		AmountCents *int64 `json:"amountCents"`
		Category    string `json:"category"`
		Notes       string `json:"notes"`
		Date        string `json:"date"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Description == "" {
		utils.RespondError(w, http.StatusBadRequest, "description is required")
		return
	}
	if payload.AmountCents == nil {
		utils.RespondError(w, http.StatusBadRequest, "amountCents is required")
		return
	}

	sessionKey := middleware.SessionKey(r.Context())
	t, err := h.ledgerSvc.Create(r.Context(), sessionKey, ledgerservice.CreateInput{
		Description: payload.Description,
		AmountCents: *payload.AmountCents,
		Category:    payload.Category,
		Notes:       payload.Notes,
		Date:        payload.Date,
	})
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, t)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	sessionKey := middleware.SessionKey(r.Context())
	transactions, err := h.ledgerSvc.List(r.Context(), sessionKey)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, transactions)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	sessionKey := middleware.SessionKey(r.Context())
	summary, err := h.ledgerSvc.Summarize(r.Context(), sessionKey)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, summary)
}

func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgermodel.ErrEmptyDescription),
		errors.Is(err, ledgermodel.ErrInvalidAmount),
		errors.Is(err, ledgermodel.ErrInvalidDate):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
