package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pennyledger/backend/internal/middleware"
	"github.com/pennyledger/backend/internal/model/convo"
	chatservice "github.com/pennyledger/backend/internal/service/chat"
	"github.com/pennyledger/backend/pkg/utils"
)

// Handler exposes the conversational flows: chat, add-by-sentence and
// reset.
type Handler struct {
	chatSvc *chatservice.Service
}

func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/chat/add", h.handleAdd)
	r.Post("/reset", h.handleReset)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionKey := middleware.SessionKey(r.Context())
	result, err := h.chatSvc.Chat(r.Context(), sessionKey, payload.Message)
	if err != nil {
		respondChatError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, struct {
		Reply     string        `json:"reply"`
		SessionID string        `json:"sessionId"`
		History   []convo.Entry `json:"history"`
	}{
		Reply:     result.Reply,
		SessionID: sessionKey,
		History:   result.History,
	})
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Instruction string `json:"instruction"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Instruction) == "" {
		utils.RespondError(w, http.StatusBadRequest, "instruction is required")
		return
	}

	sessionKey := middleware.SessionKey(r.Context())
	outcome, err := h.chatSvc.AddBySentence(r.Context(), sessionKey, payload.Instruction)
	if err != nil {
		respondChatError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, outcome)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionKey := middleware.SessionKey(r.Context())
	if err := h.chatSvc.Reset(r.Context(), sessionKey); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "reset failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"sessionId": sessionKey})
}

func respondChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatservice.ErrMessageRequired):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chatservice.ErrModelUnavailable):
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
