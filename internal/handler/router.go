package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chathandler "github.com/pennyledger/backend/internal/handler/chat"
	ledgerhandler "github.com/pennyledger/backend/internal/handler/ledger"
	middlewarePkg "github.com/pennyledger/backend/internal/middleware"
	chatservice "github.com/pennyledger/backend/internal/service/chat"
	ledgerservice "github.com/pennyledger/backend/internal/service/ledger"
	"github.com/pennyledger/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatservice.Service, ledgerSvc *ledgerservice.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chathandler.New(chatSvc)
	ledgerHandler := ledgerhandler.New(ledgerSvc)

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.Session)

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
		})

		chatHandler.RegisterRoutes(api)
		ledgerHandler.RegisterRoutes(api)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "not found")
	})

	return r
}
