package middleware

import (
	"net/http"

	"github.com/pennyledger/backend/internal/session"
)

// CORS applies cross-origin headers to every response and answers
// pre-flight requests with an empty success response.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+session.Header)
		h.Set("Access-Control-Expose-Headers", session.Header)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
