package middleware

import (
	"context"
	"net/http"

	"github.com/pennyledger/backend/internal/session"
)

type sessionKeyCtx struct{}

// Session resolves the request's session key from the query parameter,
// minting a fresh one when absent, and echoes it in the response header
// so the caller can persist and resend it.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := session.ResolveKey(r.URL.Query().Get(session.QueryParam))
		w.Header().Set(session.Header, key)

		ctx := context.WithValue(r.Context(), sessionKeyCtx{}, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionKey returns the key resolved by Session, or "" outside of it.
func SessionKey(ctx context.Context) string {
	key, _ := ctx.Value(sessionKeyCtx{}).(string)
	return key
}
