package session

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// Header carries the resolved session key on every API response.
	Header = "X-Session-Id"
	// QueryParam lets callers resend a previously issued key.
	QueryParam = "session"
)

// ResolveKey returns the caller-supplied token when present, otherwise
// mints a fresh globally-unique key. Resolution has no side effects; the
// key only comes into existence in storage on its first append.
func ResolveKey(token string) string {
	token = strings.TrimSpace(token)
	if token != "" {
		return token
	}
	return uuid.NewString()
}
