package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// SessionHeader identifies the customer's storefront session. Clients persist
// the value locally and send it on every cart and order request.
const SessionHeader = "X-Session-ID"

type sessionKey struct{}

// withSession ensures the request carries a session id: an incoming header
// value is reused, otherwise a fresh one is minted. The id is echoed on the
// response so new clients can persist it.
func withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		w.Header().Set(SessionHeader, id)
		ctx := context.WithValue(r.Context(), sessionKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionID returns the request's session id. Empty outside withSession.
func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
