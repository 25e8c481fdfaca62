package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-auth-api/internal/domain"
)

type contextKey string

const SessionKey contextKey = "session"

// Session is what the gate injects into the request context: the opaque
// session token and the authorization record it resolved to.
type Session struct {
	Token  string
	Record *domain.Authorization
}

// SessionChecker resolves a session token plus its bearer credential to an
// authorized record, or rejects with domain.ErrForbidden.
type SessionChecker interface {
	CheckSession(ctx context.Context, sessionToken, authorizationToken string) (*domain.Authorization, error)
}

// Auth returns middleware gating protected routes on a live, authorized
// session record. Clients present the session token in X-Session-Token and
// the matching authorization token as a Bearer credential.
func Auth(checker SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionToken := r.Header.Get("X-Session-Token")
			if sessionToken == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing session token")
				return
			}
			var bearer string
			if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
				bearer = strings.TrimPrefix(authHeader, "Bearer ")
			}
			if bearer == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization token")
				return
			}
			rec, err := checker.CheckSession(r.Context(), sessionToken, bearer)
			if err != nil {
				if errors.Is(err, domain.ErrForbidden) {
					writeJSONError(w, http.StatusForbidden, "no permission")
					return
				}
				writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
				return
			}
			ctx := context.WithValue(r.Context(), SessionKey, &Session{Token: sessionToken, Record: rec})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext extracts the gated session from the request context.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(SessionKey).(*Session)
	return s, ok
}
