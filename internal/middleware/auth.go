package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"boxmgr/internal/auth"
	"boxmgr/internal/model"
)

type sessionResolver interface {
	Resolve(req *http.Request) (auth.Session, bool)
}

type contextKey string

const sessionContextKey contextKey = "session"

// AuthMiddleware wraps handlers with a required authentication level.
// It only reads the resolved identity; all status-code translation for
// auth failures happens here and nowhere else.
type AuthMiddleware struct {
	resolver sessionResolver
}

func NewAuthMiddleware(resolver sessionResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequireAuth rejects anonymous requests with 401 before the wrapped
// handler runs. Malformed, tampered and expired tokens all collapse to
// the same 401 so probing clients learn nothing about which check failed.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := m.resolver.Resolve(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

// RequireAdmin is RequireAuth plus a privilege check. 403 is distinct
// from 401: callers can tell "not logged in" from "not allowed".
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := m.resolver.Resolve(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if !session.Identity.IsAdmin {
			writeAuthError(w, http.StatusForbidden, "Forbidden. Admin access required.")
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

func withSession(ctx context.Context, session auth.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext returns the session attached by RequireAuth or
// RequireAdmin.
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(auth.Session)
	return session, ok
}

// IdentityFromContext is a convenience accessor for handlers that only
// need the identity.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	session, ok := SessionFromContext(ctx)
	return session.Identity, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	code := "UNAUTHORIZED"
	if status == http.StatusForbidden {
		code = "FORBIDDEN"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
