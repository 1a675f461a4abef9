package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"boxmgr/internal/model"
	"boxmgr/internal/token"
)

// Cookie names are part of the deployed contract; browsers still hold
// cookies written by every earlier release.
const (
	TokenCookie  = "auth_token"     // generation 3: signed token, HttpOnly
	FlagCookie   = "authenticated"  // generation 3: plain marker for UI state
	LegacyCookie = "auth"           // generations 1-2: unsigned
)

// legacyAdminUsername: the pre-token deployment had a single shared
// account named "user" with full access, so a generation-1 cookie
// carrying that name maps to an admin identity.
const legacyAdminUsername = "user"

// Session is the outcome of resolving a request's credentials. Legacy
// is set when the identity came from an unsigned pre-token cookie.
type Session struct {
	Identity model.Identity
	Legacy   bool
}

// Resolver materializes an identity from whatever credential material a
// request carries. It holds no per-request state and performs no I/O.
type Resolver struct {
	codec *token.Codec
}

func NewResolver(codec *token.Codec) *Resolver {
	return &Resolver{codec: codec}
}

// Resolve tries each credential generation in fixed order and reports
// whether the request is authenticated.
//
// A present-but-invalid signed token never falls through to the legacy
// branch: forging an unsigned cookie must not bypass a rejected token.
// The legacy path exists only for clients that never received one.
func (r *Resolver) Resolve(req *http.Request) (Session, bool) {
	if raw, ok := signedToken(req); ok {
		identity, err := r.codec.Verify(raw)
		if err != nil {
			slog.Warn("session token rejected", "reason", err)
			return Session{}, false
		}
		return Session{Identity: identity}, true
	}

	if raw, ok := legacyCookie(req); ok {
		return resolveLegacy(raw)
	}

	return Session{}, false
}

// signedToken extracts a generation-3 credential from the Authorization
// header or the token cookie.
func signedToken(req *http.Request) (string, bool) {
	header := strings.TrimSpace(req.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:]), true
	}

	cookie, err := req.Cookie(TokenCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	return cookie.Value, true
}

func legacyCookie(req *http.Request) (string, bool) {
	cookie, err := req.Cookie(LegacyCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	// Legacy cookies were written percent-encoded by the old frontend.
	value := cookie.Value
	if unescaped, err := url.QueryUnescape(value); err == nil {
		value = unescaped
	}

	return value, true
}

// resolveLegacy parses the two unsigned cookie generations: JSON
// {id, username, isAdmin} (generation 2), else a bare username string
// (generation 1). Neither carries an integrity check, so every
// acceptance is logged for migration tracking.
func resolveLegacy(value string) (Session, bool) {
	var identity model.Identity
	if err := json.Unmarshal([]byte(value), &identity); err == nil {
		if identity.Username == "" {
			return Session{}, false
		}
		slog.Warn("legacy auth cookie in use", "generation", 2, "username", identity.Username)
		return Session{Identity: identity, Legacy: true}, true
	}

	identity = model.Identity{
		ID:       -1,
		Username: value,
		IsAdmin:  value == legacyAdminUsername,
	}
	slog.Warn("legacy auth cookie in use", "generation", 1, "username", identity.Username)
	return Session{Identity: identity, Legacy: true}, true
}
