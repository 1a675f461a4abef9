package handler

import (
	"context"
	"net/http"
	"time"

	"boxmgr/internal/auth"
	"boxmgr/internal/model"
)

type authService interface {
	Login(ctx context.Context, username string, password string) (model.Identity, string, error)
	Setup(ctx context.Context, username string, password string) (model.PublicUser, error)
	HasUsers(ctx context.Context) (bool, error)
}

// AuthHandler owns the session lifecycle endpoints: login, first-run
// setup, session verification and logout.
type AuthHandler struct {
	auth     authService
	resolver *auth.Resolver
	ttl      time.Duration
	secure   bool
}

func NewAuthHandler(svc authService, resolver *auth.Resolver, ttl time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{auth: svc, resolver: resolver, ttl: ttl, secure: secure}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		badRequest(w, r, "Username and password are required", "")
		return
	}

	identity, tok, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setSessionCookies(w, tok)
	writeSuccess(w, http.StatusOK, model.LoginResponse{IsAdmin: identity.IsAdmin, Redirect: "/"})
}

// Setup creates the very first admin account. The service refuses it
// once any user exists.
func (h *AuthHandler) Setup(w http.ResponseWriter, r *http.Request) {
	var req model.SetupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		badRequest(w, r, "Username and password are required", "")
		return
	}

	user, err := h.auth.Setup(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, user)
}

func (h *AuthHandler) CheckUsers(w http.ResponseWriter, r *http.Request) {
	hasUsers, err := h.auth.HasUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, model.CheckUsersResponse{HasUsers: hasUsers})
}

// Verify reports the session state for the current request. It always
// answers 200; "not logged in" is a valid answer, not an error.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolver.Resolve(r)
	if !ok {
		writeSuccess(w, http.StatusOK, model.VerifyResponse{Authenticated: false})
		return
	}

	identity := session.Identity
	writeSuccess(w, http.StatusOK, model.VerifyResponse{
		Authenticated: true,
		User:          &identity,
		Legacy:        session.Legacy,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookies(w)
	writeSuccess(w, http.StatusOK, map[string]string{"redirect": "/login"})
}

// setSessionCookies writes the HttpOnly token cookie plus a readable
// marker cookie the frontend uses to decide whether to show the login
// screen.
func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, tok string) {
	maxAge := int(h.ttl.Seconds())

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    tok,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     auth.FlagCookie,
		Value:    "true",
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{auth.TokenCookie, auth.FlagCookie, auth.LegacyCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Secure:   h.secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
