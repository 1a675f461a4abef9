package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxmgr/internal/auth"
	"boxmgr/internal/model"
	"boxmgr/internal/token"
)

func newAuthMiddleware(t *testing.T) (*AuthMiddleware, *token.Codec) {
	t.Helper()

	codec, err := token.NewCodec("test-secret", time.Hour)
	require.NoError(t, err)

	return NewAuthMiddleware(auth.NewResolver(codec)), codec
}

func tokenRequest(t *testing.T, codec *token.Codec, identity model.Identity) *http.Request {
	t.Helper()

	tok, err := codec.Issue(identity)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.AddCookie(&http.Cookie{Name: auth.TokenCookie, Value: tok})
	return req
}

func TestRequireAuth_Anonymous(t *testing.T) {
	mw, _ := newAuthMiddleware(t)

	invoked := 0
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		invoked++
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, invoked, "handler must not run for anonymous requests")
}

func TestRequireAuth_ValidToken(t *testing.T) {
	mw, codec := newAuthMiddleware(t)

	var seen model.Identity
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		seen = identity
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, tokenRequest(t, codec, model.Identity{ID: 4, Username: "alice"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", seen.Username)
}

func TestRequireAdmin_NonAdminGets403(t *testing.T) {
	mw, codec := newAuthMiddleware(t)

	invoked := 0
	handler := mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		invoked++
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, tokenRequest(t, codec, model.Identity{ID: 4, Username: "alice", IsAdmin: false}))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, invoked, "handler must not run without admin privilege")
}

func TestRequireAdmin_AnonymousGets401Not403(t *testing.T) {
	mw, _ := newAuthMiddleware(t)

	handler := mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin_AdminPasses(t *testing.T) {
	mw, codec := newAuthMiddleware(t)

	invoked := 0
	handler := mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		invoked++
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, tokenRequest(t, codec, model.Identity{ID: 1, Username: "root", IsAdmin: true}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, invoked)
}

func TestRequireAuth_ExpiredTokenCollapsesTo401(t *testing.T) {
	// The HTTP boundary must not distinguish expired from malformed.
	mw, _ := newAuthMiddleware(t)

	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, value := range []string{"garbage", "a.b", "expired.token.value"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.TokenCookie, Value: value})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}
