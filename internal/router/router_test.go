package router_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"boxmgr/internal/auth"
	"boxmgr/internal/config"
	"boxmgr/internal/handler"
	"boxmgr/internal/middleware"
	"boxmgr/internal/model"
	"boxmgr/internal/repository"
	"boxmgr/internal/router"
	"boxmgr/internal/service"
	"boxmgr/internal/token"
)

type fixture struct {
	server   *httptest.Server
	codec    *token.Codec
	users    *repository.MockUserStore
	boxes    *repository.MockBoxStore
	items    *repository.MockItemStore
	settings *repository.MockSettingStore
	vision   *repository.MockVisionClient
}

// newFixture wires the real router, middleware and services over mock
// stores, so requests exercise the full HTTP path.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	codec, err := token.NewCodec("router-test-secret", time.Hour)
	require.NoError(t, err)

	users := new(repository.MockUserStore)
	categories := new(repository.MockCategoryStore)
	boxes := new(repository.MockBoxStore)
	items := new(repository.MockItemStore)
	settings := new(repository.MockSettingStore)
	visionClient := new(repository.MockVisionClient)

	resolver := auth.NewResolver(codec)
	inventory := service.NewInventoryService(categories, boxes, items)

	cfg := &config.Config{
		RequestTimeout: 10 * time.Second,
		SessionTTL:     time.Hour,
	}

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(service.NewAuthService(users, codec), resolver, cfg.SessionTTL, false),
		User:     handler.NewUserHandler(service.NewUserService(users)),
		Category: handler.NewCategoryHandler(inventory),
		Box:      handler.NewBoxHandler(inventory),
		Scan:     handler.NewScanHandler(service.NewScanService(boxes, items, settings, visionClient)),
		Search:   handler.NewSearchHandler(inventory),
		Setting:  handler.NewSettingHandler(settings),
		Health:   handler.NewHealthHandler(healthOK{}),
	}

	server := httptest.NewServer(router.New(cfg, middleware.NewAuthMiddleware(resolver), h))
	t.Cleanup(server.Close)

	return &fixture{
		server:   server,
		codec:    codec,
		users:    users,
		boxes:    boxes,
		items:    items,
		settings: settings,
		vision:   visionClient,
	}
}

type healthOK struct{}

func (healthOK) Health(_ context.Context) error { return nil }

func bcryptTestHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func scanTestDataURL(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func (f *fixture) tokenFor(t *testing.T, identity model.Identity) string {
	t.Helper()
	tok, err := f.codec.Issue(identity)
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(t *testing.T, method, path string, body any, decorate func(*http.Request)) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if decorate != nil {
		decorate(req)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func withBearer(tok string) func(*http.Request) {
	return func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+tok) }
}

func decode(t *testing.T, resp *http.Response) model.APIResponse {
	t.Helper()
	var body model.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestLoginSetsSessionCookies(t *testing.T) {
	f := newFixture(t)

	hash := bcryptTestHash(t, "pass123")
	f.users.On("FindByUsername", mock.Anything, "alice").Return(model.User{
		ID: 1, Username: "alice", PasswordHash: hash, IsAdmin: true,
	}, nil)

	resp := f.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "alice", "password": "pass123",
	}, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookies := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c
	}

	tokenCookie := cookies[auth.TokenCookie]
	require.NotNil(t, tokenCookie)
	assert.True(t, tokenCookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, tokenCookie.SameSite)

	identity, err := f.codec.Verify(tokenCookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)

	flagCookie := cookies[auth.FlagCookie]
	require.NotNil(t, flagCookie)
	assert.False(t, flagCookie.HttpOnly)
}

func TestFirstRunFlow(t *testing.T) {
	f := newFixture(t)

	hash := bcryptTestHash(t, "pw1234")
	admin := model.User{ID: 1, Username: "admin", PasswordHash: hash, IsAdmin: true}

	f.users.On("Count", mock.Anything).Return(0, nil).Twice()
	f.users.On("Count", mock.Anything).Return(1, nil)
	f.users.On("Create", mock.Anything, "admin", mock.Anything, true).Return(admin, nil)
	f.users.On("FindByUsername", mock.Anything, "admin").Return(admin, nil)

	resp := f.do(t, http.MethodGet, "/api/v1/auth/check-users", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decode(t, resp).Data.(map[string]any)
	require.Equal(t, false, data["hasUsers"])

	resp = f.do(t, http.MethodPost, "/api/v1/auth/setup", map[string]string{
		"username": "admin", "password": "pw1234",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "admin", "password": "pw1234",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = decode(t, resp).Data.(map[string]any)
	assert.Equal(t, true, data["isAdmin"])

	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == auth.TokenCookie {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	resp = f.do(t, http.MethodGet, "/api/v1/auth/verify", nil, func(req *http.Request) {
		req.AddCookie(sessionCookie)
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = decode(t, resp).Data.(map[string]any)
	assert.Equal(t, true, data["authenticated"])
	assert.Equal(t, "admin", data["user"].(map[string]any)["username"])

	// Setup is a one-shot door; it closes once a user exists.
	resp = f.do(t, http.MethodPost, "/api/v1/auth/setup", map[string]string{
		"username": "intruder", "password": "pw",
	}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestInvalidIDReturns400WithDetails(t *testing.T) {
	f := newFixture(t)

	tok := f.tokenFor(t, model.Identity{ID: 1, Username: "alice", IsAdmin: true})
	resp := f.do(t, http.MethodGet, "/api/v1/users/abc", nil, withBearer(tok))

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "INVALID_INPUT", body.Error.Code)
	assert.Equal(t, "Invalid user ID", body.Error.Message)
	assert.Equal(t, "abc", body.Error.Details)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	f := newFixture(t)

	f.users.On("FindByUsername", mock.Anything, "alice").Return(model.User{
		ID: 1, Username: "alice", PasswordHash: bcryptTestHash(t, "pass123"),
	}, nil)

	resp := f.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "alice", "password": "nope",
	}, nil)

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	assert.False(t, body.Success)
	assert.Equal(t, "Invalid credentials", body.Error.Message)
	assert.Empty(t, resp.Cookies())
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/api/v1/boxes/", "/api/v1/search?q=x", "/api/v1/settings/"} {
		resp := f.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "path %s", path)
	}
}

func TestUserRoutesRequireAdmin(t *testing.T) {
	f := newFixture(t)

	t.Run("anonymous gets 401", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/v1/users/", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("authenticated non-admin gets 403", func(t *testing.T) {
		tok := f.tokenFor(t, model.Identity{ID: 2, Username: "bob"})
		resp := f.do(t, http.MethodGet, "/api/v1/users/", nil, withBearer(tok))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin gets through", func(t *testing.T) {
		f.users.On("List", mock.Anything).Return([]model.User{
			{ID: 1, Username: "alice", IsAdmin: true},
		}, nil)

		tok := f.tokenFor(t, model.Identity{ID: 1, Username: "alice", IsAdmin: true})
		resp := f.do(t, http.MethodGet, "/api/v1/users/", nil, withBearer(tok))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestDeleteLastAdminReturns400(t *testing.T) {
	f := newFixture(t)

	f.users.On("Delete", mock.Anything, int64(1)).Return(model.ErrLastAdmin)

	tok := f.tokenFor(t, model.Identity{ID: 1, Username: "alice", IsAdmin: true})
	resp := f.do(t, http.MethodDelete, "/api/v1/users/1", nil, withBearer(tok))

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "LAST_ADMIN", body.Error.Code)
	assert.Equal(t, "Cannot remove the last admin user", body.Error.Message)
}

func TestVerifyReportsSessionState(t *testing.T) {
	f := newFixture(t)

	t.Run("anonymous", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/v1/auth/verify", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode(t, resp)
		data := body.Data.(map[string]any)
		assert.Equal(t, false, data["authenticated"])
	})

	t.Run("signed token", func(t *testing.T) {
		tok := f.tokenFor(t, model.Identity{ID: 1, Username: "alice", IsAdmin: true})
		resp := f.do(t, http.MethodGet, "/api/v1/auth/verify", nil, withBearer(tok))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data := decode(t, resp).Data.(map[string]any)
		assert.Equal(t, true, data["authenticated"])
		user := data["user"].(map[string]any)
		assert.Equal(t, "alice", user["username"])
	})

	t.Run("legacy cookie", func(t *testing.T) {
		legacy := url.QueryEscape(`{"id":4,"username":"carol","isAdmin":false}`)
		resp := f.do(t, http.MethodGet, "/api/v1/auth/verify", nil, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: auth.LegacyCookie, Value: legacy})
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data := decode(t, resp).Data.(map[string]any)
		assert.Equal(t, true, data["authenticated"])
		assert.Equal(t, true, data["legacy"])
	})
}

func TestLegacyCookieGrantsAccessButInvalidTokenDoesNot(t *testing.T) {
	f := newFixture(t)

	f.boxes.On("List", mock.Anything, (*int64)(nil)).Return([]model.BoxWithCategory{}, nil)

	t.Run("legacy cookie alone works", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/v1/boxes/", nil, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: auth.LegacyCookie, Value: "someone"})
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("tampered token does not fall back to legacy", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/v1/boxes/", nil, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: auth.TokenCookie, Value: "forged.token"})
			req.AddCookie(&http.Cookie{Name: auth.LegacyCookie, Value: "user"})
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogoutClearsCookies(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cleared := map[string]bool{}
	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	assert.True(t, cleared[auth.TokenCookie])
	assert.True(t, cleared[auth.FlagCookie])
	assert.True(t, cleared[auth.LegacyCookie])
}

func TestScanEndpoint(t *testing.T) {
	f := newFixture(t)

	f.boxes.On("Exists", mock.Anything, int64(3)).Return(true, nil)
	f.settings.On("GetValue", mock.Anything, service.SettingVisionAPIKey).Return("sk-test", nil)
	f.vision.On("DetectItems", mock.Anything, "sk-test", mock.Anything).Return([]string{"Lamp"}, nil)
	f.items.On("AddNamesToBox", mock.Anything, int64(3), []string{"Lamp"}).Return([]string{"Lamp"}, nil)

	tok := f.tokenFor(t, model.Identity{ID: 2, Username: "bob"})
	resp := f.do(t, http.MethodPost, "/api/v1/boxes/3/scan", map[string]string{
		"image": scanTestDataURL(t),
	}, withBearer(tok))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decode(t, resp).Data.(map[string]any)
	assert.Equal(t, []any{"Lamp"}, data["addedItems"])
}

func TestSettingsMaskSecrets(t *testing.T) {
	f := newFixture(t)

	f.settings.On("List", mock.Anything).Return([]model.Setting{
		{Key: "anthropic_api_key", Value: "sk-ant-secret-1234"},
		{Key: "display_name", Value: "Garage"},
	}, nil)

	tok := f.tokenFor(t, model.Identity{ID: 2, Username: "bob"})
	resp := f.do(t, http.MethodGet, "/api/v1/settings/", nil, withBearer(tok))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	settings := decode(t, resp).Data.([]any)
	require.Len(t, settings, 2)

	first := settings[0].(map[string]any)
	assert.Equal(t, "****1234", first["value"])
	second := settings[1].(map[string]any)
	assert.Equal(t, "Garage", second["value"])
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
