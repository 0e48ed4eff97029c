package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cleanapi/cleanapi/internal/config"
	"github.com/cleanapi/cleanapi/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testClientID = "apitest01"
	testSecret   = "test_password"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info", ShutdownTimeoutSeconds: 1},
		Auth: config.AuthConfig{
			JWTSecret:            "router-test-secret-that-is-long-enough",
			TokenLifetimeMinutes: 60,
			BcryptCost:           bcrypt.MinCost,
			LoginRatePerSecond:   100,
			LoginBurst:           100,
		},
		Storage: config.StorageConfig{Backend: "local", LocalRoot: "unused", MaxUploadBytes: 1 << 20},
	}
}

func newTestApplication(t *testing.T, cfg *config.Config) (*application, http.Handler) {
	t.Helper()

	deps := dependencies{
		users:       mocks.NewMockUserStore(),
		credentials: mocks.NewMockCredentialStore(),
		devices:     mocks.NewMockDeviceStore(),
		files:       mocks.NewMockFileStore(),
		runTx:       mocks.TxRunner(),
		objects:     mocks.NewMockObjectStore(),
	}
	app, err := newApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), deps)
	require.NoError(t, err)
	t.Cleanup(app.cleanup)

	require.NoError(t, app.seed(context.Background(), testClientID+":"+testSecret))
	return app, app.setupRouter()
}

func do(t *testing.T, h http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/auth/login",
		`{"client_id":"`+testClientID+`","client_secret":"`+testSecret+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestHealth(t *testing.T) {
	t.Parallel()
	_, h := newTestApplication(t, testConfig())

	rec, env := do(t, h, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, env.Status)
	assert.Equal(t, "success", env.Message)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}

func TestLoginThenMe(t *testing.T) {
	t.Parallel()
	_, h := newTestApplication(t, testConfig())

	token := login(t, h)
	rec, env := do(t, h, http.MethodGet, "/auth/me", "", token)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me struct {
		UserID   string `json:"user_id"`
		ClientID string `json:"client_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, testClientID, me.ClientID)
	assert.NotEmpty(t, me.UserID)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()
	_, h := newTestApplication(t, testConfig())

	tests := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{name: "me without token", method: http.MethodGet, path: "/auth/me"},
		{name: "users without token", method: http.MethodGet, path: "/user"},
		{name: "devices without token", method: http.MethodGet, path: "/device"},
		{name: "batch without token", method: http.MethodPut, path: "/device/batch"},
		{name: "files without token", method: http.MethodGet, path: "/file"},
		{name: "garbage token", method: http.MethodGet, path: "/auth/me", token: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, env := do(t, h, tt.method, tt.path, "", tt.token)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, http.StatusUnauthorized, env.Status)
			assert.Equal(t, "null", string(env.Data))
		})
	}
}

func TestAuthenticatedResourceRoutes(t *testing.T) {
	t.Parallel()
	_, h := newTestApplication(t, testConfig())
	token := login(t, h)

	rec, env := do(t, h, http.MethodPost, "/device",
		`{"name":"Kitchen sensor","device_os":"linux"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	rec, _ = do(t, h, http.MethodGet, "/device/"+created.ID, "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodGet, "/device", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	var devices []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &devices))
	assert.Len(t, devices, 1)

	rec, _ = do(t, h, http.MethodGet, "/user", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()
	_, h := newTestApplication(t, testConfig())

	rec, env := do(t, h, http.MethodGet, "/nope", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", env.Message)
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()
	_, h := newTestApplication(t, testConfig())

	rec, env := do(t, h, http.MethodDelete, "/health", "", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.StatusMethodNotAllowed, env.Status)
	assert.Equal(t, "Method not allowed", env.Message)
	assert.Equal(t, "null", string(env.Data))
}

func TestLoginIsRateLimited(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Auth.LoginRatePerSecond = 0.001
	cfg.Auth.LoginBurst = 2
	_, h := newTestApplication(t, cfg)

	body := `{"client_id":"` + testClientID + `","client_secret":"wrong"}`
	for i := 0; i < 2; i++ {
		rec, _ := do(t, h, http.MethodPost, "/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec, env := do(t, h, http.MethodPost, "/auth/login", body, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, http.StatusTooManyRequests, env.Status)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestLoginRateLimitIgnoresForwardedFor(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Auth.LoginRatePerSecond = 0.001
	cfg.Auth.LoginBurst = 2
	_, h := newTestApplication(t, cfg)

	body := `{"client_id":"` + testClientID + `","client_secret":"wrong"}`
	counts := make(map[int]int)
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		counts[rec.Code]++
	}

	assert.Equal(t, 2, counts[http.StatusUnauthorized])
	assert.Equal(t, 18, counts[http.StatusTooManyRequests])
}

func TestUploadRequestSizeLimit(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Storage.MaxUploadBytes = 1024
	_, h := newTestApplication(t, cfg)
	token := login(t, h)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "big.txt")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), 256<<10))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}
