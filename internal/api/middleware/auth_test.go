package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cleanapi/cleanapi/internal/api/shared"
	"github.com/cleanapi/cleanapi/internal/config"
	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/mocks"
	"github.com/cleanapi/cleanapi/internal/service/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-characters-long"

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// identityEcho writes the identity found in the context.
func identityEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := shared.IdentityFromContext(r.Context())
		require.True(t, ok, "identity should be in context")
		shared.RespondWithEnvelope(w, r, http.StatusOK, "", map[string]string{
			"user_id":   id.UserID.String(),
			"client_id": id.ClientID,
		})
	})
}

func TestAuthenticate_RealTokens(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := func() time.Time { return now }
	svc, err := auth.NewJWTServiceWithClock(config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: 60,
	}, clock)
	require.NoError(t, err)

	other, err := auth.NewJWTServiceWithClock(config.AuthConfig{
		JWTSecret:            "another-secret-that-is-also-32-characters",
		TokenLifetimeMinutes: 60,
	}, clock)
	require.NoError(t, err)

	past, err := auth.NewJWTServiceWithClock(config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: 1,
	}, func() time.Time { return now.Add(-2 * time.Hour) })
	require.NoError(t, err)

	userID := uuid.New()
	ctx := context.Background()
	valid, _, err := svc.GenerateToken(ctx, userID, "apitest01")
	require.NoError(t, err)
	foreign, _, err := other.GenerateToken(ctx, userID, "apitest01")
	require.NoError(t, err)
	expired, _, err := past.GenerateToken(ctx, userID, "apitest01")
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantMessage string
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK, wantMessage: "success"},
		{name: "lowercase scheme", header: "bearer " + valid, wantStatus: http.StatusOK, wantMessage: "success"},
		{name: "uppercase scheme", header: "BEARER " + valid, wantStatus: http.StatusOK, wantMessage: "success"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantMessage: auth.ErrMissingToken.Message},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized, wantMessage: auth.ErrMissingToken.Message},
		{name: "token without scheme", header: valid, wantStatus: http.StatusUnauthorized, wantMessage: auth.ErrMissingToken.Message},
		{name: "bearer without token", header: "Bearer", wantStatus: http.StatusUnauthorized, wantMessage: auth.ErrMalformedToken.Message},
		{name: "bearer with blank token", header: "Bearer    ", wantStatus: http.StatusUnauthorized, wantMessage: auth.ErrMalformedToken.Message},
		{name: "not a jwt", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized, wantMessage: auth.ErrMalformedToken.Message},
		{name: "wrong key", header: "Bearer " + foreign, wantStatus: http.StatusUnauthorized, wantMessage: auth.ErrInvalidToken.Message},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantMessage: auth.ErrExpiredToken.Message},
	}

	handler := NewAuthMiddleware(svc).Authenticate(identityEcho(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.Equal(t, tt.wantStatus, env.Status)
			assert.Equal(t, tt.wantMessage, env.Message)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"user_id":"`+userID.String()+`","client_id":"apitest01"}`, string(env.Data))
			} else {
				assert.Equal(t, "null", string(env.Data))
			}
		})
	}
}

func TestAuthenticate_NonDomainErrorIsInvalid(t *testing.T) {
	t.Parallel()

	svc := &mocks.MockJWTService{Err: errors.New("unexpected failure")}
	handler := NewAuthMiddleware(svc).Authenticate(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/device", nil)
	req.Header.Set("Authorization", "Bearer a.b.c")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.ErrInvalidToken.Message, decodeEnvelope(t, rec).Message)
}

func TestAuthenticate_IdentityFromClaims(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	expires := time.Now().Add(time.Hour).UTC()
	svc := &mocks.MockJWTService{Claims: &auth.Claims{
		UserID:    userID,
		ClientID:  "svc-client",
		Subject:   userID.String(),
		ExpiresAt: expires,
		ID:        "jti-1",
	}}

	var got domain.Identity
	handler := NewAuthMiddleware(svc).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = shared.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer a.b.c")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, domain.Identity{
		UserID:    userID,
		ClientID:  "svc-client",
		TokenID:   "jti-1",
		ExpiresAt: expires,
	}, got)
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header  string
		token   string
		wantErr error
	}{
		{header: "Bearer abc.def.ghi", token: "abc.def.ghi"},
		{header: "  bEaReR   abc.def.ghi  ", token: "abc.def.ghi"},
		{header: "", wantErr: auth.ErrMissingToken},
		{header: "Token abc", wantErr: auth.ErrMissingToken},
		{header: "Bearer", wantErr: auth.ErrMalformedToken},
		{header: "Bearer a b", wantErr: auth.ErrMalformedToken},
	}

	for _, tt := range tests {
		token, err := bearerToken(tt.header)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, tt.header)
			continue
		}
		require.NoError(t, err, tt.header)
		assert.Equal(t, tt.token, token)
	}
}
