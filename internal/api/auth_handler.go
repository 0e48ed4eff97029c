package api

import (
	"context"
	"net/http"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/platform/logger"
	"github.com/cleanapi/cleanapi/internal/service/auth"
)

// CredentialVerifier checks a client id and secret pair.
type CredentialVerifier interface {
	Verify(ctx context.Context, clientID, secret string) (domain.Identity, error)
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	verifier   CredentialVerifier
	jwtService auth.JWTService
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(verifier CredentialVerifier, jwtService auth.JWTService) *AuthHandler {
	return &AuthHandler{
		verifier:   verifier,
		jwtService: jwtService,
	}
}

// Login handles POST /auth/login. It exchanges a client id and secret for an
// access token.
func (h *AuthHandler) Login(r *http.Request) (*Result, error) {
	var req LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return nil, err
	}

	id, err := h.verifier.Verify(r.Context(), req.ClientID, req.ClientSecret)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := h.jwtService.GenerateToken(r.Context(), id.UserID, id.ClientID)
	if err != nil {
		return nil, domain.WrapError(domain.KindInternal, "Failed to generate authentication token", err)
	}

	logger.FromContext(r.Context()).Info("login succeeded",
		"user_id", id.UserID,
		"client_id", id.ClientID)

	return OK(LoginResponse{Token: token, ExpiresAt: expiresAt.UTC()}), nil
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(r *http.Request) (*Result, error) {
	caller, err := identity(r)
	if err != nil {
		return nil, err
	}
	return OK(MeResponse{
		UserID:    caller.UserID,
		ClientID:  caller.ClientID,
		ExpiresAt: caller.ExpiresAt.UTC(),
	}), nil
}
