package auth

import (
	"context"
	"time"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/google/uuid"
)

// JWTService issues and validates access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the user and client.
	// It returns the token and its expiry.
	GenerateToken(ctx context.Context, userID uuid.UUID, clientID string) (string, time.Time, error)

	// ValidateToken verifies signature and expiry and returns the claims.
	// Errors are ErrMalformedToken, ErrInvalidToken or ErrExpiredToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of an access token.
type Claims struct {
	UserID    uuid.UUID
	ClientID  string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// Identity converts the claims to the identity attached to a request.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{
		UserID:    c.UserID,
		ClientID:  c.ClientID,
		TokenID:   c.ID,
		ExpiresAt: c.ExpiresAt,
	}
}
