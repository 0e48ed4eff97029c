package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated principal attached to a request.
// It is a value type: handlers receive copies and cannot change what the
// middleware stored.
type Identity struct {
	UserID    uuid.UUID
	ClientID  string
	TokenID   string
	ExpiresAt time.Time
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i.UserID == uuid.Nil
}

// Credential binds a client id to the bcrypt hash of its secret.
// The hash never leaves the server.
type Credential struct {
	UserID     uuid.UUID `json:"user_id"`
	ClientID   string    `json:"client_id"`
	SecretHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Validate checks the credential has every required field.
func (c *Credential) Validate() error {
	if c.UserID == uuid.Nil {
		return NewValidationError("user_id", "is required", ErrValidation)
	}
	if err := validateClientID(c.ClientID); err != nil {
		return err
	}
	if c.SecretHash == "" {
		return NewValidationError("client_secret", "is required", ErrValidation)
	}
	return nil
}

func validateClientID(clientID string) error {
	n := len(clientID)
	if n == 0 {
		return NewValidationError("client_id", "is required", ErrValidation)
	}
	if n < 4 || n > 64 {
		return NewValidationError("client_id", "must be between 4 and 64 characters", ErrValidation)
	}
	return nil
}
