package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. Credentials live in a separate
// Credential record so that profile data can be returned without ever
// touching secret material.
type User struct {
	ID         uuid.UUID     `json:"id"`
	Username   string        `json:"username"`
	Email      string        `json:"email"`
	CreatedBy  uuid.NullUUID `json:"created_by"`
	CreatedAt  time.Time     `json:"created_at"`
	ModifiedBy uuid.NullUUID `json:"modified_by"`
	ModifiedAt time.Time     `json:"modified_at"`
}

// NewUser creates a new User with a fresh id and timestamps.
// actor is the identity performing the creation; uuid.Nil when the system
// itself creates the user (for example when seeding).
func NewUser(username, email string, actor uuid.UUID) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:         uuid.New(),
		Username:   strings.TrimSpace(username),
		Email:      strings.TrimSpace(email),
		CreatedBy:  nullUUID(actor),
		CreatedAt:  now,
		ModifiedBy: nullUUID(actor),
		ModifiedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}

	if u.Username == "" {
		return NewValidationError("username", "is required", ErrValidation)
	}
	if len(u.Username) > 64 {
		return NewValidationError("username", "must be at most 64 characters", ErrValidation)
	}

	if u.Email == "" {
		return NewValidationError("email", "is required", ErrValidation)
	}
	if addr, err := mail.ParseAddress(u.Email); err != nil || addr.Address != u.Email {
		return NewValidationError("email", "has invalid format", ErrValidation)
	}

	return nil
}

// Touch records a modification by actor.
func (u *User) Touch(actor uuid.UUID) {
	u.ModifiedBy = nullUUID(actor)
	u.ModifiedAt = time.Now().UTC()
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
