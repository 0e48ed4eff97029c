package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	actor := uuid.New()

	t.Run("valid user", func(t *testing.T) {
		t.Parallel()
		user, err := NewUser("  alice ", "alice@example.com", actor)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.True(t, user.CreatedBy.Valid)
		assert.Equal(t, actor, user.CreatedBy.UUID)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("system actor leaves audit columns null", func(t *testing.T) {
		t.Parallel()
		user, err := NewUser("seed", "seed@example.com", uuid.Nil)
		require.NoError(t, err)
		assert.False(t, user.CreatedBy.Valid)
		assert.False(t, user.ModifiedBy.Valid)
	})

	tests := []struct {
		name     string
		username string
		email    string
		field    string
	}{
		{"missing username", "", "a@example.com", "username"},
		{"long username", strings.Repeat("u", 65), "a@example.com", "username"},
		{"missing email", "bob", "", "email"},
		{"invalid email", "bob", "not-an-email", "email"},
		{"display name email", "bob", "Bob <bob@example.com>", "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewUser(tt.username, tt.email, actor)
			require.Error(t, err)

			var de *Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, KindValidationFailed, de.Kind)
			assert.Equal(t, tt.field, de.Field)
		})
	}
}

func TestUserTouch(t *testing.T) {
	t.Parallel()

	user, err := NewUser("carol", "carol@example.com", uuid.Nil)
	require.NoError(t, err)
	before := user.ModifiedAt

	actor := uuid.New()
	user.Touch(actor)

	assert.True(t, user.ModifiedBy.Valid)
	assert.Equal(t, actor, user.ModifiedBy.UUID)
	assert.False(t, user.ModifiedAt.Before(before))
}

func TestCredentialValidate(t *testing.T) {
	t.Parallel()

	valid := Credential{UserID: uuid.New(), ClientID: "apitest01", SecretHash: "$2a$10$hash"}
	require.NoError(t, valid.Validate())

	noUser := valid
	noUser.UserID = uuid.Nil
	assert.Error(t, noUser.Validate())

	shortID := valid
	shortID.ClientID = "ab"
	assert.Error(t, shortID.Validate())

	noHash := valid
	noHash.SecretHash = ""
	assert.Error(t, noHash.Validate())
}
