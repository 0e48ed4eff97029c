package auth

import (
	"context"
	"sync"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/platform/logger"
	"github.com/cleanapi/cleanapi/internal/redact"
	"github.com/cleanapi/cleanapi/internal/store"
	"github.com/google/uuid"
)

// Authenticator verifies client credentials against the credential store.
type Authenticator struct {
	credentials store.CredentialStore
	verifier    PasswordVerifier
	hasher      PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthenticator creates an Authenticator. hasher produces the hash compared
// against when a client id is unknown, so it should use the same cost as
// stored credentials.
func NewAuthenticator(
	credentials store.CredentialStore,
	verifier PasswordVerifier,
	hasher PasswordHasher,
) *Authenticator {
	return &Authenticator{
		credentials: credentials,
		verifier:    verifier,
		hasher:      hasher,
	}
}

// Verify returns the identity bound to clientID when secret matches.
// Unknown client ids and wrong secrets both yield ErrInvalidCredentials.
func (a *Authenticator) Verify(ctx context.Context, clientID, secret string) (domain.Identity, error) {
	log := logger.FromContext(ctx)

	cred, err := a.credentials.GetByClientID(ctx, clientID)
	if err != nil {
		if store.IsNotFoundError(err) {
			// Burn a comparison so response time does not reveal whether
			// the client id exists.
			_ = a.verifier.Compare(a.dummy(), secret)
			log.Debug("login rejected: unknown client id")
			return domain.Identity{}, ErrInvalidCredentials
		}
		log.Error("credential lookup failed", "error", redact.Error(err))
		return domain.Identity{}, unavailable(err)
	}

	if err := a.verifier.Compare(cred.SecretHash, secret); err != nil {
		log.Debug("login rejected: secret mismatch", "user_id", cred.UserID)
		return domain.Identity{}, ErrInvalidCredentials
	}

	return domain.Identity{UserID: cred.UserID, ClientID: cred.ClientID}, nil
}

// FallbackDummyHash is a valid bcrypt hash at bcrypt.DefaultCost. It is
// compared against for unknown client ids when the hasher cannot produce a
// fresh dummy hash.
const FallbackDummyHash = "$2a$10$XajjQvNhvvRt5GSeFk1xFeyqRrsxkhBkUiQeg0dt.wU1qD4aFDcga"

func (a *Authenticator) dummy() string {
	a.dummyOnce.Do(func() {
		a.dummyHash = FallbackDummyHash
		if hash, err := a.hasher.Hash(uuid.NewString()); err == nil && hash != "" {
			a.dummyHash = hash
		}
	})
	return a.dummyHash
}
