package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/redact"
	"github.com/cleanapi/cleanapi/internal/service/auth"
	"github.com/cleanapi/cleanapi/internal/store"
	"github.com/google/uuid"
)

// Paging bounds for ListUsers.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CreateUserInput holds the fields of a new user. ClientID and ClientSecret
// are optional; when both are set a credential is created with the user.
type CreateUserInput struct {
	Username     string
	Email        string
	ClientID     string
	ClientSecret string
}

// UpdateUserInput holds the profile fields to change. Nil fields are kept.
type UpdateUserInput struct {
	Username *string
	Email    *string
}

// UserService provides user management operations.
type UserService interface {
	CreateUser(ctx context.Context, actor uuid.UUID, in CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error)

	// UpdateUser, DeleteUser and SetCredential only act on the caller's own
	// account and return domain.ErrForbidden otherwise.
	UpdateUser(ctx context.Context, actor, id uuid.UUID, in UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, actor, id uuid.UUID) error
	SetCredential(ctx context.Context, actor, id uuid.UUID, clientID, secret string) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users       store.UserStore
	credentials store.CredentialStore
	hasher      auth.PasswordHasher
	runTx       store.TxRunner
	logger      *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	users store.UserStore,
	credentials store.CredentialStore,
	hasher auth.PasswordHasher,
	runTx store.TxRunner,
	logger *slog.Logger,
) *UserServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		users:       users,
		credentials: credentials,
		hasher:      hasher,
		runTx:       runTx,
		logger:      logger.With("component", "user_service"),
	}
}

var _ UserService = (*UserServiceImpl)(nil)

// CreateUser creates the user and, when requested, its credential in a
// single transaction.
func (s *UserServiceImpl) CreateUser(
	ctx context.Context,
	actor uuid.UUID,
	in CreateUserInput,
) (*domain.User, error) {
	user, err := domain.NewUser(in.Username, in.Email, actor)
	if err != nil {
		return nil, err
	}

	var cred *domain.Credential
	if in.ClientID != "" || in.ClientSecret != "" {
		cred, err = s.newCredential(user.ID, in.ClientID, in.ClientSecret)
		if err != nil {
			return nil, err
		}
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		if cred != nil {
			return s.credentials.WithTx(tx).Upsert(ctx, cred)
		}
		return nil
	})
	if err != nil {
		s.logFailure("failed to create user", err, "username", user.Username)
		return nil, translate(err, nil)
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"created_by", actor,
		"with_credential", cred != nil)
	return user, nil
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		s.logFailure("failed to retrieve user", err, "user_id", id)
		return nil, translate(err, ErrUserNotFound)
	}
	return user, nil
}

// ListUsers returns a page of users. Out-of-range paging values are clamped.
func (s *UserServiceImpl) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		s.logFailure("failed to list users", err)
		return nil, translate(err, nil)
	}
	return users, nil
}

// UpdateUser changes username and/or email of the caller's account.
func (s *UserServiceImpl) UpdateUser(
	ctx context.Context,
	actor, id uuid.UUID,
	in UpdateUserInput,
) (*domain.User, error) {
	if actor != id {
		return nil, domain.ErrForbidden
	}

	var updated *domain.User
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if in.Username != nil {
			user.Username = strings.TrimSpace(*in.Username)
		}
		if in.Email != nil {
			user.Email = strings.TrimSpace(*in.Email)
		}
		if err := user.Validate(); err != nil {
			return err
		}
		user.Touch(actor)

		if err := users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		s.logFailure("failed to update user", err, "user_id", id)
		return nil, translate(err, ErrUserNotFound)
	}

	s.logger.Info("user updated", "user_id", id)
	return updated, nil
}

// DeleteUser deletes the caller's account; devices, files and credentials
// go with it.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, actor, id uuid.UUID) error {
	if actor != id {
		return domain.ErrForbidden
	}

	if err := s.users.Delete(ctx, id); err != nil {
		s.logFailure("failed to delete user", err, "user_id", id)
		return translate(err, ErrUserNotFound)
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// SetCredential creates or rotates the caller's client credential.
func (s *UserServiceImpl) SetCredential(
	ctx context.Context,
	actor, id uuid.UUID,
	clientID, secret string,
) error {
	if actor != id {
		return domain.ErrForbidden
	}

	cred, err := s.newCredential(id, clientID, secret)
	if err != nil {
		return err
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.users.WithTx(tx).GetByID(ctx, id); err != nil {
			return err
		}
		return s.credentials.WithTx(tx).Upsert(ctx, cred)
	})
	if err != nil {
		s.logFailure("failed to set credential", err, "user_id", id)
		return translate(err, ErrUserNotFound)
	}

	s.logger.Info("credential updated", "user_id", id, "client_id", clientID)
	return nil
}

// EnsureCredential creates the user and credential unless the client id is
// already registered. It is used to seed a demo identity at startup.
func (s *UserServiceImpl) EnsureCredential(
	ctx context.Context,
	clientID, secret string,
) (uuid.UUID, bool, error) {
	existing, err := s.credentials.GetByClientID(ctx, clientID)
	if err == nil {
		return existing.UserID, false, nil
	}
	if !store.IsNotFoundError(err) {
		return uuid.Nil, false, translate(err, nil)
	}

	user, err := s.CreateUser(ctx, uuid.Nil, CreateUserInput{
		Username:     clientID,
		Email:        clientID + "@example.com",
		ClientID:     clientID,
		ClientSecret: secret,
	})
	if err != nil {
		return uuid.Nil, false, err
	}
	return user.ID, true, nil
}

func (s *UserServiceImpl) newCredential(userID uuid.UUID, clientID, secret string) (*domain.Credential, error) {
	if secret == "" {
		return nil, domain.NewValidationError("client_secret", "is required", domain.ErrValidation)
	}
	if len(secret) > 72 {
		// bcrypt only reads the first 72 bytes.
		return nil, domain.NewValidationError("client_secret", "must be at most 72 bytes", domain.ErrValidation)
	}

	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, domain.WrapError(domain.KindInternal, "An unexpected error occurred", err)
	}

	now := time.Now().UTC()
	cred := &domain.Credential{
		UserID:     userID,
		ClientID:   strings.TrimSpace(clientID),
		SecretHash: hash,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := cred.Validate(); err != nil {
		return nil, err
	}
	return cred, nil
}

// logFailure logs expected client errors at debug and everything else at
// error, with the cause redacted.
func (s *UserServiceImpl) logFailure(msg string, err error, args ...any) {
	logFailure(s.logger, msg, err, args...)
}

func logFailure(logger *slog.Logger, msg string, err error, args ...any) {
	args = append(args, "error", redact.Error(err))
	switch domain.KindOf(translate(err, nil)) {
	case domain.KindInternal, domain.KindUnavailable:
		logger.Error(msg, args...)
	default:
		logger.Debug(msg, args...)
	}
}
