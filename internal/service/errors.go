// Package service provides the application services for users, devices and
// uploaded files. Services translate store errors into domain errors so that
// the api layer only ever sees *domain.Error values.
package service

import (
	"context"
	"errors"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/store"
)

// Service errors returned for expected conditions.
var (
	// ErrUserNotFound is returned when the requested user does not exist.
	ErrUserNotFound = domain.NewError(domain.KindNotFound, "User not found")

	// ErrDeviceNotFound is returned when the requested device does not exist.
	ErrDeviceNotFound = domain.NewError(domain.KindNotFound, "Device not found")

	// ErrFileNotFound is returned when the requested file does not exist.
	ErrFileNotFound = domain.NewError(domain.KindNotFound, "File not found")

	// ErrNotOwned indicates a resource is owned by a different user than the one making the request.
	ErrNotOwned = domain.ErrForbidden

	// ErrFileTooLarge is returned when an upload exceeds the configured limit.
	ErrFileTooLarge = domain.NewError(domain.KindPayloadTooLarge, "File exceeds the maximum upload size")
)

// conflictMessages gives client-facing text for specific duplicate errors.
var conflictMessages = []struct {
	err     error
	message string
}{
	{store.ErrUsernameExists, "Username is already taken"},
	{store.ErrEmailExists, "Email is already registered"},
	{store.ErrClientIDExists, "Client id is already in use"},
}

// translate converts a store error into a domain error. notFound is used for
// not-found errors. The original error stays in the chain for logging.
func translate(err error, notFound *domain.Error) error {
	if err == nil {
		return nil
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}

	switch {
	case store.IsNotFoundError(err):
		if errors.Is(err, store.ErrUserNotFound) {
			notFound = ErrUserNotFound
		}
		if notFound == nil {
			return domain.WrapError(domain.KindNotFound, "Resource not found", err)
		}
		return domain.WrapError(notFound.Kind, notFound.Message, err)

	case store.IsDuplicateError(err):
		for _, c := range conflictMessages {
			if errors.Is(err, c.err) {
				return domain.WrapError(domain.KindConflict, c.message, err)
			}
		}
		return domain.WrapError(domain.KindConflict, "Resource already exists", err)

	case errors.Is(err, store.ErrInvalidEntity):
		return domain.WrapError(domain.KindValidationFailed, "Invalid data", err)

	case errors.Is(err, store.ErrTransactionFailed),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return domain.WrapError(domain.KindUnavailable, "Service temporarily unavailable", err)
	}

	return domain.WrapError(domain.KindInternal, "An unexpected error occurred", err)
}
