package shared

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cleanapi/cleanapi/internal/domain"
)

// MessageInternal is shown for every error that carries no safe message.
const MessageInternal = "An unexpected error occurred"

// statusByKind is the only place that knows HTTP status codes for errors.
var statusByKind = map[domain.Kind]int{
	domain.KindInternal:              http.StatusInternalServerError,
	domain.KindInvalidCredentials:    http.StatusUnauthorized,
	domain.KindUnavailable:           http.StatusServiceUnavailable,
	domain.KindTokenMissing:          http.StatusUnauthorized,
	domain.KindTokenMalformed:        http.StatusUnauthorized,
	domain.KindTokenInvalidSignature: http.StatusUnauthorized,
	domain.KindTokenExpired:          http.StatusUnauthorized,
	domain.KindValidationFailed:      http.StatusBadRequest,
	domain.KindNotFound:              http.StatusNotFound,
	domain.KindForbidden:             http.StatusForbidden,
	domain.KindConflict:              http.StatusConflict,
	domain.KindPayloadTooLarge:       http.StatusRequestEntityTooLarge,
	domain.KindRateLimited:           http.StatusTooManyRequests,
	domain.KindMethodNotAllowed:      http.StatusMethodNotAllowed,
}

// StatusFor returns the HTTP status for kind. Unknown kinds are 500.
func StatusFor(kind domain.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// CheckStatusTable verifies that every error kind has a status code. The
// server refuses to start when it fails.
func CheckStatusTable() error {
	var missing []error
	for _, kind := range domain.Kinds() {
		if _, ok := statusByKind[kind]; !ok {
			missing = append(missing, fmt.Errorf("error kind %s has no HTTP status", kind))
		}
	}
	return errors.Join(missing...)
}

// SafeMessage returns the client-facing text for err. Only messages set on a
// *domain.Error reach clients; internal errors always get a generic text.
func SafeMessage(err error) string {
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind == domain.KindInternal || de.Message == "" {
		return MessageInternal
	}
	if de.Field != "" {
		return de.Field + " " + de.Message
	}
	return de.Message
}
