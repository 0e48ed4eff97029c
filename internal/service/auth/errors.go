package auth

import "github.com/cleanapi/cleanapi/internal/domain"

// Authentication errors. Each carries the kind the boundary mapper turns into
// a status code; the messages are safe to show to clients.
var (
	// ErrInvalidCredentials covers both an unknown client id and a wrong
	// secret so callers cannot probe which client ids exist.
	ErrInvalidCredentials = domain.NewError(domain.KindInvalidCredentials, "Invalid credentials")

	// ErrMissingToken indicates no bearer token was presented.
	ErrMissingToken = domain.NewError(domain.KindTokenMissing, "Authentication token is missing")

	// ErrMalformedToken indicates the bearer value is not a JWT.
	ErrMalformedToken = domain.NewError(domain.KindTokenMalformed, "Authentication token is malformed")

	// ErrInvalidToken indicates a bad signature, algorithm or claim set.
	ErrInvalidToken = domain.NewError(domain.KindTokenInvalidSignature, "Authentication token is invalid")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = domain.NewError(domain.KindTokenExpired, "Authentication token has expired")
)

// unavailable wraps a credential store failure.
func unavailable(err error) error {
	return domain.WrapError(domain.KindUnavailable, "Authentication is temporarily unavailable", err)
}
