package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cleanapi/cleanapi/internal/api/shared"
	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/platform/logger"
	"github.com/cleanapi/cleanapi/internal/service/auth"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// Authenticate validates the bearer token of the request. Requests without a
// valid token get a 401 envelope; otherwise the identity from the token is
// attached to the context and the request continues.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r.Header.Get("Authorization"))
		if err != nil {
			shared.RespondWithError(w, r, err)
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			var de *domain.Error
			if !errors.As(err, &de) {
				err = domain.WrapError(auth.ErrInvalidToken.Kind, auth.ErrInvalidToken.Message, err)
			}
			shared.RespondWithError(w, r, err)
			return
		}

		identity := claims.Identity()
		ctx := shared.WithIdentity(r.Context(), identity)
		log := logger.FromContext(ctx).With("user_id", identity.UserID)
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", auth.ErrMissingToken
	}

	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", auth.ErrMissingToken
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", auth.ErrMalformedToken
	}
	return token, nil
}
