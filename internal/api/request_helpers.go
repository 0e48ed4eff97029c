package api

import (
	"net/http"
	"strconv"

	"github.com/cleanapi/cleanapi/internal/api/shared"
	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/service/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// identity returns the authenticated caller. Routes using it must be behind
// the auth middleware; a missing identity is reported as a missing token.
func identity(r *http.Request) (domain.Identity, error) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		return domain.Identity{}, auth.ErrMissingToken
	}
	return id, nil
}

// pathUUID extracts and parses a UUID path parameter.
func pathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// callerAndPathUUID returns the caller's identity and the {id} path parameter.
func callerAndPathUUID(r *http.Request) (domain.Identity, uuid.UUID, error) {
	caller, err := identity(r)
	if err != nil {
		return domain.Identity{}, uuid.Nil, err
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		return domain.Identity{}, uuid.Nil, err
	}
	return caller, id, nil
}

// queryInt parses an optional integer query parameter. An absent parameter
// yields def.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", domain.ErrValidation)
	}
	return n, nil
}

// decodeAndValidate decodes the JSON body into req and validates it.
func decodeAndValidate(r *http.Request, req any) error {
	if err := shared.DecodeJSON(r, req); err != nil {
		return err
	}
	return shared.ValidateRequest(req)
}
