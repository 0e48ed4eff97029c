package api

import (
	"net/http"

	"github.com/cleanapi/cleanapi/internal/service"
)

// UserHandler serves the /user routes.
type UserHandler struct {
	users service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /user?limit=&offset=.
func (h *UserHandler) List(r *http.Request) (*Result, error) {
	limit, err := queryInt(r, "limit", service.DefaultPageSize)
	if err != nil {
		return nil, err
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		return nil, err
	}

	users, err := h.users.ListUsers(r.Context(), limit, offset)
	if err != nil {
		return nil, err
	}
	return OK(users), nil
}

// Create handles POST /user.
func (h *UserHandler) Create(r *http.Request) (*Result, error) {
	caller, err := identity(r)
	if err != nil {
		return nil, err
	}

	var req CreateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return nil, err
	}

	user, err := h.users.CreateUser(r.Context(), caller.UserID, service.CreateUserInput{
		Username:     req.Username,
		Email:        req.Email,
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
	})
	if err != nil {
		return nil, err
	}
	return Created(user), nil
}

// Get handles GET /user/{id}.
func (h *UserHandler) Get(r *http.Request) (*Result, error) {
	if _, err := identity(r); err != nil {
		return nil, err
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		return nil, err
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return OK(user), nil
}

// Update handles PUT /user/{id}.
func (h *UserHandler) Update(r *http.Request) (*Result, error) {
	caller, id, err := callerAndPathUUID(r)
	if err != nil {
		return nil, err
	}

	var req UpdateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return nil, err
	}

	user, err := h.users.UpdateUser(r.Context(), caller.UserID, id, service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return nil, err
	}
	return OK(user), nil
}

// Delete handles DELETE /user/{id}.
func (h *UserHandler) Delete(r *http.Request) (*Result, error) {
	caller, id, err := callerAndPathUUID(r)
	if err != nil {
		return nil, err
	}
	if err := h.users.DeleteUser(r.Context(), caller.UserID, id); err != nil {
		return nil, err
	}
	return &Result{Message: "deleted"}, nil
}

// SetCredential handles PUT /user/{id}/credential.
func (h *UserHandler) SetCredential(r *http.Request) (*Result, error) {
	caller, id, err := callerAndPathUUID(r)
	if err != nil {
		return nil, err
	}

	var req CredentialRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return nil, err
	}

	if err := h.users.SetCredential(r.Context(), caller.UserID, id, req.ClientID, req.ClientSecret); err != nil {
		return nil, err
	}
	return &Result{Message: "credential updated"}, nil
}
