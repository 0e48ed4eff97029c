package api

import (
	"net/http"

	"github.com/cleanapi/cleanapi/internal/api/shared"
)

// Result is what a handler returns on success.
type Result struct {
	// Status defaults to 200.
	Status int
	// Message defaults to "success".
	Message string
	Data    any
}

// OK returns a 200 result carrying data.
func OK(data any) *Result {
	return &Result{Status: http.StatusOK, Data: data}
}

// Created returns a 201 result carrying data.
func Created(data any) *Result {
	return &Result{Status: http.StatusCreated, Data: data}
}

// HandlerFunc is an HTTP handler that returns its outcome instead of writing
// it. Handle turns the outcome into exactly one envelope.
type HandlerFunc func(r *http.Request) (*Result, error)

// Handle adapts h to http.HandlerFunc.
func Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h(r)
		if err != nil {
			shared.RespondWithError(w, r, err)
			return
		}
		if result == nil {
			result = &Result{}
		}

		status := result.Status
		if status == 0 {
			status = http.StatusOK
		}
		shared.RespondWithEnvelope(w, r, status, result.Message, result.Data)
	}
}
