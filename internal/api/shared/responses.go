package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/platform/logger"
	"github.com/cleanapi/cleanapi/internal/redact"
)

// MessageSuccess is the envelope message of successful responses unless a
// handler supplies its own.
const MessageSuccess = "success"

// Envelope is the body of every JSON response.
type Envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

// NewEnvelope builds an envelope. A nil data pointer serialises as null.
func NewEnvelope[T any](status int, message string, data *T) Envelope[T] {
	return Envelope[T]{Status: status, Message: message, Data: data}
}

// enveloped is implemented by every Envelope instantiation so that an
// envelope passed as payload is written unchanged.
type enveloped interface {
	envelopeStatus() int
}

func (e Envelope[T]) envelopeStatus() int { return e.Status }

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithEnvelope wraps data in an envelope and writes it. If data
// already is an envelope it is written as-is with its own status.
func RespondWithEnvelope(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	if env, ok := data.(enveloped); ok {
		RespondWithJSON(w, r, env.envelopeStatus(), env)
		return
	}

	if message == "" {
		message = MessageSuccess
	}
	env := Envelope[any]{Status: status, Message: message}
	if data != nil {
		env.Data = &data
	}
	RespondWithJSON(w, r, status, env)
}

// RespondWithError maps err to a status code and a client-safe message and
// writes the error envelope. The redacted error is logged.
//
// Log level strategy:
//   - 5xx errors are logged at ERROR
//   - 429 Too Many Requests is logged at WARN
//   - other 4xx errors are logged at DEBUG
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := StatusFor(kind)
	message := SafeMessage(err)

	logAttrs := []slog.Attr{
		slog.String("trace_id", GetTraceID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("kind", kind.String()),
		slog.String("user_message", message),
	}
	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", errorType(err)))
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	} else if status == http.StatusTooManyRequests {
		logLevel = slog.LevelWarn
	}
	logger.FromContext(r.Context()).LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	RespondWithJSON(w, r, status, NewEnvelope[any](status, message, nil))
}

// errorType names the innermost cause, which is more useful in logs than the
// *domain.Error wrapper.
func errorType(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return fmt.Sprintf("%T", err)
		}
		err = next
	}
}
