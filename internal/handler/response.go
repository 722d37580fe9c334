package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON / writeError so the wire format
// stays consistent.
//
// ERROR FORMAT:
// The bundled front end reads a single field, so every error body is
//
//	{"error": "Media not found"}
//
// where the message is the AppError's client message.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/showtracker/internal/apperror"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body of most successful writes.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set before the body; anything set after the
// first Write is silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps a domain error to an HTTP status.
//
// ErrConflict is 400, not 409: the front end only distinguishes 2xx from
// everything else and existing clients expect 400 for duplicates.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a domain error to a status code and sends {"error": msg}.
//
// An *AppError contributes its client message. Any other error is a store or
// programming failure; its text is passed through as-is, which can expose
// SQL details to the client (see DESIGN.md).
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, statusFor(err), ErrorResponse{Error: appErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

// decodeJSON reads the request body as a T.
//
// A missing, empty or malformed body yields the zero T, never a partial
// value; callers then run normal field validation, so a bad body fails with
// the same 400 as an empty one.
func decodeJSON[T any](r *http.Request, logger *slog.Logger) T {
	var v T
	if r.Body == nil {
		return v
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&v); err != nil {
		if !errors.Is(err, io.EOF) {
			logger.Debug("ignoring undecodable request body",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
		}
		var zero T
		return zero
	}
	return v
}
