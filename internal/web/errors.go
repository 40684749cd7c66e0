package web

// errors.go provides unified error responses for the API.
//
// Handlers call respondError with the technical error; it is logged with
// the request id for correlation and mapped to a user-friendly message with
// a stable error code before it reaches the client. HTTP status codes are
// derived from the catalogue error taxonomy so callers can branch without
// parsing messages.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/stardustkit/cataloguer/internal/catalogue"
	"github.com/stardustkit/cataloguer/internal/fluxunit"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := catalogue.MapError(err)
	status := statusForError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// statusForError maps the catalogue error taxonomy to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, catalogue.ErrDuplicateTarget):
		return http.StatusConflict
	case errors.Is(err, catalogue.ErrUnknownTarget):
		return http.StatusNotFound
	case errors.Is(err, catalogue.ErrAmbiguousFilterBinding),
		errors.Is(err, catalogue.ErrColumnShapeConflict),
		errors.Is(err, fluxunit.ErrIncompatibleUnit):
		return http.StatusUnprocessableEntity
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "catalogue not found"),
		strings.Contains(lower, "artifact not found"):
		return http.StatusNotFound
	case strings.Contains(lower, "too many catalogues"):
		return http.StatusTooManyRequests
	case strings.Contains(lower, "already in use"):
		return http.StatusConflict
	case strings.Contains(lower, "file too large"):
		return http.StatusRequestEntityTooLarge
	case strings.Contains(lower, "missing required column"),
		strings.Contains(lower, "invalid csv"),
		strings.Contains(lower, "empty file"),
		strings.Contains(lower, "no file provided"),
		strings.Contains(lower, "invalid"),
		strings.Contains(lower, "must"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
