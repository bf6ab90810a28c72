package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON / writeError, so all responses
// share one shape.
//
// ERROR FORMAT:
//
//	{"error": "Article not found", "code": "not_found"}
//
// "error" carries the human-readable message because the web client shows
// data.error to the user verbatim. "code" is the stable machine-readable
// kind.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/article-hub/internal/apperror"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MessageResponse is returned by operations that have nothing else to say.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status.
//
//	ErrValidation   → 400
//	ErrUnauthorized → 401
//	ErrForbidden    → 403
//	ErrNotFound     → 404
//	ErrConflict     → 409
//	ErrUpload       → 500 "Failed to upload image"
//	anything else   → 500 "Internal error"
//
// Unexpected errors are logged with their full chain; the client only gets
// the generic message, never SQL or driver details.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, code := statusOf(err)

	var appErr *apperror.AppError
	if status == http.StatusInternalServerError || !errors.As(err, &appErr) {
		logger.Error("request failed", slog.String("error", err.Error()))
	}

	var message string
	switch {
	case code == "upload_failed":
		message = "Failed to upload image"
	case status == http.StatusInternalServerError:
		message = "Internal error"
	case appErr != nil:
		message = appErr.Message
	default:
		message = http.StatusText(status)
	}

	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrUpload):
		return http.StatusInternalServerError, "upload_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// decodeJSON reads the request body into dst. An empty body leaves dst at its
// zero value, so the service reports the missing fields; malformed JSON is a
// validation error.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperror.ValidationFailed("body", "Invalid JSON body")
}
