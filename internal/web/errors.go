package web

// errors.go provides unified error response handling for the web layer.
//
// Errors fall into a small taxonomy:
//   - ValidationError: the caller sent a bad request (missing upload,
//     malformed query) -> 400
//   - NotFoundError: a referenced resource is absent -> 404
//   - lyra.UpstreamError: the external order API failed -> 502
//   - anything else -> 500
//
// The technical error is logged with the request id; the client gets a
// JSON {"error": ...} body.

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"encoding/json"

	"orderbridge/internal/logging"
	"orderbridge/internal/lyra"
)

// ValidationError is a rejected request.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError is a reference to an absent resource.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// respondError maps an error to its status code, logs it, and writes the
// JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	var upstreamErr *lyra.UpstreamError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
	case errors.As(err, &upstreamErr):
		status = http.StatusBadGateway
	}

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
	)

	writeErrorStatus(w, status, err.Error())
}

// writeErrorStatus writes a JSON error response.
func writeErrorStatus(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, message)
}

// writeJSON encodes v as JSON and writes it to w.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
