// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Rather than repeating "set header, set status, encode JSON" in every
// handler, we centralise it here. Error responses always share one shape
// so API consumers know what to expect.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/aanand-mishra/phonebook-api/internal/types"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a contact, a list…).
// Error responses always look like:
//
//	{ "status": "error", "error": "field name is required" }
//
// Validation failures additionally list each broken rule under "fields".
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string             `json:"status"`
	Error  string             `json:"error,omitempty"`
	Fields []types.FieldError `json:"fields,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// Order matters: Header() → WriteHeader() → body. Once WriteHeader is
// called, headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteHTML writes a small HTML fragment.
func WriteHTML(w http.ResponseWriter, status int, html string) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write([]byte(html))
	return err
}

// NoContent writes a bodiless 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// OK is the body of health-style endpoints.
func OK() Response {
	return Response{Status: StatusOK}
}

// GeneralError wraps any Go error into our standard Response shape.
//
//	response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError carries the per-field detail of a failed validation
// next to the joined message.
func ValidationError(err error, fields []types.FieldError) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
		Fields: fields,
	}
}
