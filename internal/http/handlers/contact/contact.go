// Package contact contains all HTTP handlers for the Contact resource.
//
// Handlers follow the closure / factory pattern: a factory receives the
// dependencies once at route registration and returns the
// func(http.ResponseWriter, *http.Request) the router calls on every
// request.
//
//	router.HandleFunc("POST /contacts", contact.New(reg))
package contact

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/phonebook-api/internal/registry"
	"github.com/aanand-mishra/phonebook-api/internal/types"
	"github.com/aanand-mishra/phonebook-api/internal/utils/response"
)

// Registry is the part of *registry.Registry these handlers need.
type Registry interface {
	List(ctx context.Context) ([]types.Contact, error)
	Get(ctx context.Context, id string) (types.Contact, error)
	Create(ctx context.Context, name, number string) (types.Contact, registry.Outcome, error)
	Update(ctx context.Context, id, name, number string) (types.Contact, error)
	Delete(ctx context.Context, id string) error
}

// request is the body accepted by POST and PUT. Any id in the body is
// ignored; ids come from storage or the URL.
type request struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /contacts
// Creates a contact, or updates the number of the contact with that name.
//
// Request body (JSON):
//
//	{ "name": "Ada Lovelace", "number": "39-44-5323523" }
//
// Responses:
//
//	201 Created  — new contact, body is the stored contact
//	200 OK       — name existed, number replaced, body is the stored contact
//	400          — empty body, malformed JSON, or failed validation
//	500          — storage failure
//
// ─────────────────────────────────────────────────────────────────────────────
func New(reg Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a contact")

		req, ok := decode(w, r)
		if !ok {
			return
		}

		contact, outcome, err := reg.Create(r.Context(), req.Name, req.Number)
		if err != nil {
			writeError(w, r, err)
			return
		}

		status := http.StatusCreated
		if outcome == registry.OutcomeUpdated {
			status = http.StatusOK
		}

		slog.Info("contact saved",
			slog.String("id", contact.ID),
			slog.String("outcome", outcome.String()))

		response.WriteJSON(w, status, contact)
	}
}

// GetByID handles GET /contacts/{id}
//
//	200 OK — the contact
//	400    — malformed id
//	404    — no contact with that id
func GetByID(reg Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a contact", slog.String("id", id))

		contact, err := reg.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, contact)
	}
}

// GetList handles GET /contacts
// Returns a JSON array of every contact; [] (not null) when empty.
func GetList(reg Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all contacts")

		contacts, err := reg.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, contacts)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /contacts/{id}
// Replaces name and number of an existing contact. Both fields are
// required and validated the same way as on create.
//
//	200 OK — the updated contact
//	400    — malformed id, bad body, failed validation, or the name
//	         belongs to another contact
//	404    — no contact with that id
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(reg Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a contact", slog.String("id", id))

		req, ok := decode(w, r)
		if !ok {
			return
		}

		updated, err := reg.Update(r.Context(), id, req.Name, req.Number)
		if err != nil {
			writeError(w, r, err)
			return
		}

		slog.Info("contact updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /contacts/{id}
//
//	204 No Content — removed
//	400            — malformed id
//	404            — no contact with that id
func Delete(reg Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a contact", slog.String("id", id))

		if err := reg.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}

		slog.Info("contact deleted", slog.String("id", id))
		response.NoContent(w)
	}
}

// decode reads the JSON body. On failure it has already answered 400.
func decode(w http.ResponseWriter, r *http.Request) (request, bool) {
	var req request

	err := json.NewDecoder(r.Body).Decode(&req)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return req, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return req, false
	}

	return req, true
}

// writeError maps registry error kinds to status codes. Storage failures
// are logged with their cause but answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *registry.ValidationError

	switch {
	case errors.As(err, &verr):
		slog.Info("validation failed", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verr, verr.Fields))

	case errors.Is(err, registry.ErrValidation):
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))

	case errors.Is(err, registry.ErrInvalidID):
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(registry.ErrInvalidID))

	case errors.Is(err, registry.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(registry.ErrNotFound))

	default:
		slog.Error("storage error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError,
			response.GeneralError(errors.New("unable to retrieve data")))
	}
}
