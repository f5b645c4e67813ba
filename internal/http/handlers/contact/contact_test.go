package contact

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aanand-mishra/phonebook-api/internal/registry"
	"github.com/aanand-mishra/phonebook-api/internal/types"
)

// stubRegistry returns err from every call.
type stubRegistry struct {
	err error
}

func (s stubRegistry) List(context.Context) ([]types.Contact, error) { return nil, s.err }
func (s stubRegistry) Get(context.Context, string) (types.Contact, error) {
	return types.Contact{}, s.err
}
func (s stubRegistry) Create(context.Context, string, string) (types.Contact, registry.Outcome, error) {
	return types.Contact{}, 0, s.err
}
func (s stubRegistry) Update(context.Context, string, string, string) (types.Contact, error) {
	return types.Contact{}, s.err
}
func (s stubRegistry) Delete(context.Context, string) error { return s.err }

func serve(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(method+" /contacts/{id}", h)
	mux.HandleFunc(method+" /contacts", h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestErrorMapping(t *testing.T) {
	unavailable := fmt.Errorf("%w: %w", registry.ErrUnavailable, errors.New("dial tcp: connection refused"))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"not found", registry.ErrNotFound, http.StatusNotFound,
			`{"status":"error","error":"contact not found"}`},
		{"malformed id", registry.ErrInvalidID, http.StatusBadRequest,
			`{"status":"error","error":"malformed id"}`},
		{"storage down", unavailable, http.StatusInternalServerError,
			`{"status":"error","error":"unable to retrieve data"}`},
		{"validation", &registry.ValidationError{Fields: []types.FieldError{
			{Field: "name", Rule: "required", Message: "field name is required"},
		}}, http.StatusBadRequest,
			`{"status":"error","error":"field name is required","fields":[{"field":"name","rule":"required","message":"field name is required"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := stubRegistry{err: tt.err}

			for _, rec := range []*httptest.ResponseRecorder{
				serve(GetByID(reg), http.MethodGet, "/contacts/abc", ""),
				serve(Update(reg), http.MethodPut, "/contacts/abc", `{"name":"Ada","number":"12345678"}`),
				serve(Delete(reg), http.MethodDelete, "/contacts/abc", ""),
				serve(New(reg), http.MethodPost, "/contacts", `{"name":"Ada","number":"12345678"}`),
			} {
				assert.Equal(t, tt.wantStatus, rec.Code)
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestStorageCauseNotLeaked(t *testing.T) {
	reg := stubRegistry{err: fmt.Errorf("%w: %w", registry.ErrUnavailable, errors.New("password authentication failed for user \"admin\""))}

	rec := serve(GetList(reg), http.MethodGet, "/contacts", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

// recordingRegistry captures what the handler passed in.
type recordingRegistry struct {
	stubRegistry
	id, name, number string
	outcome          registry.Outcome
}

func (r *recordingRegistry) Create(_ context.Context, name, number string) (types.Contact, registry.Outcome, error) {
	r.name, r.number = name, number
	return types.Contact{ID: "id-1", Name: name, Number: number}, r.outcome, nil
}

func (r *recordingRegistry) Update(_ context.Context, id, name, number string) (types.Contact, error) {
	r.id, r.name, r.number = id, name, number
	return types.Contact{ID: id, Name: name, Number: number}, nil
}

func TestCreateStatusFollowsOutcome(t *testing.T) {
	for outcome, want := range map[registry.Outcome]int{
		registry.OutcomeCreated: http.StatusCreated,
		registry.OutcomeUpdated: http.StatusOK,
	} {
		reg := &recordingRegistry{outcome: outcome}
		rec := serve(New(reg), http.MethodPost, "/contacts", `{"id":"ignored","name":"Ada","number":"12345678"}`)

		assert.Equal(t, want, rec.Code, outcome.String())
		assert.Equal(t, "Ada", reg.name)
		assert.Equal(t, "12345678", reg.number)
		assert.JSONEq(t, `{"id":"id-1","name":"Ada","number":"12345678"}`, rec.Body.String())
	}
}

func TestUpdateUsesPathID(t *testing.T) {
	reg := &recordingRegistry{}

	rec := serve(Update(reg), http.MethodPut, "/contacts/from-path", `{"id":"from-body","name":"Ada","number":"12345678"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from-path", reg.id)
}

func TestUpdateEmptyBody(t *testing.T) {
	rec := serve(Update(&recordingRegistry{}), http.MethodPut, "/contacts/x", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"error","error":"request body is empty"}`, rec.Body.String())
}
