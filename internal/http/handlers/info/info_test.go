package info

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aanand-mishra/phonebook-api/internal/registry"
)

type fakeReporter struct {
	info registry.Info
	err  error
}

func (f fakeReporter) Info(context.Context) (registry.Info, error) { return f.info, f.err }
func (f fakeReporter) Ping(context.Context) error                  { return f.err }

func TestGet(t *testing.T) {
	helsinki := time.FixedZone("EET", 2*60*60)
	rep := fakeReporter{info: registry.Info{
		Count: 4,
		Time:  time.Date(2026, time.January, 5, 18, 4, 7, 0, helsinki),
	}}

	rec := httptest.NewRecorder()
	Get(rep)(rec, httptest.NewRequest(http.MethodGet, "/info", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"<p>Phonebook has info for 4 people</p><p>Mon Jan 05 2026 18:04:07 GMT+0200 (EET)</p>",
		rec.Body.String())
}

func TestGetFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	Get(fakeReporter{err: registry.ErrUnavailable})(rec, httptest.NewRequest(http.MethodGet, "/info", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":"error","error":"unable to retrieve data"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(fakeReporter{})(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	Health(fakeReporter{err: errors.New("down")})(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"error","error":"storage unavailable"}`, rec.Body.String())
}
