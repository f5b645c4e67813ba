// Package info serves the human-readable summary page and the health probe.
package info

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/phonebook-api/internal/registry"
	"github.com/aanand-mishra/phonebook-api/internal/utils/response"
)

// TimeLayout renders like a JavaScript Date string, e.g.
// "Thu Oct 15 2026 09:30:00 GMT+0000 (UTC)".
const TimeLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

type Reporter interface {
	Info(ctx context.Context) (registry.Info, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Get handles GET /info
//
//	<p>Phonebook has info for 2 people</p><p>Thu Oct 15 2026 ...</p>
func Get(rep Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := rep.Info(r.Context())
		if err != nil {
			slog.Error("error counting contacts", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(fmt.Errorf("unable to retrieve data")))
			return
		}

		response.WriteHTML(w, http.StatusOK, fmt.Sprintf(
			"<p>Phonebook has info for %d people</p><p>%s</p>",
			info.Count, info.Time.Format(TimeLayout)))
	}
}

// Health handles GET /healthz: 200 while storage answers, 503 otherwise.
func Health(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := p.Ping(r.Context()); err != nil {
			slog.Warn("health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable, response.GeneralError(registry.ErrUnavailable))
			return
		}
		response.WriteJSON(w, http.StatusOK, response.OK())
	}
}
