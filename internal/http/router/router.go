// Package router builds the route table and wraps it with middleware.
package router

import (
	"log/slog"
	"net/http"

	"github.com/VictoriaMetrics/metrics"

	"github.com/aanand-mishra/phonebook-api/internal/http/handlers/contact"
	"github.com/aanand-mishra/phonebook-api/internal/http/handlers/info"
	"github.com/aanand-mishra/phonebook-api/internal/http/middleware"
	"github.com/aanand-mishra/phonebook-api/internal/registry"
)

// Options for New. Zero values are usable: any origin, the default
// logger, a private metrics set.
type Options struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	Metrics        *metrics.Set
}

// Contact routes are mounted under each of these collection paths.
// /api/persons keeps clients of the original phonebook working.
var collections = []string{"/contacts", "/api/contacts", "/api/persons"}

// New returns the application's http.Handler.
//
// Route table, for every collection path C:
//
//	GET    C        → list all contacts
//	POST   C        → create a contact (or update the number of an existing name)
//	GET    C/{id}   → get one contact
//	PUT    C/{id}   → replace name and number
//	DELETE C/{id}   → delete a contact
//
// plus GET /info, GET /api/info, GET /healthz and GET /metrics.
func New(reg *registry.Registry, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewSet()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	mux := http.NewServeMux()

	for _, c := range collections {
		mux.HandleFunc("GET "+c, contact.GetList(reg))
		mux.HandleFunc("POST "+c, contact.New(reg))
		mux.HandleFunc("GET "+c+"/{id}", contact.GetByID(reg))
		mux.HandleFunc("PUT "+c+"/{id}", contact.Update(reg))
		mux.HandleFunc("DELETE "+c+"/{id}", contact.Delete(reg))
	}

	mux.HandleFunc("GET /info", info.Get(reg))
	mux.HandleFunc("GET /api/info", info.Get(reg))
	mux.HandleFunc("GET /healthz", info.Health(reg))

	set := opts.Metrics
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, _ *http.Request) {
		set.WritePrometheus(w)
		metrics.WriteProcessMetrics(w)
	})

	return middleware.Chain(mux,
		middleware.Recoverer(opts.Logger),
		middleware.RequestLogger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.Metrics(set),
	)
}
