// Package middleware wraps the router with the cross-cutting behaviour
// every request gets: request logging, panic recovery, CORS and request
// metrics.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/aanand-mishra/phonebook-api/internal/utils/response"
)

// Middleware decorates an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mws so that the first one is the outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// statusWriter remembers what the wrapped handler wrote.
type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *statusWriter) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func wrap(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return &statusWriter{ResponseWriter: w}
}

// RequestLogger logs one line per request once it has been served:
// method, path, status, response size and duration. The request id is
// taken from X-Request-Id or generated, and echoed back to the client.
func RequestLogger(parent *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-Id")
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-Id", reqID)

			sw, start := wrap(w), time.Now()
			next.ServeHTTP(sw, r)

			parent.LogAttrs(r.Context(), slog.LevelInfo,
				r.Method+" "+r.URL.Path+" "+r.Proto,
				slog.String("x-request-id", reqID),
				slog.String("from", r.RemoteAddr),
				slog.String("ua", r.UserAgent()),
				slog.Int("status", sw.code()),
				slog.Int("size", sw.size),
				slog.Duration("dur", time.Since(start)),
			)
		})
	}
}

// Recoverer recovers and logs the value from a handler panic and answers
// 500 if nothing was written yet.
func Recoverer(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := wrap(w)
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				log.LogAttrs(r.Context(), slog.LevelError, "panic occurred",
					slog.Any("recovered", v),
					slog.String("path", r.URL.Path),
				)
				if sw.status == 0 {
					response.WriteJSON(sw, http.StatusInternalServerError,
						response.GeneralError(fmt.Errorf("internal server error")))
				}
			}()
			next.ServeHTTP(sw, r)
		})
	}
}

// CORS allows browsers on origins to call the API. "*" allows any origin.
func CORS(origins []string) Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
	})
	return c.Handler
}

var buckets = metrics.ExponentialBuckets(1e-3, 5, 6)

// Metrics counts requests and records their duration in set, labelled by
// method, route pattern and status. It must sit directly in front of the
// ServeMux so the matched pattern is visible after the call.
func Metrics(set *metrics.Set) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw, start := wrap(w), time.Now()
			next.ServeHTTP(sw, r)

			labels := `{method="` + r.Method +
				`",path="` + routeOf(r) +
				`",status="` + strconv.Itoa(sw.code()) + `"}`
			set.GetOrCreateCounter(`http_requests_total` + labels).Inc()
			set.GetOrCreatePrometheusHistogramExt(`http_request_duration_seconds`+labels, buckets).UpdateDuration(start)
		})
	}
}

// routeOf returns the path part of the matched ServeMux pattern, keeping
// label cardinality bounded by the route table rather than by ids.
func routeOf(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}
