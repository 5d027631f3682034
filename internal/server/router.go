package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"example.com/clerk-notes/internal/httpx"
	"example.com/clerk-notes/internal/logging"
)

type Metrics interface {
	Handler() http.Handler
	Middleware(next http.Handler) http.Handler
}

type RouterDeps struct {
	Logger *slog.Logger
	// Metrics is optional; without it /metrics is not served.
	Metrics Metrics
	// Ping backs /health. Nil means always healthy.
	Ping  func(ctx context.Context) error
	Notes http.Handler
}

// NewRouter mounts the note endpoints next to /health and /metrics.
func NewRouter(d RouterDeps) http.Handler {
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}

	r := chi.NewRouter()
	r.Use(httpx.Recoverer(d.Logger))
	r.Use(httpx.RequestLogger(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if d.Ping != nil {
			if err := d.Ping(r.Context()); err != nil {
				d.Logger.ErrorContext(r.Context(), "health check failed", logging.Err(err))
				httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Mount("/", d.Notes)

	return r
}
