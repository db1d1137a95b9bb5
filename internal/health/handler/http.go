// Package handler implements the liveness/readiness probes for Kubernetes,
// load balancers, and CI.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"freshbonds/backend/internal/api"
)

// Pinger checks a downstream dependency (the database pool, or an upstream
// service for the gateway).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to the Pinger interface.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handler serves /health/live and /health/ready. Liveness always succeeds
// while the process runs; readiness checks every registered dependency.
type Handler struct {
	service string
	deps    map[string]Pinger
}

func New(service string, deps map[string]Pinger) *Handler {
	return &Handler{service: service, deps: deps}
}

// Routes mounts the probes under /health.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health/live", h.live)
	r.Get("/health/ready", h.ready)
	// Legacy combined endpoint kept for older probes.
	r.Get("/health", h.live)
}

func (h *Handler) live(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]string{
		"status":  "alive",
		"service": h.service,
	})
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.deps))
	healthy := true
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			checks[name] = "unavailable"
			healthy = false
			continue
		}
		checks[name] = "ok"
	}

	status := http.StatusOK
	state := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "not ready"
	}
	api.JSON(w, status, map[string]any{
		"status":  state,
		"service": h.service,
		"checks":  checks,
	})
}
