// Package httptransport is the thin HTTP layer over the audit and session
// core. Handlers delegate to domain services; no business rules live here.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"custodia/internal/audit"
	"custodia/internal/gate"
	"custodia/internal/platform/metrics"
	"custodia/internal/records"
	"custodia/internal/session"
	"custodia/internal/token"
)

// Handler bundles the services the routes need.
type Handler struct {
	sessions *session.Registry
	engine   *audit.Engine
	gate     *gate.Gate
	tokens   *token.Service
	records  *records.Store
	metrics  *metrics.Metrics
	logger   *slog.Logger

	health map[string]func(context.Context) error
}

// AddHealthCheck registers a named dependency probe consulted by /healthz.
// Register probes before the router starts serving.
func (h *Handler) AddHealthCheck(name string, probe func(context.Context) error) {
	if h.health == nil {
		h.health = make(map[string]func(context.Context) error)
	}
	h.health[name] = probe
}

// NewHandler wires the HTTP layer. metrics may be nil in tests.
func NewHandler(
	sessions *session.Registry,
	engine *audit.Engine,
	g *gate.Gate,
	tokens *token.Service,
	recordStore *records.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		sessions: sessions,
		engine:   engine,
		gate:     g,
		tokens:   tokens,
		records:  recordStore,
		metrics:  m,
		logger:   logger,
	}
}

// NewRouter wires all public endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestMeta)

	r.Get("/healthz", h.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(h.tokens, h.sessions))

			r.Post("/auth/logout", h.handleLogout)
			r.Get("/auth/me", h.handleMe)

			r.Get("/audit/logs", h.handleAuditLogs)
			r.Get("/audit/summary", h.handleAuditSummary)
			r.Get("/audit/export", h.handleAuditExport)

			r.Get("/cases/{caseID}", h.handleViewCase)
			r.Get("/evidence/{itemID}/download", h.handleDownloadEvidence)
		})
	})
	return r
}

// handleHealthz runs every registered dependency probe; the first failure
// turns the response into 503 naming the degraded component.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	for name, probe := range h.health {
		if err := probe(r.Context()); err != nil {
			h.logger.Error("health check failed", "component", name, "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":    "degraded",
				"component": name,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
