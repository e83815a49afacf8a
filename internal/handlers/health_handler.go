package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker func(ctx context.Context) error

// HealthHandler serves the liveness probe
type HealthHandler struct {
	checks map[string]HealthChecker
}

// NewHealthHandler creates a health handler running the named checks
func NewHealthHandler(checks map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health reports service health
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			slog.Warn("Health check failed", "check", name, "error", err)
			results[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "healthy"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	respondWithJSON(w, status, map[string]any{
		"status": overall,
		"checks": results,
	})
}
