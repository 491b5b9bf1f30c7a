package httpapi

import (
	"net/http"
	"time"

	"github.com/ZaguanLabs/culturo"
)

// HealthHandlers serves liveness checks.
type HealthHandlers struct {
	started time.Time
	now     func() time.Time
}

// NewHealthHandlers constructs HealthHandlers with the process start time.
func NewHealthHandlers() *HealthHandlers {
	return &HealthHandlers{started: time.Now(), now: time.Now}
}

// Healthz responds with a simple status payload.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   culturo.FullVersion(),
		"uptime":    now.Sub(h.started).Round(time.Second).String(),
		"timestamp": now.UTC().Format(time.RFC3339),
	})
}
