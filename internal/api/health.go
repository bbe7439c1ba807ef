package api

import (
	"net/http"
	"time"

	"github.com/plantbygpt/plantbygpt/internal/api/respond"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	isHealthy func() bool
	unhealthy func() []string
}

// NewHealthHandler creates a health handler reporting isHealthy. unhealthy, when set,
// names the dependencies that are down.
func NewHealthHandler(isHealthy func() bool, unhealthy func() []string) *HealthHandler {
	if isHealthy == nil {
		isHealthy = func() bool { return false }
	}
	return &HealthHandler{isHealthy: isHealthy, unhealthy: unhealthy}
}

// CheckHealth handles GET /api/health
// Always returns 200; body reports healthy/unhealthy. 500 indicates handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if h.isHealthy() {
		status = "healthy"
	}
	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if status == "unhealthy" && h.unhealthy != nil {
		if down := h.unhealthy(); len(down) > 0 {
			response["down"] = down
		}
	}
	respond.WriteJSON(w, http.StatusOK, response)
}
