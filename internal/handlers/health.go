package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/honeycombo/combo-service/internal/database"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string              `json:"status"`
	Database string              `json:"database"`
	Pool     *database.PoolStats `json:"pool,omitempty"`
	Catalog  string              `json:"catalog"`
}

// HealthCheck handles the health check endpoint
func HealthCheck(c *gin.Context) {
	response := HealthResponse{Status: "ok"}
	healthy := true

	if database.Pool() != nil {
		if err := database.Status(c.Request.Context()); err != nil {
			response.Database = "disconnected"
			healthy = false
		} else {
			response.Database = "connected"
		}
		stats := database.Stats()
		response.Pool = &stats
	} else {
		response.Database = "not configured"
	}

	switch {
	case catalogStore == nil || !catalogStore.IsReady():
		response.Catalog = "loading"
		healthy = false
	case !catalogStore.IsHealthy():
		// Still serving the last snapshot.
		response.Catalog = "degraded"
	case catalogStore.Freshness().Stale:
		response.Catalog = "stale"
	default:
		response.Catalog = "ready"
	}

	if !healthy {
		response.Status = "unavailable"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}
