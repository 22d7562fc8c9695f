package api

import (
	"log/slog"
	"net/http"

	resdto "request-desk/internal/handler/dto/response"
	"request-desk/internal/usecase/queries"
	"request-desk/internal/usecase/shared"

	"github.com/gin-gonic/gin"
)

const ServiceName = "request-desk"

type SystemHandler struct {
	q queries.RequestQueries
}

func NewSystemHandler(q queries.RequestQueries) *SystemHandler {
	return &SystemHandler{q: q}
}

// @Summary Health check
// @Description Reports liveness and the number of stored requests
// @Tags health
// @Produce json
// @Success 200 {object} resdto.HealthResponse
// @Failure 503 {object} resdto.HealthResponse
// @Router /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	total, err := h.q.Count(c.Request.Context(), shared.RequestFilter{})
	if err != nil {
		slog.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, resdto.HealthResponse{
			Status:  "error",
			Message: "Store unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.HealthResponse{
		Status:        "ok",
		Message:       "Service is healthy",
		TotalRequests: total,
	})
}

// @Summary Service info
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Router / [get]
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": ServiceName,
		"endpoints": gin.H{
			"requests":   "/api/v1/requests",
			"statistics": "/api/v1/requests/statistics",
			"health":     "/health",
		},
	})
}
