package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler checks the health status of the service
// @Summary      Health check
// @Description  Reports whether a dataset is loaded, SQL Server connectivity, the number of live conversations and model call counts.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "Service health status"
// @Router       /health [get]
func (h *Handlers) HealthHandler(c *gin.Context) {
	info := h.data.Info()
	status := gin.H{
		"status":          "healthy",
		"dataset":         "not_loaded",
		"active_sessions": h.sessions.Active(),
		"render_surfaces": h.renderer.Outstanding(),
		"sql_server":      "not_configured",
	}
	if info.Rows > 0 {
		status["dataset"] = "loaded"
		status["rows"] = info.Rows
	}
	if h.sqlSource != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		status["sql_server"] = "disconnected"
		if h.sqlSource.IsConnected(ctx) {
			status["sql_server"] = "connected"
		}
	}
	if h.model != nil {
		calls, failures := h.model.Stats()
		status["model_calls"] = calls
		status["model_failures"] = failures
	}

	c.JSON(http.StatusOK, status)
}
