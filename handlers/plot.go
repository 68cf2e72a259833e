package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attritioninsight/models"
	"attritioninsight/plot"
	"attritioninsight/service"
)

// DebugPlotHandler renders a chart request directly, without the model
// @Summary      Render a chart request
// @Description  Validates and renders a chart request against the current dataset. Useful to check chart types and derived columns without a model call.
// @Tags         Charts
// @Accept       json
// @Produce      json
// @Param        request  body      plot.Request         true  "Chart request"
// @Success      200      {object}  models.PlotResponse  "Rendered chart"
// @Failure      400      {object}  models.PlotResponse  "Request cannot be drawn"
// @Failure      503      {object}  map[string]string    "No dataset loaded"
// @Router       /api/debug-plot [post]
func (h *Handlers) DebugPlotHandler(c *gin.Context) {
	var req plot.Request
	if err := c.ShouldBindJSON(&req); err != nil || req.Type == "" {
		c.JSON(http.StatusBadRequest, models.PlotResponse{Status: models.StatusError, Message: "Invalid chart request"})
		return
	}
	frame, ok := h.frame(c)
	if !ok {
		return
	}

	img, used, err := service.Visualize(h.renderer, req, frame, h.data.Outcome())
	if err != nil {
		h.log.Info("debug plot rejected", zap.String("plot_type", string(used.Type)), zap.Error(err))
		c.JSON(http.StatusBadRequest, models.PlotResponse{Status: models.StatusError, Message: err.Error()})
		return
	}

	resp := models.PlotResponse{Status: models.StatusSuccess, PlotImage: img}
	if h.charts != nil {
		if name, err := h.charts.Save(img); err == nil {
			resp.PlotFile = name
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ChartHandler serves an archived chart
// @Summary      Get an archived chart
// @Tags         Charts
// @Produce      png
// @Param        filename  path      string  true  "Chart file name"
// @Success      200       {file}    binary
// @Failure      404       {object}  map[string]string
// @Router       /api/charts/{filename} [get]
func (h *Handlers) ChartHandler(c *gin.Context) {
	if h.charts == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chart archive is disabled"})
		return
	}
	path, err := h.charts.Path(c.Param("filename"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chart not found"})
		return
	}
	c.File(path)
}
