package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attritioninsight/config"
	"attritioninsight/dataset"
	"attritioninsight/plot"
	"attritioninsight/service"
)

// @title           Attrition Insight API
// @version         1.0
// @description     Ask questions about an HR employee dataset in natural language and get answers with rendered charts, plus fixed attrition reports.

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:5000
// @BasePath  /

// @schemes   http https

// ModelStats is implemented by language-model clients that count calls.
type ModelStats interface {
	Stats() (calls, failures int64)
}

// ConnectionChecker reports whether a database-backed dataset source is
// reachable.
type ConnectionChecker interface {
	IsConnected(ctx context.Context) bool
}

type Handlers struct {
	sessions  *service.Manager
	data      *service.DatasetHolder
	renderer  *plot.Renderer
	charts    *service.ChartStorage
	model     ModelStats
	sqlSource ConnectionChecker
	maxUpload int64
	log       *zap.Logger
}

func New(sessions *service.Manager, data *service.DatasetHolder, renderer *plot.Renderer,
	charts *service.ChartStorage, model ModelStats, cfg config.ServerConfig, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		sessions:  sessions,
		data:      data,
		renderer:  renderer,
		charts:    charts,
		model:     model,
		maxUpload: cfg.MaxUploadBytes,
		log:       log,
	}
}

// WithSQLSource makes the health check report SQL Server connectivity.
func (h *Handlers) WithSQLSource(src ConnectionChecker) *Handlers {
	h.sqlSource = src
	return h
}

// frame returns the current dataset or writes 503 when none is loaded.
func (h *Handlers) frame(c *gin.Context) (*dataset.Frame, bool) {
	frame := h.data.Current()
	if frame == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No dataset loaded"})
		return nil, false
	}
	return frame, true
}

// reportError maps dataset errors to a response status.
func (h *Handlers) reportError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dataset.ErrColumnNotFound), errors.Is(err, dataset.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrUnknownDimension):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		h.log.Error("report failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
