package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"attritioninsight/config"
	"attritioninsight/service"
)

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handlers, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(h.log), Recovery(h.log))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.AllowOrigins
	if len(cfg.AllowOrigins) == 0 || (len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*") {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Requested-With")
	corsCfg.MaxAge = 24 * time.Hour
	r.Use(cors.New(corsCfg))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", h.HealthHandler)

	api := r.Group("/api")
	{
		api.POST("/chat", h.ChatHandler)
		api.POST("/chat/reset", h.ResetHandler)
		api.GET("/chat/history", h.HistoryHandler)
		api.GET("/chat/sessions", h.ListSessionsHandler)

		api.POST("/debug-plot", h.DebugPlotHandler)
		api.GET("/charts/:filename", h.ChartHandler)

		api.POST("/upload-dataset", h.UploadDatasetHandler)
		api.GET("/dataset", h.DatasetInfoHandler)

		for _, dim := range service.ReportDimensions() {
			api.GET("/attrition-by-"+dim, h.AttritionByHandler(dim))
		}
		api.GET("/overall-statistics", h.OverallStatisticsHandler)
		api.GET("/factors-correlation", h.FactorsCorrelationHandler)
		api.GET("/predictive-factors", h.PredictiveFactorsHandler)
		api.GET("/employee-count", h.EmployeeCountHandler)
		api.GET("/filtered-data", h.FilteredDataHandler)
	}

	return r
}

// RequestLogger logs one line per request with zap.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			log.Error("request", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// Recovery turns handler panics into 500 responses.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(500, gin.H{"error": "Internal server error"})
	})
}
