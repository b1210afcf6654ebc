// Package httpapi serves the extraction and delay endpoints over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/vetting-tracker/internal/metrics"
)

type Config struct {
	Ingestor Ingestor
	Delays   DelayService
	Exporter Exporter
	// Health is called by /healthz; nil always reports healthy.
	Health    func(context.Context) error
	Metrics   *metrics.Metrics
	JWTSecret string
	Logger    *slog.Logger
}

// NewRouter wires the middleware chain and every route.
func NewRouter(cfg Config) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		ingest: cfg.Ingestor,
		delays: cfg.Delays,
		export: cfg.Exporter,
		health: cfg.Health,
		logger: logger,
	}

	router := gin.New()
	router.Use(RequestID())
	router.Use(Recovery(logger))
	router.Use(RequestLogger(logger))
	router.Use(Metrics(cfg.Metrics))

	router.GET("/healthz", h.Healthz)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("/api")
	if cfg.JWTSecret != "" {
		api.Use(JWTAuth(cfg.JWTSecret))
	}
	api.POST("/extract-finance-data", h.ExtractFinance)
	api.POST("/extract-GM-data", h.ExtractApproval)
	api.GET("/get-vetting-data", h.VettingData)
	api.GET("/get-vetting-delay", h.VettingDelay)
	api.POST("/get-vetting-delay", h.VettingDelay)
	api.GET("/export-delays", h.ExportDelays)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return router
}
