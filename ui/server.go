// Package ui serves the JSON API over gin.
package ui

import (
	"context"
	"log"
	"net/http"
	"time"

	"sheetcharts/app"
	"sheetcharts/internal/config"
	"sheetcharts/ports"
	"sheetcharts/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Server represents the API server
type Server struct {
	router   *gin.Engine
	http     *http.Server
	datasets *app.DatasetService
	charts   *app.ChartService
	users    ports.UserRepository
	limits   config.LimitsConfig
	server   config.ServerConfig
}

// NewServer creates the API server and registers its routes
func NewServer(cfg *config.Config, datasets *app.DatasetService, charts *app.ChartService, users ports.UserRepository) *Server {
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	s := &Server{
		router:   gin.New(),
		datasets: datasets,
		charts:   charts,
		users:    users,
		limits:   cfg.Limits,
		server:   cfg.Server,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery())
	s.router.Use(middleware.MaxBodySize(s.maxUploadBytes()))
	s.router.MaxMultipartMemory = s.maxUploadBytes()
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/api/health", s.handleHealth)

	api := s.router.Group("/api", middleware.ResolveUser(s.users))

	files := api.Group("/files")
	files.POST("/upload", s.handleUpload)
	files.GET("", s.handleListFiles)
	files.GET("/:fileId", s.handleGetFile)
	files.GET("/:fileId/columns", s.handleColumns)
	files.GET("/:fileId/preview", s.handlePreview)
	files.GET("/:fileId/summary/:column", s.handleSummary)
	files.DELETE("/:fileId", s.handleDeleteFile)

	api.POST("/chart-aggregate/:fileId", s.handleChartAggregate)
	api.POST("/chart-export/:fileId", s.handleAdhocExport)

	charts := api.Group("/charts")
	charts.POST("/render/:fileId", s.handleRender)
	charts.POST("", s.handleSaveChart)
	charts.GET("", s.handleListCharts)
	charts.GET("/:id", s.handleGetChart)
	charts.DELETE("/:id", s.handleDeleteChart)
	charts.GET("/:id/export", s.handleExportChart)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("[Server] Starting sheetcharts API on http://%s", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	log.Printf("[Server] Shutting down API server")
	return s.http.Shutdown(ctx)
}

func (s *Server) maxUploadBytes() int64 {
	return int64(s.server.MaxUploadMB) << 20
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
