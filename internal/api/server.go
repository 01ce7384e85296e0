// Package api exposes the drift engine's control surface over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Server wraps the HTTP listener serving the drift API.
type Server struct {
	logger *slog.Logger
	http   *http.Server
}

// NewServer builds the HTTP server with all routes registered.
func NewServer(logger *slog.Logger, address string, service Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	handlers := NewHandlers(logger, service)
	registerRoutes(router, handlers)

	return &Server{
		logger: logger,
		http: &http.Server{
			Addr:              address,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", slog.String("address", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.http.Addr
}

func registerRoutes(router *gin.Engine, handlers *Handlers) {
	router.GET("/health", handlers.Health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/drift/run", handlers.RunAnalysis)
		v1.GET("/alerts", handlers.ListAlerts)
		v1.POST("/alerts/:id/acknowledge", handlers.AcknowledgeAlert)
		v1.GET("/reports", handlers.ListReports)
		v1.GET("/reports/summary", handlers.ReportSummary)
		v1.GET("/actions", handlers.ListActions)
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)))
	}
}
