// Package api serves the dashboard HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/metrics"
	"github.com/rasi23/pingpeek-phishguard/internal/service"
)

// Server is the dashboard API server
type Server struct {
	svc    *service.PhishingService
	logger *zap.Logger
	engine *gin.Engine
	server *http.Server
	now    func() time.Time
}

// NewServer creates an API server listening on addr
func NewServer(svc *service.PhishingService, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		svc:    svc,
		logger: logger,
		now:    time.Now,
	}
	s.engine = s.routes()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/emails", s.listEmails)
	r.GET("/fetch-emails", s.listEmails)
	r.GET("/emails/:id", s.getEmail)
	r.POST("/analyze", s.analyze)
	r.POST("/quarantine/:id", s.quarantine)

	r.GET("/threat-time-series", s.timeSeries)
	r.GET("/attack-patterns", s.attackPatterns)
	r.GET("/domain-analysis", s.domainAnalysis)
	r.GET("/summary", s.summary)

	return r
}

// observe logs each request and records its duration under the route pattern
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		duration := time.Since(start)
		metrics.RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(status), duration)
		s.logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", duration))
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves in the background until Stop is called
func (s *Server) Start() error {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx expires
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server")
	return s.server.Shutdown(ctx)
}
