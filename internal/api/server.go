// Package api exposes the dashboard data over a local HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/j-veylop/points-dashboard-tui/internal/logger"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

const shutdownTimeout = 5 * time.Second

// Backend is the part of the service manager the API needs.
type Backend interface {
	SyncWith(ctx context.Context, creds models.Credentials, day int, full bool) (*models.SyncResult, error)
	Series(ctx context.Context, g models.Granularity, offset int) (models.Series, models.Period, error)
	LatestRecords(ctx context.Context, limit int) ([]models.PointsRecord, error)
	BotStats(ctx context.Context) ([]models.BotStat, error)
	Config(ctx context.Context) (models.SyncConfig, error)
	SaveConfig(ctx context.Context, cfg models.SyncConfig) error
	AutoFetchStatus() models.AutoFetchStatus
	UserPoints(ctx context.Context) (*models.UserPointsInfo, error)
	Layout(ctx context.Context) (models.Layout, error)
	SaveLayout(ctx context.Context, update models.LayoutUpdate) (models.Layout, error)
}

// Server serves the HTTP API.
type Server struct {
	backend     Backend
	engine      *gin.Engine
	frontendLog io.Writer
	logMu       sync.Mutex
}

// NewServer builds the router. frontendLog receives the lines posted to
// /api/log and may be nil.
func NewServer(backend Backend, frontendLog io.Writer) *Server {
	if frontendLog == nil {
		frontendLog = io.Discard
	}
	s := &Server{
		backend:     backend,
		engine:      gin.New(),
		frontendLog: frontendLog,
	}
	s.engine.Use(requestLogger(), gin.Recovery(), corsMiddleware())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.engine.Group("/api")

	r.POST("/fetch", s.fetch)
	r.GET("/stats", s.stats)
	r.GET("/records", s.records)
	r.GET("/bot-stats", s.botStats)
	r.GET("/config", s.getConfig)
	r.POST("/config", s.saveConfig)
	r.GET("/auto-fetch-status", s.autoFetchStatus)
	r.GET("/user-points-info", s.userPointsInfo)
	r.GET("/layout", s.getLayout)
	r.POST("/layout", s.saveLayout)
	r.POST("/log", s.logFrontend)
	r.POST("/aggregate", s.aggregate)
	r.POST("/statistics", s.statistics)
	r.GET("/chart", s.chart)
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down api server: %w", err)
	}
	return nil
}

// corsMiddleware allows any origin; preflight requests end with 204.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("api request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
