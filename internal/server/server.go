// Package server provides the HTTP API for the plan service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/10xdev4u-alt/plan/internal/events"
	"github.com/10xdev4u-alt/plan/internal/store"
	"github.com/10xdev4u-alt/plan/internal/telegram"
)

// Config holds HTTP server configuration.
type Config struct {
	Host           string
	Port           int
	WebhookOwnerID string
	WebhookRate    float64
	WebhookBurst   int
}

// Server wires the store, change bus and capture adapters behind echo.
type Server struct {
	echo    *echo.Echo
	store   *store.Store
	bus     *events.Bus
	tg      *telegram.Client
	logger  *zap.Logger
	config  *Config
	metrics *metrics
	limiter *rate.Limiter
}

// NewServer creates the HTTP server. All dependencies are required except
// the config, which falls back to defaults.
func NewServer(st *store.Store, bus *events.Bus, tg *telegram.Client, logger *zap.Logger, cfg *Config) (*Server, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if bus == nil {
		return nil, fmt.Errorf("bus cannot be nil")
	}
	if tg == nil {
		return nil, fmt.Errorf("telegram client cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 8080}
	}
	if cfg.WebhookOwnerID == "" {
		cfg.WebhookOwnerID = "00000000-0000-0000-0000-0000000000ff"
	}
	if cfg.WebhookRate <= 0 {
		cfg.WebhookRate = 5
	}
	if cfg.WebhookBurst <= 0 {
		cfg.WebhookBurst = 10
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	m := newMetrics()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	s := &Server{
		echo:    e,
		store:   st,
		bus:     bus,
		tg:      tg,
		logger:  logger,
		config:  cfg,
		metrics: m,
		limiter: rate.NewLimiter(rate.Limit(cfg.WebhookRate), cfg.WebhookBurst),
	}
	s.registerRoutes()
	e.Use(s.requestLogger())
	return s, nil
}

// requestLogger logs and counts every request. The counter's path label is
// the matched route pattern; requests matching no route share a single
// "unmatched" label so path scans cannot grow the metric's cardinality.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	registered := make(map[string]bool, len(s.echo.Routes()))
	for _, r := range s.echo.Routes() {
		registered[r.Path] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			path := c.Path()
			if !registered[path] {
				path = "unmatched"
			}
			s.metrics.observeRequest(c.Request().Method, path, status)
			s.logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
	s.echo.POST("/webhook/telegram", s.handleTelegramWebhook)

	v1 := s.echo.Group("/api/v1", s.requireProfile)
	v1.POST("/ideas", s.handleCreateIdea)
	v1.POST("/ideas/capture", s.handleCaptureTranscript)
	v1.GET("/ideas", s.handleListIdeas)
	v1.GET("/ideas/stream", s.handleIdeaStream)
	v1.GET("/ideas/:id", s.handleGetIdea)
	v1.PATCH("/ideas/:id/scores", s.handleUpdateScores)
	v1.PATCH("/ideas/:id/status", s.handleUpdateIdeaStatus)

	v1.POST("/ideas/:id/milestones", s.handleCreateMilestone)
	v1.GET("/ideas/:id/milestones", s.handleListMilestones)
	v1.POST("/milestones/:id/move", s.handleMoveMilestone)

	v1.POST("/ideas/:id/convert", s.handleConvertIdea)
	v1.GET("/projects", s.handleListProjects)
	v1.PATCH("/projects/:id", s.handleUpdateProject)
	v1.POST("/projects/:id/ship", s.handleShipProject)

	v1.POST("/projects/:id/timelogs", s.handleCreateTimeLog)
	v1.GET("/projects/:id/timelogs", s.handleListTimeLogs)

	v1.GET("/activity", s.handleActivity)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// storeError translates store failures into the per-request error
// taxonomy: validation 400, missing rows 404, everything else a logged
// 500. Nothing here is fatal to the process.
func (s *Server) storeError(c echo.Context, err error) error {
	switch {
	case isNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case isInvalidInput(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("store operation failed",
			zap.String("path", c.Path()),
			zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
