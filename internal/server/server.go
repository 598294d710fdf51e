package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/aqhi-canada/internal/config"
	"github.com/vzahanych/aqhi-canada/internal/server/handlers"
	"github.com/vzahanych/aqhi-canada/internal/server/middlewares"
	"github.com/vzahanych/aqhi-canada/internal/tracker"
	"github.com/vzahanych/aqhi-canada/pkg/telemetry"
	"go.uber.org/zap"
)

type Server struct {
	cfg     config.ServerConfig
	engine  *gin.Engine
	server  *http.Server
	tracker *tracker.Tracker
	logger  *zap.Logger
	tele    *telemetry.Telemetry
	metrics *middlewares.MetricsMiddleware
}

func NewServer(cfg config.ServerConfig, tr *tracker.Tracker, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	metrics := middlewares.NewMetricsMiddleware(logger, tele)

	engine.Use(middlewares.RequestIDMiddleware())
	engine.Use(middlewares.LoggingMiddleware(logger))
	engine.Use(middlewares.RecoveryMiddleware(logger, true))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))
	engine.Use(metrics.Handler())

	s := &Server{
		cfg:     cfg,
		engine:  engine,
		tracker: tr,
		logger:  logger,
		tele:    tele,
		metrics: metrics,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	metricsHandler := handlers.NewMetricsHandler(s.logger, s.metrics)
	s.tracker.SetMetricsRecorder(metricsHandler)

	// Business endpoints
	aqhiHandler := handlers.NewAQHIHandler(s.tracker, s.logger)
	s.engine.GET("/aqhi", aqhiHandler.GetCurrent)
	s.engine.GET("/aqhi/:province/:region", aqhiHandler.GetRegion)
	s.engine.GET("/regions", aqhiHandler.ListRegions)
	s.engine.GET("/regions/nearest", aqhiHandler.GetNearest)

	// Health endpoints (Kubernetes friendly)
	healthHandler := handlers.NewHealthHandler(s.logger, s.tracker)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/health/live", healthHandler.Liveness)
	s.engine.GET("/health/ready", healthHandler.Readiness)

	// Monitoring endpoints
	s.engine.GET("/metrics", metricsHandler.ServeMetrics)
}

// Handler exposes the routes without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeout) * time.Second,
	}

	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
