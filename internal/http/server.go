// Package http provides the gin HTTP server, its middleware chain and handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aicoder/backend/internal/config"
	"github.com/aicoder/backend/internal/database"
	"github.com/aicoder/backend/internal/metrics"
	secretsDomain "github.com/aicoder/backend/internal/secrets/domain"
	secretsUsecase "github.com/aicoder/backend/internal/secrets/usecase"
)

// readinessTimeout bounds each dependency ping of the readiness probe.
const readinessTimeout = 2 * time.Second

// CachePinger checks Redis reachability. *cache.Client implements it.
type CachePinger interface {
	Ping(ctx context.Context, timeout time.Duration) error
}

// Server represents the HTTP server.
type Server struct {
	db             *sql.DB
	cache          CachePinger
	server         *http.Server
	logger         *slog.Logger
	router         *gin.Engine
	version        string
	environment    config.Environment
	secretsUseCase secretsUsecase.SecretsUseCase
}

// NewServer creates a new HTTP server. Call SetupRouter before Start.
func NewServer(
	db *sql.DB,
	cache CachePinger,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		cache:  cache,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with the full middleware chain and routes.
//
// ctx bounds background work started by middleware (rate limiter cleanup).
// metricsProvider may be nil when metrics are disabled.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	secretsUseCase secretsUsecase.SecretsUseCase,
	metricsProvider *metrics.Provider,
	version string,
) {
	s.version = version
	s.environment = cfg.Environment
	s.secretsUseCase = secretsUseCase

	router := gin.New()
	router.HandleMethodNotAllowed = false
	if err := router.SetTrustedProxies(nil); err != nil {
		s.logger.Warn("failed to configure trusted proxies", slog.Any("error", err))
	}

	router.Use(RecoveryMiddleware(s.logger, cfg.IsDevelopment()))
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))
	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}
	router.Use(SecurityHeadersMiddleware())
	if corsMiddleware := createCORSMiddleware(cfg.FrontendURL, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	router.Use(RateLimitMiddleware(ctx, cfg.RateLimitMax, cfg.RateLimitWindow(), s.logger))
	router.Use(BodyLimitMiddleware(int64(cfg.MaxFileSize)))
	router.Use(SanitizeMiddleware(s.logger))
	router.Use(APIKeyMiddleware(cfg.HasAIProvider, s.logger))

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	api := router.Group("/api")
	api.GET("/status", s.statusHandler)

	router.NoRoute(notFoundHandler)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server",
		slog.String("addr", s.server.Addr),
		slog.String("environment", string(s.environment)),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"version":   s.version,
		"timestamp": timestamp(),
	})
}

// readinessHandler pings PostgreSQL and Redis. Any failure yields 503.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx := c.Request.Context()
	components := gin.H{}
	ready := true

	if err := s.pingDatabase(ctx); err != nil {
		s.logger.Error("readiness check failed", slog.String("component", "database"), slog.Any("error", err))
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	if err := s.pingCache(ctx); err != nil {
		s.logger.Error("readiness check failed", slog.String("component", "redis"), slog.Any("error", err))
		components["redis"] = "error"
		ready = false
	} else {
		components["redis"] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

func (s *Server) pingDatabase(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not configured")
	}
	return database.Ping(ctx, s.db, readinessTimeout)
}

func (s *Server) pingCache(ctx context.Context) error {
	if s.cache == nil {
		return fmt.Errorf("redis not configured")
	}
	return s.cache.Ping(ctx, readinessTimeout)
}

func (s *Server) statusHandler(c *gin.Context) {
	keySource := secretsDomain.KeySourceNone
	if s.secretsUseCase != nil {
		keySource = s.secretsUseCase.KeySource()
	}

	c.JSON(http.StatusOK, gin.H{
		"message":               "AI Coder API is running",
		"environment":           s.environment,
		"encryption_key_source": keySource,
		"timestamp":             timestamp(),
	})
}

func notFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   "not_found",
		"message": "Route not found",
	})
}
