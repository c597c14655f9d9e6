package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cvforge/gateway/internal/auth"
	"github.com/cvforge/gateway/internal/config"
	"github.com/cvforge/gateway/internal/handler"
	"github.com/cvforge/gateway/internal/metrics"
	"github.com/cvforge/gateway/internal/middleware"
	"github.com/cvforge/gateway/internal/plans"
	"github.com/cvforge/gateway/internal/quota"
	"github.com/cvforge/gateway/internal/ratelimit"
	"github.com/cvforge/gateway/internal/storage"
)

type Server struct {
	router     *gin.Engine
	config     *config.Config
	redis      *storage.RedisClient
	postgres   *storage.Postgres
	strategy   ratelimit.Strategy
	quota      *quota.Service
	logger     *zap.Logger
	httpServer *http.Server
}

func New(cfg *config.Config, redis *storage.RedisClient, postgres *storage.Postgres, logger *zap.Logger) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// One strategy per process lifetime; guards share it by reference.
	strategy := ratelimit.NewStrategy(cfg.RateLimit, redis, logger)

	quotaRepo := quota.NewRepository(postgres)
	quotaService := quota.NewService(quotaRepo, logger)

	s := &Server{
		router:   router,
		config:   cfg,
		redis:    redis,
		postgres: postgres,
		strategy: strategy,
		quota:    quotaService,
		logger:   logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	validator := auth.NewValidator(s.config.Auth.JWTSecret)

	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Identify(validator, s.logger))
}

func (s *Server) setupRoutes() {
	m := metrics.New()

	limitsHandler := handler.NewLimitsHandler(s.strategy, s.config.RateLimit.Enabled, s.quota)
	cvHandler := handler.NewCVHandler(s.quota, s.logger)

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate policies are bound here, at registration time. A route without a
	// policy gets no guard and therefore no rate-limit headers.
	perMinute := middleware.RatePolicy{Window: plans.WindowMinute}

	v1 := s.router.Group("/v1")
	{
		v1.GET("/limits/status", limitsHandler.Status)
		v1.GET("/limits/usage", limitsHandler.Usage)

		v1.POST("/cvs",
			middleware.RateLimit(s.strategy, perMinute, m, s.logger),
			middleware.Quota(s.quota, plans.FeatureCVUploads, m, s.logger),
			cvHandler.Upload,
		)
		v1.POST("/cvs/:id/export",
			middleware.RateLimit(s.strategy, perMinute, m, s.logger),
			middleware.Quota(s.quota, plans.FeatureExports, m, s.logger),
			cvHandler.Export,
		)
		v1.POST("/cvs/:id/tailor",
			middleware.RateLimit(s.strategy, perMinute, m, s.logger),
			middleware.Quota(s.quota, plans.FeatureTailoring, m, s.logger),
			cvHandler.Tailor,
		)
		v1.POST("/portfolio/publish",
			middleware.RateLimit(s.strategy, perMinute, m, s.logger),
			middleware.Quota(s.quota, plans.FeaturePortfolios, m, s.logger),
			cvHandler.PublishPortfolio,
		)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	redisHealthy := true
	if err := s.redis.Ping(c.Request.Context()); err != nil {
		redisHealthy = false
		s.logger.Warn("redis health check failed", zap.Error(err))
	}

	dbHealthy := true
	if err := s.postgres.Ping(c.Request.Context()); err != nil {
		dbHealthy = false
		s.logger.Warn("database health check failed", zap.Error(err))
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"service":   "admission-gateway",
		"timestamp": time.Now().Unix(),
		"checks": gin.H{
			"redis":    redisHealthy,
			"database": dbHealthy,
		},
	})
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	s.logger.Info("starting admission gateway",
		zap.String("addr", addr),
		zap.String("environment", s.config.Server.Environment),
		zap.String("rate_limit_strategy", s.strategy.Name()),
	)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
