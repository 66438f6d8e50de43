package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	edgehttp "github.com/GriffinCanCode/edgeoptimizer/internal/api/http"
	"github.com/GriffinCanCode/edgeoptimizer/internal/api/middleware"
	"github.com/GriffinCanCode/edgeoptimizer/internal/domain/pipeline"
	"github.com/GriffinCanCode/edgeoptimizer/internal/domain/rewriter"
	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/config"
	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/logging"
	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/edgeoptimizer/internal/providers/advisor"
	"github.com/GriffinCanCode/edgeoptimizer/internal/providers/http/client"
	"github.com/GriffinCanCode/edgeoptimizer/internal/providers/origin"
	"github.com/GriffinCanCode/edgeoptimizer/internal/shared/types"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router   *gin.Engine
	http     *http.Server
	pipeline *pipeline.Pipeline
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
}

// Components are the wired pipeline parts, shared by the server and the CLI.
type Components struct {
	Pipeline *pipeline.Pipeline
	Advisor  *advisor.Advisor
	Engine   *rewriter.Engine
}

// Build wires config into a pipeline. metrics and tracer may be nil.
func Build(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics, tracer *tracing.Tracer) (*Components, error) {
	rules := types.DefaultRewriteRules()
	if cfg.Rules.File != "" {
		loaded, err := config.LoadRules(cfg.Rules.File)
		if err != nil {
			return nil, err
		}
		rules = loaded
		logger.Info("Rewrite rules loaded", zap.String("file", cfg.Rules.File))
	}
	engine := rewriter.New(rules)

	// Passthrough bodies stream for as long as the origin sends them.
	originClient := client.New(client.Options{Name: "origin", HeaderTimeout: cfg.Origin.Timeout})
	fetcher := origin.NewFetcher(originClient, logger.Named("origin").Logger)

	adv := advisor.New(advisor.Options{
		APIKey:          cfg.Advisor.APIKey,
		Endpoint:        cfg.Advisor.Endpoint,
		Model:           cfg.Advisor.Model,
		Timeout:         cfg.Advisor.Timeout,
		RequestsPerSec:  cfg.Advisor.RequestsPerSec,
		BreakerFailures: cfg.Advisor.BreakerFailures,
	}, logger.Logger, metrics)
	if !adv.Enabled() {
		logger.Warn("Advisor disabled: no API key configured, documents are optimized without suggestions")
	}

	p := pipeline.New(
		origin.NewResolver(cfg.Origin.Domain, cfg.Origin.Fallback),
		fetcher,
		adv,
		engine,
		pipeline.Options{
			MaxBodyBytes: cfg.Origin.MaxBodyBytes,
			BypassPaths:  cfg.Origin.BypassPaths,
			CacheControl: cfg.Cache.Header(),
		},
		logger,
		metrics,
		tracer,
	)

	return &Components{Pipeline: p, Advisor: adv, Engine: engine}, nil
}

// NewServer creates a new server instance.
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing edge optimizer",
		zap.String("port", cfg.Server.Port),
		zap.String("origin", cfg.Origin.Domain),
		zap.Bool("advisor", cfg.Advisor.Enabled()),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)
	tracer := tracing.New("edge", logger.Logger)

	parts, err := Build(cfg, logger, metrics, tracer)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	// Proxied paths belong to the origin; never rewrite them.
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := edgehttp.NewHandlers(parts.Pipeline, metrics, logger, parts.Advisor.Enabled())
	handlers.Register(router, registry, cfg.Admin.TokenHash)

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		pipeline: parts.Pipeline,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		tracer:   tracer,
		http: &http.Server{
			Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
	}, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close drains in-flight requests within the shutdown timeout.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("Graceful shutdown failed", zap.Error(err))
		err = fmt.Errorf("failed to shut down http server: %w", err)
	}

	s.tracer.Close()
	_ = s.logger.Sync()
	return err
}
