package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/housing-valuator/api/handlers"
	"github.com/OldStager01/housing-valuator/api/middleware"
	"github.com/OldStager01/housing-valuator/internal/metrics"
	"github.com/OldStager01/housing-valuator/internal/preparer"
	"github.com/OldStager01/housing-valuator/pkg/config"
)

// Dependencies are the components the HTTP layer calls into. History,
// Metrics, Checks and Settings are optional.
type Dependencies struct {
	Predictor handlers.Predictor
	Source    handlers.BundleSource
	Preparer  *preparer.Preparer
	History   handlers.PredictionHistory
	Metrics   *metrics.Metrics
	Checks    map[string]handlers.Check
	Project   config.ProjectConfig
	Settings  handlers.Settings
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     config.APIConfig
	prometheus config.PrometheusConfig
	deps       Dependencies
}

func NewServer(cfg config.APIConfig, prom config.PrometheusConfig, mode string, deps Dependencies) *Server {
	switch mode {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	s := &Server{
		router:     gin.New(),
		config:     cfg,
		prometheus: prom,
		deps:       deps,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins:     s.config.CORS.AllowedOrigins,
		AllowMethods:     s.config.CORS.AllowedMethods,
		AllowHeaders:     s.config.CORS.AllowedHeaders,
		ExposeHeaders:    s.config.CORS.ExposedHeaders,
		AllowCredentials: s.config.CORS.AllowCredentials,
	}))
	s.router.Use(middleware.RequestLogger())
	if s.deps.Metrics != nil {
		s.router.Use(middleware.Metrics(s.deps.Metrics))
	}
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.RequestSizeLimit(s.config.MaxBodyBytes))

	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

func (s *Server) setupRoutes() {
	limits := handlers.Limits{Default: s.config.DefaultLimit, Max: s.config.MaxLimit}
	prep := s.deps.Preparer
	if prep == nil {
		prep = preparer.New(preparer.Config{}, nil)
	}

	healthHandler := handlers.NewHealthHandler(s.deps.Source, s.deps.Checks)
	predictionHandler := handlers.NewPredictionHandler(s.deps.Predictor, s.deps.History, limits)
	catalogHandler := handlers.NewCatalogHandler(s.deps.Source)
	modelHandler := handlers.NewModelHandler(s.deps.Source)
	dataHandler := handlers.NewDataHandler(s.deps.Source, prep, limits)
	projectHandler := handlers.NewProjectHandler(s.deps.Project, s.deps.Source, s.deps.Settings)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	if s.prometheus.Enabled && s.deps.Metrics != nil {
		path := s.prometheus.Path
		if path == "" {
			path = "/metrics"
		}
		s.router.GET(path, gin.WrapH(s.deps.Metrics.Handler()))
	}

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/predictions", predictionHandler.Create)
		v1.GET("/predictions/recent", predictionHandler.Recent)
		v1.GET("/predictions/stats", predictionHandler.Stats)

		v1.GET("/catalog/districts", catalogHandler.Districts)
		v1.GET("/catalog/property-types", catalogHandler.PropertyTypes)

		v1.GET("/model/metrics", modelHandler.Metrics)
		v1.GET("/model/feature-importance", modelHandler.FeatureImportance)
		v1.GET("/model/district-scores", modelHandler.DistrictScores)

		v1.GET("/data/outliers", dataHandler.Outliers)
		v1.GET("/data/districts", dataHandler.Districts)
		v1.GET("/data/sample", dataHandler.Sample)

		v1.GET("/project", projectHandler.Info)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	idle := s.config.IdleTimeout
	if idle == 0 {
		idle = 60 * time.Second
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  idle,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
