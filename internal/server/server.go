package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/platewise/backend/config"
	"github.com/platewise/backend/internal/api"
	"github.com/platewise/backend/internal/catalog"
	"github.com/platewise/backend/internal/database"
	"github.com/platewise/backend/internal/detection"
	"github.com/platewise/backend/internal/identity"
	"github.com/platewise/backend/internal/llm"
	"github.com/platewise/backend/internal/middleware"
	"github.com/platewise/backend/internal/service"
	"github.com/platewise/backend/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Options are the collaborators the server wires into its services.
// Redis is optional; without it rate limiting is off.
type Options struct {
	Config    *config.Config
	DB        *database.DB
	Catalog   *catalog.Catalog
	Detector  detection.Detector
	Store     storage.ImageStore
	Verifier  identity.Verifier
	Generator llm.Generator
	Redis     *redis.Client
	Logger    *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	logger *slog.Logger
}

// NewServer builds the services and registers every route.
func NewServer(opts Options) *Server {
	cfg := opts.Config
	logger := opts.Logger
	gormDB := opts.DB.Gorm

	authService := service.NewAuthService(gormDB, cfg.JWTSecret, cfg.TokenTTL, opts.Verifier, logger)
	profileService := service.NewProfileService(gormDB, logger)
	mealService := service.NewMealService(gormDB, opts.Catalog, opts.Detector, opts.Store, logger)
	rollupService := service.NewRollupService(gormDB, cfg.Location(), logger)
	adviceService := service.NewAdviceService(opts.Generator, logger)

	uploadLimiter := middleware.NewMealUploadRateLimiter(opts.Redis, cfg.RateLimit, logger)
	adviceLimiter := middleware.NewAdviceRateLimiter(opts.Redis, cfg.RateLimit, logger)

	router := gin.New()
	router.Use(middleware.ErrorHandler(logger))
	if !cfg.Env.IsTesting() {
		router.Use(middleware.RequestLogger(logger))
	}
	router.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.MaxUploadMB > 0 {
		router.MaxMultipartMemory = cfg.MaxUploadMB << 20
	}

	api.NewHealthHandler(opts.DB, opts.Catalog).RegisterRoutes(router)

	if local, ok := opts.Store.(*storage.LocalStore); ok && strings.HasPrefix(cfg.MediaURL, "/") {
		router.Static(cfg.MediaURL, local.Root())
	}

	v1 := router.Group("/api/v1")
	api.NewAuthHandler(authService, logger).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	api.NewProfileHandler(profileService, logger).RegisterRoutes(protected)
	api.NewMealHandler(mealService, rollupService, uploadLimiter, cfg.MaxUploadMB<<20, logger).RegisterRoutes(protected)
	api.NewAdviceHandler(adviceService, adviceLimiter, logger).RegisterRoutes(protected)
	api.NewRateLimitHandler(map[string]*middleware.RateLimiter{
		"meal_upload": uploadLimiter,
		"advice":      adviceLimiter,
	}, logger).RegisterRoutes(protected)

	if opts.Redis == nil {
		logger.Warn("redis unavailable, rate limiting disabled")
	}

	return &Server{
		cfg:    cfg,
		router: router,
		logger: logger,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              net.JoinHostPort(s.cfg.ServerHost, s.cfg.ServerPort),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
