package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/nutriflow/backend/config"
	"github.com/nutriflow/backend/internal/api"
	"github.com/nutriflow/backend/internal/database"
	"github.com/nutriflow/backend/internal/mealplan"
	"github.com/nutriflow/backend/internal/metrics"
	"github.com/nutriflow/backend/internal/middleware"
	"github.com/nutriflow/backend/internal/router"
	"github.com/nutriflow/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router    *gin.Engine
	http      *http.Server
	publisher service.EventPublisher
}

// Options carries the optional collaborators of New. Nil fields switch the
// matching feature off.
type Options struct {
	Redis     *redis.Client
	Archiver  service.PlanArchiver
	Publisher service.EventPublisher
}

// New wires services, handlers and middleware from cfg
func New(cfg *config.Config, db *gorm.DB, opts Options) *Server {
	collector := metrics.NewCollector()

	foods := service.NewFoodService(db)
	var candidates mealplan.CandidateRepository = foods
	var limiter *middleware.RateLimiter
	checks := map[string]api.Pinger{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
	}

	if opts.Redis != nil {
		cache := service.NewCachedCandidateRepository(foods, opts.Redis, cfg.CandidateCacheTTL, collector)
		foods.WithCandidateCache(cache)
		candidates = cache
		limiter = middleware.NewGenerationRateLimiter(opts.Redis, cfg.RateLimitRequests, cfg.RateLimitWindow)
		checks["redis"] = func(ctx context.Context) error { return opts.Redis.Ping(ctx).Err() }
	} else {
		log.Printf("[Server] Redis not configured; candidate cache and rate limiting disabled")
	}

	genOpts := []mealplan.Option{mealplan.WithCandidateLimit(cfg.CandidateLimit)}
	if cfg.MealplanSeed != 0 {
		genOpts = append(genOpts, mealplan.WithSeed(cfg.MealplanSeed))
	}
	generator := mealplan.NewGenerator(candidates, genOpts...)

	plans := service.NewMealPlanService(db, generator, opts.Archiver, opts.Publisher, collector)

	engine := router.SetupRouter(router.Dependencies{
		Validator:    middleware.NewJWTValidator(cfg.JWTSecret),
		Foods:        foods,
		Candidates:   candidates,
		Patients:     service.NewPatientService(db),
		Plans:        plans,
		Limiter:      limiter,
		Metrics:      collector,
		HealthChecks: checks,
	})

	return &Server{
		router: engine,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		publisher: opts.Publisher,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	log.Printf("[Server] Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and closes the event publisher
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if s.publisher != nil {
		if cerr := s.publisher.Close(); cerr != nil {
			log.Printf("[Server] Failed to close event publisher: %v", cerr)
		}
	}
	return err
}
