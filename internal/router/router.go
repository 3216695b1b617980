package router

import (
	"github.com/gin-gonic/gin"
	"github.com/nutriflow/backend/internal/api"
	"github.com/nutriflow/backend/internal/mealplan"
	"github.com/nutriflow/backend/internal/metrics"
	"github.com/nutriflow/backend/internal/middleware"
	"github.com/nutriflow/backend/internal/service"
)

// Dependencies are the services the routes are built from. Limiter,
// Metrics and HealthChecks are optional.
type Dependencies struct {
	Validator    middleware.TokenValidator
	Foods        service.IFoodService
	Candidates   mealplan.CandidateRepository
	Patients     service.IPatientService
	Plans        service.IMealPlanService
	Limiter      *middleware.RateLimiter
	Metrics      *metrics.Collector
	HealthChecks map[string]api.Pinger
	Origins      []string
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), middleware.Recovery(), middleware.CORS(deps.Origins...), middleware.ErrorHandler())

	router.GET("/health", api.HealthCheck(deps.HealthChecks))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	candidates := deps.Candidates
	if candidates == nil {
		candidates = deps.Foods
	}

	var limit gin.HandlerFunc
	if deps.Limiter != nil {
		limit = deps.Limiter.RateLimitMiddleware()
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(deps.Validator))
	{
		api.NewMealPlanHandler(deps.Plans, deps.Foods, deps.Patients).RegisterRoutes(v1, limit)
		api.NewFoodHandler(candidates, deps.Foods).RegisterRoutes(v1)
		api.NewPatientHandler(deps.Patients).RegisterRoutes(v1)
	}

	return router
}
