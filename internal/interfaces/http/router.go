package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"cadence/internal/domain/plan"
	"cadence/internal/infrastructure/config"
	"cadence/internal/infrastructure/scheduler"
	"cadence/internal/interfaces/http/middleware"
	"cadence/internal/shared/logger"
)

// Router owns the gin engine and the wired application graph.
type Router struct {
	engine    *gin.Engine
	container *container
	cfg       *config.Config
	logger    logger.Interface
}

func NewRouter(database *gorm.DB, cfg *config.Config, log logger.Interface) *Router {
	registerValidators()

	engine := gin.New()
	engine.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Logger(log.Named("http")),
	)

	return &Router{
		engine:    engine,
		container: newContainer(database, cfg, log),
		cfg:       cfg,
		logger:    log,
	}
}

// registerValidators adds domain-specific binding rules to gin's validator.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("billingcycle", func(fl validator.FieldLevel) bool {
			_, err := plan.ParseBillingCycle(fl.Field().String())
			return err == nil
		})
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api")
	api.Use(middleware.Auth(r.cfg.Auth.JWTSecret, r.logger.Named("auth")))

	plans := api.Group("/plans")
	{
		plans.POST("", r.container.planHandler.CreatePlan)
		plans.GET("", r.container.planHandler.ListPlans)
		plans.GET("/:id", r.container.planHandler.GetPlan)
		plans.PATCH("/:id", r.container.planHandler.UpdatePlan)
		plans.DELETE("/:id", r.container.planHandler.DeletePlan)
	}

	subscriptions := api.Group("/subscriptions")
	{
		subscriptions.POST("", r.container.subscriptionHandler.Subscribe)
		subscriptions.GET("/active", r.container.subscriptionHandler.GetActiveSubscription)
		subscriptions.GET("/:id", r.container.subscriptionHandler.GetSubscription)
		subscriptions.PUT("/:id/plan", r.container.subscriptionHandler.ChangePlan)
		subscriptions.POST("/:id/cancel", r.container.subscriptionHandler.Cancel)
		subscriptions.POST("/:id/reactivate", r.container.subscriptionHandler.Reactivate)
		subscriptions.GET("/:id/transitions", r.container.subscriptionHandler.GetTransitionHistory)
	}

	analytics := api.Group("/analytics")
	{
		analytics.GET("/subscriptions/status", r.container.analyticsHandler.StatusBreakdown)
		analytics.GET("/subscriptions/plans", r.container.analyticsHandler.PlanBreakdown)
		analytics.GET("/churn", r.container.analyticsHandler.ChurnRate)
		analytics.GET("/revenue", r.container.analyticsHandler.RevenueSummary)
	}
}

// Engine exposes the underlying gin engine for the HTTP server.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// BillingScheduler exposes the wired scheduler so the server command can
// manage its lifecycle.
func (r *Router) BillingScheduler() *scheduler.BillingScheduler {
	return r.container.billingScheduler
}

// Close releases resources held by the wired graph.
func (r *Router) Close() {
	r.container.close()
}
