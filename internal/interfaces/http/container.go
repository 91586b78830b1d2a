package http

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	analyticsUsecases "cadence/internal/application/analytics/usecases"
	planUsecases "cadence/internal/application/plan/usecases"
	subscriptionUsecases "cadence/internal/application/subscription/usecases"
	"cadence/internal/domain/analytics"
	"cadence/internal/domain/plan"
	"cadence/internal/domain/subscription"
	"cadence/internal/infrastructure/cache"
	"cadence/internal/infrastructure/config"
	"cadence/internal/infrastructure/repository"
	"cadence/internal/infrastructure/scheduler"
	"cadence/internal/interfaces/http/handlers"
	"cadence/internal/shared/db"
	"cadence/internal/shared/logger"
)

// container wires repositories, use cases and handlers from the database
// connection and configuration.
type container struct {
	planRepo         plan.Repository
	subscriptionRepo subscription.Repository
	transitionRepo   subscription.TransitionLogRepository
	analyticsRepo    analytics.Repository

	planCache cache.PlanCache
	redis     *redis.Client

	planHandler         *handlers.PlanHandler
	subscriptionHandler *handlers.SubscriptionHandler
	analyticsHandler    *handlers.AnalyticsHandler

	billingScheduler *scheduler.BillingScheduler
}

func newContainer(database *gorm.DB, cfg *config.Config, log logger.Interface) *container {
	c := &container{}

	c.planRepo = repository.NewPlanRepository(database, log)
	c.subscriptionRepo = repository.NewSubscriptionRepository(database, log)
	c.transitionRepo = repository.NewTransitionLogRepository(database, log)
	c.analyticsRepo = repository.NewAnalyticsRepository(database, log)

	c.planCache = c.initPlanCache(cfg, log)

	txManager := db.NewTransactionManager(database)

	createPlanUC := planUsecases.NewCreatePlanUseCase(c.planRepo, log)
	updatePlanUC := planUsecases.NewUpdatePlanUseCase(c.planRepo, c.planCache, log)
	getPlanUC := planUsecases.NewGetPlanUseCase(c.planRepo, c.planCache, log)
	listPlansUC := planUsecases.NewListPlansUseCase(c.planRepo, log)
	deletePlanUC := planUsecases.NewDeletePlanUseCase(c.planRepo, c.subscriptionRepo, c.planCache, txManager, log)

	subscribeUC := subscriptionUsecases.NewSubscribeUseCase(c.subscriptionRepo, c.planRepo, c.transitionRepo, txManager, log)
	upgradePlanUC := subscriptionUsecases.NewUpgradePlanUseCase(c.subscriptionRepo, c.planRepo, c.transitionRepo, txManager, log)
	cancelUC := subscriptionUsecases.NewCancelSubscriptionUseCase(c.subscriptionRepo, c.transitionRepo, txManager, log)
	reactivateUC := subscriptionUsecases.NewReactivateSubscriptionUseCase(c.subscriptionRepo, c.planRepo, c.transitionRepo, txManager, log)
	markPastDueUC := subscriptionUsecases.NewMarkPastDueUseCase(c.subscriptionRepo, c.transitionRepo, txManager, log)
	getSubscriptionUC := subscriptionUsecases.NewGetSubscriptionUseCase(c.subscriptionRepo, log)
	getActiveUC := subscriptionUsecases.NewGetActiveSubscriptionUseCase(c.subscriptionRepo, log)
	getHistoryUC := subscriptionUsecases.NewGetTransitionHistoryUseCase(c.subscriptionRepo, c.transitionRepo, log)

	statusBreakdownUC := analyticsUsecases.NewStatusBreakdownUseCase(c.analyticsRepo, log)
	planBreakdownUC := analyticsUsecases.NewPlanBreakdownUseCase(c.analyticsRepo, c.planRepo, log)
	churnRateUC := analyticsUsecases.NewChurnRateUseCase(c.analyticsRepo, log)
	revenueSummaryUC := analyticsUsecases.NewRevenueSummaryUseCase(c.analyticsRepo, c.planRepo, log)

	c.planHandler = handlers.NewPlanHandler(createPlanUC, updatePlanUC, getPlanUC, listPlansUC, deletePlanUC)
	c.subscriptionHandler = handlers.NewSubscriptionHandler(
		subscribeUC, upgradePlanUC, cancelUC, reactivateUC, getSubscriptionUC, getActiveUC, getHistoryUC)
	c.analyticsHandler = handlers.NewAnalyticsHandler(statusBreakdownUC, planBreakdownUC, churnRateUC, revenueSummaryUC)

	c.billingScheduler = scheduler.NewBillingScheduler(
		c.subscriptionRepo,
		markPastDueUC,
		time.Duration(cfg.Billing.SchedulerIntervalMinutes)*time.Minute,
		cfg.Billing.SchedulerBatchSize,
		log.Named("scheduler.billing"),
	)

	return c
}

func (c *container) initPlanCache(cfg *config.Config, log logger.Interface) cache.PlanCache {
	if !cfg.Redis.Enabled() {
		log.Infow("redis not configured, plan cache disabled")
		return cache.NewNoopPlanCache()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnw("redis unreachable, plan cache disabled", "error", err, "addr", cfg.Redis.Addr)
		return cache.NewNoopPlanCache()
	}
	log.Infow("redis connection established", "addr", cfg.Redis.Addr)

	c.redis = client
	return cache.NewRedisPlanCache(client, time.Duration(cfg.Cache.PlanTTLMinutes)*time.Minute, log)
}

func (c *container) close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
}
