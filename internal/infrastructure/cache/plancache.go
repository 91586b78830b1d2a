package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"cadence/internal/domain/plan"
	"cadence/internal/shared/logger"
)

// CachedPlan is a full plan snapshot; a hit must be servable without a
// database read. It is deliberately flat so the JSON shape stays stable.
type CachedPlan struct {
	ID            uint                `json:"id"`
	SID           string              `json:"sid"`
	TenantID      uint                `json:"tenant_id"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Price         decimal.Decimal     `json:"price"`
	BillingCycle  string              `json:"billing_cycle"`
	Active        bool                `json:"active"`
	FeatureLimits []plan.FeatureLimit `json:"feature_limits,omitempty"`
	Version       int                 `json:"version"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	NotFound      bool                `json:"not_found,omitempty"`
}

// PlanCache caches plan snapshots to keep catalog reads off the database.
// Writers must invalidate after every plan mutation.
type PlanCache interface {
	Get(ctx context.Context, tenantID, planID uint) (*CachedPlan, error)
	Set(ctx context.Context, snapshot *CachedPlan) error
	// SetNullMarker caches a short-lived not-found marker so repeated lookups
	// of a missing plan do not hit the database.
	SetNullMarker(ctx context.Context, tenantID, planID uint) error
	Invalidate(ctx context.Context, tenantID, planID uint) error
}

const (
	planKeyPrefix = "plan:snapshot:"
	basePlanTTL   = 10 * time.Minute
	planTTLJitter = 3 * time.Minute // TTL range: 10-13 min (anti-stampede)
	nullMarkerTTL = 1 * time.Minute
)

// RedisPlanCache implements PlanCache on Redis with per-key JSON values.
type RedisPlanCache struct {
	client  *redis.Client
	baseTTL time.Duration
	logger  logger.Interface
}

func NewRedisPlanCache(client *redis.Client, ttl time.Duration, log logger.Interface) *RedisPlanCache {
	if ttl <= 0 {
		ttl = basePlanTTL
	}
	return &RedisPlanCache{
		client:  client,
		baseTTL: ttl,
		logger:  log.Named("cache.plan"),
	}
}

func (c *RedisPlanCache) key(tenantID, planID uint) string {
	return fmt.Sprintf("%st%d:p%d", planKeyPrefix, tenantID, planID)
}

func (c *RedisPlanCache) Get(ctx context.Context, tenantID, planID uint) (*CachedPlan, error) {
	data, err := c.client.Get(ctx, c.key(tenantID, planID)).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan from cache: %w", err)
	}

	var cached CachedPlan
	if err := json.Unmarshal(data, &cached); err != nil {
		// Treat a corrupt entry as a miss and let the next Set overwrite it.
		c.logger.Warnw("discarding corrupt plan cache entry", "tenant_id", tenantID, "plan_id", planID, "error", err)
		return nil, nil
	}

	return &cached, nil
}

func (c *RedisPlanCache) Set(ctx context.Context, snapshot *CachedPlan) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal plan snapshot: %w", err)
	}

	if err := c.client.Set(ctx, c.key(snapshot.TenantID, snapshot.ID), data, c.ttlWithJitter()).Err(); err != nil {
		return fmt.Errorf("failed to set plan in cache: %w", err)
	}
	return nil
}

func (c *RedisPlanCache) SetNullMarker(ctx context.Context, tenantID, planID uint) error {
	data, err := json.Marshal(&CachedPlan{ID: planID, TenantID: tenantID, NotFound: true})
	if err != nil {
		return fmt.Errorf("failed to marshal null marker: %w", err)
	}

	if err := c.client.Set(ctx, c.key(tenantID, planID), data, nullMarkerTTL).Err(); err != nil {
		return fmt.Errorf("failed to set null marker in cache: %w", err)
	}
	return nil
}

func (c *RedisPlanCache) Invalidate(ctx context.Context, tenantID, planID uint) error {
	if err := c.client.Del(ctx, c.key(tenantID, planID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate plan cache: %w", err)
	}
	return nil
}

// ttlWithJitter spreads expirations so a burst of inserts does not expire at
// the same instant.
func (c *RedisPlanCache) ttlWithJitter() time.Duration {
	return c.baseTTL + rand.N(planTTLJitter)
}

// NoopPlanCache is used when Redis is not configured; every lookup is a miss
// and writes are dropped.
type NoopPlanCache struct{}

func NewNoopPlanCache() *NoopPlanCache { return &NoopPlanCache{} }

func (n *NoopPlanCache) Get(ctx context.Context, tenantID, planID uint) (*CachedPlan, error) {
	return nil, nil
}

func (n *NoopPlanCache) Set(ctx context.Context, snapshot *CachedPlan) error { return nil }

func (n *NoopPlanCache) SetNullMarker(ctx context.Context, tenantID, planID uint) error { return nil }

func (n *NoopPlanCache) Invalidate(ctx context.Context, tenantID, planID uint) error { return nil }
