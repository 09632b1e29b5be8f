package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/debtwise/debt-ledger/src/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ScheduleCache caches computed schedule summaries keyed by debt id. A nil
// cache is valid; callers fall back to recomputing from the store.
type ScheduleCache interface {
	GetSummary(ctx context.Context, debtID uuid.UUID) (*models.ScheduleSummary, bool)
	SetSummary(ctx context.Context, summary *models.ScheduleSummary) error
	Invalidate(ctx context.Context, debtID uuid.UUID) error
}

// summaryCacheKey builds the cache key for a debt's schedule summary
func summaryCacheKey(debtID uuid.UUID) string {
	return fmt.Sprintf("debt:%s:summary", debtID)
}

// RedisScheduleCache caches schedule summaries in redis as JSON payloads
type RedisScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisScheduleCache creates a redis-backed schedule cache
func NewRedisScheduleCache(addr string, ttl time.Duration) *RedisScheduleCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisScheduleCache{client: rdb, ttl: ttl}
}

// GetSummary returns the cached summary for a debt, if present
func (c *RedisScheduleCache) GetSummary(ctx context.Context, debtID uuid.UUID) (*models.ScheduleSummary, bool) {
	payload, err := c.client.Get(ctx, summaryCacheKey(debtID)).Result()
	if err != nil {
		return nil, false
	}

	var summary models.ScheduleSummary
	if err := json.Unmarshal([]byte(payload), &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

// SetSummary stores the summary under the debt's cache key
func (c *RedisScheduleCache) SetSummary(ctx context.Context, summary *models.ScheduleSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, summaryCacheKey(summary.DebtID), payload, c.ttl).Err()
}

// Invalidate drops the cached summary for a debt
func (c *RedisScheduleCache) Invalidate(ctx context.Context, debtID uuid.UUID) error {
	return c.client.Del(ctx, summaryCacheKey(debtID)).Err()
}

// MockScheduleCache is an in-memory cache for tests and offline use
type MockScheduleCache struct {
	Data map[string]*models.ScheduleSummary
}

// NewMockScheduleCache creates an empty in-memory cache
func NewMockScheduleCache() *MockScheduleCache {
	return &MockScheduleCache{
		Data: make(map[string]*models.ScheduleSummary),
	}
}

// GetSummary returns the cached summary for a debt, if present
func (m *MockScheduleCache) GetSummary(_ context.Context, debtID uuid.UUID) (*models.ScheduleSummary, bool) {
	summary, ok := m.Data[summaryCacheKey(debtID)]
	return summary, ok
}

// SetSummary stores the summary under the debt's cache key
func (m *MockScheduleCache) SetSummary(_ context.Context, summary *models.ScheduleSummary) error {
	m.Data[summaryCacheKey(summary.DebtID)] = summary
	return nil
}

// Invalidate drops the cached summary for a debt
func (m *MockScheduleCache) Invalidate(_ context.Context, debtID uuid.UUID) error {
	delete(m.Data, summaryCacheKey(debtID))
	return nil
}
