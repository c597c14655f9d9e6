package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cvforge/gateway/internal/plans"
)

// fakeStore is an in-memory CounterStore. TTLs are recorded, not enforced;
// tests expire keys explicitly.
type fakeStore struct {
	mu      sync.Mutex
	counts  map[string]int64
	ttls    map[string]time.Duration
	failAll error
	pingErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		counts: make(map[string]int64),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return "", f.failAll
	}
	count, ok := f.counts[key]
	if !ok {
		return "", redis.Nil
	}
	return strconv.FormatInt(count, 10), nil
}

func (f *fakeStore) Incr(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return 0, f.failAll
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return 0, f.failAll
	}
	if _, ok := f.counts[key]; !ok {
		return -2, nil
	}
	ttl, ok := f.ttls[key]
	if !ok {
		return -1, nil
	}
	return ttl, nil
}

func (f *fakeStore) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.counts, key)
	delete(f.ttls, key)
	return nil
}

func (f *fakeStore) Ping(ctx context.Context) error {
	return f.pingErr
}

// expireKey simulates the store dropping a key whose TTL elapsed.
func (f *fakeStore) expireKey(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.counts, key)
	delete(f.ttls, key)
}

func TestCheckLimitAllowsUpToPlanLimit(t *testing.T) {
	store := newFakeStore()
	strategy := NewRedisBacked(store, zap.NewNop())
	ctx := context.Background()

	limit := plans.RateLimit(plans.TierFree, plans.WindowMinute)
	for i := 0; i < limit; i++ {
		allowed, err := strategy.CheckLimit(ctx, "user-1", plans.TierFree, plans.WindowMinute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be within the limit", i+1)
	}

	allowed, err := strategy.CheckLimit(ctx, "user-1", plans.TierFree, plans.WindowMinute)
	require.NoError(t, err)
	assert.False(t, allowed, "request limit+1 should be denied")
}

func TestCheckLimitSetsWindowExpiryOnFirstIncrement(t *testing.T) {
	store := newFakeStore()
	strategy := NewRedisBacked(store, zap.NewNop())
	ctx := context.Background()

	_, err := strategy.CheckLimit(ctx, "user-1", plans.TierFree, plans.WindowMinute)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, store.ttls["rate:user-1:minute"])

	// Later increments must not refresh the expiry.
	store.ttls["rate:user-1:minute"] = 30 * time.Second
	_, err = strategy.CheckLimit(ctx, "user-1", plans.TierFree, plans.WindowMinute)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, store.ttls["rate:user-1:minute"])
}

func TestCheckLimitWindowsAreIndependent(t *testing.T) {
	store := newFakeStore()
	strategy := NewRedisBacked(store, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		strategy.CheckLimit(ctx, "user-1", plans.TierFree, plans.WindowMinute)
	}

	// Exhausting the minute window leaves the hour window untouched.
	allowed, err := strategy.CheckLimit(ctx, "user-1", plans.TierFree, plans.WindowHour)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckLimitResetsAfterWindowExpiry(t *testing.T) {
	store := newFakeStore()
	strategy := NewRedisBacked(store, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		strategy.CheckLimit(ctx, "user-1", plans.TierFree, plans.WindowMinute)
	}
	allowed, err := strategy.CheckLimit(ctx, "user-1", plans.TierFree, plans.WindowMinute)
	require.NoError(t, err)
	assert.False(t, allowed)

	store.expireKey("rate:user-1:minute")

	allowed, err = strategy.CheckLimit(ctx, "user-1", plans.TierFree, plans.WindowMinute)
	require.NoError(t, err)
	assert.True(t, allowed, "counter should restart after window expiry")

	info, err := strategy.Info(ctx, "user-1", plans.TierFree, plans.WindowMinute)
	require.NoError(t, err)
	assert.Equal(t, 9, info.Remaining)
}

func TestInfoCountsDownAndNeverGoesNegative(t *testing.T) {
	store := newFakeStore()
	strategy := NewRedisBacked(store, zap.NewNop())
	ctx := context.Background()

	previous := plans.RateLimit(plans.TierFree, plans.WindowMinute)
	for i := 0; i < 12; i++ {
		_, err := strategy.CheckLimit(ctx, "user-1", plans.TierFree, plans.WindowMinute)
		require.NoError(t, err)

		info, err := strategy.Info(ctx, "user-1", plans.TierFree, plans.WindowMinute)
		require.NoError(t, err)
		assert.LessOrEqual(t, info.Remaining, previous, "remaining must be non-increasing")
		assert.GreaterOrEqual(t, info.Remaining, 0)
		previous = info.Remaining
	}

	assert.Equal(t, 0, previous)
}

func TestInfoForMissingCounter(t *testing.T) {
	store := newFakeStore()
	strategy := NewRedisBacked(store, zap.NewNop())

	before := time.Now().UnixMilli()
	info, err := strategy.Info(context.Background(), "nobody", plans.TierFree, plans.WindowMinute)
	require.NoError(t, err)

	assert.Equal(t, 10, info.Limit)
	assert.Equal(t, 10, info.Remaining)
	assert.GreaterOrEqual(t, info.ResetAt, before, "missing counter resets now, not in the future")
}

func TestInfoResetIsInTheFutureWhileCounterLives(t *testing.T) {
	store := newFakeStore()
	strategy := NewRedisBacked(store, zap.NewNop())
	ctx := context.Background()

	_, err := strategy.CheckLimit(ctx, "user-1", plans.TierFree, plans.WindowMinute)
	require.NoError(t, err)

	info, err := strategy.Info(ctx, "user-1", plans.TierFree, plans.WindowMinute)
	require.NoError(t, err)
	assert.Greater(t, info.ResetAt, time.Now().UnixMilli())
}

func TestStoreErrorsPropagate(t *testing.T) {
	store := newFakeStore()
	store.failAll = errors.New("connection refused")
	strategy := NewRedisBacked(store, zap.NewNop())
	ctx := context.Background()

	_, err := strategy.CheckLimit(ctx, "user-1", plans.TierFree, plans.WindowMinute)
	assert.Error(t, err)

	_, err = strategy.Info(ctx, "user-1", plans.TierFree, plans.WindowMinute)
	assert.Error(t, err)
}

func TestHealthTracksPing(t *testing.T) {
	store := newFakeStore()
	strategy := NewRedisBacked(store, zap.NewNop())

	assert.Equal(t, HealthHealthy, strategy.Health(context.Background()))

	store.pingErr = errors.New("down")
	assert.Equal(t, HealthUnhealthy, strategy.Health(context.Background()))
}
