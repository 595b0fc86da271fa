// Package ratelimit throttles requests per key, either in redis (shared
// across instances) or in process.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter reports whether one more request for key fits in the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter is a fixed-window counter per key, expiring after window.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: int64(limit), window: window, prefix: prefix}
}

// fixedWindow increments the counter and gives it a TTL whenever it has
// none, in one atomic step. A key left without expiry heals on its next hit.
var fixedWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := fmt.Sprintf("%s:%s", l.prefix, key)

	n, err := fixedWindow.Run(ctx, l.client, []string{k}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", k, err)
	}
	return n <= l.limit, nil
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter gives every key its own token bucket. Buckets idle for
// longer than idleTTL are dropped by a background sweep.
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// NewKeyed allows perWindow requests per window for each key, all of which
// may arrive at once.
func NewKeyed(perWindow int, window time.Duration) *KeyedLimiter {
	kl := &KeyedLimiter{
		limiters: make(map[string]*entry),
		limit:    rate.Every(window / time.Duration(perWindow)),
		burst:    perWindow,
		idleTTL:  2 * window,
		done:     make(chan struct{}),
	}
	go kl.cleanup()
	return kl
}

func (kl *KeyedLimiter) Allow(_ context.Context, key string) (bool, error) {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	e, ok := kl.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(kl.limit, kl.burst)}
		kl.limiters[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow(), nil
}

// Stop shuts down the cleanup goroutine.
func (kl *KeyedLimiter) Stop() {
	kl.stopOnce.Do(func() {
		close(kl.done)
	})
}

func (kl *KeyedLimiter) cleanup() {
	ticker := time.NewTicker(kl.idleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-kl.done:
			return
		case now := <-ticker.C:
			kl.sweep(now)
		}
	}
}

func (kl *KeyedLimiter) sweep(now time.Time) {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	for key, e := range kl.limiters {
		if now.Sub(e.lastSeen) > kl.idleTTL {
			delete(kl.limiters, key)
		}
	}
}
