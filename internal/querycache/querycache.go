// Package querycache memoizes reader results per key with a TTL and retries
// failed loads with backoff.
package querycache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"

	"github.com/dailymath/dailymath/internal/apperr"
)

const DailyQuestionKey = "daily-question"

func HistoryKey(userID string) string { return "history:" + userID }

func ResultKey(userID, resultID string) string {
	return fmt.Sprintf("result:%s:%s", userID, resultID)
}

func LatestKey(userID, questionID string) string {
	return fmt.Sprintf("latest:%s:%s", userID, questionID)
}

type entry struct {
	value    any
	storedAt time.Time
}

type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	ttl      time.Duration
	attempts uint
	delay    time.Duration
	now      func() time.Time
	// generation advances on every invalidation; a load that started
	// before one must not be stored.
	generation uint64
}

// New returns a cache. A ttl of zero disables memoization but keeps retries.
func New(ttl time.Duration, attempts uint, delay time.Duration) *Cache {
	if attempts == 0 {
		attempts = 1
	}
	return &Cache{
		entries:  make(map[string]entry),
		ttl:      ttl,
		attempts: attempts,
		delay:    delay,
		now:      time.Now,
	}
}

// Fetch returns the cached value for key or loads it with fn.
// Not-found and validation errors are returned on the first attempt.
func Fetch[T any](ctx context.Context, c *Cache, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := c.get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	gen := c.currentGeneration()
	var (
		result  T
		lastErr error
	)
	err := retry.Do(
		func() error {
			v, err := fn(ctx)
			if err != nil {
				lastErr = err
				if !retryable(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = v
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		if lastErr != nil {
			return zero, lastErr
		}
		return zero, err
	}

	c.set(key, result, gen)
	return result, nil
}

// Invalidate drops every entry whose key starts with prefix.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// InvalidateUser drops the readers a new submission makes stale.
func (c *Cache) InvalidateUser(userID string) {
	c.Delete(HistoryKey(userID))
	c.Invalidate("latest:" + userID + ":")
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	delete(c.entries, key)
}

func (c *Cache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Cache) get(key string) (any, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// set stores value unless the cache was invalidated after gen was read.
func (c *Cache) set(key string, value any, gen uint64) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return
	}
	c.entries[key] = entry{value: value, storedAt: c.now()}
}

func retryable(err error) bool {
	return !errors.Is(err, apperr.ErrNotFound) &&
		!errors.Is(err, apperr.ErrValidation) &&
		!errors.Is(err, apperr.ErrPermissionDenied)
}
