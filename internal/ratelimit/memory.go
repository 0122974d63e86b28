package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type bucket struct {
	tokens     int
	lastRefill time.Time
	window     time.Duration
}

// MemoryStore keeps buckets in process memory. It is correct for a single
// instance only; use RedisStore when running several replicas.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Hit implements Store.
func (s *MemoryStore) Hit(_ context.Context, key string, policy Policy) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	b, ok := s.buckets[key]
	if !ok || now.Sub(b.lastRefill) > policy.Window {
		b = &bucket{tokens: policy.Limit, lastRefill: now, window: policy.Window}
		s.buckets[key] = b
	}

	result := Result{
		Limit:   policy.Limit,
		ResetAt: b.lastRefill.Add(policy.Window),
	}

	if b.tokens <= 0 {
		return result, nil
	}

	b.tokens--
	result.OK = true
	result.Remaining = b.tokens
	return result, nil
}

// Len returns the number of tracked buckets.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Sweep drops buckets whose window has elapsed. Such a bucket would be refilled
// on its next hit anyway, so removing it does not change any decision.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, b := range s.buckets {
		if now.Sub(b.lastRefill) > b.window {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.Sweep(); removed > 0 && logger != nil {
					logger.Debug("rate limit buckets swept",
						zap.Int("removed", removed),
						zap.Int("remaining", s.Len()),
					)
				}
			}
		}
	}()
}
