package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript applies the same refill-on-expiry algorithm as MemoryStore atomically.
// KEYS[1] bucket key; ARGV: limit, window ms, now ms.
// Returns {allowed, remaining, lastRefill ms}.
var hitScript = redis.NewScript(`
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'last')
local tokens = tonumber(state[1])
local last = tonumber(state[2])

if tokens == nil or last == nil or (now - last) > window then
  tokens = limit
  last = now
end

local allowed = 0
if tokens > 0 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'last', last)
redis.call('PEXPIRE', KEYS[1], window * 2)

return {allowed, tokens, last}
`)

// RedisStore shares buckets between instances through Redis.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "app:ratelimit"
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

// Hit implements Store.
func (s *RedisStore) Hit(ctx context.Context, key string, policy Policy) (Result, error) {
	now := s.now()

	values, err := hitScript.Run(ctx, s.client,
		[]string{s.prefix + ":" + key},
		policy.Limit,
		policy.Window.Milliseconds(),
		now.UnixMilli(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(values) != 3 {
		return Result{}, fmt.Errorf("rate limit script: unexpected reply length %d", len(values))
	}

	remaining := int(values[1])
	allowed := values[0] == 1
	if !allowed {
		remaining = 0
	}

	return Result{
		OK:        allowed,
		Remaining: remaining,
		Limit:     policy.Limit,
		ResetAt:   time.UnixMilli(values[2]).Add(policy.Window),
	}, nil
}
