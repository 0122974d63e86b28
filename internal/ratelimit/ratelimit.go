// Package ratelimit implements the per-client token bucket that guards the
// generation endpoints. Buckets refill to full once their window has elapsed
// rather than leaking continuously.
package ratelimit

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// UnknownClient is the shared key for requests without an X-Forwarded-For header.
const UnknownClient = "unknown"

type Policy struct {
	Limit  int
	Window time.Duration
}

// DefaultPolicy is 10 requests per minute.
var DefaultPolicy = Policy{Limit: 10, Window: time.Minute}

type Result struct {
	OK        bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// RetryAfter is the whole number of seconds until the bucket refills, at least 1.
func (r Result) RetryAfter(now time.Time) int {
	seconds := int(r.ResetAt.Sub(now).Seconds())
	if seconds < 1 {
		return 1
	}
	return seconds
}

// Store consumes one token from the bucket identified by key.
type Store interface {
	Hit(ctx context.Context, key string, policy Policy) (Result, error)
}

// ClientKey derives the bucket key from the first X-Forwarded-For entry.
// Clients without the header all share UnknownClient. The result is copied out
// of the request buffer so it stays valid after the handler returns.
func ClientKey(c *fiber.Ctx) string {
	forwarded := c.Get(fiber.HeaderXForwardedFor)
	if forwarded == "" {
		return UnknownClient
	}

	first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
	if first == "" {
		return UnknownClient
	}
	return strings.Clone(first)
}
