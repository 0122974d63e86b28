package ratelimit

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-roast/internal/metrics"
)

const (
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderLimit     = "X-RateLimit-Limit"

	// LocalClientKey is the fiber.Ctx local holding the derived client key.
	LocalClientKey = "rateLimitClientKey"
)

type Middleware struct {
	store   Store
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewMiddleware(store Store, logger *zap.Logger, m *metrics.Metrics) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{store: store, logger: logger, metrics: m, now: time.Now}
}

// Limit returns a handler enforcing policy for task. Buckets are namespaced per
// task so each endpoint keeps its own quota.
func (m *Middleware) Limit(task string, policy Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientKey := ClientKey(c)
		c.Locals(LocalClientKey, clientKey)

		result, err := m.store.Hit(c.UserContext(), task+":"+clientKey, policy)
		if err != nil {
			m.logger.Error("rate limit check failed, allowing request",
				zap.String("task", task),
				zap.String("client", clientKey),
				zap.Error(err),
			)
			c.Set(HeaderLimit, strconv.Itoa(policy.Limit))
			c.Set(HeaderRemaining, strconv.Itoa(policy.Limit))
			return c.Next()
		}

		c.Set(HeaderLimit, strconv.Itoa(result.Limit))
		c.Set(HeaderRemaining, strconv.Itoa(result.Remaining))

		if !result.OK {
			m.metrics.ObserveRateLimited(task)
			m.logger.Warn("rate limit exceeded",
				zap.String("task", task),
				zap.String("client", clientKey),
			)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(result.RetryAfter(m.now())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later",
			})
		}

		return c.Next()
	}
}
