package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-roast/internal/logger"
	"alfredoptarigan/resume-roast/internal/metrics"
)

const DefaultProviderTimeout = 20 * time.Second

type Backoff int

const (
	// BackoffExponential waits base·2^attempt.
	BackoffExponential Backoff = iota
	// BackoffLinear waits base·(attempt+1).
	BackoffLinear
)

// RetryPolicy bounds how often the gateway calls the provider for one request.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Backoff     Backoff
}

// Delay is the wait after the zero-based failed attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if p.Backoff == BackoffLinear {
		return p.BaseDelay * time.Duration(attempt+1)
	}
	return p.BaseDelay * time.Duration(1<<uint(attempt))
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// UpstreamError is returned once the provider could not produce text.
type UpstreamError struct {
	Task     string
	Attempts int
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: provider failed after %d attempt(s): %v", e.Task, e.Attempts, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Gateway calls a Provider with a per-attempt timeout and retries transient failures.
type Gateway struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewGateway(provider Provider, timeout time.Duration, log *zap.Logger, m *metrics.Metrics) *Gateway {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &Gateway{
		provider: provider,
		timeout:  timeout,
		logger:   logger.OrNop(log),
		metrics:  m,
		sleep:    sleepContext,
	}
}

func (g *Gateway) Mode() string {
	return g.provider.Mode()
}

// Call returns the raw provider text for req. It gives up early when ctx is
// done or the failure is not transient.
func (g *Gateway) Call(ctx context.Context, req GenerationRequest, policy RetryPolicy) (string, error) {
	maxAttempts := policy.attempts()

	var lastErr error
	attempt := 0
	for ; attempt < maxAttempts; attempt++ {
		text, err := g.attempt(ctx, req)
		if err == nil {
			g.metrics.ObserveAttempt(req.Task, "success")
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil || !IsTransient(err) {
			g.metrics.ObserveAttempt(req.Task, "error")
			break
		}
		g.metrics.ObserveAttempt(req.Task, "transient_error")

		if attempt == maxAttempts-1 {
			break
		}

		delay := policy.Delay(attempt)
		g.logger.Warn("provider attempt failed, retrying",
			zap.String("task", req.Task),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("wait", delay),
			zap.Error(err),
		)

		if err := g.sleep(ctx, delay); err != nil {
			break
		}
	}

	return "", &UpstreamError{Task: req.Task, Attempts: min(attempt+1, maxAttempts), Err: lastErr}
}

func (g *Gateway) attempt(ctx context.Context, req GenerationRequest) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.provider.Generate(attemptCtx, req)
	if err != nil {
		if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("provider timed out after %s: %w", g.timeout, context.DeadlineExceeded)
		}
		return "", err
	}
	return text, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
