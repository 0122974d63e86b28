package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(p Provider, timeout time.Duration) (*Gateway, *[]time.Duration) {
	g := NewGateway(p, timeout, nil, nil)
	var sleeps []time.Duration
	g.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return ctx.Err()
	}
	return g, &sleeps
}

var (
	errRateLimited = &StatusError{StatusCode: http.StatusTooManyRequests, Body: "quota"}
	errUnavailable = &StatusError{StatusCode: http.StatusServiceUnavailable}
	errBadRequest  = &StatusError{StatusCode: http.StatusBadRequest, Body: "bad prompt"}
)

func TestGatewayReturnsFirstSuccess(t *testing.T) {
	p := newScriptedProvider(scriptedResult{text: "{}"})
	g, sleeps := newTestGateway(p, time.Second)

	text, err := g.Call(context.Background(), GenerationRequest{Task: TaskRoast}, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second})

	require.NoError(t, err)
	assert.Equal(t, "{}", text)
	assert.Equal(t, 1, p.callCount())
	assert.Empty(t, *sleeps)
}

func TestGatewayRetriesTransientFailures(t *testing.T) {
	p := newScriptedProvider(
		scriptedResult{err: errUnavailable},
		scriptedResult{err: errRateLimited},
		scriptedResult{text: `{"ok":true}`},
	)
	g, sleeps := newTestGateway(p, time.Second)

	text, err := g.Call(context.Background(), GenerationRequest{Task: TaskFix}, RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		Backoff:     BackoffExponential,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)
	assert.Equal(t, 3, p.callCount())
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *sleeps)
}

func TestGatewayLinearBackoff(t *testing.T) {
	p := newScriptedProvider(scriptedResult{err: errUnavailable})
	g, sleeps := newTestGateway(p, time.Second)

	_, err := g.Call(context.Background(), GenerationRequest{Task: TaskGenerateContent}, RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Backoff:     BackoffLinear,
	})

	require.Error(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *sleeps)
}

func TestGatewayExhaustsAttempts(t *testing.T) {
	p := newScriptedProvider(scriptedResult{err: errRateLimited})
	g, _ := newTestGateway(p, time.Second)

	_, err := g.Call(context.Background(), GenerationRequest{Task: TaskFix}, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 3, upstream.Attempts)
	assert.Equal(t, TaskFix, upstream.Task)
	assert.ErrorIs(t, err, errRateLimited)
	assert.Equal(t, 3, p.callCount())
}

func TestGatewayDoesNotRetryPermanentFailures(t *testing.T) {
	p := newScriptedProvider(scriptedResult{err: errBadRequest})
	g, sleeps := newTestGateway(p, time.Second)

	_, err := g.Call(context.Background(), GenerationRequest{Task: TaskFix}, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 1, upstream.Attempts)
	assert.Equal(t, 1, p.callCount())
	assert.Empty(t, *sleeps)
}

func TestGatewaySingleAttemptPolicy(t *testing.T) {
	p := newScriptedProvider(scriptedResult{err: errUnavailable})
	g, sleeps := newTestGateway(p, time.Second)

	_, err := g.Call(context.Background(), GenerationRequest{Task: TaskRoast}, RetryPolicy{})

	require.Error(t, err)
	assert.Equal(t, 1, p.callCount())
	assert.Empty(t, *sleeps)
}

func TestGatewayPerAttemptTimeout(t *testing.T) {
	p := newScriptedProvider(scriptedResult{})
	p.block = true
	g, _ := newTestGateway(p, 10*time.Millisecond)

	start := time.Now()
	_, err := g.Call(context.Background(), GenerationRequest{Task: TaskParseCV}, RetryPolicy{MaxAttempts: 2})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, p.callCount(), "timeouts are retried")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGatewayStopsWhenParentCancelled(t *testing.T) {
	p := newScriptedProvider(scriptedResult{err: errUnavailable})
	g, _ := newTestGateway(p, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	g.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	_, err := g.Call(ctx, GenerationRequest{Task: TaskFix}, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 1, upstream.Attempts)
	assert.Equal(t, 1, p.callCount())
}

func TestSleepContextHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}

func TestRetryPolicyDelay(t *testing.T) {
	exp := RetryPolicy{BaseDelay: time.Second, Backoff: BackoffExponential}
	lin := RetryPolicy{BaseDelay: time.Second, Backoff: BackoffLinear}

	for attempt, want := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		assert.Equal(t, want, exp.Delay(attempt), "exponential attempt %d", attempt)
	}
	for attempt, want := range []time.Duration{time.Second, 2 * time.Second, 3 * time.Second} {
		assert.Equal(t, want, lin.Delay(attempt), "linear attempt %d", attempt)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "429", err: errRateLimited, want: true},
		{name: "503", err: errUnavailable, want: true},
		{name: "wrapped 503", err: fmt.Errorf("generate: %w", errUnavailable), want: true},
		{name: "400", err: errBadRequest, want: false},
		{name: "500", err: &StatusError{StatusCode: http.StatusInternalServerError}, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "network", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, want: true},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
