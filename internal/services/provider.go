package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

const (
	ModeMock = "mock"
	ModeLive = "live"
)

// Task names shared by the pipeline, rate limiter buckets, metrics and persistence.
const (
	TaskRoast           = "roast"
	TaskFix             = "fix"
	TaskGenerateContent = "generate-content"
	TaskGeneratePreview = "generate-preview"
	TaskParseCV         = "parse-cv"
)

// GenerationRequest is one prompt sent to a text provider.
type GenerationRequest struct {
	Task        string
	Prompt      string
	Temperature float32
}

// Provider turns a prompt into raw model text. The text may wrap the JSON
// payload in prose or code fences; callers extract it.
type Provider interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	Mode() string
}

// StatusError is a non-2xx answer from the provider.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// IsTransient reports whether err is worth another attempt: rate limiting,
// temporary unavailability, network failures and per-attempt deadlines.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests ||
			statusErr.StatusCode == http.StatusServiceUnavailable
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
