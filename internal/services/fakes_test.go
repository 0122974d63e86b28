package services

import (
	"context"
	"sync"
)

type scriptedResult struct {
	text string
	err  error
}

// scriptedProvider returns its queued results in order and repeats the last one.
type scriptedProvider struct {
	mu      sync.Mutex
	results []scriptedResult
	calls   []GenerationRequest
	block   bool
}

func newScriptedProvider(results ...scriptedResult) *scriptedProvider {
	return &scriptedProvider{results: results}
}

func (s *scriptedProvider) Mode() string {
	return "scripted"
}

func (s *scriptedProvider) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	idx := len(s.calls) - 1
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	res := s.results[idx]
	block := s.block
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return res.text, res.err
}

func (s *scriptedProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
