package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-roast/internal/logger"
	"alfredoptarigan/resume-roast/internal/validation"
)

type Stage string

const (
	StageInput    Stage = "input"
	StageProvider Stage = "provider"
	StageParse    Stage = "parse"
	StageOutput   Stage = "output"
)

// PipelineError records which step of a task run failed.
type PipelineError struct {
	Task  string
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Task, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// StageOf returns the failing stage of err, or "" when err did not come from a pipeline.
func StageOf(err error) Stage {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}

// Task describes one generation flow: how to read its input, prompt the
// model, and check what comes back.
type Task[In, Out any] struct {
	Name        string
	Input       *validation.Schema[In]
	Output      *validation.Schema[Out]
	Prompt      func(ctx context.Context, in In) (string, error)
	Retry       RetryPolicy
	Temperature float32
	// Finalize adjusts a validated output before it is returned.
	Finalize func(log *zap.Logger, out *Out)
}

// Outcome is a successful run with its request and response kept for persistence.
type Outcome struct {
	Task     string
	Mode     string
	Request  any
	Response any
}

// Runner is the type-erased view of a Pipeline used by HTTP handlers.
type Runner interface {
	Name() string
	Execute(ctx context.Context, raw []byte) (*Outcome, error)
}

// Pipeline runs validate, prompt, call, extract, parse and validate for one Task.
type Pipeline[In, Out any] struct {
	task    Task[In, Out]
	gateway *Gateway
	logger  *zap.Logger
}

func NewPipeline[In, Out any](task Task[In, Out], gateway *Gateway, log *zap.Logger) *Pipeline[In, Out] {
	return &Pipeline[In, Out]{
		task:    task,
		gateway: gateway,
		logger:  logger.OrNop(log).With(zap.String("task", task.Name)),
	}
}

func (p *Pipeline[In, Out]) Name() string {
	return p.task.Name
}

// Execute implements Runner.
func (p *Pipeline[In, Out]) Execute(ctx context.Context, raw []byte) (*Outcome, error) {
	in, out, err := p.Run(ctx, raw)
	if err != nil {
		return nil, err
	}
	return &Outcome{Task: p.task.Name, Mode: p.gateway.Mode(), Request: in, Response: out}, nil
}

// Run executes the task on a raw JSON request body.
func (p *Pipeline[In, Out]) Run(ctx context.Context, raw []byte) (In, Out, error) {
	var out Out

	in, err := p.task.Input.Validate(raw)
	if err != nil {
		return in, out, p.fail(StageInput, err)
	}

	prompt, err := p.task.Prompt(ctx, in)
	if err != nil {
		return in, out, p.fail(StageInput, err)
	}

	p.logger.Debug("calling provider",
		zap.Int("prompt_chars", len(prompt)),
		zap.String("mode", p.gateway.Mode()),
	)

	text, err := p.gateway.Call(ctx, GenerationRequest{
		Task:        p.task.Name,
		Prompt:      prompt,
		Temperature: p.task.Temperature,
	}, p.task.Retry)
	if err != nil {
		return in, out, p.fail(StageProvider, err)
	}

	candidate, ok := ExtractJSON(text)
	if !ok {
		candidate = strings.TrimSpace(text)
	}
	if !json.Valid([]byte(candidate)) {
		p.logger.Warn("provider output is not valid JSON",
			zap.String("preview", logger.TruncateForLog(text, 300)),
		)
		return in, out, p.fail(StageParse, errors.New("provider output is not valid JSON"))
	}

	out, err = p.task.Output.Validate([]byte(candidate))
	if err != nil {
		p.logger.Warn("provider output failed schema validation",
			zap.Strings("details", validation.Details(err)),
			zap.String("preview", logger.TruncateForLog(candidate, 300)),
		)
		return in, out, p.fail(StageOutput, err)
	}

	if p.task.Finalize != nil {
		p.task.Finalize(p.logger, &out)
	}

	return in, out, nil
}

func (p *Pipeline[In, Out]) fail(stage Stage, err error) error {
	return &PipelineError{Task: p.task.Name, Stage: stage, Err: err}
}
