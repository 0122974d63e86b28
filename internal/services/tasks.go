package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-roast/internal/logger"
	"alfredoptarigan/resume-roast/internal/models"
	"alfredoptarigan/resume-roast/internal/validation"
)

// RetryPolicies returns the per-task retry behaviour for a base delay.
func RetryPolicies(base time.Duration) map[string]RetryPolicy {
	return map[string]RetryPolicy{
		TaskRoast:           {MaxAttempts: 1, BaseDelay: base, Backoff: BackoffExponential},
		TaskFix:             {MaxAttempts: 3, BaseDelay: base, Backoff: BackoffExponential},
		TaskGenerateContent: {MaxAttempts: 2, BaseDelay: base, Backoff: BackoffLinear},
		TaskGeneratePreview: {MaxAttempts: 2, BaseDelay: base, Backoff: BackoffExponential},
		TaskParseCV:         {MaxAttempts: 2, BaseDelay: base, Backoff: BackoffExponential},
	}
}

// TaskSet holds one pipeline per supported task.
type TaskSet struct {
	Roast   *Pipeline[models.RoastRequest, models.RoastResponse]
	Fix     *Pipeline[models.FixRequest, models.FixResponse]
	Content *Pipeline[models.ContentRequest, models.ContentResponse]
	Preview *Pipeline[models.PreviewRequest, models.PreviewResponse]
	Parse   *Pipeline[models.ParseRequest, models.ParsedResume]
}

func NewTaskSet(gateway *Gateway, prompts *PromptBuilder, guidance GuidanceRetriever, baseDelay time.Duration, log *zap.Logger) *TaskSet {
	log = logger.OrNop(log)
	if guidance == nil {
		guidance = NoGuidance{}
	}
	policies := RetryPolicies(baseDelay)

	return &TaskSet{
		Roast: NewPipeline(Task[models.RoastRequest, models.RoastResponse]{
			Name:   TaskRoast,
			Input:  validation.RoastRequest,
			Output: validation.RoastResponse,
			Prompt: func(_ context.Context, in models.RoastRequest) (string, error) {
				return prompts.BuildRoastPrompt(in), nil
			},
			Retry:       policies[TaskRoast],
			Temperature: 0.7,
			Finalize:    ApplyVerdict,
		}, gateway, log),

		Fix: NewPipeline(Task[models.FixRequest, models.FixResponse]{
			Name:   TaskFix,
			Input:  validation.FixRequest,
			Output: validation.FixResponse,
			Prompt: func(ctx context.Context, in models.FixRequest) (string, error) {
				ref, err := guidance.Retrieve(ctx, in.JobDescription)
				if err != nil {
					log.Warn("ats guidance unavailable, continuing without it", zap.Error(err))
					ref = ""
				}
				return prompts.BuildFixPrompt(in, ref), nil
			},
			Retry:       policies[TaskFix],
			Temperature: 0.4,
		}, gateway, log),

		Content: NewPipeline(Task[models.ContentRequest, models.ContentResponse]{
			Name:   TaskGenerateContent,
			Input:  validation.ContentRequest,
			Output: validation.ContentResponse,
			Prompt: func(_ context.Context, in models.ContentRequest) (string, error) {
				return prompts.BuildContentPrompt(in), nil
			},
			Retry:       policies[TaskGenerateContent],
			Temperature: 0.7,
		}, gateway, log),

		Preview: NewPipeline(Task[models.PreviewRequest, models.PreviewResponse]{
			Name:   TaskGeneratePreview,
			Input:  validation.PreviewRequest,
			Output: validation.PreviewResponse,
			Prompt: func(_ context.Context, in models.PreviewRequest) (string, error) {
				return prompts.BuildPreviewPrompt(in), nil
			},
			Retry:       policies[TaskGeneratePreview],
			Temperature: 0.5,
		}, gateway, log),

		Parse: NewPipeline(Task[models.ParseRequest, models.ParsedResume]{
			Name:   TaskParseCV,
			Input:  validation.ParseRequest,
			Output: validation.ParseResponse,
			Prompt: func(_ context.Context, in models.ParseRequest) (string, error) {
				return prompts.BuildParsePrompt(in), nil
			},
			Retry:       policies[TaskParseCV],
			Temperature: 0.1,
		}, gateway, log),
	}
}

// Runners lists every pipeline behind the common Runner interface.
func (t *TaskSet) Runners() []Runner {
	return []Runner{t.Roast, t.Fix, t.Content, t.Preview, t.Parse}
}

// ApplyVerdict derives the verdict from the score when the model left it out
// or picked one that disagrees with its own score.
func ApplyVerdict(log *zap.Logger, out *models.RoastResponse) {
	want := models.VerdictForScore(int(out.Score))
	if out.Verdict == want {
		return
	}
	if out.Verdict != "" {
		logger.OrNop(log).Warn("model verdict contradicts score, correcting",
			zap.Int("score", int(out.Score)),
			zap.String("model_verdict", string(out.Verdict)),
			zap.String("verdict", string(want)),
		)
	}
	out.Verdict = want
}
