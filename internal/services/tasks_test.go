package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-roast/internal/models"
	"alfredoptarigan/resume-roast/internal/validation"
)

func TestMockResponsesSatisfyOutputSchemas(t *testing.T) {
	mock := NewMockProvider()
	ctx := context.Background()

	validators := map[string]func([]byte) error{
		TaskRoast: func(b []byte) error {
			out, err := validation.RoastResponse.Validate(b)
			if err == nil {
				assert.Equal(t, models.VerdictForScore(int(out.Score)), out.Verdict)
			}
			return err
		},
		TaskFix:             func(b []byte) error { _, err := validation.FixResponse.Validate(b); return err },
		TaskGenerateContent: func(b []byte) error { _, err := validation.ContentResponse.Validate(b); return err },
		TaskGeneratePreview: func(b []byte) error { _, err := validation.PreviewResponse.Validate(b); return err },
		TaskParseCV:         func(b []byte) error { _, err := validation.ParseResponse.Validate(b); return err },
	}

	for task, validate := range validators {
		t.Run(task, func(t *testing.T) {
			text, err := mock.Generate(ctx, GenerationRequest{Task: task})
			require.NoError(t, err)
			assert.NoError(t, validate([]byte(text)))
		})
	}
}

func TestMockProviderUnknownTask(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), GenerationRequest{Task: "translate"})
	assert.Error(t, err)
	assert.Equal(t, ModeMock, NewMockProvider().Mode())
}

func TestApplyVerdict(t *testing.T) {
	tests := []struct {
		score   int
		verdict models.Verdict
		want    models.Verdict
	}{
		{score: 100, verdict: "", want: models.VerdictApply},
		{score: 70, verdict: "", want: models.VerdictApply},
		{score: 69, verdict: models.VerdictApply, want: models.VerdictDontApply},
		{score: 40, verdict: models.VerdictDontApply, want: models.VerdictDontApply},
		{score: 39, verdict: "", want: models.VerdictHighRisk},
		{score: 0, verdict: models.VerdictApply, want: models.VerdictHighRisk},
	}

	for _, tt := range tests {
		out := models.RoastResponse{Score: models.WholeNumber(tt.score), Verdict: tt.verdict}
		ApplyVerdict(nil, &out)
		assert.Equal(t, tt.want, out.Verdict, "score %d", tt.score)
	}
}

func TestRetryPolicies(t *testing.T) {
	policies := RetryPolicies(time.Second)

	assert.Equal(t, 1, policies[TaskRoast].MaxAttempts)
	assert.Equal(t, 3, policies[TaskFix].MaxAttempts)
	assert.Equal(t, BackoffExponential, policies[TaskFix].Backoff)
	assert.Equal(t, 2, policies[TaskGenerateContent].MaxAttempts)
	assert.Equal(t, BackoffLinear, policies[TaskGenerateContent].Backoff)
	assert.Equal(t, 2, policies[TaskGeneratePreview].MaxAttempts)
	assert.Equal(t, 2, policies[TaskParseCV].MaxAttempts)
}

type fakeGuidance struct {
	text string
	err  error
	got  string
}

func (f *fakeGuidance) Retrieve(_ context.Context, jd string) (string, error) {
	f.got = jd
	return f.text, f.err
}

func TestFixTaskUsesGuidance(t *testing.T) {
	p := newScriptedProvider(scriptedResult{text: mockFixResponse})
	g, _ := newTestGateway(p, time.Second)
	guidance := &fakeGuidance{text: "Keep section headings standard."}
	tasks := NewTaskSet(g, NewPromptBuilder(), guidance, time.Millisecond, nil)

	body := `{"resumeText":"Built two React projects and familiar with Node.js.","jobDescription":"React developer"}`
	_, out, err := tasks.Fix.Run(context.Background(), []byte(body))

	require.NoError(t, err)
	assert.Equal(t, "React developer", guidance.got)
	assert.Contains(t, p.calls[0].Prompt, "Keep section headings standard.")
	assert.Equal(t, models.WholeNumber(78), out.ATSScore)
}

func TestFixTaskSurvivesGuidanceFailure(t *testing.T) {
	p := newScriptedProvider(scriptedResult{text: mockFixResponse})
	g, _ := newTestGateway(p, time.Second)
	tasks := NewTaskSet(g, NewPromptBuilder(), &fakeGuidance{err: assert.AnError}, time.Millisecond, nil)

	body := `{"resumeText":"Built two React projects and familiar with Node.js."}`
	_, _, err := tasks.Fix.Run(context.Background(), []byte(body))

	require.NoError(t, err)
	assert.Contains(t, p.calls[0].Prompt, "No additional guidance.")
}

func TestTaskSetRunnersCoverEveryTask(t *testing.T) {
	g, _ := newTestGateway(NewMockProvider(), time.Second)
	tasks := NewTaskSet(g, NewPromptBuilder(), nil, time.Millisecond, nil)

	var names []string
	for _, r := range tasks.Runners() {
		names = append(names, r.Name())
	}
	assert.ElementsMatch(t, []string{TaskRoast, TaskFix, TaskGenerateContent, TaskGeneratePreview, TaskParseCV}, names)
}
