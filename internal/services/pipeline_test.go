package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-roast/internal/models"
	"alfredoptarigan/resume-roast/internal/validation"
)

const validRoastBody = `{"resumeText":"Built two React projects and familiar with Node.js.","tone":"friendly","language":"english"}`

func roastOutput(t *testing.T, mutate func(map[string]any)) string {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(mockRoastResponse), &out))
	if mutate != nil {
		mutate(out)
	}
	data, err := json.Marshal(out)
	require.NoError(t, err)
	return string(data)
}

func newRoastPipeline(p Provider) *Pipeline[models.RoastRequest, models.RoastResponse] {
	g, _ := newTestGateway(p, time.Second)
	return NewTaskSet(g, NewPromptBuilder(), nil, time.Millisecond, nil).Roast
}

func TestPipelineRoastSuccess(t *testing.T) {
	p := newScriptedProvider(scriptedResult{text: "Sure! ```json\n" + mockRoastResponse + "\n```"})
	pipeline := newRoastPipeline(p)

	in, out, err := pipeline.Run(context.Background(), []byte(validRoastBody))

	require.NoError(t, err)
	assert.Equal(t, models.ToneFriendly, in.Tone)
	assert.Equal(t, models.WholeNumber(62), out.Score)
	assert.Equal(t, models.VerdictDontApply, out.Verdict)
	assert.NotEmpty(t, out.Roast.Summary)
	assert.NotEmpty(t, out.ATSMatch.MissingSkills)

	require.Equal(t, 1, p.callCount())
	assert.Equal(t, TaskRoast, p.calls[0].Task)
	assert.Contains(t, p.calls[0].Prompt, "Built two React projects")
}

func TestPipelineFillsMissingVerdict(t *testing.T) {
	text := roastOutput(t, func(m map[string]any) {
		delete(m, "verdict")
		m["score"] = 85
	})
	pipeline := newRoastPipeline(newScriptedProvider(scriptedResult{text: text}))

	_, out, err := pipeline.Run(context.Background(), []byte(validRoastBody))

	require.NoError(t, err)
	assert.Equal(t, models.VerdictApply, out.Verdict)
}

func TestPipelineCorrectsContradictingVerdict(t *testing.T) {
	text := roastOutput(t, func(m map[string]any) {
		m["score"] = 12
		m["verdict"] = "Apply"
	})
	pipeline := newRoastPipeline(newScriptedProvider(scriptedResult{text: text}))

	_, out, err := pipeline.Run(context.Background(), []byte(validRoastBody))

	require.NoError(t, err)
	assert.Equal(t, models.VerdictHighRisk, out.Verdict)
}

func TestPipelineStages(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		provider  *scriptedProvider
		stage     Stage
		wantCalls int
	}{
		{
			name:      "invalid input",
			body:      `{"resumeText":"too short"}`,
			provider:  newScriptedProvider(scriptedResult{text: mockRoastResponse}),
			stage:     StageInput,
			wantCalls: 0,
		},
		{
			name:      "provider failure",
			body:      validRoastBody,
			provider:  newScriptedProvider(scriptedResult{err: errBadRequest}),
			stage:     StageProvider,
			wantCalls: 1,
		},
		{
			name:      "no json in output",
			body:      validRoastBody,
			provider:  newScriptedProvider(scriptedResult{text: "I am unable to review this resume."}),
			stage:     StageParse,
			wantCalls: 1,
		},
		{
			name:      "broken json in output",
			body:      validRoastBody,
			provider:  newScriptedProvider(scriptedResult{text: `{"score": 50,, }`}),
			stage:     StageParse,
			wantCalls: 1,
		},
		{
			name:      "schema mismatch",
			body:      validRoastBody,
			provider:  newScriptedProvider(scriptedResult{text: `{"score": 150}`}),
			stage:     StageOutput,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := newRoastPipeline(tt.provider)

			_, _, err := pipeline.Run(context.Background(), []byte(tt.body))

			require.Error(t, err)
			assert.Equal(t, tt.stage, StageOf(err))
			assert.Equal(t, tt.wantCalls, tt.provider.callCount())
		})
	}
}

func TestPipelineOutputErrorsCarryDetails(t *testing.T) {
	pipeline := newRoastPipeline(newScriptedProvider(scriptedResult{text: `{"score": 150}`}))

	_, _, err := pipeline.Run(context.Background(), []byte(validRoastBody))

	details := validation.Details(err)
	assert.Contains(t, details, "score: must be less than or equal to 100")
	assert.Contains(t, details, "roast: is required")
}

func TestPipelineExecuteReturnsOutcome(t *testing.T) {
	pipeline := newRoastPipeline(newScriptedProvider(scriptedResult{text: mockRoastResponse}))

	outcome, err := pipeline.Execute(context.Background(), []byte(validRoastBody))

	require.NoError(t, err)
	assert.Equal(t, TaskRoast, outcome.Task)
	assert.Equal(t, "scripted", outcome.Mode)
	assert.IsType(t, models.RoastRequest{}, outcome.Request)
	assert.IsType(t, models.RoastResponse{}, outcome.Response)
}

func TestStageOfForeignError(t *testing.T) {
	assert.Equal(t, Stage(""), StageOf(assert.AnError))
}
