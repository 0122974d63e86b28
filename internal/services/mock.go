package services

import (
	"context"
	"fmt"
)

// MockProvider answers every task with a fixed, schema-valid payload and never
// touches the network. It backs local development and tests.
type MockProvider struct {
	responses map[string]string
}

func NewMockProvider() *MockProvider {
	return &MockProvider{responses: map[string]string{
		TaskRoast:           mockRoastResponse,
		TaskFix:             mockFixResponse,
		TaskGenerateContent: mockContentResponse,
		TaskGeneratePreview: mockPreviewResponse,
		TaskParseCV:         mockParseResponse,
	}}
}

func (m *MockProvider) Mode() string {
	return ModeMock
}

// Generate implements Provider.
func (m *MockProvider) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, ok := m.responses[req.Task]
	if !ok {
		return "", fmt.Errorf("no mock response for task %q", req.Task)
	}
	return resp, nil
}

const mockRoastResponse = `{
  "score": 62,
  "verdict": "Don't Apply",
  "roast": {
    "summary": "Your summary reads like a LinkedIn headline generator got tired halfway through. It says what you touched, not what you shipped.",
    "skills": "React and Node.js are listed, but 'familiar with' is doing a lot of heavy lifting. Recruiters read that as 'watched a tutorial once'.",
    "projects": "Two React projects with no users, no metrics and no links. Right now they are rumours, not evidence.",
    "experience": "Experience bullets describe duties instead of outcomes. Nobody hires 'responsible for frontend'.",
    "formatting": "Dense paragraphs and inconsistent tense make an ATS parser and a tired human equally unhappy."
  },
  "atsMatch": {
    "percentage": 48,
    "missingSkills": ["TypeScript", "REST API design", "Unit testing", "CI/CD"]
  },
  "fixes": {
    "summaryFix": "Frontend developer who built and deployed two React applications backed by Node.js APIs, focused on clean component design and fast page loads.",
    "bulletFixes": [
      "Built a React dashboard consuming a Node.js REST API, cutting manual report preparation from hours to minutes.",
      "Deployed a personal portfolio with CI on every push and a Lighthouse performance score above 90."
    ]
  }
}`

const mockFixResponse = `{
  "summary": "Frontend developer experienced in React and Node.js, delivering responsive web applications with a focus on maintainable components and measurable performance.",
  "skills": ["React", "Node.js", "JavaScript", "TypeScript", "REST APIs", "Git"],
  "experience": [
    {
      "company": "Independent Projects",
      "title": "Frontend Developer",
      "period": "2023 - Present",
      "bullets": [
        "Built two production React applications backed by Node.js REST APIs.",
        "Reduced bundle size by 30% through code splitting and lazy loading."
      ]
    }
  ],
  "projects": [
    {
      "name": "Task Board",
      "description": "Kanban-style task manager with drag-and-drop and persistent storage.",
      "technologies": ["React", "Node.js", "Express"]
    }
  ],
  "atsScore": 78,
  "changes": [
    "Rewrote the summary around delivered outcomes.",
    "Converted duty statements into achievement bullets.",
    "Added keywords from the job description to the skills section."
  ]
}`

const mockContentResponse = `{
  "title": "Cover Letter - Frontend Developer",
  "content": "Dear Hiring Manager,\n\nI am excited to apply for the Frontend Developer role. Over the past year I have built and shipped two React applications backed by Node.js APIs, and I enjoy turning rough requirements into fast, accessible interfaces.\n\nI would welcome the chance to bring that focus to your team.\n\nSincerely,\nCandidate",
  "keywords": ["React", "Node.js", "Frontend", "Accessibility"]
}`

const mockPreviewResponse = `{
  "headline": "Frontend Developer | React & Node.js",
  "summary": "Developer building React applications with Node.js backends, focused on clean components and performance.",
  "topSkills": ["React", "Node.js", "JavaScript"],
  "matchScore": 64
}`

const mockParseResponse = `{
  "name": "Alex Candidate",
  "email": "alex@example.com",
  "phone": "",
  "location": "Remote",
  "summary": "Built two React projects and familiar with Node.js.",
  "skills": ["React", "Node.js"],
  "experience": [],
  "education": [],
  "projects": [
    {
      "name": "React Project",
      "description": "Personal React application.",
      "technologies": ["React"]
    }
  ]
}`
