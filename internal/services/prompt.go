package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/resume-roast/internal/models"
)

const noJobDescription = "Not provided. Judge the resume against general industry expectations for the candidate's apparent role."

var toneInstructions = map[models.Tone]string{
	models.ToneFriendly: "Be a supportive mentor: honest and specific, with light humour and encouragement.",
	models.ToneHR:       "Write like an HR screener: neutral, professional and focused on shortlisting criteria.",
	models.ToneSenior:   "Write like a senior engineer reviewing a peer: blunt, technical and precise.",
	models.ToneDark:     "Use savage dark humour. Roast hard, but never insult protected characteristics and keep every point actionable.",
}

var languageInstructions = map[models.Language]string{
	models.LanguageEnglish:  "Write every text field in clear English.",
	models.LanguageHinglish: "Write every text field in Hinglish (Hindi written in Latin script mixed naturally with English). Keep JSON keys in English.",
}

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildRoastPrompt creates the prompt for a scored resume roast.
func (pb *PromptBuilder) BuildRoastPrompt(req models.RoastRequest) string {
	return fmt.Sprintf(`You are an expert technical recruiter and resume reviewer. You roast resumes honestly so candidates can fix them before applying.

HARD RULES:
1. Never invent skills, employers, dates, metrics or projects that are not in the resume. Rewrites may only rephrase what is there.
2. Score the resume from 0 to 100 with this rubric:
   - Skills match: 35%%
   - Experience relevance and impact: 25%%
   - Projects and evidence of work: 20%%
   - ATS keywords and formatting: 20%%
3. Verdict must follow the score: 70-100 "Apply", 40-69 "Don't Apply", 0-39 "High Risk".
4. Respond with ONLY one JSON object. No markdown, no code fences, no commentary.

OUTPUT SCHEMA:
{
  "score": <integer 0-100>,
  "verdict": "Apply" | "Don't Apply" | "High Risk",
  "roast": {
    "summary": "<string>",
    "skills": "<string>",
    "projects": "<string>",
    "experience": "<string>",
    "formatting": "<string>"
  },
  "atsMatch": {
    "percentage": <integer 0-100>,
    "missingSkills": ["<string>"]
  },
  "fixes": {
    "summaryFix": "<rewritten summary>",
    "bulletFixes": ["<rewritten bullet>"]
  }
}

TONE: %s
LANGUAGE: %s

RESUME:
%s

JOB DESCRIPTION:
%s`,
		toneInstruction(req.Tone),
		languageInstruction(req.Language),
		quote(req.ResumeText),
		quoteOr(req.JobDescription, noJobDescription),
	)
}

// BuildFixPrompt creates the prompt for an ATS-optimized rewrite. guidance is
// optional reference material retrieved for the job description.
func (pb *PromptBuilder) BuildFixPrompt(req models.FixRequest, guidance string) string {
	var seeded strings.Builder
	if strings.TrimSpace(req.SummaryFix) != "" {
		seeded.WriteString("Suggested summary:\n" + quote(req.SummaryFix) + "\n")
	}
	for _, fix := range req.BulletFixes {
		if strings.TrimSpace(fix) == "" {
			continue
		}
		seeded.WriteString("Suggested bullet:\n" + quote(fix) + "\n")
	}
	suggestions := seeded.String()
	if suggestions == "" {
		suggestions = "None.\n"
	}

	if strings.TrimSpace(guidance) == "" {
		guidance = "No additional guidance."
	}

	return fmt.Sprintf(`You are an expert resume writer who optimizes resumes for applicant tracking systems.

HARD RULES:
1. Never invent employers, titles, dates, degrees, metrics or technologies. Only rephrase, reorder and tighten what the resume already says.
2. Mirror keywords from the job description only where the resume supports them.
3. Use strong action verbs and keep each bullet to one line where possible.
4. Respond with ONLY one JSON object. No markdown, no code fences, no commentary.

OUTPUT SCHEMA:
{
  "summary": "<string>",
  "skills": ["<string>"],
  "experience": [{"company": "<string>", "title": "<string>", "period": "<string>", "bullets": ["<string>"]}],
  "projects": [{"name": "<string>", "description": "<string>", "technologies": ["<string>"]}],
  "atsScore": <integer 0-100, estimated ATS match after the rewrite>,
  "changes": ["<short description of each change>"]
}

LANGUAGE: %s

EARLIER SUGGESTIONS TO APPLY:
%s
ATS GUIDANCE:
%s

RESUME:
%s

JOB DESCRIPTION:
%s`,
		languageInstruction(req.Language),
		suggestions,
		guidance,
		quote(req.ResumeText),
		quoteOr(req.JobDescription, noJobDescription),
	)
}

var contentTypeInstructions = map[models.ContentType]string{
	models.ContentCoverLetter:   "a cover letter of three to four short paragraphs addressed to the hiring manager",
	models.ContentSummary:       "a professional resume summary of two to three sentences",
	models.ContentLinkedInAbout: "a LinkedIn About section of up to 2000 characters written in first person",
}

// BuildContentPrompt creates the prompt for cover letters and profile copy.
func (pb *PromptBuilder) BuildContentPrompt(req models.ContentRequest) string {
	company := quoteOr(strings.TrimSpace(req.CompanyName), "Not provided. Address the hiring company generically.")

	return fmt.Sprintf(`You are an expert career writer. Write %s for the company named below.

HARD RULES:
1. Use only facts present in the resume. Never invent achievements, employers or numbers.
2. Connect the candidate's real experience to the job description.
3. Respond with ONLY one JSON object. No markdown, no code fences, no commentary.

OUTPUT SCHEMA:
{
  "title": "<short title for the piece>",
  "content": "<the full text, using \n for line breaks>",
  "keywords": ["<job keywords the text covers>"]
}

TONE: %s
LANGUAGE: %s

COMPANY:
%s

RESUME:
%s

JOB DESCRIPTION:
%s`,
		contentTypeInstruction(req.ContentType),
		toneInstruction(req.Tone),
		languageInstruction(req.Language),
		company,
		quote(req.ResumeText),
		quote(req.JobDescription),
	)
}

// BuildPreviewPrompt creates the prompt for a short profile preview card.
func (pb *PromptBuilder) BuildPreviewPrompt(req models.PreviewRequest) string {
	return fmt.Sprintf(`You are a recruiter writing a quick preview card for a candidate.

HARD RULES:
1. Use only information from the resume.
2. topSkills holds at most five skills, strongest first.
3. matchScore is an integer 0-100 estimating fit with the job description, or with the candidate's apparent target role when none is given.
4. Respond with ONLY one JSON object. No markdown, no code fences, no commentary.

OUTPUT SCHEMA:
{
  "headline": "<one line headline>",
  "summary": "<two sentences>",
  "topSkills": ["<string>"],
  "matchScore": <integer 0-100>
}

LANGUAGE: %s

RESUME:
%s

JOB DESCRIPTION:
%s`,
		languageInstruction(req.Language),
		quote(req.ResumeText),
		quoteOr(req.JobDescription, noJobDescription),
	)
}

// BuildParsePrompt creates the prompt that turns raw resume text into structured data.
func (pb *PromptBuilder) BuildParsePrompt(req models.ParseRequest) string {
	return fmt.Sprintf(`You extract structured data from resume text.

HARD RULES:
1. Copy values from the resume. Never guess or invent values.
2. Use an empty string for missing text fields and an empty array for missing lists.
3. Respond with ONLY one JSON object. No markdown, no code fences, no commentary.

OUTPUT SCHEMA:
{
  "name": "<string>",
  "email": "<string>",
  "phone": "<string>",
  "location": "<string>",
  "summary": "<string>",
  "skills": ["<string>"],
  "experience": [{"company": "<string>", "title": "<string>", "period": "<string>", "bullets": ["<string>"]}],
  "education": [{"institution": "<string>", "degree": "<string>", "period": "<string>"}],
  "projects": [{"name": "<string>", "description": "<string>", "technologies": ["<string>"]}]
}

RESUME:
%s`,
		quote(req.ResumeText),
	)
}

// BuildRetrievalQuery creates the embedding query used to look up ATS guidance.
func (pb *PromptBuilder) BuildRetrievalQuery(jobDescription string) string {
	jobDescription = strings.TrimSpace(jobDescription)
	if jobDescription == "" {
		return "General ATS resume formatting and keyword guidelines"
	}
	return "ATS keywords, resume formatting and wording guidelines for this role: " + jobDescription
}

// quote wraps user text in triple-quote delimiters, escaping any delimiter inside it.
func quote(text string) string {
	escaped := strings.ReplaceAll(text, `"""`, `\"\"\"`)
	return `"""` + "\n" + escaped + "\n" + `"""`
}

func quoteOr(text, fallback string) string {
	if strings.TrimSpace(text) == "" {
		return fallback
	}
	return quote(text)
}

func toneInstruction(t models.Tone) string {
	if s, ok := toneInstructions[t]; ok {
		return s
	}
	return toneInstructions[models.ToneFriendly]
}

func languageInstruction(l models.Language) string {
	if s, ok := languageInstructions[l]; ok {
		return s
	}
	return languageInstructions[models.LanguageEnglish]
}

func contentTypeInstruction(ct models.ContentType) string {
	if s, ok := contentTypeInstructions[ct]; ok {
		return s
	}
	return contentTypeInstructions[models.ContentCoverLetter]
}
