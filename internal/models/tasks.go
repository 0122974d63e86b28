package models

type ContentType string

const (
	ContentCoverLetter   ContentType = "cover_letter"
	ContentSummary       ContentType = "summary"
	ContentLinkedInAbout ContentType = "linkedin_about"
)

// FixRequest asks for an ATS-optimized rewrite, optionally seeded with fixes from a previous roast.
type FixRequest struct {
	ResumeText     string   `json:"resumeText"`
	JobDescription string   `json:"jobDescription,omitempty"`
	Language       Language `json:"language"`
	SummaryFix     string   `json:"summaryFix,omitempty"`
	BulletFixes    []string `json:"bulletFixes,omitempty"`
}

type FixResponse struct {
	Summary    string           `json:"summary"`
	Skills     []string         `json:"skills"`
	Experience []ExperienceItem `json:"experience"`
	Projects   []ProjectItem    `json:"projects"`
	ATSScore   WholeNumber      `json:"atsScore"`
	Changes    []string         `json:"changes"`
}

type ExperienceItem struct {
	Company string   `json:"company"`
	Title   string   `json:"title"`
	Period  string   `json:"period"`
	Bullets []string `json:"bullets"`
}

type ProjectItem struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

type EducationItem struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Period      string `json:"period"`
}

type ContentRequest struct {
	ResumeText     string      `json:"resumeText"`
	JobDescription string      `json:"jobDescription"`
	ContentType    ContentType `json:"contentType"`
	CompanyName    string      `json:"companyName,omitempty"`
	Tone           Tone        `json:"tone"`
	Language       Language    `json:"language"`
}

type ContentResponse struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Keywords []string `json:"keywords"`
}

type PreviewRequest struct {
	ResumeText     string   `json:"resumeText"`
	JobDescription string   `json:"jobDescription,omitempty"`
	Language       Language `json:"language"`
}

type PreviewResponse struct {
	Headline   string      `json:"headline"`
	Summary    string      `json:"summary"`
	TopSkills  []string    `json:"topSkills"`
	MatchScore WholeNumber `json:"matchScore"`
}

type ParseRequest struct {
	ResumeText string `json:"resumeText"`
}

type ParsedResume struct {
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Phone      string           `json:"phone"`
	Location   string           `json:"location"`
	Summary    string           `json:"summary"`
	Skills     []string         `json:"skills"`
	Experience []ExperienceItem `json:"experience"`
	Education  []EducationItem  `json:"education"`
	Projects   []ProjectItem    `json:"projects"`
}
