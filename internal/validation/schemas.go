package validation

import (
	"embed"

	"alfredoptarigan/resume-roast/internal/models"
)

//go:embed schemas/*.json
var schemaFS embed.FS

func mustRead(name string) []byte {
	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(err)
	}
	return data
}

// Request schemas.
var (
	RoastRequest   = MustCompile("roast request", mustRead("roast_request.json"), defaultRoastRequest)
	FixRequest     = MustCompile("fix request", mustRead("fix_request.json"), defaultFixRequest)
	ContentRequest = MustCompile("content request", mustRead("content_request.json"), defaultContentRequest)
	PreviewRequest = MustCompile("preview request", mustRead("preview_request.json"), defaultPreviewRequest)
	ParseRequest   = MustCompile[models.ParseRequest]("parse request", mustRead("parse_request.json"), nil)
)

// Provider output schemas.
var (
	RoastResponse   = MustCompile[models.RoastResponse]("roast response", mustRead("roast_response.json"), nil)
	FixResponse     = MustCompile("fix response", mustRead("fix_response.json"), normalizeFixResponse)
	ContentResponse = MustCompile("content response", mustRead("content_response.json"), normalizeContentResponse)
	PreviewResponse = MustCompile("preview response", mustRead("preview_response.json"), normalizePreviewResponse)
	ParseResponse   = MustCompile("parse response", mustRead("parse_response.json"), normalizeParsedResume)
)

func defaultRoastRequest(r *models.RoastRequest) {
	if r.Tone == "" {
		r.Tone = models.ToneFriendly
	}
	if r.Language == "" {
		r.Language = models.LanguageEnglish
	}
}

func defaultFixRequest(r *models.FixRequest) {
	if r.Language == "" {
		r.Language = models.LanguageEnglish
	}
}

func defaultContentRequest(r *models.ContentRequest) {
	if r.Tone == "" {
		r.Tone = models.ToneFriendly
	}
	if r.Language == "" {
		r.Language = models.LanguageEnglish
	}
}

func defaultPreviewRequest(r *models.PreviewRequest) {
	if r.Language == "" {
		r.Language = models.LanguageEnglish
	}
}

// The normalizers replace JSON nulls/absent arrays with empty slices so clients
// always receive arrays.

func normalizeFixResponse(r *models.FixResponse) {
	r.Skills = orEmpty(r.Skills)
	r.Changes = orEmpty(r.Changes)
	if r.Experience == nil {
		r.Experience = []models.ExperienceItem{}
	}
	if r.Projects == nil {
		r.Projects = []models.ProjectItem{}
	}
}

func normalizeContentResponse(r *models.ContentResponse) {
	r.Keywords = orEmpty(r.Keywords)
}

func normalizePreviewResponse(r *models.PreviewResponse) {
	r.TopSkills = orEmpty(r.TopSkills)
}

func normalizeParsedResume(r *models.ParsedResume) {
	r.Skills = orEmpty(r.Skills)
	for i := range r.Experience {
		r.Experience[i].Bullets = orEmpty(r.Experience[i].Bullets)
	}
	for i := range r.Projects {
		r.Projects[i].Technologies = orEmpty(r.Projects[i].Technologies)
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
