package models

import (
	"encoding/json"
	"fmt"
	"math"
)

type Tone string

const (
	ToneFriendly Tone = "friendly"
	ToneHR       Tone = "hr"
	ToneSenior   Tone = "senior"
	ToneDark     Tone = "dark"
)

type Language string

const (
	LanguageEnglish  Language = "english"
	LanguageHinglish Language = "hinglish"
)

type Verdict string

const (
	VerdictApply     Verdict = "Apply"
	VerdictDontApply Verdict = "Don't Apply"
	VerdictHighRisk  Verdict = "High Risk"
)

// VerdictForScore maps a 0..100 score onto its verdict.
func VerdictForScore(score int) Verdict {
	switch {
	case score >= 70:
		return VerdictApply
	case score >= 40:
		return VerdictDontApply
	default:
		return VerdictHighRisk
	}
}

// WholeNumber is an integer that also accepts integral JSON numbers such as 75.0.
type WholeNumber int

func (s *WholeNumber) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("expected a number: %w", err)
	}
	*s = WholeNumber(math.Round(f))
	return nil
}

type RoastRequest struct {
	ResumeText     string   `json:"resumeText"`
	JobDescription string   `json:"jobDescription,omitempty"`
	Tone           Tone     `json:"tone"`
	Language       Language `json:"language"`
}

type RoastResponse struct {
	Score    WholeNumber   `json:"score"`
	Verdict  Verdict       `json:"verdict"`
	Roast    RoastSections `json:"roast"`
	ATSMatch ATSMatch      `json:"atsMatch"`
	Fixes    RoastFixes    `json:"fixes"`
}

type RoastSections struct {
	Summary    string `json:"summary"`
	Skills     string `json:"skills"`
	Projects   string `json:"projects"`
	Experience string `json:"experience"`
	Formatting string `json:"formatting"`
}

type ATSMatch struct {
	Percentage    WholeNumber `json:"percentage"`
	MissingSkills []string    `json:"missingSkills"`
}

type RoastFixes struct {
	SummaryFix  string   `json:"summaryFix"`
	BulletFixes []string `json:"bulletFixes"`
}
