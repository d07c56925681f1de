package types

import (
	"encoding/json"
	"strings"
)

// AnalyzeInput represents the input for a resume-vs-JD analysis
type AnalyzeInput struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// FollowUpInput represents a follow-up question about a prior analysis
type FollowUpInput struct {
	Question       string          `json:"question"`
	Analysis       *AnalysisResult `json:"analysis,omitempty"`
	ResumeText     string          `json:"resumeText"`
	JobDescription string          `json:"jobDescription"`
}

// RewriteInput represents a targeted rewrite request
type RewriteInput struct {
	Goal           string `json:"goal"`
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// KeywordDensity compares how often a keyword appears in the resume vs the JD
type KeywordDensity struct {
	Keyword    string `json:"keyword"`
	ResumeFreq int    `json:"resume_freq"`
	JDFreq     int    `json:"jd_freq"`
}

// HardRequirements reports whether the JD's hard requirements are met
type HardRequirements struct {
	Met     bool     `json:"met"`
	Details []string `json:"details"`
}

// Recommendation is a single improvement suggestion from the model
type Recommendation struct {
	Area           string `json:"area"`
	Severity       string `json:"severity"` // "low", "med", or "high"
	Suggestion     string `json:"suggestion"`
	ExampleRewrite string `json:"example_rewrite"`
}

// AnalysisResult is the structured analysis returned by the model.
// Every field is optional on the wire; consumers must tolerate zero values.
type AnalysisResult struct {
	RoleTitleInferred         string           `json:"role_title_inferred"`
	ATSScoreOverall           float64          `json:"ats_score_overall"`
	SectionScores             map[string]int   `json:"section_scores"`
	MatchedKeywords           []string         `json:"matched_keywords"`
	MissingCriticalKeywords   []string         `json:"missing_critical_keywords"`
	MissingNiceToHaveKeywords []string         `json:"missing_nice_to_have_keywords"`
	KeywordDensity            []KeywordDensity `json:"keyword_density"`
	HardRequirements          HardRequirements `json:"hard_requirements"`
	RedFlags                  []string         `json:"red_flags"`
	Recommendations           []Recommendation `json:"recommendations"`
	TailoredSummary           string           `json:"tailored_summary"`
	TailoredBullets           []string         `json:"tailored_bullets"`
	TopActionVerbs            []string         `json:"top_action_verbs"`
}

// SectionScoreKeys lists the canonical section score names in display order.
var SectionScoreKeys = []string{
	"ExperienceMatch",
	"SkillsMatch",
	"KeywordsMatch",
	"Education",
	"FormattingATS",
	"ClarityReadability",
	"ImpactQuantification",
}

// ParseAnalysisResult parses raw model output into an AnalysisResult.
// Any string that is not a valid JSON object yields (nil, false); missing
// keys are fine and leave their fields at zero values.
func ParseAnalysisResult(raw string) (*AnalysisResult, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return nil, false
	}

	var result AnalysisResult
	raw = trimmed
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false
	}
	return &result, true
}

// ClampScore bounds a score to the displayable [0, 100] range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// AnalyzeOutput carries the model's raw analysis text alongside the parsed
// result. Result is nil when the text is not a valid JSON object.
type AnalyzeOutput struct {
	Raw    string          `json:"raw"`
	Result *AnalysisResult `json:"result,omitempty"`
}

// FollowUpOutput is the free-form answer to a follow-up question
type FollowUpOutput struct {
	Answer string `json:"answer"`
}

// RewriteOutput is the free-form rewritten text for a rewrite goal
type RewriteOutput struct {
	Rewrite string `json:"rewrite"`
}
