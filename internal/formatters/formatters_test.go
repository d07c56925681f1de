package formatters

import (
	"strings"
	"testing"

	"jobfit/internal/types"
)

func markdownReport(t *testing.T, result *types.AnalysisResult) string {
	t.Helper()

	formatter := &AnalysisMarkdownFormatter{}
	report, err := formatter.Format(types.AnalyzeOutput{Result: result})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	return report
}

func TestMarkdownReportScoreLine(t *testing.T) {
	result, ok := types.ParseAnalysisResult(`{"ats_score_overall": 62}`)
	if !ok {
		t.Fatal("Expected score-only JSON to parse")
	}

	report := markdownReport(t, result)

	if !strings.Contains(report, "**Overall ATS Score:** 62/100") {
		t.Errorf("Report is missing score line:\n%s", report)
	}
	if !strings.HasPrefix(report, "# ATS Report\n") {
		t.Errorf("Report does not start with title:\n%s", report)
	}
}

func TestMarkdownReportScoreRoundingAndClamping(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected string
	}{
		{name: "rounds up", score: 61.7, expected: "**Overall ATS Score:** 62/100"},
		{name: "rounds down", score: 61.2, expected: "**Overall ATS Score:** 61/100"},
		{name: "clamps above 100", score: 250, expected: "**Overall ATS Score:** 100/100"},
		{name: "clamps below 0", score: -10, expected: "**Overall ATS Score:** 0/100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := markdownReport(t, &types.AnalysisResult{ATSScoreOverall: tt.score})
			if !strings.Contains(report, tt.expected) {
				t.Errorf("Expected %q in report:\n%s", tt.expected, report)
			}
		})
	}
}

func TestMarkdownReportZeroValueResult(t *testing.T) {
	report := markdownReport(t, &types.AnalysisResult{})

	if !strings.Contains(report, "**Overall ATS Score:** 0/100") {
		t.Errorf("Expected zero score line:\n%s", report)
	}
	if strings.Contains(report, "**Target Role (inferred):**") {
		t.Error("Target role line should be omitted when empty")
	}
	if !strings.Contains(report, "- Met: No") {
		t.Errorf("Expected hard requirements default to No:\n%s", report)
	}
	if !strings.Contains(report, "- **Matched:** —") {
		t.Errorf("Expected placeholder for empty matched keywords:\n%s", report)
	}
	if strings.Contains(report, "### Keyword Density") {
		t.Error("Keyword density table should be omitted when empty")
	}
	if strings.Contains(report, "## Red Flags") {
		t.Error("Red flags section should be omitted when empty")
	}
	if strings.Contains(report, "## Recommendations") {
		t.Error("Recommendations section should be omitted when empty")
	}
}

func TestMarkdownReportFullResult(t *testing.T) {
	result := &types.AnalysisResult{
		RoleTitleInferred: "Backend Engineer",
		ATSScoreOverall:   78,
		SectionScores: map[string]int{
			"SkillsMatch":     80,
			"ExperienceMatch": 75,
		},
		MatchedKeywords:         []string{"Go", "PostgreSQL"},
		MissingCriticalKeywords: []string{"Kubernetes"},
		KeywordDensity: []types.KeywordDensity{
			{Keyword: "Go", ResumeFreq: 5, JDFreq: 3},
		},
		HardRequirements: types.HardRequirements{
			Met:     true,
			Details: []string{"5+ years experience: met"},
		},
		RedFlags: []string{"Employment gap in 2023"},
		Recommendations: []types.Recommendation{
			{
				Area:           "Skills",
				Severity:       "high",
				Suggestion:     "Add Kubernetes experience",
				ExampleRewrite: "Deployed services to Kubernetes clusters",
			},
			{
				Suggestion: "Quantify achievements",
			},
		},
		TailoredSummary: "Seasoned backend engineer.",
		TailoredBullets: []string{"Cut p99 latency by 40%", "Led migration to Go"},
	}

	report := markdownReport(t, result)

	expectations := []string{
		"**Target Role (inferred):** Backend Engineer",
		"- **ExperienceMatch:** 75",
		"- **SkillsMatch:** 80",
		"- Met: Yes",
		"  - 5+ years experience: met",
		"- **Matched:** Go, PostgreSQL",
		"- **Missing (Critical):** Kubernetes",
		"- **Missing (Nice):** —",
		"### Keyword Density (Resume vs JD)",
		"| Keyword | Resume Freq | JD Freq |",
		"|---|---:|---:|",
		"| Go | 5 | 3 |",
		"- Employment gap in 2023",
		"### Skills (HIGH)",
		"Add Kubernetes experience",
		"**Example rewrite**",
		"Deployed services to Kubernetes clusters",
		"### General (MED)",
		"Quantify achievements",
		"## Tailored Professional Summary",
		"Seasoned backend engineer.",
		"1. Cut p99 latency by 40%",
		"2. Led migration to Go",
	}

	for _, expected := range expectations {
		if !strings.Contains(report, expected) {
			t.Errorf("Expected %q in report:\n%s", expected, report)
		}
	}

	// ExperienceMatch precedes SkillsMatch in the canonical order
	if strings.Index(report, "ExperienceMatch") > strings.Index(report, "SkillsMatch") {
		t.Error("Section scores are not in canonical order")
	}
}

func TestMarkdownReportIdempotent(t *testing.T) {
	result := &types.AnalysisResult{
		ATSScoreOverall: 50,
		SectionScores:   map[string]int{"SkillsMatch": 40, "Education": 60, "Custom": 10},
	}

	first := markdownReport(t, result)
	second := markdownReport(t, result)

	if first != second {
		t.Error("Rendering the same result twice produced different reports")
	}
}

func TestMarkdownReportUnparsedFallsBackToRaw(t *testing.T) {
	formatter := &AnalysisMarkdownFormatter{}

	raw := "The model replied in prose instead of JSON."
	report, err := formatter.Format(types.AnalyzeOutput{Raw: raw})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if report != raw {
		t.Errorf("Expected raw passthrough, got:\n%s", report)
	}
}

func TestTextReport(t *testing.T) {
	formatter := &AnalysisTextFormatter{}

	result := &types.AnalysisResult{
		ATSScoreOverall: 62,
		HardRequirements: types.HardRequirements{
			Met: true,
		},
		MatchedKeywords: []string{"Go"},
	}

	report, err := formatter.Format(types.AnalyzeOutput{Result: result})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	for _, expected := range []string{
		"=== ATS REPORT ===",
		"Overall ATS Score: 62/100",
		"Met: Yes",
		"Matched: Go",
	} {
		if !strings.Contains(report, expected) {
			t.Errorf("Expected %q in text report:\n%s", expected, report)
		}
	}
}

func TestFollowUpAndRewritePassthrough(t *testing.T) {
	registry := NewFormatterRegistry()

	answer, err := registry.Format(types.FollowUpOutput{Answer: "Focus on the skills section."}, "text")
	if err != nil {
		t.Fatalf("FollowUp format failed: %v", err)
	}
	if answer != "Focus on the skills section." {
		t.Errorf("Unexpected follow-up output: %q", answer)
	}

	rewrite, err := registry.Format(types.RewriteOutput{Rewrite: "Led a team of five engineers."}, "markdown")
	if err != nil {
		t.Fatalf("Rewrite format failed: %v", err)
	}
	if rewrite != "Led a team of five engineers." {
		t.Errorf("Unexpected rewrite output: %q", rewrite)
	}
}

func TestRegistryJSONFallback(t *testing.T) {
	registry := NewFormatterRegistry()

	out, err := registry.Format(types.FollowUpOutput{Answer: "hello"}, "json")
	if err != nil {
		t.Fatalf("JSON format failed: %v", err)
	}
	if !strings.Contains(out, `"answer": "hello"`) {
		t.Errorf("Unexpected JSON output: %s", out)
	}
}

func TestRegistryUnknownFormat(t *testing.T) {
	registry := NewFormatterRegistry()

	if _, err := registry.Format(types.FollowUpOutput{}, "yaml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}
