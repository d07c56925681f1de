package types

import (
	"testing"
)

func TestParseAnalysisResult(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expectOK bool
	}{
		{
			name:     "full result",
			raw:      `{"role_title_inferred":"Backend Engineer","ats_score_overall":74,"section_scores":{"SkillsMatch":80},"matched_keywords":["Go","Postgres"],"hard_requirements":{"met":true,"details":["5+ years: pass"]}}`,
			expectOK: true,
		},
		{
			name:     "score only",
			raw:      `{"ats_score_overall": 62}`,
			expectOK: true,
		},
		{
			name:     "empty object",
			raw:      `{}`,
			expectOK: true,
		},
		{
			name:     "plain prose",
			raw:      "I could not produce the analysis you asked for.",
			expectOK: false,
		},
		{
			name:     "truncated JSON",
			raw:      `{"ats_score_overall": 62, "matched_keywords": ["Go",`,
			expectOK: false,
		},
		{
			name:     "fenced code block",
			raw:      "```json\n{\"ats_score_overall\": 62}\n```",
			expectOK: false,
		},
		{
			name:     "json null",
			raw:      "null",
			expectOK: false,
		},
		{
			name:     "empty string",
			raw:      "",
			expectOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ParseAnalysisResult(tt.raw)
			if ok != tt.expectOK {
				t.Fatalf("ParseAnalysisResult(%q) ok = %v, want %v", tt.raw, ok, tt.expectOK)
			}
			if ok && result == nil {
				t.Fatal("expected non-nil result when ok")
			}
			if !ok && result != nil {
				t.Fatal("expected nil result when not ok")
			}
		})
	}
}

func TestParseAnalysisResultFields(t *testing.T) {
	raw := `{"ats_score_overall": 62}`

	result, ok := ParseAnalysisResult(raw)
	if !ok {
		t.Fatal("expected successful parse")
	}

	if result.ATSScoreOverall != 62 {
		t.Errorf("ATSScoreOverall = %v, want 62", result.ATSScoreOverall)
	}
	if result.RoleTitleInferred != "" {
		t.Errorf("RoleTitleInferred = %q, want empty", result.RoleTitleInferred)
	}
	if result.SectionScores != nil {
		t.Errorf("SectionScores = %v, want nil", result.SectionScores)
	}
	if len(result.MatchedKeywords) != 0 {
		t.Errorf("MatchedKeywords = %v, want empty", result.MatchedKeywords)
	}
	if result.HardRequirements.Met {
		t.Error("HardRequirements.Met should default to false")
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		name  string
		score int
		want  int
	}{
		{"in range", 62, 62},
		{"lower bound", 0, 0},
		{"upper bound", 100, 100},
		{"negative", -5, 0},
		{"above range", 130, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampScore(tt.score); got != tt.want {
				t.Errorf("ClampScore(%d) = %d, want %d", tt.score, got, tt.want)
			}
		})
	}
}
