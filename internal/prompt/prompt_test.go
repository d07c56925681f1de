package prompt

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxChars int
		want     string
	}{
		{
			name:     "under limit unchanged",
			input:    "short resume text",
			maxChars: 100,
			want:     "short resume text",
		},
		{
			name:     "exactly at limit unchanged",
			input:    strings.Repeat("a", 100),
			maxChars: 100,
			want:     strings.Repeat("a", 100),
		},
		{
			name:     "zero limit disables truncation",
			input:    strings.Repeat("a", 100),
			maxChars: 0,
			want:     strings.Repeat("a", 100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxChars); got != tt.want {
				t.Errorf("Truncate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateLongInput(t *testing.T) {
	input := strings.Repeat("x", 40000) + strings.Repeat("y", 60000)

	got := Truncate(input, 10000)

	wantLen := 10000 + len(truncationMarker)
	if len(got) != wantLen {
		t.Errorf("truncated length = %d, want %d", len(got), wantLen)
	}
	if !strings.HasPrefix(got, strings.Repeat("x", 5000)) {
		t.Error("truncated string should keep the original head")
	}
	if !strings.HasSuffix(got, strings.Repeat("y", 5000)) {
		t.Error("truncated string should keep the original tail")
	}
	if !strings.Contains(got, truncationMarker) {
		t.Error("truncated string should contain the marker")
	}
}

func TestHead(t *testing.T) {
	if got := Head("abcdef", 4); got != "abcd" {
		t.Errorf("Head() = %q, want %q", got, "abcd")
	}
	if got := Head("abc", 10); got != "abc" {
		t.Errorf("Head() = %q, want %q", got, "abc")
	}
}

func TestAnalysis(t *testing.T) {
	msgs := Analysis("my resume", "the jd", 0)

	if msgs.System != AnalysisSystem {
		t.Error("analysis should carry the analysis system prompt")
	}
	if len(msgs.Parts) != 1 {
		t.Fatalf("analysis should produce one user part, got %d", len(msgs.Parts))
	}

	user := msgs.Parts[0]
	if !strings.Contains(user, "my resume") {
		t.Error("user prompt should embed the resume text")
	}
	if !strings.Contains(user, "the jd") {
		t.Error("user prompt should embed the JD text")
	}
	if !strings.Contains(user, `"ats_score_overall"`) {
		t.Error("user prompt should embed the JSON schema")
	}
}

func TestAnalysisTruncatesInputs(t *testing.T) {
	longResume := strings.Repeat("r", 200000)

	msgs := Analysis(longResume, "jd", 60000)

	if strings.Contains(msgs.Parts[0], strings.Repeat("r", 60001)) {
		t.Error("resume should be truncated to the configured limit")
	}
	if !strings.Contains(msgs.Parts[0], truncationMarker) {
		t.Error("truncated resume should contain the marker")
	}
}

func TestFollowUp(t *testing.T) {
	longResume := strings.Repeat("r", 10000)
	longJD := strings.Repeat("j", 10000)

	msgs := FollowUp("What should I fix first?", `{"ats_score_overall":55}`, longResume, longJD)

	if msgs.System != FollowUpSystem {
		t.Error("follow-up should carry the follow-up system prompt")
	}
	if len(msgs.Parts) != 4 {
		t.Fatalf("follow-up should produce four ordered parts, got %d", len(msgs.Parts))
	}

	if !strings.HasPrefix(msgs.Parts[0], "User question:") {
		t.Errorf("part 0 should be the question, got %q", Head(msgs.Parts[0], 40))
	}
	if !strings.HasPrefix(msgs.Parts[1], "Analysis JSON:") {
		t.Errorf("part 1 should be the analysis blob, got %q", Head(msgs.Parts[1], 40))
	}
	if len(msgs.Parts[2]) > len("Resume snippet:\n")+4000 {
		t.Error("resume snippet should be capped at 4000 chars")
	}
	if len(msgs.Parts[3]) > len("JD snippet:\n")+4000 {
		t.Error("JD snippet should be capped at 4000 chars")
	}
}

func TestRewrite(t *testing.T) {
	msgs := Rewrite("make bullets quantified", strings.Repeat("r", 20000), "jd text")

	if msgs.System != RewriteSystem {
		t.Error("rewrite should carry the rewrite system prompt")
	}
	if len(msgs.Parts) != 1 {
		t.Fatalf("rewrite should produce one user part, got %d", len(msgs.Parts))
	}
	if !strings.Contains(msgs.Parts[0], "make bullets quantified") {
		t.Error("user prompt should embed the rewrite goal")
	}
	if strings.Contains(msgs.Parts[0], strings.Repeat("r", 12001)) {
		t.Error("resume should be capped at 12000 chars")
	}
}
