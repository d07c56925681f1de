// Package prompt assembles the message payloads sent to the AI provider.
// Builders are pure: they truncate inputs, fill templates, and return the
// system and user parts without touching the network.
package prompt

import "fmt"

const (
	// DefaultMaxInputChars bounds resume and JD text in analysis prompts.
	DefaultMaxInputChars = 60000

	// snippetCap bounds the resume/JD context attached to follow-up questions.
	snippetCap = 4000

	// rewriteCap bounds the resume/JD text attached to rewrite requests.
	rewriteCap = 12000

	truncationMarker = "\n...\n"
)

// Messages is an ordered prompt payload for a single AI call.
type Messages struct {
	System string
	Parts  []string
}

// Truncate reduces s to at most maxChars content characters, keeping the
// first and last maxChars/2 with a marker in between. Strings at or under
// the limit pass through unchanged.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	head := s[:maxChars/2]
	tail := s[len(s)-maxChars/2:]
	return head + truncationMarker + tail
}

// Head returns at most n leading characters of s.
func Head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Analysis builds the structured analysis request. Resume and JD are
// truncated to maxChars each; zero or negative maxChars means the default.
func Analysis(resume, jd string, maxChars int) Messages {
	if maxChars <= 0 {
		maxChars = DefaultMaxInputChars
	}

	user := fmt.Sprintf(analysisUserTemplate,
		Truncate(resume, maxChars),
		Truncate(jd, maxChars),
		AnalysisSchema)

	return Messages{
		System: AnalysisSystem,
		Parts:  []string{user},
	}
}

// FollowUp builds a follow-up question payload: the question, the prior
// analysis JSON, and capped resume/JD snippets as separate ordered parts.
func FollowUp(question, analysisJSON, resume, jd string) Messages {
	return Messages{
		System: FollowUpSystem,
		Parts: []string{
			fmt.Sprintf("User question: %s", question),
			fmt.Sprintf("Analysis JSON: %s", analysisJSON),
			fmt.Sprintf("Resume snippet:\n%s", Head(resume, snippetCap)),
			fmt.Sprintf("JD snippet:\n%s", Head(jd, snippetCap)),
		},
	}
}

// Rewrite builds a targeted rewrite payload for the given goal.
func Rewrite(goal, resume, jd string) Messages {
	user := fmt.Sprintf(rewriteUserTemplate,
		goal,
		Head(resume, rewriteCap),
		Head(jd, rewriteCap))

	return Messages{
		System: RewriteSystem,
		Parts:  []string{user},
	}
}
