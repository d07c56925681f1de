package formatters

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"jobfit/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("markdown", "AnalyzeOutput", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "AnalyzeOutput", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "FollowUpOutput", &FollowUpFormatter{})
	registry.RegisterFormatter("text", "FollowUpOutput", &FollowUpFormatter{})
	registry.RegisterFormatter("markdown", "RewriteOutput", &RewriteFormatter{})
	registry.RegisterFormatter("text", "RewriteOutput", &RewriteFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalyzeOutput:
		return "AnalyzeOutput"
	case types.FollowUpOutput:
		return "FollowUpOutput"
	case types.RewriteOutput:
		return "RewriteOutput"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// overallScore rounds and clamps the overall score for display.
func overallScore(result *types.AnalysisResult) int {
	return types.ClampScore(int(math.Round(result.ATSScoreOverall)))
}

// orderedSectionKeys returns section score keys in canonical display order,
// with any unknown keys appended alphabetically.
func orderedSectionKeys(scores map[string]int) []string {
	keys := make([]string, 0, len(scores))
	seen := make(map[string]bool, len(scores))
	for _, key := range types.SectionScoreKeys {
		if _, ok := scores[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}

	var extras []string
	for key := range scores {
		if !seen[key] {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)

	return append(keys, extras...)
}

// joinOrDash joins list items with ", ", or returns a placeholder when empty.
func joinOrDash(items []string) string {
	if joined := strings.Join(items, ", "); joined != "" {
		return joined
	}
	return "—"
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// AnalysisMarkdownFormatter renders the ATS report as markdown
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	output, ok := data.(types.AnalyzeOutput)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeOutput, got %T", data)
	}

	// Unparseable responses surface as-is instead of an empty report
	if output.Result == nil {
		return output.Raw, nil
	}
	result := output.Result

	var lines []string
	lines = append(lines, "# ATS Report\n")
	lines = append(lines, fmt.Sprintf("**Overall ATS Score:** %d/100\n", overallScore(result)))
	if result.RoleTitleInferred != "" {
		lines = append(lines, fmt.Sprintf("**Target Role (inferred):** %s\n", result.RoleTitleInferred))
	}

	lines = append(lines, "## Section Scores")
	for _, key := range orderedSectionKeys(result.SectionScores) {
		lines = append(lines, fmt.Sprintf("- **%s:** %d", key, result.SectionScores[key]))
	}

	lines = append(lines, "\n## Hard Requirements")
	met := "No"
	if result.HardRequirements.Met {
		met = "Yes"
	}
	lines = append(lines, fmt.Sprintf("- Met: %s", met))
	for _, detail := range result.HardRequirements.Details {
		lines = append(lines, fmt.Sprintf("  - %s", detail))
	}

	lines = append(lines, "\n## Keywords")
	lines = append(lines, fmt.Sprintf("- **Matched:** %s", joinOrDash(result.MatchedKeywords)))
	lines = append(lines, fmt.Sprintf("- **Missing (Critical):** %s", joinOrDash(result.MissingCriticalKeywords)))
	lines = append(lines, fmt.Sprintf("- **Missing (Nice):** %s", joinOrDash(result.MissingNiceToHaveKeywords)))

	if len(result.KeywordDensity) > 0 {
		lines = append(lines, "\n### Keyword Density (Resume vs JD)")
		lines = append(lines, "| Keyword | Resume Freq | JD Freq |")
		lines = append(lines, "|---|---:|---:|")
		for _, row := range result.KeywordDensity {
			lines = append(lines, fmt.Sprintf("| %s | %d | %d |", row.Keyword, row.ResumeFreq, row.JDFreq))
		}
	}

	if len(result.RedFlags) > 0 {
		lines = append(lines, "\n## Red Flags")
		for _, flag := range result.RedFlags {
			lines = append(lines, fmt.Sprintf("- %s", flag))
		}
	}

	if len(result.Recommendations) > 0 {
		lines = append(lines, "\n## Recommendations")
		for _, rec := range result.Recommendations {
			area := orDefault(rec.Area, "General")
			severity := strings.ToUpper(orDefault(rec.Severity, "med"))
			lines = append(lines, fmt.Sprintf("### %s (%s)", area, severity))
			lines = append(lines, rec.Suggestion)
			if rec.ExampleRewrite != "" {
				lines = append(lines, "\n**Example rewrite**\n")
				lines = append(lines, rec.ExampleRewrite)
			}
		}
	}

	if result.TailoredSummary != "" {
		lines = append(lines, "\n## Tailored Professional Summary\n")
		lines = append(lines, result.TailoredSummary)
	}

	if len(result.TailoredBullets) > 0 {
		lines = append(lines, "\n## High-impact Bullet Suggestions")
		for i, bullet := range result.TailoredBullets {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, bullet))
		}
	}

	return strings.Join(lines, "\n"), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalyzeOutput"
}

// AnalysisTextFormatter renders the ATS report as plain text
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	analyzeOutput, ok := data.(types.AnalyzeOutput)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeOutput, got %T", data)
	}

	if analyzeOutput.Result == nil {
		return analyzeOutput.Raw, nil
	}
	result := analyzeOutput.Result

	var output strings.Builder

	output.WriteString("=== ATS REPORT ===\n\n")
	output.WriteString(fmt.Sprintf("Overall ATS Score: %d/100\n", overallScore(result)))
	if result.RoleTitleInferred != "" {
		output.WriteString(fmt.Sprintf("Target Role (inferred): %s\n", result.RoleTitleInferred))
	}
	output.WriteString("\n")

	output.WriteString("=== SECTION SCORES ===\n")
	for _, key := range orderedSectionKeys(result.SectionScores) {
		output.WriteString(fmt.Sprintf("- %s: %d\n", key, result.SectionScores[key]))
	}
	output.WriteString("\n")

	output.WriteString("=== HARD REQUIREMENTS ===\n")
	if result.HardRequirements.Met {
		output.WriteString("Met: Yes\n")
	} else {
		output.WriteString("Met: No\n")
	}
	for _, detail := range result.HardRequirements.Details {
		output.WriteString(fmt.Sprintf("- %s\n", detail))
	}
	output.WriteString("\n")

	output.WriteString("=== KEYWORDS ===\n")
	output.WriteString(fmt.Sprintf("Matched: %s\n", joinOrDash(result.MatchedKeywords)))
	output.WriteString(fmt.Sprintf("Missing (Critical): %s\n", joinOrDash(result.MissingCriticalKeywords)))
	output.WriteString(fmt.Sprintf("Missing (Nice): %s\n", joinOrDash(result.MissingNiceToHaveKeywords)))
	output.WriteString("\n")

	if len(result.KeywordDensity) > 0 {
		output.WriteString("=== KEYWORD DENSITY (RESUME VS JD) ===\n")
		for _, row := range result.KeywordDensity {
			output.WriteString(fmt.Sprintf("- %s: resume=%d, jd=%d\n", row.Keyword, row.ResumeFreq, row.JDFreq))
		}
		output.WriteString("\n")
	}

	if len(result.RedFlags) > 0 {
		output.WriteString("=== RED FLAGS ===\n")
		for _, flag := range result.RedFlags {
			output.WriteString(fmt.Sprintf("- %s\n", flag))
		}
		output.WriteString("\n")
	}

	if len(result.Recommendations) > 0 {
		output.WriteString("=== RECOMMENDATIONS ===\n")
		for i, rec := range result.Recommendations {
			area := orDefault(rec.Area, "General")
			severity := strings.ToUpper(orDefault(rec.Severity, "med"))
			output.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, area, severity))
			output.WriteString(fmt.Sprintf("   %s\n", rec.Suggestion))
			if rec.ExampleRewrite != "" {
				output.WriteString(fmt.Sprintf("   Example rewrite: %s\n", rec.ExampleRewrite))
			}
		}
		output.WriteString("\n")
	}

	if result.TailoredSummary != "" {
		output.WriteString("=== TAILORED PROFESSIONAL SUMMARY ===\n")
		output.WriteString(result.TailoredSummary)
		output.WriteString("\n\n")
	}

	if len(result.TailoredBullets) > 0 {
		output.WriteString("=== HIGH-IMPACT BULLET SUGGESTIONS ===\n")
		for i, bullet := range result.TailoredBullets {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, bullet))
		}
	}

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "AnalyzeOutput"
}

// FollowUpFormatter passes the free-form answer through unchanged
type FollowUpFormatter struct{}

func (ff *FollowUpFormatter) Format(data any) (string, error) {
	result, ok := data.(types.FollowUpOutput)
	if !ok {
		return "", fmt.Errorf("expected FollowUpOutput, got %T", data)
	}
	return result.Answer, nil
}

func (ff *FollowUpFormatter) SupportedType() string {
	return "FollowUpOutput"
}

// RewriteFormatter passes the rewritten text through unchanged
type RewriteFormatter struct{}

func (rf *RewriteFormatter) Format(data any) (string, error) {
	result, ok := data.(types.RewriteOutput)
	if !ok {
		return "", fmt.Errorf("expected RewriteOutput, got %T", data)
	}
	return result.Rewrite, nil
}

func (rf *RewriteFormatter) SupportedType() string {
	return "RewriteOutput"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
