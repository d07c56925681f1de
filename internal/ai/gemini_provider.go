package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobfit/internal/config"
	jobfitErrors "jobfit/internal/errors"
	"jobfit/internal/prompt"
	"jobfit/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

// modelCheckTimeout bounds model availability checks during health probes.
const modelCheckTimeout = 10 * time.Second

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	config         *config.OperationAIConfig
	operation      string
	circuitBreaker *AICircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *jobfitErrors.Logger
}

// Ensure GeminiProvider implements AIProvider
var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific
// operation. The API key must be present before any network call is made.
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *jobfitErrors.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, jobfitErrors.NewConfigError(jobfitErrors.ErrCodeMissingAPIKey,
			fmt.Sprintf("No API key configured for %s operation", operationType), nil)
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, jobfitErrors.NewAIError(jobfitErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:         client,
		config:         cfg,
		operation:      operationType,
		circuitBreaker: NewAICircuitBreaker(operationType, cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(operationType, cfg, logger),
		logger:         logger,
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)

		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// generate performs a single model call with tracing and circuit breaker
// protection. Calls are fired exactly once; a failed call surfaces its error
// to the user instead of being retried.
func (g *GeminiProvider) generate(
	ctx context.Context,
	operationName string,
	msgs prompt.Messages,
	genaiConfig *genai.GenerateContentConfig,
	spanAttributes ...attribute.KeyValue,
) (string, *TokenUsage, error) {
	tracer := otel.Tracer("jobfit.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if systemPrompt := g.systemPrompt(msgs.System); systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	contents := make([]*genai.Content, 0, len(msgs.Parts))
	for _, part := range msgs.Parts {
		contents = append(contents, genai.NewContentFromText(part, genai.RoleUser))
	}

	callCtx, cancel := context.WithTimeout(ctx, *g.config.Timeout)
	defer cancel()

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(callCtx, g.config.Model, contents, genaiConfig)
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, jobfitErrors.NewAIError(jobfitErrors.ErrCodeAIServiceFailed,
			"Failed to generate content for "+operationName, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return result.Text(), tokenUsage, nil
}

// systemPrompt resolves the system prompt for this operation:
// file override, then config value, then the built-in default.
func (g *GeminiProvider) systemPrompt(builtin string) string {
	if loaded := config.GetLoadedSystemPrompt(g.operation); loaded != "" {
		return loaded
	}
	if g.config.SystemPrompt != "" {
		return g.config.SystemPrompt
	}
	return builtin
}

// Analyze implements AIProvider interface for resume-vs-JD analysis
func (g *GeminiProvider) Analyze(ctx context.Context, input types.AnalyzeInput) (types.AnalyzeOutput, *TokenUsage, error) {
	msgs := prompt.Analysis(input.ResumeText, input.JobDescription, g.config.MaxInputChars)

	raw, tokenUsage, err := g.generate(
		ctx,
		"analyze",
		msgs,
		g.buildAnalysisConfig(),
		attribute.Int("input.resume_length", len(input.ResumeText)),
		attribute.Int("input.job_length", len(input.JobDescription)),
	)
	if err != nil {
		return types.AnalyzeOutput{}, nil, err
	}

	result, ok := types.ParseAnalysisResult(raw)
	if !ok {
		g.logger.Warn("Analysis response is not valid JSON, returning raw text only",
			"operation", g.operation,
			"response_length", len(raw))
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attribute.Bool("analysis.parsed", ok))
		if result != nil {
			span.SetAttributes(attribute.Float64("ats.score", result.ATSScoreOverall))
		}
	}

	return types.AnalyzeOutput{Raw: raw, Result: result}, tokenUsage, nil
}

// FollowUp implements AIProvider interface for follow-up questions
func (g *GeminiProvider) FollowUp(ctx context.Context, input types.FollowUpInput) (types.FollowUpOutput, *TokenUsage, error) {
	analysisJSON := "{}"
	if input.Analysis != nil {
		if encoded, err := json.Marshal(input.Analysis); err == nil {
			analysisJSON = string(encoded)
		}
	}

	msgs := prompt.FollowUp(input.Question, analysisJSON, input.ResumeText, input.JobDescription)

	answer, tokenUsage, err := g.generate(
		ctx,
		"followup",
		msgs,
		g.buildTextConfig(),
		attribute.Int("input.question_length", len(input.Question)),
	)
	if err != nil {
		return types.FollowUpOutput{}, nil, err
	}

	return types.FollowUpOutput{Answer: answer}, tokenUsage, nil
}

// Rewrite implements AIProvider interface for targeted rewrites
func (g *GeminiProvider) Rewrite(ctx context.Context, input types.RewriteInput) (types.RewriteOutput, *TokenUsage, error) {
	msgs := prompt.Rewrite(input.Goal, input.ResumeText, input.JobDescription)

	rewritten, tokenUsage, err := g.generate(
		ctx,
		"rewrite",
		msgs,
		g.buildTextConfig(),
		attribute.Int("input.goal_length", len(input.Goal)),
	)
	if err != nil {
		return types.RewriteOutput{}, nil, err
	}

	return types.RewriteOutput{Rewrite: rewritten}, tokenUsage, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	aiHealthy := g.circuitBreaker.IsHealthy()
	modelHealthy := g.modelBreaker.IsModelHealthy()
	stats["overall_healthy"] = aiHealthy && modelHealthy

	return stats
}

// Close implements AIProvider interface
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// buildAnalysisConfig creates the structured output configuration for
// analysis requests.
func (g *GeminiProvider) buildAnalysisConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisResponseSchema(),
	}
	g.applyTemperature(cfg)
	return cfg
}

// buildTextConfig creates the configuration for free-form text requests.
func (g *GeminiProvider) buildTextConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	g.applyTemperature(cfg)
	return cfg
}

// applyTemperature passes the configured temperature through, including an
// explicit 0.0 which requests deterministic output.
func (g *GeminiProvider) applyTemperature(cfg *genai.GenerateContentConfig) {
	if g.config.Temperature != nil {
		cfg.Temperature = g.config.Temperature
	}
}

// analysisResponseSchema describes the analysis report shape the model must
// produce. Field names match the wire keys consumed by the result parser.
func analysisResponseSchema() *genai.Schema {
	stringList := &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString},
	}

	sectionScores := map[string]*genai.Schema{}
	for _, key := range types.SectionScoreKeys {
		sectionScores[key] = &genai.Schema{Type: genai.TypeInteger}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"role_title_inferred": {Type: genai.TypeString},
			"ats_score_overall":   {Type: genai.TypeNumber},
			"section_scores": {
				Type:       genai.TypeObject,
				Properties: sectionScores,
			},
			"matched_keywords":              stringList,
			"missing_critical_keywords":     stringList,
			"missing_nice_to_have_keywords": stringList,
			"keyword_density": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"keyword":     {Type: genai.TypeString},
						"resume_freq": {Type: genai.TypeInteger},
						"jd_freq":     {Type: genai.TypeInteger},
					},
					Required: []string{"keyword", "resume_freq", "jd_freq"},
				},
			},
			"hard_requirements": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"met":     {Type: genai.TypeBoolean},
					"details": stringList,
				},
				Required: []string{"met", "details"},
			},
			"red_flags": stringList,
			"recommendations": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"area":            {Type: genai.TypeString},
						"severity":        {Type: genai.TypeString, Enum: []string{"low", "med", "high"}},
						"suggestion":      {Type: genai.TypeString},
						"example_rewrite": {Type: genai.TypeString},
					},
					Required: []string{"area", "severity", "suggestion"},
				},
			},
			"tailored_summary": {Type: genai.TypeString},
			"tailored_bullets": stringList,
			"top_action_verbs": stringList,
		},
		Required: []string{"ats_score_overall", "section_scores", "hard_requirements", "recommendations"},
	}
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
