package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"jobfit/internal/ai"
	"jobfit/internal/config"
	"jobfit/internal/extract"
	"jobfit/internal/observability"
	"jobfit/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// applyOverrides merges per-request AI settings into an operation config.
// Model overrides are checked against the configured allow-list.
func (s *Server) applyOverrides(cfg *config.OperationAIConfig, ov RequestOverrides) error {
	if ov.Model != "" {
		if !s.AppConfig.IsModelAllowed(ov.Model) {
			return fmt.Errorf("model %q is not in the allowed model list", ov.Model)
		}
		cfg.Model = ov.Model
	}
	if ov.Temperature != nil {
		if *ov.Temperature < 0 || *ov.Temperature > 1 {
			return fmt.Errorf("temperature must be within [0.0, 1.0]")
		}
		cfg.Temperature = ov.Temperature
	}
	if ov.APIKey != "" {
		cfg.APIKey = ov.APIKey
	}
	return nil
}

// createAnalyzeHandler wraps the analyze handler with observability
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobfit.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		var req AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		// Both inputs must be non-empty before any model call
		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
			return
		}

		// Size validation
		if len(req.ResumeText) > int(s.MaxRequestSize/2) {
			err := fmt.Errorf("resume text too large: %d chars", len(req.ResumeText))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Resume text too large", fmt.Sprintf("resumeText exceeds recommended size limit of %d characters", s.MaxRequestSize/2), http.StatusBadRequest)
			return
		}
		if len(req.JobDescription) > int(s.MaxRequestSize/2) {
			err := fmt.Errorf("job description too large: %d chars", len(req.JobDescription))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Job description too large", fmt.Sprintf("jobDescription exceeds recommended size limit of %d characters", s.MaxRequestSize/2), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "analyze"),
		)

		input := types.AnalyzeInput{
			ResumeText:     req.ResumeText,
			JobDescription: req.JobDescription,
		}

		analyzeConfig := s.AppConfig.GetAnalyzeConfig()
		if err := s.applyOverrides(&analyzeConfig, req.RequestOverrides); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request overrides", err.Error(), http.StatusBadRequest)
			return
		}

		aiService, err := ai.NewService(&analyzeConfig, "analyze", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var result types.AnalyzeOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "analyze", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.Provider.Analyze(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "analysis_completed", false, om,
				attribute.String("error", err.Error()))
			writeErrorResponse(w, "Failed to analyze resume", err.Error(), http.StatusInternalServerError)
			return
		}

		successAttrs := []attribute.KeyValue{
			attribute.Bool("response.parsed", result.Result != nil),
		}
		if result.Result != nil {
			successAttrs = append(successAttrs,
				attribute.Float64("ats.score", result.Result.ATSScoreOverall))
		}
		metrics.RecordBusinessMetric(ctx, "analysis_completed", true, om, successAttrs...)

		span.SetAttributes(attribute.Bool("success", true))
		span.SetAttributes(successAttrs...)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createFollowUpHandler wraps the followup handler with observability
func (s *Server) createFollowUpHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobfit.api")
		ctx, span := tracer.Start(ctx, "api.followup")
		defer span.End()

		var req FollowUpRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Question) == "" {
			err := fmt.Errorf("missing question")
			span.RecordError(err)
			writeErrorResponse(w, "Missing question", "question field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.question_length", len(req.Question)),
			attribute.Bool("request.has_analysis", req.Analysis != nil),
			attribute.String("operation", "followup"),
		)

		input := types.FollowUpInput{
			Question:       req.Question,
			Analysis:       req.Analysis,
			ResumeText:     req.ResumeText,
			JobDescription: req.JobDescription,
		}

		followUpConfig := s.AppConfig.GetFollowUpConfig()
		if err := s.applyOverrides(&followUpConfig, req.RequestOverrides); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request overrides", err.Error(), http.StatusBadRequest)
			return
		}

		aiService, err := ai.NewService(&followUpConfig, "followup", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var result types.FollowUpOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "followup", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.Provider.FollowUp(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "followup_answered", false, om)
			writeErrorResponse(w, "Failed to answer follow-up question", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics.RecordBusinessMetric(ctx, "followup_answered", true, om,
			attribute.Int("response.answer_length", len(result.Answer)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.answer_length", len(result.Answer)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createRewriteHandler wraps the rewrite handler with observability
func (s *Server) createRewriteHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobfit.api")
		ctx, span := tracer.Start(ctx, "api.rewrite")
		defer span.End()

		var req RewriteRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Goal) == "" {
			err := fmt.Errorf("missing rewrite goal")
			span.RecordError(err)
			writeErrorResponse(w, "Missing rewrite goal", "goal field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.goal_length", len(req.Goal)),
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("operation", "rewrite"),
		)

		input := types.RewriteInput{
			Goal:           req.Goal,
			ResumeText:     req.ResumeText,
			JobDescription: req.JobDescription,
		}

		rewriteConfig := s.AppConfig.GetRewriteConfig()
		if err := s.applyOverrides(&rewriteConfig, req.RequestOverrides); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request overrides", err.Error(), http.StatusBadRequest)
			return
		}

		aiService, err := ai.NewService(&rewriteConfig, "rewrite", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var result types.RewriteOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "rewrite", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.Provider.Rewrite(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "rewrite_generated", false, om)
			writeErrorResponse(w, "Failed to generate rewrite", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics.RecordBusinessMetric(ctx, "rewrite_generated", true, om,
			attribute.Int("response.rewrite_length", len(result.Rewrite)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.rewrite_length", len(result.Rewrite)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createExtractHandler handles document uploads and returns extracted text
func (s *Server) createExtractHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobfit.api")
		_, span := tracer.Start(ctx, "api.extract")
		defer span.End()

		if err := r.ParseMultipartForm(s.MaxRequestSize); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid multipart request", err.Error(), http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing file", "multipart field 'file' is required", http.StatusBadRequest)
			return
		}
		defer func() {
			if err := file.Close(); err != nil {
				s.Logger.LogError(err, "Failed to close uploaded file")
			}
		}()

		data, err := io.ReadAll(file)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Failed to read upload", err.Error(), http.StatusBadRequest)
			return
		}

		text := extract.Text(data, header.Filename)

		span.SetAttributes(
			attribute.String("upload.filename", header.Filename),
			attribute.Int("upload.size_bytes", len(data)),
			attribute.Int("extract.characters", len(text)),
		)

		response := ExtractResponse{
			Filename:   header.Filename,
			Text:       text,
			Characters: len(text),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
