package cli

import (
	"context"
	"fmt"

	"jobfit/internal/ai"
	"jobfit/internal/common"
	"jobfit/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze how well a resume fits a job description",
	Long: `Analyze a resume against a job description using AI and produce an
ATS-style fit report.

The report includes:
- Overall ATS score and per-section scores
- Hard requirement checks
- Matched and missing keywords with density comparison
- Red flags and prioritized recommendations
- A tailored professional summary and bullet suggestions

Resume and job description files may be PDF, DOCX, or plain text.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig

var analyzeOpts struct {
	resumeFile  string
	jdFile      string
	model       string
	temperature float32
	apiKey      string
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeOpts.resumeFile, "resume", "", "Resume file (PDF, DOCX, or plain text)")
	analyzeCmd.Flags().StringVar(&analyzeOpts.jdFile, "jd", "", "Job description file (PDF, DOCX, or plain text)")
	analyzeCmd.Flags().StringVar(&analyzeOpts.model, "model", "", "AI model override for this run")
	analyzeCmd.Flags().Float32Var(&analyzeOpts.temperature, "temperature", 0, "AI temperature override for this run (0.0-1.0)")
	analyzeCmd.Flags().StringVar(&analyzeOpts.apiKey, "api-key", "", "AI API key override for this run")
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = analyzeCmd.MarkFlagRequired("resume")
	_ = analyzeCmd.MarkFlagRequired("jd")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	analyzeConfig.MaxFileSize = cfg.App.MaxFileSize

	// Create AI service for analyze operation
	analyzeAIConfig := cfg.GetAnalyzeConfig()
	if err := applyCLIOverrides(cmd, cfg, &analyzeAIConfig, analyzeOpts.model, analyzeOpts.temperature, analyzeOpts.apiKey); err != nil {
		return err
	}
	aiService, err := ai.NewService(&analyzeAIConfig, "analyze", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	createInput := func(contents []string) (types.AnalyzeInput, error) {
		if len(contents) != 2 {
			return types.AnalyzeInput{}, fmt.Errorf("expected 2 file contents, got %d", len(contents))
		}
		return types.AnalyzeInput{
			ResumeText:     contents[0],
			JobDescription: contents[1],
		}, nil
	}

	logDetails := func(input types.AnalyzeInput, cfg common.CommandConfig) {
		logger.Info("Starting resume analysis",
			"resume_chars", len(input.ResumeText),
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	// Create a wrapper function that uses our specific AI service
	analyzeOperation := func(ctx context.Context, input types.AnalyzeInput) (types.AnalyzeOutput, *ai.TokenUsage, error) {
		return aiService.Provider.Analyze(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		[]string{analyzeOpts.resumeFile, analyzeOpts.jdFile},
		createInput,
		analyzeOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}
