package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"jobfit/internal/ai"
	"jobfit/internal/common"
	"jobfit/internal/types"

	"github.com/spf13/cobra"
)

var followupCmd = &cobra.Command{
	Use:   "followup",
	Short: "Ask a follow-up question about a fit analysis",
	Long: `Ask a free-form question about a previously generated fit analysis.
The question is answered against the analysis result plus the resume and
job description, so answers stay grounded in the documents.

Pass a saved analysis with --analysis (the JSON produced by 'analyze
--format json'). Without it the question is answered from the resume and
job description alone.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if followupConfig.OutputFormat == "" {
			followupConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(followupConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runFollowup,
}

var followupConfig common.CommandConfig

var followupOpts struct {
	question     string
	analysisFile string
	resumeFile   string
	jdFile       string
	model        string
	temperature  float32
	apiKey       string
}

func init() {
	followupCmd.Flags().StringVarP(&followupOpts.question, "question", "q", "", "Question to ask about the analysis")
	followupCmd.Flags().StringVar(&followupOpts.analysisFile, "analysis", "", "Saved analysis JSON file from a previous run")
	followupCmd.Flags().StringVar(&followupOpts.resumeFile, "resume", "", "Resume file (PDF, DOCX, or plain text)")
	followupCmd.Flags().StringVar(&followupOpts.jdFile, "jd", "", "Job description file (PDF, DOCX, or plain text)")
	followupCmd.Flags().StringVar(&followupOpts.model, "model", "", "AI model override for this run")
	followupCmd.Flags().Float32Var(&followupOpts.temperature, "temperature", 0, "AI temperature override for this run (0.0-1.0)")
	followupCmd.Flags().StringVar(&followupOpts.apiKey, "api-key", "", "AI API key override for this run")
	followupCmd.Flags().StringVarP(&followupConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	followupCmd.Flags().StringVar(&followupConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = followupCmd.MarkFlagRequired("question")
	_ = followupCmd.MarkFlagRequired("resume")
	_ = followupCmd.MarkFlagRequired("jd")

	_ = followupCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// loadAnalysisFile reads and parses a saved analysis JSON file
func loadAnalysisFile(fileProcessor *common.FileProcessor, filename string) (*types.AnalysisResult, error) {
	content, err := fileProcessor.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse analysis file %s: %w", filename, err)
	}
	return &result, nil
}

func runFollowup(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	followupConfig.MaxFileSize = cfg.App.MaxFileSize

	followUpAIConfig := cfg.GetFollowUpConfig()
	if err := applyCLIOverrides(cmd, cfg, &followUpAIConfig, followupOpts.model, followupOpts.temperature, followupOpts.apiKey); err != nil {
		return err
	}
	aiService, err := ai.NewService(&followUpAIConfig, "followup", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	var analysis *types.AnalysisResult
	if followupOpts.analysisFile != "" {
		analysis, err = loadAnalysisFile(common.NewFileProcessor(logger), followupOpts.analysisFile)
		if err != nil {
			return err
		}
	}

	createInput := func(contents []string) (types.FollowUpInput, error) {
		if len(contents) != 2 {
			return types.FollowUpInput{}, fmt.Errorf("expected 2 file contents, got %d", len(contents))
		}
		return types.FollowUpInput{
			Question:       followupOpts.question,
			Analysis:       analysis,
			ResumeText:     contents[0],
			JobDescription: contents[1],
		}, nil
	}

	logDetails := func(input types.FollowUpInput, cfg common.CommandConfig) {
		logger.Info("Starting follow-up question",
			"question_chars", len(input.Question),
			"has_analysis", input.Analysis != nil,
			"output_format", cfg.OutputFormat)
	}

	followUpOperation := func(ctx context.Context, input types.FollowUpInput) (types.FollowUpOutput, *ai.TokenUsage, error) {
		return aiService.Provider.FollowUp(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		followupConfig,
		[]string{followupOpts.resumeFile, followupOpts.jdFile},
		createInput,
		followUpOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to answer follow-up question: %w", err)
	}
	logger.Info("Follow-up question answered successfully")
	return nil
}
