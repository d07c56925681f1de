package cli

import (
	"context"
	"fmt"

	"jobfit/internal/ai"
	"jobfit/internal/common"
	"jobfit/internal/types"

	"github.com/spf13/cobra"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite",
	Short: "Generate a targeted rewrite of resume content",
	Long: `Generate rewritten resume content aimed at a specific goal, for
example "emphasize leadership experience" or "rewrite the summary for a
platform engineering role". The rewrite is grounded in the resume and the
job description.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if rewriteConfig.OutputFormat == "" {
			rewriteConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(rewriteConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runRewrite,
}

var rewriteConfig common.CommandConfig

var rewriteOpts struct {
	goal        string
	resumeFile  string
	jdFile      string
	model       string
	temperature float32
	apiKey      string
}

func init() {
	rewriteCmd.Flags().StringVarP(&rewriteOpts.goal, "goal", "g", "", "Rewrite goal, e.g. \"emphasize leadership\"")
	rewriteCmd.Flags().StringVar(&rewriteOpts.resumeFile, "resume", "", "Resume file (PDF, DOCX, or plain text)")
	rewriteCmd.Flags().StringVar(&rewriteOpts.jdFile, "jd", "", "Job description file (PDF, DOCX, or plain text)")
	rewriteCmd.Flags().StringVar(&rewriteOpts.model, "model", "", "AI model override for this run")
	rewriteCmd.Flags().Float32Var(&rewriteOpts.temperature, "temperature", 0, "AI temperature override for this run (0.0-1.0)")
	rewriteCmd.Flags().StringVar(&rewriteOpts.apiKey, "api-key", "", "AI API key override for this run")
	rewriteCmd.Flags().StringVarP(&rewriteConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	rewriteCmd.Flags().StringVar(&rewriteConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = rewriteCmd.MarkFlagRequired("goal")
	_ = rewriteCmd.MarkFlagRequired("resume")
	_ = rewriteCmd.MarkFlagRequired("jd")

	_ = rewriteCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runRewrite(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	rewriteConfig.MaxFileSize = cfg.App.MaxFileSize

	rewriteAIConfig := cfg.GetRewriteConfig()
	if err := applyCLIOverrides(cmd, cfg, &rewriteAIConfig, rewriteOpts.model, rewriteOpts.temperature, rewriteOpts.apiKey); err != nil {
		return err
	}
	aiService, err := ai.NewService(&rewriteAIConfig, "rewrite", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	createInput := func(contents []string) (types.RewriteInput, error) {
		if len(contents) != 2 {
			return types.RewriteInput{}, fmt.Errorf("expected 2 file contents, got %d", len(contents))
		}
		return types.RewriteInput{
			Goal:           rewriteOpts.goal,
			ResumeText:     contents[0],
			JobDescription: contents[1],
		}, nil
	}

	logDetails := func(input types.RewriteInput, cfg common.CommandConfig) {
		logger.Info("Starting targeted rewrite",
			"goal_chars", len(input.Goal),
			"resume_chars", len(input.ResumeText),
			"output_format", cfg.OutputFormat)
	}

	rewriteOperation := func(ctx context.Context, input types.RewriteInput) (types.RewriteOutput, *ai.TokenUsage, error) {
		return aiService.Provider.Rewrite(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		rewriteConfig,
		[]string{rewriteOpts.resumeFile, rewriteOpts.jdFile},
		createInput,
		rewriteOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to generate rewrite: %w", err)
	}
	logger.Info("Targeted rewrite completed successfully")
	return nil
}
