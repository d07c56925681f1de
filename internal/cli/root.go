package cli

import (
	"context"
	"fmt"

	"jobfit/internal/config"
	"jobfit/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "jobfit",
	Short: "A CLI tool for checking resume fit against job descriptions using AI",
	Long: `Jobfit is a command-line tool that analyzes how well a resume matches
a specific job description using AI. It produces an ATS-style fit report,
answers follow-up questions about the analysis, and generates targeted
rewrites of resume content.`,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// applyCLIOverrides merges the shared model/temperature/api-key flags into an
// operation config. Model overrides are checked against the allow-list.
func applyCLIOverrides(cmd *cobra.Command, cfg *config.Config, opCfg *config.OperationAIConfig, model string, temperature float32, apiKey string) error {
	if model != "" {
		if !cfg.IsModelAllowed(model) {
			return fmt.Errorf("model %q is not in the allowed model list", model)
		}
		opCfg.Model = model
	}
	if cmd.Flags().Changed("temperature") {
		if temperature < 0 || temperature > 1 {
			return fmt.Errorf("temperature must be within [0.0, 1.0]")
		}
		t := temperature
		opCfg.Temperature = &t
	}
	if apiKey != "" {
		opCfg.APIKey = apiKey
	}
	return nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(followupCmd)
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
