package ai

import (
	"log/slog"
	"testing"
	"time"

	"jobfit/internal/config"
	"jobfit/internal/errors"
)

// Helper functions to create pointers for test values
func timePtr(d time.Duration) *time.Duration { return &d }
func float32Ptr(f float32) *float32          { return &f }

var testLogger = errors.NewLogger(slog.LevelDebug)

// TestOperationSpecificConfigDerivation verifies that operation-specific
// configurations are correctly derived, with fallbacks to the global
// configuration.
func TestOperationSpecificConfigDerivation(t *testing.T) {
	testConfig := createTestConfigWithOverrides()

	testCases := []struct {
		name           string
		getConfig      func() config.OperationAIConfig
		expectedValues map[string]interface{}
		fallbackValues map[string]interface{}
	}{
		{
			name:      "AnalyzeConfigDerivation",
			getConfig: testConfig.GetAnalyzeConfig,
			expectedValues: map[string]interface{}{
				"Model":       "analyze-specific-model",
				"Timeout":     90 * time.Second,
				"Temperature": float32(0.3),
			},
			fallbackValues: map[string]interface{}{
				"APIKey":        "global-api-key",
				"MaxInputChars": 60000,
			},
		},
		{
			name:      "FollowUpConfigDerivation",
			getConfig: testConfig.GetFollowUpConfig,
			expectedValues: map[string]interface{}{
				"Model": "followup-specific-model",
			},
			fallbackValues: map[string]interface{}{
				"Timeout": 60 * time.Second,
			},
		},
		{
			name:           "RewriteConfigDerivation",
			getConfig:      testConfig.GetRewriteConfig,
			expectedValues: map[string]interface{}{
				// All values should fall back to global defaults
			},
			fallbackValues: map[string]interface{}{
				"Model":   "global-model",
				"Timeout": 60 * time.Second,
				"APIKey":  "global-api-key",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.getConfig()
			assertConfigValues(t, cfg, tc.expectedValues, tc.fallbackValues)
		})
	}
}

// createTestConfigWithOverrides creates a test config with operation-specific overrides
func createTestConfigWithOverrides() *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			// Global defaults that should be used as fallbacks
			Provider:      "gemini",
			Model:         "global-model",
			Timeout:       60 * time.Second,
			APIKey:        "global-api-key",
			Temperature:   0.9,
			MaxInputChars: 60000,

			// Operation-specific configurations that override globals
			Analyze: config.OperationAIConfig{
				Model:       "analyze-specific-model",  // Override
				Timeout:     timePtr(90 * time.Second), // Override
				Temperature: float32Ptr(0.3),           // Override
				// APIKey and MaxInputChars should fall back to global values.
			},

			FollowUp: config.OperationAIConfig{
				Model: "followup-specific-model", // Override
				// Other values should fall back.
			},

			Rewrite: config.OperationAIConfig{
				// No specific overrides, so it should use all global values.
			},
		},
	}
}

// assertConfigValues verifies that config values match expected and fallback values
func assertConfigValues(t *testing.T, cfg config.OperationAIConfig, expectedValues, fallbackValues map[string]interface{}) {
	t.Helper()

	for key, expected := range expectedValues {
		assertConfigValue(t, cfg, key, expected)
	}

	for key, expected := range fallbackValues {
		assertConfigValue(t, cfg, key, expected)
	}
}

// assertConfigValue checks a specific config value
func assertConfigValue(t *testing.T, cfg config.OperationAIConfig, key string, expected interface{}) {
	t.Helper()

	switch key {
	case "Model":
		if cfg.Model != expected.(string) {
			t.Errorf("Expected %s '%s', got '%s'", key, expected, cfg.Model)
		}
	case "Timeout":
		if *cfg.Timeout != expected.(time.Duration) {
			t.Errorf("Expected %s %v, got %v", key, expected, *cfg.Timeout)
		}
	case "Temperature":
		if *cfg.Temperature != expected.(float32) {
			t.Errorf("Expected %s %f, got %f", key, expected, *cfg.Temperature)
		}
	case "APIKey":
		if cfg.APIKey != expected.(string) {
			t.Errorf("Expected %s '%s', got '%s'", key, expected, cfg.APIKey)
		}
	case "MaxInputChars":
		if cfg.MaxInputChars != expected.(int) {
			t.Errorf("Expected %s %d, got %d", key, expected, cfg.MaxInputChars)
		}
	}
}

func TestNewServiceRequiresAPIKey(t *testing.T) {
	cfg := &config.OperationAIConfig{
		Provider:    "gemini",
		Model:       "test-model",
		Timeout:     timePtr(30 * time.Second),
		Temperature: float32Ptr(0.2),
		// APIKey deliberately empty
	}

	_, err := NewService(cfg, "analyze", testLogger)
	if err == nil {
		t.Fatal("Expected error when API key is missing")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeMissingAPIKey {
		t.Errorf("Expected error code %s, got %s", errors.ErrCodeMissingAPIKey, appErr.Code)
	}
}

func TestNewServiceRejectsUnknownProvider(t *testing.T) {
	cfg := &config.OperationAIConfig{
		Provider:    "openai",
		Model:       "test-model",
		Timeout:     timePtr(30 * time.Second),
		APIKey:      "test-key",
		Temperature: float32Ptr(0.2),
	}

	_, err := NewService(cfg, "analyze", testLogger)
	if err == nil {
		t.Fatal("Expected error for unsupported provider")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidConfig {
		t.Errorf("Expected error code %s, got %s", errors.ErrCodeInvalidConfig, appErr.Code)
	}
}

func TestCircuitBreakerIntegrationWithServices(t *testing.T) {
	testOpConfig := &config.OperationAIConfig{
		Provider:    "gemini",
		Model:       "test-model",
		Timeout:     timePtr(30 * time.Second),
		APIKey:      "test-key",
		Temperature: float32Ptr(0.5),
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          45 * time.Second,
			MinRequests:      2,
			FailureThreshold: 0.8,
		},
	}

	service, err := NewService(testOpConfig, "test-op", testLogger)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	if service.config.CircuitBreaker.MaxRequests != 5 {
		t.Errorf("Expected circuit breaker max requests 5, got %d", service.config.CircuitBreaker.MaxRequests)
	}
	if service.config.CircuitBreaker.FailureThreshold != 0.8 {
		t.Errorf("Expected circuit breaker failure threshold 0.8, got %f", service.config.CircuitBreaker.FailureThreshold)
	}

	geminiProvider, ok := service.Provider.(*GeminiProvider)
	if !ok {
		t.Fatal("Service provider is not of type *GeminiProvider")
	}

	stats := geminiProvider.GetCircuitBreakerStats()

	aiOpsStats, ok := stats["ai_operations"].(map[string]any)
	if !ok {
		t.Fatal("AI operations stats should exist and be a map")
	}
	if name, _ := aiOpsStats["name"].(string); name != "AI-test-op" {
		t.Errorf("Expected circuit breaker name 'AI-test-op', got '%s'", name)
	}

	modelOpsStats, ok := stats["model_operations"].(map[string]any)
	if !ok {
		t.Fatal("Model operations stats should exist and be a map")
	}
	if name, _ := modelOpsStats["name"].(string); name != "AI-Model-test-op" {
		t.Errorf("Expected model circuit breaker name 'AI-Model-test-op', got '%s'", name)
	}

	if overallHealthy, _ := stats["overall_healthy"].(bool); !overallHealthy {
		t.Error("Circuit breaker should be healthy initially")
	}
}
