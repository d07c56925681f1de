package ai

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"jobfit/internal/config"

	"google.golang.org/api/googleapi"
)

func TestIndependentCircuitBreakerConfigurations(t *testing.T) {
	// Each operation gets its own circuit breaker with its own settings.

	analyzeConfig := &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "gemini-2.5-pro",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}

	followUpConfig := &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "gemini-2.0-flash-lite",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,                // Different from analyze
			Interval:         30 * time.Second, // Different from analyze
			Timeout:          45 * time.Second, // Different from analyze
			MinRequests:      2,                // Different from analyze
			FailureThreshold: 0.7,              // Different from analyze
		},
	}

	rewriteConfig := &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "gemini-2.5-flash",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      4,                // Different from others
			Interval:         90 * time.Second, // Different from others
			Timeout:          75 * time.Second, // Different from others
			MinRequests:      5,                // Different from others
			FailureThreshold: 0.5,              // Different from others
		},
	}

	analyzeCB := NewAICircuitBreaker("Analyze", analyzeConfig, nil)
	followUpCB := NewAICircuitBreaker("FollowUp", followUpConfig, nil)
	rewriteCB := NewAICircuitBreaker("Rewrite", rewriteConfig, nil)

	t.Run("AnalyzeCircuitBreaker", func(t *testing.T) {
		stats := analyzeCB.GetStats()

		name, ok := stats["name"].(string)
		if !ok {
			t.Fatal("Circuit breaker name not found")
		}

		expectedName := "AI-Analyze"
		if name != expectedName {
			t.Errorf("Expected circuit breaker name '%s', got '%s'", expectedName, name)
		}

		state, ok := stats["state"].(string)
		if !ok {
			t.Fatal("Circuit breaker state not found")
		}
		if state != "closed" {
			t.Errorf("Expected initial state 'closed', got '%s'", state)
		}

		enabled, ok := stats["enabled"].(bool)
		if !ok {
			t.Fatal("Circuit breaker enabled status not found")
		}
		if !enabled {
			t.Error("Circuit breaker should be enabled")
		}
	})

	t.Run("FollowUpCircuitBreaker", func(t *testing.T) {
		stats := followUpCB.GetStats()

		name, ok := stats["name"].(string)
		if !ok {
			t.Fatal("Circuit breaker name not found")
		}

		expectedName := "AI-FollowUp"
		if name != expectedName {
			t.Errorf("Expected circuit breaker name '%s', got '%s'", expectedName, name)
		}
	})

	t.Run("RewriteCircuitBreaker", func(t *testing.T) {
		stats := rewriteCB.GetStats()

		name, ok := stats["name"].(string)
		if !ok {
			t.Fatal("Circuit breaker name not found")
		}

		expectedName := "AI-Rewrite"
		if name != expectedName {
			t.Errorf("Expected circuit breaker name '%s', got '%s'", expectedName, name)
		}
	})

	t.Run("IndependentInstances", func(t *testing.T) {
		if analyzeCB == followUpCB {
			t.Error("Analyze and follow-up circuit breakers should be different instances")
		}
		if analyzeCB == rewriteCB {
			t.Error("Analyze and rewrite circuit breakers should be different instances")
		}
		if followUpCB == rewriteCB {
			t.Error("Follow-up and rewrite circuit breakers should be different instances")
		}
	})

	t.Run("IndependentHealthStates", func(t *testing.T) {
		if !analyzeCB.IsHealthy() {
			t.Error("Analyze circuit breaker should be healthy initially")
		}
		if !followUpCB.IsHealthy() {
			t.Error("Follow-up circuit breaker should be healthy initially")
		}
		if !rewriteCB.IsHealthy() {
			t.Error("Rewrite circuit breaker should be healthy initially")
		}
	})
}

func TestCircuitBreakerConfigurationMapping(t *testing.T) {
	customConfig := &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "test-model",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      10,
			Interval:         120 * time.Second,
			Timeout:          90 * time.Second,
			MinRequests:      5,
			FailureThreshold: 0.8,
		},
	}

	cb := NewAICircuitBreaker("Test", customConfig, nil)

	if cb == nil {
		t.Fatal("Circuit breaker should not be nil")
	}

	stats := cb.GetStats()
	if stats == nil {
		t.Fatal("Circuit breaker stats should not be nil")
	}

	name, ok := stats["name"].(string)
	if !ok {
		t.Fatal("Circuit breaker name not found")
	}

	expectedName := "AI-Test"
	if name != expectedName {
		t.Errorf("Expected circuit breaker name '%s', got '%s'", expectedName, name)
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	disabledConfig := &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "test-model",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled: false, // Disabled
		},
	}

	cb := NewAICircuitBreaker("Disabled", disabledConfig, nil)

	// Should return nil when disabled
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}
}

func TestCountsAsBreakerFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("connection reset"), expected: true},
		{name: "bad request", err: &googleapi.Error{Code: http.StatusBadRequest}, expected: false},
		{name: "unauthorized", err: &googleapi.Error{Code: http.StatusUnauthorized}, expected: false},
		{name: "not found", err: &googleapi.Error{Code: http.StatusNotFound}, expected: false},
		{name: "rate limited", err: &googleapi.Error{Code: http.StatusTooManyRequests}, expected: true},
		{name: "server error", err: &googleapi.Error{Code: http.StatusInternalServerError}, expected: true},
		{name: "service unavailable", err: &googleapi.Error{Code: http.StatusServiceUnavailable}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countsAsBreakerFailure(tt.err); got != tt.expected {
				t.Errorf("countsAsBreakerFailure(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}
