package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Operation names used when resolving prompt overrides.
const (
	OperationAnalyze  = "analyze"
	OperationFollowUp = "followup"
	OperationRewrite  = "rewrite"
)

var (
	loadedPrompts   map[string]string
	loadedPromptsMu sync.RWMutex
)

// GetLoadedSystemPrompt returns the system prompt loaded from a file for the
// given operation, or "" when no file override was configured.
func GetLoadedSystemPrompt(operation string) string {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts[operation]
}

// loadPromptsFromFiles loads system prompt overrides from external files if
// file paths are specified.
func (c *Config) loadPromptsFromFiles() error {
	overrides := map[string]string{
		OperationAnalyze:  c.AI.Analyze.SystemPromptFile,
		OperationFollowUp: c.AI.FollowUp.SystemPromptFile,
		OperationRewrite:  c.AI.Rewrite.SystemPromptFile,
	}

	loaded := make(map[string]string)
	for operation, filePath := range overrides {
		if filePath == "" {
			continue
		}

		content, err := loadPromptFromFile(filePath, operation)
		if err != nil {
			return fmt.Errorf("failed to load %s system prompt: %w", operation, err)
		}
		loaded[operation] = content
	}

	loadedPromptsMu.Lock()
	loadedPrompts = loaded
	loadedPromptsMu.Unlock()

	if len(loaded) == 0 {
		log.Println("[CONFIG] No custom prompt files loaded - using config values or built-in defaults")
	} else {
		log.Printf("[CONFIG] Custom prompt files loaded: %d", len(loaded))
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling
func loadPromptFromFile(filePath, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", operation, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s prompt file not found: %s", operation, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", operation, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", operation, absPath)
	}

	log.Printf("[CONFIG] Loaded %s system prompt from file: %s (%d characters)",
		operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, operation string) {
		if filePath == "" {
			return
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s prompt: %s", operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s prompt file not found: %s", operation, absPath))
		}
	}

	validateFile(c.AI.Analyze.SystemPromptFile, OperationAnalyze)
	validateFile(c.AI.FollowUp.SystemPromptFile, OperationFollowUp)
	validateFile(c.AI.Rewrite.SystemPromptFile, OperationRewrite)

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}
