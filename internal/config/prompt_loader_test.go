package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPromptsFromFiles(t *testing.T) {
	tempDir := t.TempDir()

	promptContent := "Test analysis system prompt"
	promptFile := filepath.Join(tempDir, "system.analyze.md")

	if err := os.WriteFile(promptFile, []byte(promptContent), 0600); err != nil {
		t.Fatalf("Failed to create test prompt file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			Analyze: OperationAIConfig{
				SystemPromptFile: promptFile,
			},
		},
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	if got := GetLoadedSystemPrompt(OperationAnalyze); got != promptContent {
		t.Errorf("Expected loaded system prompt %q, got %q", promptContent, got)
	}

	if got := GetLoadedSystemPrompt(OperationRewrite); got != "" {
		t.Errorf("Expected no rewrite prompt override, got %q", got)
	}

	// File path must be preserved on the config
	if config.AI.Analyze.SystemPromptFile != promptFile {
		t.Error("Expected system prompt file path to be preserved")
	}
}

func TestValidatePromptFiles(t *testing.T) {
	tempDir := t.TempDir()

	validFile := filepath.Join(tempDir, "valid.md")
	if err := os.WriteFile(validFile, []byte("Valid content"), 0600); err != nil {
		t.Fatalf("Failed to create valid test file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			FollowUp: OperationAIConfig{
				SystemPromptFile: validFile,
			},
		},
	}

	if err := config.validatePromptFiles(); err != nil {
		t.Errorf("Expected validation to pass for valid file, got error: %v", err)
	}

	config.AI.FollowUp.SystemPromptFile = filepath.Join(tempDir, "nonexistent.md")

	if err := config.validatePromptFiles(); err == nil {
		t.Error("Expected validation to fail for non-existent file")
	}
}

func TestLoadPromptFromFile(t *testing.T) {
	tempDir := t.TempDir()

	content := "Test prompt content"
	testFile := filepath.Join(tempDir, "test.md")
	if err := os.WriteFile(testFile, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	loadedContent, err := loadPromptFromFile(testFile, OperationAnalyze)
	if err != nil {
		t.Fatalf("Failed to load prompt from file: %v", err)
	}

	if loadedContent != content {
		t.Errorf("Expected content %q, got %q", content, loadedContent)
	}

	emptyFile := filepath.Join(tempDir, "empty.md")
	if err := os.WriteFile(emptyFile, []byte(""), 0600); err != nil {
		t.Fatalf("Failed to create empty test file: %v", err)
	}

	if _, err := loadPromptFromFile(emptyFile, OperationAnalyze); err == nil {
		t.Error("Expected error for empty file")
	}

	if _, err := loadPromptFromFile(filepath.Join(tempDir, "nonexistent.md"), OperationAnalyze); err == nil {
		t.Error("Expected error for non-existent file")
	}
}
