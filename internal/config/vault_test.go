package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(42.0), expected: 42},
		{name: "string value", input: "42", expected: 42},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "test/path")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestApplyAIKeyToConfig(t *testing.T) {
	config := &Config{}

	aiKey := "test-ai-key"
	applyAIKeyToConfig(config, aiKey)

	assert.Equal(t, aiKey, config.AI.APIKey)
	assert.Equal(t, aiKey, config.AI.Analyze.APIKey)
	assert.Equal(t, aiKey, config.AI.FollowUp.APIKey)
	assert.Equal(t, aiKey, config.AI.Rewrite.APIKey)
}

func TestApplyAIKeyToConfigWithExistingKeys(t *testing.T) {
	existingKey := "existing-analyze-key"
	config := &Config{
		AI: AIConfig{
			Analyze: OperationAIConfig{APIKey: existingKey},
		},
	}

	aiKey := "test-ai-key"
	applyAIKeyToConfig(config, aiKey)

	assert.Equal(t, aiKey, config.AI.APIKey)
	assert.Equal(t, existingKey, config.AI.Analyze.APIKey) // Should not overwrite
	assert.Equal(t, aiKey, config.AI.FollowUp.APIKey)
	assert.Equal(t, aiKey, config.AI.Rewrite.APIKey)
}

func TestLoadSingleCertificate(t *testing.T) {
	tests := []struct {
		name        string
		tlsData     *VaultSecret
		key         string
		expected    int
		expectValue string
	}{
		{
			name: "valid certificate content",
			tlsData: &VaultSecret{
				Data: map[string]any{"cert": "-----BEGIN CERTIFICATE-----\ntest\n-----END CERTIFICATE-----"},
			},
			key:         "cert",
			expected:    1,
			expectValue: "-----BEGIN CERTIFICATE-----\ntest\n-----END CERTIFICATE-----",
		},
		{
			name:     "empty certificate content",
			tlsData:  &VaultSecret{Data: map[string]any{"cert": ""}},
			key:      "cert",
			expected: 0,
		},
		{
			name:     "missing certificate key",
			tlsData:  &VaultSecret{Data: map[string]any{"other": "value"}},
			key:      "cert",
			expected: 0,
		},
		{
			name:     "non-string certificate value",
			tlsData:  &VaultSecret{Data: map[string]any{"cert": 123}},
			key:      "cert",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var target string
			result := loadSingleCertificate(tt.tlsData, tt.key, &target)

			assert.Equal(t, tt.expected, result)
			assert.Equal(t, tt.expectValue, target)
		})
	}
}

func TestResolveVaultToken(t *testing.T) {
	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"}, nil)
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		tokenFile := filepath.Join(tmpDir, "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, nil)
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token) // Should be trimmed
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"}, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read vault token file")
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})
}

func TestValidateTLSDeprecatedFields(t *testing.T) {
	tests := []struct {
		name        string
		tlsData     *VaultSecret
		expectError bool
		errorField  string
	}{
		{
			name: "no deprecated fields",
			tlsData: &VaultSecret{
				Data: map[string]any{"cert": "cert-content", "key": "key-content", "ca": "ca-content"},
			},
		},
		{
			name:        "deprecated cert_file field",
			tlsData:     &VaultSecret{Data: map[string]any{"cert_file": "/path/to/cert"}},
			expectError: true,
			errorField:  "cert_file",
		},
		{
			name:        "deprecated key_file field",
			tlsData:     &VaultSecret{Data: map[string]any{"key_file": "/path/to/key"}},
			expectError: true,
			errorField:  "key_file",
		},
		{
			name:        "deprecated ca_file field",
			tlsData:     &VaultSecret{Data: map[string]any{"ca_file": "/path/to/ca"}},
			expectError: true,
			errorField:  "ca_file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTLSDeprecatedFields(tt.tlsData)

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorField)
				assert.Contains(t, err.Error(), "no longer supported")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadTLSCertificateContent(t *testing.T) {
	config := &Config{}

	tlsData := &VaultSecret{
		Data: map[string]any{
			"cert": "cert-content",
			"key":  "key-content",
			"ca":   "ca-content",
		},
	}

	certCount := loadTLSCertificateContent(config, tlsData)

	assert.Equal(t, 3, certCount)
	assert.Equal(t, "cert-content", config.Server.TLS.CertContent)
	assert.Equal(t, "key-content", config.Server.TLS.KeyContent)
	assert.Equal(t, "ca-content", config.Server.TLS.CAContent)
}

func TestLoadTLSCertificateContentPartial(t *testing.T) {
	config := &Config{}

	tlsData := &VaultSecret{
		Data: map[string]any{
			"cert": "cert-content",
			// Missing key and ca
		},
	}

	certCount := loadTLSCertificateContent(config, tlsData)

	assert.Equal(t, 1, certCount)
	assert.Equal(t, "cert-content", config.Server.TLS.CertContent)
	assert.Equal(t, "", config.Server.TLS.KeyContent)
	assert.Equal(t, "", config.Server.TLS.CAContent)
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	config := &Config{
		Vault: VaultConfig{Enabled: false},
	}
	config.AI.APIKey = "ambient-key"
	config.Server.APIKeys = []string{"caller-key"}
	config.Server.TLS.CertContent = "cert-content"

	assert.NoError(t, ApplyVaultSecrets(config, nil))

	// Startup runs this unconditionally; a disabled Vault must leave the
	// loaded config untouched.
	assert.Equal(t, "ambient-key", config.AI.APIKey)
	assert.Equal(t, []string{"caller-key"}, config.Server.APIKeys)
	assert.Equal(t, "cert-content", config.Server.TLS.CertContent)
}

func TestVaultClientExtractSecretData(t *testing.T) {
	vc := &VaultClient{}

	tests := []struct {
		name        string
		secret      *api.Secret
		expectError bool
		expected    map[string]any
	}{
		{
			name: "valid KVv2 secret",
			secret: &api.Secret{
				Data: map[string]any{
					"data": map[string]any{"key1": "value1", "key2": "value2"},
				},
			},
			expected: map[string]any{"key1": "value1", "key2": "value2"},
		},
		{
			name: "missing data field",
			secret: &api.Secret{
				Data: map[string]any{"metadata": map[string]any{}},
			},
			expectError: true,
		},
		{
			name: "data field wrong type",
			secret: &api.Secret{
				Data: map[string]any{"data": "not-a-map"},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := vc.extractSecretData(tt.secret, "secret/test")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestVaultClientExtractSecretVersion(t *testing.T) {
	vc := &VaultClient{}

	tests := []struct {
		name        string
		secret      *api.Secret
		expectError bool
		expected    int64
	}{
		{
			name: "valid version as int64",
			secret: &api.Secret{
				Data: map[string]any{"metadata": map[string]any{"version": int64(42)}},
			},
			expected: 42,
		},
		{
			name: "valid version as float64",
			secret: &api.Secret{
				Data: map[string]any{"metadata": map[string]any{"version": float64(42)}},
			},
			expected: 42,
		},
		{
			name: "missing metadata field",
			secret: &api.Secret{
				Data: map[string]any{"data": map[string]any{}},
			},
			expectError: true,
		},
		{
			name: "missing version field",
			secret: &api.Secret{
				Data: map[string]any{"metadata": map[string]any{"other": "value"}},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := vc.extractSecretVersion(tt.secret, "secret/test")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
