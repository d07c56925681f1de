package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTLSMode(t *testing.T) {
	tests := []struct {
		name        string
		tls         TLSConfig
		expectError bool
		errorText   string
	}{
		{
			name: "disabled mode always valid",
			tls:  TLSConfig{Mode: "disabled"},
		},
		{
			name: "server mode with cert files",
			tls: TLSConfig{
				Mode:     "server",
				CertFile: "/path/to/cert.pem",
				KeyFile:  "/path/to/key.pem",
			},
		},
		{
			name: "server mode with cert content",
			tls: TLSConfig{
				Mode:        "server",
				CertContent: "cert-content",
				KeyContent:  "key-content",
			},
		},
		{
			name:        "server mode missing cert and key",
			tls:         TLSConfig{Mode: "server"},
			expectError: true,
			errorText:   "certificate and key are required",
		},
		{
			name: "mutual mode with CA file",
			tls: TLSConfig{
				Mode:     "mutual",
				CertFile: "/path/to/cert.pem",
				KeyFile:  "/path/to/key.pem",
				CAFile:   "/path/to/ca.pem",
			},
		},
		{
			name: "mutual mode missing CA",
			tls: TLSConfig{
				Mode:     "mutual",
				CertFile: "/path/to/cert.pem",
				KeyFile:  "/path/to/key.pem",
			},
			expectError: true,
			errorText:   "CA certificate is required",
		},
		{
			name:        "invalid mode",
			tls:         TLSConfig{Mode: "bogus"},
			expectError: true,
			errorText:   "invalid TLS mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTLSMode(tt.tls)

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorText)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMutualModeTLSCARules(t *testing.T) {
	base := TLSConfig{
		Mode:     "mutual",
		CertFile: "/path/to/cert.pem",
		KeyFile:  "/path/to/key.pem",
	}

	t.Run("CA from file", func(t *testing.T) {
		tls := base
		tls.CAFile = "/path/to/ca.pem"
		assert.NoError(t, validateMutualModeTLS(tls))
	})

	t.Run("CA from content", func(t *testing.T) {
		tls := base
		tls.CAContent = "ca-content"
		assert.NoError(t, validateMutualModeTLS(tls))
	})

	t.Run("both CA sources rejected", func(t *testing.T) {
		tls := base
		tls.CAFile = "/path/to/ca.pem"
		tls.CAContent = "ca-content"
		err := validateMutualModeTLS(tls)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "both caFile and caContent")
	})

	t.Run("no CA source rejected", func(t *testing.T) {
		err := validateMutualModeTLS(base)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "CA certificate is required")
	})
}

func TestValidateNoDuplicateCertSources(t *testing.T) {
	tests := []struct {
		name        string
		tls         TLSConfig
		expectError bool
		errorText   string
	}{
		{
			name: "file sources only",
			tls:  TLSConfig{CertFile: "/cert.pem", KeyFile: "/key.pem"},
		},
		{
			name: "content sources only",
			tls:  TLSConfig{CertContent: "cert", KeyContent: "key"},
		},
		{
			name:        "duplicate cert source",
			tls:         TLSConfig{CertFile: "/cert.pem", CertContent: "cert"},
			expectError: true,
			errorText:   "both certFile and certContent",
		},
		{
			name:        "duplicate key source",
			tls:         TLSConfig{KeyFile: "/key.pem", KeyContent: "key"},
			expectError: true,
			errorText:   "both keyFile and keyContent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateNoDuplicateCertSources(tt.tls)

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorText)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateClientAuthPolicy(t *testing.T) {
	for _, policy := range []string{"require", "request", "verify", ""} {
		assert.NoError(t, validateClientAuthPolicy(TLSConfig{ClientAuthPolicy: policy}), "policy %q", policy)
	}

	err := validateClientAuthPolicy(TLSConfig{ClientAuthPolicy: "optional"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid clientAuthPolicy")
}

func TestValidateTLSVersion(t *testing.T) {
	for _, version := range []string{"", "1.2", "1.3"} {
		assert.NoError(t, validateTLSVersion(TLSConfig{MinVersion: version}), "version %q", version)
	}

	err := validateTLSVersion(TLSConfig{MinVersion: "1.1"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid TLS minVersion")
}

func TestValidateTLSConfigIntegration(t *testing.T) {
	tests := []struct {
		name        string
		tls         TLSConfig
		expectError bool
	}{
		{
			name: "complete valid server config",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "/cert.pem",
				KeyFile:    "/key.pem",
				MinVersion: "1.3",
			},
		},
		{
			name: "complete valid mutual config",
			tls: TLSConfig{
				Mode:             "mutual",
				CertContent:      "cert",
				KeyContent:       "key",
				CAContent:        "ca",
				ClientAuthPolicy: "require",
				MinVersion:       "1.2",
			},
		},
		{
			name: "valid mode with invalid version",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "/cert.pem",
				KeyFile:    "/key.pem",
				MinVersion: "1.0",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{Server: ServerConfig{TLS: tt.tls}}

			err := config.ValidateTLSConfig()

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
