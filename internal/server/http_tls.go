package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"jobfit/internal/errors"
	"jobfit/internal/observability"

	"github.com/fsnotify/fsnotify"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// configureTLS sets up TLS configuration based on the mode
func (s *Server) configureTLS(httpServer *http.Server, om *observability.ObservabilityManager) error {
	addr := httpServer.Addr

	switch s.TLSConfig.Mode {
	case "server":
		fmt.Printf("Starting server with HTTPS (server-only TLS) on https://%s\n", addr)
		fmt.Println("TLS mode: Server-only (no client certificates required)")
	case "mutual":
		fmt.Printf("Starting server with mTLS (mutual TLS) on https://%s\n", addr)
		fmt.Println("TLS mode: Mutual (client certificates required)")
	case "disabled":
		fmt.Printf("Starting server on http://%s\n", addr)
		fmt.Println("TLS mode: Disabled (HTTP only)")
		return nil
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.TLSConfig.Mode)
	}

	if err := s.setupCertReloader(om); err != nil {
		return err
	}

	tlsConfig, err := s.buildTLSConfig()
	if err != nil {
		return fmt.Errorf("failed to set up TLS: %w", err)
	}
	httpServer.TLSConfig = tlsConfig

	return nil
}

// setupCertReloader starts certificate hot-reload when enabled. Reload only
// works for file-based certificates; content loaded from Vault is static for
// the lifetime of the process.
func (s *Server) setupCertReloader(om *observability.ObservabilityManager) error {
	if !s.TLSConfig.Reload.Enabled {
		return nil
	}

	if s.TLSConfig.CertFile == "" || s.TLSConfig.KeyFile == "" {
		s.Logger.Warn("Certificate hot-reload enabled but certificates are not file-based, skipping")
		return nil
	}

	reloader, err := NewCertReloader(
		s.TLSConfig.CertFile,
		s.TLSConfig.KeyFile,
		s.TLSConfig.Reload.DebounceDelay,
		om,
		s.Logger,
	)
	if err != nil {
		return fmt.Errorf("failed to start certificate reloader: %w", err)
	}
	s.CertReloader = reloader

	fmt.Println("TLS certificate hot-reload: ENABLED")

	return nil
}

// buildTLSConfig creates the TLS configuration
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion: s.minTLSVersion(),
	}

	if s.CertReloader != nil {
		tlsConfig.GetCertificate = s.CertReloader.GetCertificate
	} else {
		cert, err := s.loadServerCertificate()
		if err != nil {
			return nil, err
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if s.TLSConfig.Mode == "mutual" {
		caCertPool, err := s.loadCACertificatePool()
		if err != nil {
			return nil, err
		}
		tlsConfig.ClientCAs = caCertPool
		tlsConfig.ClientAuth = s.getClientAuthPolicy()
	} else {
		tlsConfig.ClientAuth = tls.NoClientCert
	}

	return tlsConfig, nil
}

// minTLSVersion maps the configured minimum version string to a tls constant
func (s *Server) minTLSVersion() uint16 {
	switch s.TLSConfig.MinVersion {
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}

// loadServerCertificate loads the server certificate from content or files
func (s *Server) loadServerCertificate() (tls.Certificate, error) {
	if s.TLSConfig.CertContent != "" && s.TLSConfig.KeyContent != "" {
		// Certificate content, typically supplied by Vault
		cert, err := tls.X509KeyPair([]byte(s.TLSConfig.CertContent), []byte(s.TLSConfig.KeyContent))
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from content: %w", err)
		}
		return cert, nil
	}

	if s.TLSConfig.CertFile != "" && s.TLSConfig.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from files: %w", err)
		}
		return cert, nil
	}

	return tls.Certificate{}, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
}

// loadCACertificatePool loads the CA certificate pool for client verification
func (s *Server) loadCACertificatePool() (*x509.CertPool, error) {
	var caCert []byte

	switch {
	case s.TLSConfig.CAContent != "":
		caCert = []byte(s.TLSConfig.CAContent)
	case s.TLSConfig.CAFile != "":
		content, err := os.ReadFile(s.TLSConfig.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		caCert = content
	default:
		return nil, fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
	}

	caCertPool := x509.NewCertPool()
	if ok := caCertPool.AppendCertsFromPEM(caCert); !ok {
		return nil, fmt.Errorf("failed to append CA cert")
	}

	return caCertPool, nil
}

// getClientAuthPolicy returns the appropriate client authentication policy
func (s *Server) getClientAuthPolicy() tls.ClientAuthType {
	switch s.TLSConfig.ClientAuthPolicy {
	case "require":
		return tls.RequireAndVerifyClientCert
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert // Default for mutual TLS
	}
}

// CertReloadMetrics tracks certificate reload activity
type CertReloadMetrics struct {
	ReloadCount        int64
	ReloadSuccessCount int64
	ReloadFailureCount int64
	LastReloadTime     time.Time
	LastReloadSuccess  bool
	LastReloadError    string
}

// CertReloader watches a certificate and key file and swaps in new material
// without a server restart. A failed reload keeps serving the previous pair.
type CertReloader struct {
	mu       sync.RWMutex
	cert     *tls.Certificate
	leaf     *x509.Certificate
	certFile string
	keyFile  string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	metrics  CertReloadMetrics
	om       *observability.ObservabilityManager
	logger   *errors.Logger
	done     chan struct{}
}

// NewCertReloader loads the initial certificate and starts watching for changes
func NewCertReloader(certFile, keyFile string, debounce time.Duration, om *observability.ObservabilityManager, logger *errors.Logger) (*CertReloader, error) {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	cr := &CertReloader{
		certFile: certFile,
		keyFile:  keyFile,
		debounce: debounce,
		om:       om,
		logger:   logger,
		done:     make(chan struct{}),
	}

	if err := cr.load(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	cr.watcher = watcher

	// Watch the parent directories rather than the files themselves so
	// atomic replacements (rename-over, Kubernetes secret updates) are seen
	dirs := map[string]bool{
		filepath.Dir(certFile): true,
		filepath.Dir(keyFile):  true,
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeErr := watcher.Close()
			if closeErr != nil && logger != nil {
				logger.LogError(closeErr, "Failed to close file watcher")
			}
			return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	go cr.watchLoop()

	return cr, nil
}

// load reads the key pair from disk and swaps it in
func (cr *CertReloader) load() error {
	cert, err := tls.LoadX509KeyPair(cr.certFile, cr.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load key pair: %w", err)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse leaf certificate: %w", err)
	}

	cr.mu.Lock()
	cr.cert = &cert
	cr.leaf = leaf
	cr.mu.Unlock()

	return nil
}

// watchLoop processes file system events with debouncing
func (cr *CertReloader) watchLoop() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case event, ok := <-cr.watcher.Events:
			if !ok {
				return
			}
			if !cr.isRelevantEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(cr.debounce)
				timerC = timer.C
			} else {
				timer.Reset(cr.debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			cr.reload()
		case err, ok := <-cr.watcher.Errors:
			if !ok {
				return
			}
			if cr.logger != nil {
				cr.logger.LogError(err, "Certificate watcher error")
			}
		case <-cr.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent reports whether the event touches a watched certificate file
func (cr *CertReloader) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == filepath.Clean(cr.certFile) || name == filepath.Clean(cr.keyFile)
}

// reload attempts to load new certificate material and records the outcome
func (cr *CertReloader) reload() {
	err := cr.load()

	cr.mu.Lock()
	cr.metrics.ReloadCount++
	cr.metrics.LastReloadTime = time.Now()
	if err != nil {
		cr.metrics.ReloadFailureCount++
		cr.metrics.LastReloadSuccess = false
		cr.metrics.LastReloadError = err.Error()
	} else {
		cr.metrics.ReloadSuccessCount++
		cr.metrics.LastReloadSuccess = true
		cr.metrics.LastReloadError = ""
	}
	cr.mu.Unlock()

	cr.recordObservabilityMetrics(err == nil)

	if err != nil {
		if cr.logger != nil {
			cr.logger.LogError(err, "Failed to reload TLS certificates, keeping previous pair")
		}
		return
	}

	if cr.logger != nil {
		cr.logger.Info("TLS certificates reloaded successfully",
			"cert_file", cr.certFile)
	}
}

// recordObservabilityMetrics publishes reload count and expiry gauge
func (cr *CertReloader) recordObservabilityMetrics(success bool) {
	if cr.om == nil {
		return
	}

	m := cr.om.GetMetrics()
	ctx := context.Background()

	if m.CertReloadCount != nil {
		m.CertReloadCount.Add(ctx, 1, metric.WithAttributes(
			attribute.Bool("success", success)))
	}

	if success && m.CertExpiryTime != nil {
		cr.mu.RLock()
		leaf := cr.leaf
		cr.mu.RUnlock()
		if leaf != nil {
			m.CertExpiryTime.Record(ctx, time.Until(leaf.NotAfter).Seconds())
		}
	}
}

// GetCertificate returns the current certificate for TLS handshakes
func (cr *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.cert == nil {
		return nil, fmt.Errorf("no certificate loaded")
	}
	return cr.cert, nil
}

// CheckExpiry returns the time remaining until the current certificate expires
func (cr *CertReloader) CheckExpiry() (time.Duration, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.leaf == nil {
		return 0, fmt.Errorf("no certificate loaded")
	}
	return time.Until(cr.leaf.NotAfter), nil
}

// WatchedFiles returns the certificate files under watch
func (cr *CertReloader) WatchedFiles() []string {
	return []string{cr.certFile, cr.keyFile}
}

// GetMetrics returns a snapshot of reload metrics
func (cr *CertReloader) GetMetrics() CertReloadMetrics {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.metrics
}

// Stop shuts down the file watcher
func (cr *CertReloader) Stop() error {
	close(cr.done)
	return cr.watcher.Close()
}
