package preview

import (
	"crypto/tls"
	"fmt"
	"os"
)

// TLSConfig holds certificate paths for the preview server.
type TLSConfig struct {
	CertFile string
	KeyFile  string
}

// ResolveTLS returns the configured paths, falling back to
// PROEKTSITE_TLS_CERT and PROEKTSITE_TLS_KEY. It returns nil when either is
// missing.
func ResolveTLS(certFile, keyFile string) *TLSConfig {
	if certFile == "" {
		certFile = os.Getenv("PROEKTSITE_TLS_CERT")
	}
	if keyFile == "" {
		keyFile = os.Getenv("PROEKTSITE_TLS_KEY")
	}
	if certFile == "" || keyFile == "" {
		return nil
	}
	return &TLSConfig{CertFile: certFile, KeyFile: keyFile}
}

// Enabled reports whether both paths are set.
func (c *TLSConfig) Enabled() bool {
	return c != nil && c.CertFile != "" && c.KeyFile != ""
}

// Load reads the key pair into a tls.Config.
func (c *TLSConfig) Load() (*tls.Config, error) {
	if !c.Enabled() {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load TLS certificate: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
