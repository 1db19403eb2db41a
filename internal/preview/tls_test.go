package preview

import "testing"

func TestResolveTLS_NothingSet(t *testing.T) {
	t.Setenv("PROEKTSITE_TLS_CERT", "")
	t.Setenv("PROEKTSITE_TLS_KEY", "")

	if cfg := ResolveTLS("", ""); cfg.Enabled() {
		t.Error("TLS should not be enabled without cert and key")
	}
}

func TestResolveTLS_OnlyCert(t *testing.T) {
	t.Setenv("PROEKTSITE_TLS_CERT", "/path/to/cert.pem")
	t.Setenv("PROEKTSITE_TLS_KEY", "")

	if cfg := ResolveTLS("", ""); cfg != nil {
		t.Error("TLS should not be enabled when only cert is set")
	}
}

func TestResolveTLS_ConfigOverridesEnv(t *testing.T) {
	t.Setenv("PROEKTSITE_TLS_CERT", "/env/cert.pem")
	t.Setenv("PROEKTSITE_TLS_KEY", "/env/key.pem")

	cfg := ResolveTLS("/cfg/cert.pem", "")
	if !cfg.Enabled() {
		t.Fatal("TLS should be enabled")
	}
	if cfg.CertFile != "/cfg/cert.pem" {
		t.Errorf("CertFile = %q, want %q", cfg.CertFile, "/cfg/cert.pem")
	}
	if cfg.KeyFile != "/env/key.pem" {
		t.Errorf("KeyFile = %q, want %q", cfg.KeyFile, "/env/key.pem")
	}
}

func TestTLSConfigLoad(t *testing.T) {
	var disabled *TLSConfig
	if cfg, err := disabled.Load(); cfg != nil || err != nil {
		t.Errorf("disabled Load = %v, %v", cfg, err)
	}

	missing := &TLSConfig{CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"}
	if _, err := missing.Load(); err == nil {
		t.Error("Load should fail when cert files don't exist")
	}
}
