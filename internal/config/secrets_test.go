package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSecret(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestResolveSecret(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		file    *string
		want    string
		wantErr bool
	}{
		{name: "env only", env: "env-value", want: "env-value"},
		{name: "file only", file: ptr("file-value\n"), want: "file-value"},
		{name: "file wins over env", env: "env-value", file: ptr("file-value"), want: "file-value"},
		{name: "neither set", want: ""},
		{name: "trims whitespace", file: ptr("  secret-value  \n\n"), want: "secret-value"},
		{name: "empty file", file: ptr(""), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const envName = "PROEKTSITE_TEST_SECRET"
			t.Setenv(envName, tt.env)
			t.Setenv(envName+"_FILE", "")
			if tt.file != nil {
				t.Setenv(envName+"_FILE", writeSecret(t, *tt.file))
			}

			value, err := ResolveSecret(envName)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if value != tt.want {
				t.Errorf("got %q, want %q", value, tt.want)
			}
		})
	}
}

func TestResolveSecret_FileNotFound(t *testing.T) {
	t.Setenv("PROEKTSITE_TEST_MISSING_FILE", "/nonexistent/path/to/secret")
	if _, err := ResolveSecret("PROEKTSITE_TEST_MISSING"); err == nil {
		t.Error("expected error when file does not exist")
	}
}

func TestResolveCredentials(t *testing.T) {
	t.Setenv("PROEKTSITE_TEST_ADMIN_USER", "admin")
	t.Setenv("PROEKTSITE_TEST_ADMIN_PASS_FILE", writeSecret(t, "s3cret\n"))

	creds, err := ResolveCredentials("PROEKTSITE_TEST_ADMIN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.User != "admin" || creds.Password != "s3cret" || !creds.Set() {
		t.Errorf("unexpected credentials %+v", creds)
	}

	if (Credentials{User: "only-user"}).Set() {
		t.Error("expected half-configured credentials to be unset")
	}
}

func ptr(s string) *string { return &s }
