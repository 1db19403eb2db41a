package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const landing = "../../internal/project/testdata/landing.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestExportToStdout(t *testing.T) {
	out, err := run(t, "export", landing, "-o", "-", "--title", "Landing", "--no-tailwind")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Landing</title>")
	assert.Contains(t, out, `id="page-home"`)
	assert.Contains(t, out, "window.PROJECT_DATA = ")
	assert.NotContains(t, out, "cdn.tailwindcss.com")
}

func TestExportUsesConfig(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "site.html")
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(
		"version: 1\nsite:\n  project: "+landing+"\nexport:\n  title: From Config\n  output: "+output+"\n"), 0o644))

	_, err := run(t, "--config", cfg, "export")
	require.NoError(t, err)

	b, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(b), "<title>From Config</title>")
}

func TestExportWithoutProject(t *testing.T) {
	_, err := run(t, "export")
	assert.ErrorContains(t, err, "no project given")
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", landing)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (2 pages, 3 elements)")

	broken := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{
		"version": 1, "width": 100, "height": 100,
		"pages": [{"id": "p"}],
		"elements": [{"id": "e", "type": "BUTTON", "pageId": "missing", "scripts": ["nope"]}]
	}`), 0o644))

	out, err = run(t, "validate", broken)
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "2 issue(s)")
	assert.Contains(t, out, "unknown_page")
	assert.Contains(t, out, "unknown_script")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "proektsite version "))
}

func TestBadLogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "export", landing, "-o", "-")
	assert.Error(t, err)
}
