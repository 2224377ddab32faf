package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// Credential resolution tests mutate the environment and HOME, so they must
// not run in parallel with each other.

// TestResolveTokenEnvWins verifies that the environment variable takes
// precedence over every other source.
func TestResolveTokenEnvWins(t *testing.T) {
	t.Setenv(TokenEnvVar, "  env-token \n")
	t.Setenv("HOME", t.TempDir())

	tok, err := ResolveToken(&Config{API: APIConfig{Token: "config-token"}})
	if err != nil {
		t.Fatalf("ResolveToken() error = %v", err)
	}
	if tok != "env-token" {
		t.Errorf("token = %q, want %q (trimmed env value)", tok, "env-token")
	}
}

// TestResolveTokenUserFile verifies the user-level token file source.
func TestResolveTokenUserFile(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "crmgate")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "token"), []byte("file-token\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tok, err := ResolveToken(&Config{})
	if err != nil {
		t.Fatalf("ResolveToken() error = %v", err)
	}
	if tok != "file-token" {
		t.Errorf("token = %q, want %q", tok, "file-token")
	}
}

// TestResolveTokenWorkingDirFile verifies the working-directory token file
// source.
func TestResolveTokenWorkingDirFile(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".crmgate-token"), []byte("cwd-token"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	tok, err := ResolveToken(&Config{})
	if err != nil {
		t.Fatalf("ResolveToken() error = %v", err)
	}
	if tok != "cwd-token" {
		t.Errorf("token = %q, want %q", tok, "cwd-token")
	}
}

// TestResolveTokenConfigFallback verifies that the config file token is used
// when no other source yields a value.
func TestResolveTokenConfigFallback(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	tok, err := ResolveToken(&Config{API: APIConfig{Token: " config-token "}})
	if err != nil {
		t.Fatalf("ResolveToken() error = %v", err)
	}
	if tok != "config-token" {
		t.Errorf("token = %q, want %q", tok, "config-token")
	}
}

// TestResolveTokenMissing verifies that the absence of every source is fatal.
func TestResolveTokenMissing(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, err := ResolveToken(&Config{})
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("ResolveToken() error = %v, want ErrNoToken", err)
	}
}
