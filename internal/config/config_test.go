package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestConfig_GetPlatform(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name:     "explicit platform",
			config:   &Config{Platform: "windows"},
			expected: "windows",
		},
		{
			name:     "explicit platform is case insensitive",
			config:   &Config{Platform: " MacOS "},
			expected: "macos",
		},
		{
			name:     "host platform",
			config:   &Config{},
			expected: HostPlatform(runtime.GOOS),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.GetPlatform()
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestHostPlatform(t *testing.T) {
	tests := map[string]string{
		"linux":   "linux",
		"windows": "windows",
		"darwin":  "macos",
	}
	for goos, expected := range tests {
		if got := HostPlatform(goos); got != expected {
			t.Errorf("HostPlatform(%q) = %q, expected %q", goos, got, expected)
		}
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.TestCasePattern != DefaultTestCasePattern {
		t.Errorf("expected TestCasePattern %s, got %s", DefaultTestCasePattern, cfg.TestCasePattern)
	}

	if cfg.OutputTailBytes != DefaultOutputTailBytes {
		t.Errorf("expected OutputTailBytes %d, got %d", DefaultOutputTailBytes, cfg.OutputTailBytes)
	}

	if len(cfg.PathsToIgnore) != 0 {
		t.Errorf("expected no paths to ignore, got %v", cfg.PathsToIgnore)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instcheck.yaml")
	content := `testcase_pattern: "testcase.ini"
prefix: /opt/installed
interpreter: sh
record: true
paths_to_ignore:
  - payload
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TestCasePattern != "testcase.ini" {
		t.Errorf("expected testcase.ini, got %s", cfg.TestCasePattern)
	}
	if cfg.Prefix != "/opt/installed" {
		t.Errorf("expected prefix /opt/installed, got %s", cfg.Prefix)
	}
	if !cfg.Record {
		t.Error("expected record to be enabled")
	}
	if len(cfg.PathsToIgnore) != 1 || cfg.PathsToIgnore[0] != "payload" {
		t.Errorf("expected paths to ignore [payload], got %v", cfg.PathsToIgnore)
	}
	// Unset keys keep their defaults.
	if cfg.ManifestPattern != DefaultManifestPattern {
		t.Errorf("expected default manifest pattern, got %s", cfg.ManifestPattern)
	}

	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := LoadFile("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TestCasePattern != DefaultTestCasePattern {
			t.Errorf("expected default pattern, got %s", cfg.TestCasePattern)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		os.WriteFile(bad, []byte("prefix: [unterminated"), 0644)
		if _, err := LoadFile(bad); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}

func TestConfig_LoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("INSTCHECK_PLATFORM=windows\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("INSTCHECK_PLATFORM", "")
	os.Unsetenv("INSTCHECK_PLATFORM")
	t.Setenv("INSTCHECK_INTERPRETER", "bash")

	cfg := New()
	if err := cfg.LoadEnv(envFile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Platform != "windows" {
		t.Errorf("expected platform from .env, got %q", cfg.Platform)
	}
	if cfg.Interpreter != "bash" {
		t.Errorf("expected interpreter from environment, got %q", cfg.Interpreter)
	}

	t.Run("missing env file is not an error", func(t *testing.T) {
		if err := New().LoadEnv(filepath.Join(dir, "nope.env")); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestConfig_ApplyFlags(t *testing.T) {
	cfg := New()
	cfg.Prefix = "/from/file"
	cfg.Platform = "linux"

	cfg.ApplyFlags(Flags{Platform: "macos", FailExit: true})

	if cfg.Prefix != "/from/file" {
		t.Errorf("unset flag should keep file value, got %s", cfg.Prefix)
	}
	if cfg.Platform != "macos" {
		t.Errorf("expected flag platform, got %s", cfg.Platform)
	}
	if !cfg.FailExit {
		t.Error("expected fail-exit to be enabled")
	}
}
