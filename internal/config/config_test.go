package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Schema != CurrentConfigSchema {
		t.Errorf("Schema = %d, want %d", cfg.Schema, CurrentConfigSchema)
	}

	expectedDir := filepath.Join("emails", "previews")
	if cfg.PreviewsDir != expectedDir {
		t.Errorf("PreviewsDir = %q, want %q", cfg.PreviewsDir, expectedDir)
	}

	if !cfg.Compact {
		t.Error("Compact should default to true")
	}

	if cfg.Separator != "/" {
		t.Errorf("Separator = %q, want %q", cfg.Separator, "/")
	}

	if len(cfg.Extensions) == 0 {
		t.Error("Extensions should not be empty")
	}
}

func TestDefaultCacheDirWithXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	cfg := DefaultConfig()
	expected := filepath.Join("/tmp/xdg-cache", "pv")
	if cfg.CacheDir != expected {
		t.Errorf("CacheDir = %q, want %q", cfg.CacheDir, expected)
	}
}

func TestDefaultCacheDirWithoutXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	home, _ := os.UserHomeDir()
	cfg := DefaultConfig()
	expected := filepath.Join(home, ".cache", "pv")
	if cfg.CacheDir != expected {
		t.Errorf("CacheDir = %q, want %q", cfg.CacheDir, expected)
	}
}

func TestConfigDerivedPaths(t *testing.T) {
	cfg := &Config{CacheDir: "/var/cache/pv", PreviewsDir: "/src/emails/previews"}

	if cfg.CachePath() != "/var/cache/pv/scan.db" {
		t.Errorf("CachePath() = %q", cfg.CachePath())
	}
	if cfg.LogPath() != "/var/cache/pv/pv.log" {
		t.Errorf("LogPath() = %q", cfg.LogPath())
	}
	if cfg.IgnoreFile() != "/src/emails/previews/.pvignore" {
		t.Errorf("IgnoreFile() = %q", cfg.IgnoreFile())
	}
}

func TestConfigRefreshEvery(t *testing.T) {
	cfg := &Config{RefreshInterval: 3}
	if cfg.RefreshEvery() != 3*time.Second {
		t.Errorf("RefreshEvery() = %v, want 3s", cfg.RefreshEvery())
	}
	cfg.RefreshInterval = 0
	if cfg.RefreshEvery() != 0 {
		t.Errorf("RefreshEvery() = %v, want 0", cfg.RefreshEvery())
	}
}

func TestConfigEditorCommand(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")

	cfg := &Config{Editor: "code -w"}
	if cfg.EditorCommand() != "code -w" {
		t.Errorf("EditorCommand() = %q", cfg.EditorCommand())
	}

	cfg.Editor = ""
	if cfg.EditorCommand() != "vi" {
		t.Errorf("EditorCommand() = %q, want vi", cfg.EditorCommand())
	}

	t.Setenv("EDITOR", "nano")
	if cfg.EditorCommand() != "nano" {
		t.Errorf("EditorCommand() = %q, want nano", cfg.EditorCommand())
	}

	t.Setenv("VISUAL", "hx")
	if cfg.EditorCommand() != "hx" {
		t.Errorf("EditorCommand() = %q, want hx", cfg.EditorCommand())
	}
}

func TestConfigExpandPaths(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{
		PreviewsDir: "~/site/emails/previews",
		CacheDir:    "~/.cache/pv-test",
	}
	cfg.expandPaths()

	expected := filepath.Join(home, "site", "emails", "previews")
	if cfg.PreviewsDir != expected {
		t.Errorf("PreviewsDir = %q, want %q", cfg.PreviewsDir, expected)
	}
	if cfg.Separator != "/" {
		t.Errorf("Separator = %q, want default", cfg.Separator)
	}
}

func TestConfigExpandPathsNoTilde(t *testing.T) {
	cfg := &Config{PreviewsDir: "/absolute/path", CacheDir: "/cache"}
	cfg.expandPaths()

	if cfg.PreviewsDir != "/absolute/path" {
		t.Errorf("PreviewsDir = %q, want %q", cfg.PreviewsDir, "/absolute/path")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"ok", Config{Schema: 1, PreviewsDir: "p"}, ""},
		{"manifest only", Config{Schema: 1, Manifest: "previews.yaml"}, ""},
		{"future schema", Config{Schema: 2, PreviewsDir: "p"}, "newer than supported"},
		{"no source", Config{Schema: 1}, "previews_dir or manifest"},
		{"negative refresh", Config{Schema: 1, PreviewsDir: "p", RefreshInterval: -1}, "refresh_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configJSON := `{
		"schema": 1,
		"previews_dir": "/custom/previews",
		"compact": false,
		"editor": "nvim",
		"excludes": ["drafts/"],
		"refresh_interval": 5
	}`
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.PreviewsDir != "/custom/previews" {
		t.Errorf("PreviewsDir = %q, want %q", cfg.PreviewsDir, "/custom/previews")
	}
	if cfg.Compact {
		t.Error("Compact = true, want false")
	}
	if cfg.Editor != "nvim" {
		t.Errorf("Editor = %q, want %q", cfg.Editor, "nvim")
	}
	if len(cfg.Excludes) != 1 {
		t.Errorf("len(Excludes) = %d, want 1", len(cfg.Excludes))
	}
	if cfg.Separator != "/" {
		t.Errorf("Separator = %q, want default kept", cfg.Separator)
	}
	if len(cfg.Extensions) == 0 {
		t.Error("Extensions default should survive a partial config")
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error for explicit path, got %v", err)
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(configPath, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadConfigFallsBackToDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdirForTest(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Schema != CurrentConfigSchema {
		t.Errorf("Schema = %d, want default", cfg.Schema)
	}
}

func TestLoadConfigFromXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	chdirForTest(t, t.TempDir())

	if err := os.MkdirAll(filepath.Join(xdg, "pv"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(xdg, "pv", "config.json"), []byte(`{"schema":1,"previews_dir":"mail"}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.PreviewsDir != "mail" {
		t.Errorf("PreviewsDir = %q, want %q", cfg.PreviewsDir, "mail")
	}
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore cwd: %v", err)
		}
	})
}
