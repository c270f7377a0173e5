package doctor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tormodhaugland/pv/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.PreviewsDir = filepath.Join(t.TempDir(), "previews")
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	cfg.Editor = "sh"
	return cfg
}

func findCheck(t *testing.T, r *Report, name string) Check {
	t.Helper()
	for _, c := range r.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not reported; got %+v", name, r.Checks)
	return Check{}
}

func TestRunHealthySetup(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.PreviewsDir, "email", "Welcome.tsx"), "export const Default = () => null;\n")
	writeFile(t, filepath.Join(cfg.PreviewsDir, ".pvignore"), "drafts/\n")

	r := Run(context.Background(), cfg)
	if r.Failed() {
		t.Fatalf("unexpected failure: %+v", r.Checks)
	}

	for _, name := range []string{"previews", "ignore", "scan", "cache", "editor"} {
		if c := findCheck(t, r, name); c.Status != StatusOK {
			t.Errorf("%s status = %s (%s), want ok", name, c.Status, c.Detail)
		}
	}
}

func TestRunMissingPreviewsDir(t *testing.T) {
	cfg := testConfig(t)

	r := Run(context.Background(), cfg)
	if !r.Failed() {
		t.Fatal("expected a failure for a missing previews directory")
	}
	if c := findCheck(t, r, "previews"); c.Status != StatusFail {
		t.Errorf("previews status = %s, want fail", c.Status)
	}
	for _, c := range r.Checks {
		if c.Name == "scan" {
			t.Error("scan should be skipped without a previews directory")
		}
	}
}

func TestRunWarnsOnFilesWithoutExports(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.PreviewsDir, "email", "Welcome.tsx"), "export const Default = () => null;\n")
	writeFile(t, filepath.Join(cfg.PreviewsDir, "email", "Draft.tsx"), "const x = 1;\n")

	r := Run(context.Background(), cfg)
	c := findCheck(t, r, "scan")
	if c.Status != StatusWarn {
		t.Errorf("scan status = %s, want warn", c.Status)
	}
	if want := "email/Draft"; !strings.Contains(c.Detail, want) {
		t.Errorf("scan detail %q does not name %s", c.Detail, want)
	}
}

func TestRunWithManifest(t *testing.T) {
	cfg := testConfig(t)
	cfg.Manifest = filepath.Join(t.TempDir(), "previews.yaml")
	writeFile(t, cfg.Manifest, "previews:\n  - group: a/b\n    items: [x]\n")

	r := Run(context.Background(), cfg)
	if c := findCheck(t, r, "previews"); c.Status != StatusWarn {
		t.Errorf("previews status = %s, want warn", c.Status)
	}
	if c := findCheck(t, r, "manifest"); c.Status != StatusOK {
		t.Errorf("manifest status = %s (%s), want ok", c.Status, c.Detail)
	}
}

func TestRunBrokenManifest(t *testing.T) {
	cfg := testConfig(t)
	cfg.Manifest = filepath.Join(t.TempDir(), "previews.json")
	writeFile(t, cfg.Manifest, "{")

	r := Run(context.Background(), cfg)
	if c := findCheck(t, r, "manifest"); c.Status != StatusFail {
		t.Errorf("manifest status = %s, want fail", c.Status)
	}
}

func TestRunCacheDisabledAndMissingEditor(t *testing.T) {
	cfg := testConfig(t)
	cfg.NoCache = true
	cfg.Editor = "definitely-not-an-editor-on-path"
	writeFile(t, filepath.Join(cfg.PreviewsDir, "a.tsx"), "export function A() {}\n")

	r := Run(context.Background(), cfg)
	if c := findCheck(t, r, "cache"); c.Status != StatusWarn {
		t.Errorf("cache status = %s, want warn", c.Status)
	}
	if c := findCheck(t, r, "editor"); c.Status != StatusWarn {
		t.Errorf("editor status = %s, want warn", c.Status)
	}
	if _, err := os.Stat(cfg.CachePath()); !os.IsNotExist(err) {
		t.Error("doctor created the cache although it is disabled")
	}
}
