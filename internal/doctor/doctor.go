// Package doctor checks that a pv setup can discover and open previews.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/tormodhaugland/pv/internal/cache"
	"github.com/tormodhaugland/pv/internal/config"
	"github.com/tormodhaugland/pv/internal/discover"
	"github.com/tormodhaugland/pv/internal/fs"
)

type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

// Report is the outcome of all checks.
type Report struct {
	Checks []Check `json:"checks"`
}

// Failed reports whether any check failed.
func (r *Report) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}

func (r *Report) add(name string, status Status, format string, args ...any) {
	r.Checks = append(r.Checks, Check{Name: name, Status: status, Detail: fmt.Sprintf(format, args...)})
}

// Run checks the previews source, the scan cache and the editor.
// The scan never writes to the cache.
func Run(ctx context.Context, cfg *config.Config) *Report {
	r := &Report{}

	manifest := discover.ManifestPath(cfg)
	checkPreviewsDir(r, cfg, manifest != "")

	if manifest != "" {
		checkManifest(r, manifest)
	} else if info, err := os.Stat(cfg.PreviewsDir); err == nil && info.IsDir() {
		checkIgnoreFile(r, cfg)
		checkScan(ctx, r, cfg)
	}

	checkCache(r, cfg)
	checkEditor(r, cfg)
	return r
}

func checkPreviewsDir(r *Report, cfg *config.Config, hasManifest bool) {
	info, err := os.Stat(cfg.PreviewsDir)
	switch {
	case err == nil && info.IsDir():
		r.add("previews", StatusOK, "%s", cfg.PreviewsDir)
	case err == nil:
		r.add("previews", StatusFail, "%s is not a directory", cfg.PreviewsDir)
	case hasManifest:
		r.add("previews", StatusWarn, "%s not found, using manifest", cfg.PreviewsDir)
	default:
		r.add("previews", StatusFail, "%s not found", cfg.PreviewsDir)
	}
}

func checkManifest(r *Report, path string) {
	previews, err := discover.LoadManifest(path)
	if err != nil {
		r.add("manifest", StatusFail, "%v", err)
		return
	}
	if len(previews) == 0 {
		r.add("manifest", StatusWarn, "%s lists no previews", path)
		return
	}
	r.add("manifest", StatusOK, "%s: %d groups", path, len(previews))
}

func checkIgnoreFile(r *Report, cfg *config.Config) {
	patterns, err := fs.ParseExcludeFile(cfg.IgnoreFile())
	switch {
	case errors.Is(err, os.ErrNotExist):
		return
	case err != nil:
		r.add("ignore", StatusFail, "%s: %v", cfg.IgnoreFile(), err)
	default:
		r.add("ignore", StatusOK, "%s: %d patterns", cfg.IgnoreFile(), len(patterns))
	}
}

func checkScan(ctx context.Context, r *Report, cfg *config.Config) {
	scanner := &discover.Scanner{
		Root:       cfg.PreviewsDir,
		Separator:  cfg.Separator,
		Extensions: cfg.Extensions,
		Excludes:   discover.BuildExcludes(cfg, nil),
	}
	result, err := scanner.Scan(ctx)
	if err != nil {
		r.add("scan", StatusFail, "%v", err)
		return
	}

	items := 0
	var empty []string
	for _, p := range result.Previews {
		items += len(p.Items)
		if len(p.Items) == 0 {
			empty = append(empty, p.Group)
		}
	}

	switch {
	case result.Files == 0:
		r.add("scan", StatusWarn, "no source files with extensions %s", strings.Join(cfg.Extensions, " "))
	case items == 0:
		r.add("scan", StatusWarn, "%d files scanned, none export previews", result.Files)
	case len(empty) > 0:
		r.add("scan", StatusWarn, "%d previews in %d files; no exports in %s", items, result.Files, strings.Join(empty, ", "))
	default:
		r.add("scan", StatusOK, "%d previews in %d files", items, result.Files)
	}
}

func checkCache(r *Report, cfg *config.Config) {
	if cfg.NoCache {
		r.add("cache", StatusWarn, "disabled (no_cache)")
		return
	}
	db, err := cache.Open(cfg.CachePath())
	if err != nil {
		r.add("cache", StatusFail, "%v", err)
		return
	}
	defer db.Close()

	stats, err := db.GetStats()
	if err != nil {
		r.add("cache", StatusFail, "%v", err)
		return
	}
	r.add("cache", StatusOK, "%s: %d files, %d exports", db.Path(), stats.TotalFiles, stats.TotalExports)
}

func checkEditor(r *Report, cfg *config.Config) {
	editor := cfg.EditorCommand()
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		r.add("editor", StatusWarn, "no editor configured")
		return
	}
	path, err := exec.LookPath(fields[0])
	if err != nil {
		r.add("editor", StatusWarn, "%s not found in PATH", fields[0])
		return
	}
	r.add("editor", StatusOK, "%s", path)
}
