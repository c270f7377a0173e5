// Package fs holds filesystem helpers shared by preview discovery and the
// cache: exclude pattern handling and directory setup.
package fs

import (
	"bufio"
	"os"
	"path"
	"strings"
)

// BuiltinExcludes contains the default patterns skipped while scanning a
// previews directory. They cover dependency trees, build output, and source
// files that sit next to previews without being previews.
var BuiltinExcludes = []string{
	// === Dependencies ===
	"node_modules/",
	"vendor/",
	".pnpm-store/",

	// === Build outputs ===
	"dist/",
	"build/",
	"out/",
	".next/",
	".turbo/",
	".vercel/",

	// === Tests, stories & typings ===
	"__tests__/",
	"__snapshots__/",
	"coverage/",
	"*.test.*",
	"*.spec.*",
	"*.stories.*",
	"*.d.ts",
	"*_test.go",

	// === Editors & OS artifacts ===
	"*.swp",
	"*~",
	".DS_Store",
}

// HiddenPatterns exclude dotfiles and dot directories.
var HiddenPatterns = []string{
	".*/",
	".*",
}

// ExcludeList holds the effective exclude patterns.
type ExcludeList struct {
	Patterns []string
}

// ExcludeOptions configures how the exclude list is built.
type ExcludeOptions struct {
	// Additional patterns to add
	Additional []string
	// Patterns to remove from defaults
	Remove []string
	// Scan dotfiles and dot directories (default: skipped)
	IncludeHidden bool
}

// BuildExcludeList computes the effective exclude list from all sources.
func BuildExcludeList(opts ExcludeOptions) *ExcludeList {
	patterns := make([]string, 0, len(BuiltinExcludes)+len(HiddenPatterns)+len(opts.Additional))

	removeSet := make(map[string]bool, len(opts.Remove))
	for _, p := range opts.Remove {
		removeSet[p] = true
	}

	for _, p := range BuiltinExcludes {
		if !removeSet[p] {
			patterns = append(patterns, p)
		}
	}

	if !opts.IncludeHidden {
		patterns = append(patterns, HiddenPatterns...)
	}

	patterns = append(patterns, opts.Additional...)

	return &ExcludeList{Patterns: dedupePatterns(patterns)}
}

// Match reports whether rel (slash separated, relative to the scan root)
// is excluded.
//
// Patterns ending in "/" only match directories. Patterns containing a
// slash match the whole relative path; all others match the base name.
func (e *ExcludeList) Match(rel string, isDir bool) bool {
	if e == nil {
		return false
	}
	base := path.Base(rel)
	for _, p := range e.Patterns {
		dirOnly := strings.HasSuffix(p, "/")
		if dirOnly {
			if !isDir {
				continue
			}
			p = strings.TrimSuffix(p, "/")
		}

		target := base
		if strings.Contains(p, "/") {
			target = rel
		}
		if ok, err := path.Match(p, target); err == nil && ok {
			return true
		}
	}
	return false
}

// ParseExcludeFile reads exclude patterns from a file.
// Lines starting with # are comments, blank lines are ignored.
func ParseExcludeFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return patterns, nil
}

// dedupePatterns removes duplicate patterns while preserving order.
func dedupePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	result := make([]string, 0, len(patterns))

	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}

	return result
}

// EnsureDir creates path and its parents if missing.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
