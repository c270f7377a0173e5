// Package discover produces the preview list shown by pv, either by scanning
// a previews directory for exported previews or by reading a manifest.
package discover

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tormodhaugland/pv/internal/cache"
	"github.com/tormodhaugland/pv/internal/config"
	pvfs "github.com/tormodhaugland/pv/internal/fs"
	"github.com/tormodhaugland/pv/internal/previewtree"
)

// Source is a preview source file and the previews it exports.
type Source struct {
	Group    string   `json:"group"`
	Path     string   `json:"path"`
	Language string   `json:"language"`
	Exports  []Export `json:"exports"`
}

// Result is the outcome of a discovery run.
type Result struct {
	Previews []previewtree.Preview `json:"previews"`
	Sources  []Source              `json:"sources,omitempty"`
	Manifest string                `json:"manifest,omitempty"` // set when read from a manifest
	Files    int                   `json:"files"`
	Cached   int                   `json:"cached"` // files served from the scan cache
	Duration time.Duration         `json:"duration"`
}

// Find returns the source and export backing the preview group/item.
func (r *Result) Find(group, item string) (Source, Export, bool) {
	if r == nil {
		return Source{}, Export{}, false
	}
	for _, src := range r.Sources {
		if src.Group != group {
			continue
		}
		for _, e := range src.Exports {
			if e.Name == item {
				return src, e, true
			}
		}
	}
	return Source{}, Export{}, false
}

// FindGroup returns the first source file of group.
func (r *Result) FindGroup(group string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}
	for _, src := range r.Sources {
		if src.Group == group {
			return src, true
		}
	}
	return Source{}, false
}

// Scanner walks a previews directory.
type Scanner struct {
	Root       string
	Separator  string // joins path segments into group keys, "/" when empty
	Extensions []string
	Excludes   *pvfs.ExcludeList
	Cache      *cache.DB // nil disables caching
	Logger     logrus.FieldLogger
}

func (s *Scanner) logger() logrus.FieldLogger {
	if s.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}
	return s.Logger
}

func (s *Scanner) wantsExt(name string) bool {
	if len(s.Extensions) == 0 {
		return DetectLanguage(name) != ""
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range s.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// Scan walks Root in lexical order and returns one preview per source file.
// The group key is the file path relative to Root without its extension.
// Files that export nothing still form an empty group.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	start := time.Now()
	log := s.logger()

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &DirNotFoundError{Path: root}
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, &DirNotFoundError{Path: root}
	}

	sep := s.Separator
	if sep == "" {
		sep = previewtree.DefaultSeparator
	}

	result := &Result{Previews: []previewtree.Preview{}}
	seen := make(map[string]bool)

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			log.WithError(walkErr).WithField("path", p).Warn("skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if s.Excludes.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || s.Excludes.Match(rel, false) || !s.wantsExt(rel) {
			return nil
		}
		lang := DetectLanguage(rel)
		if lang == "" {
			return nil
		}

		exports, cached, err := s.scanFile(ctx, root, rel, p, lang)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.WithError(err).WithField("file", rel).Warn("no previews read from file")
			exports = []Export{}
		}

		seen[rel] = true
		result.Files++
		if cached {
			result.Cached++
		}

		group := strings.TrimSuffix(rel, filepath.Ext(rel))
		if sep != "/" {
			group = strings.ReplaceAll(group, "/", sep)
		}

		items := make([]string, len(exports))
		for i, e := range exports {
			items[i] = e.Name
		}
		result.Previews = append(result.Previews, previewtree.Preview{Group: group, Items: items})
		result.Sources = append(result.Sources, Source{Group: group, Path: p, Language: lang, Exports: exports})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		removed, err := s.Cache.Prune(root, seen)
		if err != nil {
			log.WithError(err).Warn("pruning scan cache")
		} else if removed > 0 {
			log.WithField("removed", removed).Debug("pruned scan cache")
		}
	}

	result.Duration = time.Since(start)
	log.WithFields(logrus.Fields{
		"root":     root,
		"files":    result.Files,
		"cached":   result.Cached,
		"previews": len(result.Previews),
		"took":     result.Duration,
	}).Info("scanned previews")

	return result, nil
}

// scanFile returns the exports of one file, from the cache when its content
// is unchanged.
func (s *Scanner) scanFile(ctx context.Context, root, rel, path, lang string) ([]Export, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	hash := sha256.Sum256(content)
	contentHash := hex.EncodeToString(hash[:])

	if s.Cache != nil {
		hit, ok, err := s.Cache.Lookup(root, rel, contentHash)
		if err != nil {
			s.logger().WithError(err).WithField("file", rel).Warn("scan cache lookup failed")
		} else if ok {
			exports := make([]Export, len(hit))
			for i, e := range hit {
				exports[i] = Export{Name: e.Name, Line: e.StartLine, EndLine: e.EndLine}
			}
			return exports, true, nil
		}
	}

	exports, err := ExtractExports(ctx, content, lang)
	if err != nil {
		return nil, false, &ParseError{Path: rel, Language: lang, Err: err}
	}

	if s.Cache != nil {
		rows := make([]cache.Export, len(exports))
		for i, e := range exports {
			rows[i] = cache.Export{Name: e.Name, StartLine: e.Line, EndLine: e.EndLine}
		}
		file := &cache.File{
			Root:        root,
			RelPath:     rel,
			Language:    lang,
			ContentHash: contentHash,
			FileSize:    int64(len(content)),
			ScannedAt:   time.Now(),
		}
		if err := s.Cache.Store(file, rows); err != nil {
			s.logger().WithError(err).WithField("file", rel).Warn("scan cache store failed")
		}
	}

	return exports, false, nil
}

// ManifestPath returns the manifest to read for cfg, or "" to scan.
func ManifestPath(cfg *config.Config) string {
	if cfg.Manifest != "" {
		return cfg.Manifest
	}
	if cfg.PreviewsDir == "" {
		return ""
	}
	return FindManifest(cfg.PreviewsDir)
}

// BuildExcludes combines the builtin excludes, cfg.Excludes and the
// previews directory ignore file.
func BuildExcludes(cfg *config.Config, log logrus.FieldLogger) *pvfs.ExcludeList {
	additional := append([]string{}, cfg.Excludes...)
	patterns, err := pvfs.ParseExcludeFile(cfg.IgnoreFile())
	switch {
	case err == nil:
		additional = append(additional, patterns...)
	case !errors.Is(err, os.ErrNotExist) && log != nil:
		log.WithError(err).Warn("reading ignore file")
	}
	return pvfs.BuildExcludeList(pvfs.ExcludeOptions{
		Additional:    additional,
		IncludeHidden: cfg.IncludeHidden,
	})
}

// Discover reads the manifest when one is configured or present in the
// previews directory, and otherwise scans the directory. db may be nil.
func Discover(ctx context.Context, cfg *config.Config, db *cache.DB, log logrus.FieldLogger) (*Result, error) {
	if path := ManifestPath(cfg); path != "" {
		start := time.Now()
		previews, err := LoadManifest(path)
		if err != nil {
			return nil, err
		}
		if log != nil {
			log.WithFields(logrus.Fields{"manifest": path, "previews": len(previews)}).Info("loaded preview manifest")
		}
		return &Result{Previews: previews, Manifest: path, Duration: time.Since(start)}, nil
	}

	if cfg.NoCache {
		db = nil
	}
	scanner := &Scanner{
		Root:       cfg.PreviewsDir,
		Separator:  cfg.Separator,
		Extensions: cfg.Extensions,
		Excludes:   BuildExcludes(cfg, log),
		Cache:      db,
		Logger:     log,
	}
	return scanner.Scan(ctx)
}
