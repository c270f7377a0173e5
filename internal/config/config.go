package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	Schema          int      `json:"schema"`
	PreviewsDir     string   `json:"previews_dir"`
	Manifest        string   `json:"manifest,omitempty"`
	Separator       string   `json:"separator,omitempty"`
	Compact         bool     `json:"compact"`
	Extensions      []string `json:"extensions,omitempty"`
	Excludes        []string `json:"excludes,omitempty"`
	IncludeHidden   bool     `json:"include_hidden,omitempty"`
	CacheDir        string   `json:"cache_dir,omitempty"`
	NoCache         bool     `json:"no_cache,omitempty"`
	Editor          string   `json:"editor,omitempty"`
	LogLevel        string   `json:"log_level,omitempty"`
	RefreshInterval int      `json:"refresh_interval,omitempty"` // seconds, 0 disables
}

const CurrentConfigSchema = 1

// LocalConfigName is looked up in the working directory after the user config.
const LocalConfigName = ".pv.json"

// IgnoreFileName holds extra exclude patterns inside the previews directory.
const IgnoreFileName = ".pvignore"

func DefaultConfig() *Config {
	return &Config{
		Schema:      CurrentConfigSchema,
		PreviewsDir: filepath.Join("emails", "previews"),
		Separator:   "/",
		Compact:     true,
		Extensions:  []string{".tsx", ".ts", ".jsx", ".js", ".go"},
		CacheDir:    defaultCacheDir(),
		LogLevel:    "warn",
	}
}

func Load(configPath string) (*Config, error) {
	paths := getConfigPaths(configPath)

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) && !(i == 0 && configPath != "") {
				continue
			}
			return nil, err
		}

		cfg := DefaultConfig()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		cfg.expandPaths()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return cfg, nil
	}

	return DefaultConfig(), nil
}

func getConfigPaths(explicit string) []string {
	home, _ := os.UserHomeDir()

	var paths []string

	if explicit != "" {
		paths = append(paths, explicit)
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "pv", "config.json"))

	paths = append(paths, LocalConfigName)

	return paths
}

func defaultCacheDir() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, "pv")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "pv")
}

func (c *Config) expandPaths() {
	c.PreviewsDir = expandHome(c.PreviewsDir)
	c.Manifest = expandHome(c.Manifest)
	c.CacheDir = expandHome(c.CacheDir)

	if c.Separator == "" {
		c.Separator = "/"
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir()
	}
}

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

// Validate rejects configs this version cannot honor.
func (c *Config) Validate() error {
	if c.Schema > CurrentConfigSchema {
		return fmt.Errorf("config schema %d is newer than supported schema %d", c.Schema, CurrentConfigSchema)
	}
	if c.PreviewsDir == "" && c.Manifest == "" {
		return fmt.Errorf("previews_dir or manifest must be set")
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval must not be negative")
	}
	return nil
}

func (c *Config) CachePath() string {
	return filepath.Join(c.CacheDir, "scan.db")
}

func (c *Config) LogPath() string {
	return filepath.Join(c.CacheDir, "pv.log")
}

func (c *Config) IgnoreFile() string {
	return filepath.Join(c.PreviewsDir, IgnoreFileName)
}

// RefreshEvery is the automatic rescan period, zero when disabled.
func (c *Config) RefreshEvery() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// EditorCommand returns the configured editor, falling back to $VISUAL,
// $EDITOR and vi.
func (c *Config) EditorCommand() string {
	if c.Editor != "" {
		return c.Editor
	}
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return "vi"
}
