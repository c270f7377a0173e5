package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/pv/internal/cache"
	"github.com/tormodhaugland/pv/internal/config"
	"github.com/tormodhaugland/pv/internal/logging"
)

var (
	cfgFile     string
	jsonOut     bool
	jsonlOut    bool
	verbose     bool
	previewsDir string
)

var rootCmd = &cobra.Command{
	Use:   "pv",
	Short: "Preview browser - navigate generated content previews as a tree",
	Long: `pv discovers the previews exported from a previews directory (for
example email template previews) and shows them as a collapsible tree or
as a flat list of previews.

Running 'pv' without arguments launches the TUI.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch TUI
		return tuiCmd.RunE(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/pv/config.json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&jsonlOut, "jsonl", false, "output in JSON Lines format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	rootCmd.PersistentFlags().StringVar(&previewsDir, "dir", "", "previews directory (overrides config)")
}

// loadConfig loads the config and applies global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if previewsDir != "" {
		cfg.PreviewsDir = previewsDir
		cfg.Manifest = ""
	}
	return cfg, nil
}

// newLogger logs to the cache directory. Non-interactive commands also log
// to stderr with --verbose; the TUI owns the terminal.
func newLogger(cfg *config.Config, interactive bool) (*logging.Logger, error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:  level,
		File:   cfg.LogPath(),
		Stderr: verbose && !interactive,
	})
}

// openCache opens the scan cache. A broken cache only costs speed, so
// failures are logged and nil is returned.
func openCache(cfg *config.Config, log *logging.Logger) *cache.DB {
	if cfg.NoCache {
		return nil
	}
	db, err := cache.Open(cfg.CachePath())
	if err != nil {
		log.WithError(err).Warn("scan cache unavailable")
		return nil
	}
	return db
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputJSONL[T any](records []T) error {
	enc := json.NewEncoder(os.Stdout)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
