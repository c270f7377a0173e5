package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/pv/internal/discover"
)

var scanNoCache bool

type scanSummary struct {
	Source   string `json:"source"`
	Files    int    `json:"files"`
	Cached   int    `json:"cached"`
	Groups   int    `json:"groups"`
	Previews int    `json:"previews"`
	Empty    int    `json:"empty_groups"`
	Duration string `json:"duration"`
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover previews and refresh the scan cache",
	Long: `Walks the previews directory, extracts exported previews from each
source file and stores the results in the scan cache so the browser starts
quickly. Files whose content did not change are served from the cache.

When a manifest is configured or present, it is read instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if scanNoCache {
			cfg.NoCache = true
		}

		log, err := newLogger(cfg, false)
		if err != nil {
			return err
		}
		defer log.Close()

		db := openCache(cfg, log)
		if db != nil {
			defer db.Close()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := discover.Discover(ctx, cfg, db, log)
		if err != nil {
			return fmt.Errorf("failed to discover previews: %w", err)
		}

		summary := scanSummary{
			Source:   cfg.PreviewsDir,
			Files:    result.Files,
			Cached:   result.Cached,
			Groups:   len(result.Previews),
			Duration: result.Duration.Round(time.Millisecond).String(),
		}
		if result.Manifest != "" {
			summary.Source = result.Manifest
		}
		for _, p := range result.Previews {
			summary.Previews += len(p.Items)
			if len(p.Items) == 0 {
				summary.Empty++
			}
		}

		if jsonOut || jsonlOut {
			return outputJSON(summary)
		}

		if result.Manifest != "" {
			fmt.Printf("Read manifest %s\n", result.Manifest)
		} else {
			fmt.Printf("Scanned %d files in %s (%d from cache)\n", summary.Files, summary.Source, summary.Cached)
		}
		fmt.Printf("Found %d previews in %d groups", summary.Previews, summary.Groups)
		if summary.Empty > 0 {
			fmt.Printf(" (%d without previews)", summary.Empty)
		}
		fmt.Printf(" in %s\n", summary.Duration)
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanNoCache, "no-cache", false, "parse every file and leave the cache untouched")
	rootCmd.AddCommand(scanCmd)
}
