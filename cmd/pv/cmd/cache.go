package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/pv/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the scan cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show scan cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if _, err := os.Stat(cfg.CachePath()); os.IsNotExist(err) {
			if jsonOut || jsonlOut {
				return outputJSON(cache.Stats{})
			}
			fmt.Println("No scan cache yet (run 'pv scan')")
			return nil
		}

		db, err := cache.Open(cfg.CachePath())
		if err != nil {
			return fmt.Errorf("opening scan cache: %w", err)
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		if jsonOut || jsonlOut {
			return outputJSON(stats)
		}

		fmt.Printf("Database: %s\n", db.Path())
		fmt.Printf("Roots:    %d\n", stats.TotalRoots)
		fmt.Printf("Files:    %d\n", stats.TotalFiles)
		fmt.Printf("Exports:  %d\n", stats.TotalExports)
		fmt.Printf("Size:     %s\n", formatBytes(stats.DatabaseSizeBytes))
		if !stats.NewestScan.IsZero() {
			fmt.Printf("Scanned:  %s\n", stats.NewestScan.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached scan results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if _, err := os.Stat(cfg.CachePath()); os.IsNotExist(err) {
			fmt.Println("Scan cache is already empty")
			return nil
		}

		db, err := cache.Open(cfg.CachePath())
		if err != nil {
			return fmt.Errorf("opening scan cache: %w", err)
		}
		defer db.Close()

		if err := db.Clear(); err != nil {
			return fmt.Errorf("clearing scan cache: %w", err)
		}
		fmt.Println("Scan cache cleared")
		return nil
	},
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
