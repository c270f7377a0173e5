package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tormodhaugland/pv/internal/tui"
)

var tuiExpanded bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive preview browser",
	Long: `Opens the terminal user interface for browsing previews.

Compact mode shows folders that collapse and expand; expanded mode lists
every preview with its group. Press c to switch, / to filter, r to rescan
and o to open the selected preview's source in your editor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log, err := newLogger(cfg, true)
		if err != nil {
			return err
		}
		defer log.Close()

		db := openCache(cfg, log)
		if db != nil {
			defer db.Close()
		}

		return tui.Run(cfg, tui.Options{
			Cache:    db,
			Logger:   log,
			Expanded: tuiExpanded,
		})
	},
}

func init() {
	tuiCmd.Flags().BoolVar(&tuiExpanded, "expanded", false, "start in expanded (previews only) mode")
	rootCmd.Flags().BoolVar(&tuiExpanded, "expanded", false, "start in expanded (previews only) mode")
	rootCmd.AddCommand(tuiCmd)
}
