package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/pv/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the previews setup",
	Long: `Checks that the previews directory or manifest can be read, that
source files export previews, and that the scan cache and editor work.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		report := doctor.Run(context.Background(), cfg)

		if jsonOut || jsonlOut {
			if err := outputJSON(report); err != nil {
				return err
			}
		} else {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, c := range report.Checks {
				fmt.Fprintf(w, "%s\t%s\t%s\n", statusMark(c.Status), c.Name, c.Detail)
			}
			w.Flush()
		}

		if report.Failed() {
			return fmt.Errorf("doctor found problems")
		}
		return nil
	},
}

func statusMark(s doctor.Status) string {
	switch s {
	case doctor.StatusOK:
		return "✓"
	case doctor.StatusWarn:
		return "!"
	default:
		return "✗"
	}
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
