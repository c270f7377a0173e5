package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/pv/internal/discover"
	"github.com/tormodhaugland/pv/internal/previewtree"
)

var (
	lsLeaves   bool
	lsFilter   string
	lsCollapse []string
)

// routeRecord is one visible route in ls output.
type routeRecord struct {
	Index     int    `json:"index"`
	Kind      string `json:"kind"`
	Depth     int    `json:"depth"`
	Path      string `json:"path"`
	Key       string `json:"key"`
	Group     string `json:"group,omitempty"`
	Item      string `json:"item,omitempty"`
	Collapsed bool   `json:"collapsed,omitempty"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List preview routes",
	Long: `Lists the rows the browser would show, in order.

By default folders and previews are listed as a tree. With --leaves only
previews are listed. --collapse hides the contents of a folder given by its
group path and may be repeated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
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

		result, err := discover.Discover(context.Background(), cfg, db, log)
		if err != nil {
			return fmt.Errorf("failed to discover previews: %w", err)
		}

		records := buildRouteRecords(result, cfg.Separator, lsLeaves, lsFilter, lsCollapse)

		if jsonlOut {
			return outputJSONL(records)
		}
		if jsonOut {
			return outputJSON(records)
		}

		if len(records) == 0 {
			fmt.Println("No previews found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ROUTE\tKIND\tSOURCE")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\n", routeLabel(r, lsLeaves), r.Kind, sourceLabel(r))
		}
		w.Flush()

		return nil
	},
}

// buildRouteRecords runs the navigator over result with the ls options.
func buildRouteRecords(result *discover.Result, sep string, leaves bool, filter string, collapse []string) []routeRecord {
	nav := previewtree.New(result.Previews, previewtree.Options{Separator: sep, LeavesOnly: leaves})
	for _, group := range collapse {
		nav.SetCollapsePath(group, true)
	}
	nav.SetFilter(filter)

	routes := nav.Routes()
	records := make([]routeRecord, 0, len(routes))
	for i, r := range routes {
		rec := routeRecord{
			Index:     i,
			Kind:      r.Node.Kind.String(),
			Depth:     r.Depth,
			Path:      strings.Join(r.Node.Path, nav.Separator()),
			Key:       r.Node.Key,
			Collapsed: r.Collapsed,
		}
		if p := r.Node.Payload; p != nil {
			rec.Group = p.Group
			rec.Item = p.Item
			if src, e, ok := result.Find(p.Group, p.Item); ok {
				rec.File = src.Path
				rec.Line = e.Line
			}
		} else if src, ok := result.FindGroup(rec.Path); ok {
			rec.File = src.Path
		}
		records = append(records, rec)
	}
	return records
}

func routeLabel(r routeRecord, leaves bool) string {
	if leaves {
		return r.Path
	}
	marker := ""
	if r.Collapsed {
		marker = " (collapsed)"
	}
	return strings.Repeat("  ", r.Depth) + r.Key + marker
}

func sourceLabel(r routeRecord) string {
	switch {
	case r.File == "":
		return "-"
	case r.Line > 0:
		return fmt.Sprintf("%s:%d", r.File, r.Line)
	default:
		return r.File
	}
}

func init() {
	lsCmd.Flags().BoolVar(&lsLeaves, "leaves", false, "list previews only (expanded mode)")
	lsCmd.Flags().StringVar(&lsFilter, "filter", "", "fuzzy filter on preview paths")
	lsCmd.Flags().StringArrayVar(&lsCollapse, "collapse", nil, "collapse the folder with this group path (repeatable)")
	rootCmd.AddCommand(lsCmd)
}
