package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/smartgwiza/reports-cli/internal/model"
	"github.com/smartgwiza/reports-cli/internal/report"
	"github.com/smartgwiza/reports-cli/internal/store"
)

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "List previously generated reports",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		filter := store.ExportFilter{}
		if k, _ := cmd.Flags().GetString("kind"); k != "" {
			kind, err := report.ParseKind(k)
			if err != nil {
				return err
			}
			filter.Kind = kind
		}
		filter.Limit, _ = cmd.Flags().GetInt("limit")

		recs, err := st.ListExports(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "exports list")
		}
		if len(recs) == 0 {
			fmt.Fprintln(os.Stderr, "No exports found.")
			return nil
		}
		formatExports(cmd.OutOrStdout(), recs)
		return nil
	},
}

// formatExports writes a tabular export history to out.
func formatExports(out io.Writer, recs []model.ExportRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tFILE\tROWS\tSOURCE\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t----\t----\t------\t-------")
	for _, r := range recs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			truncateID(r.ID),
			r.Kind,
			r.Filename,
			r.Rows,
			r.Source,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	exportsCmd.Flags().String("kind", "", "filter by report kind (submissions, filtered, stats, farmers, comparison)")
	exportsCmd.Flags().Int("limit", 50, "max number of exports to display")
	rootCmd.AddCommand(exportsCmd)
}
