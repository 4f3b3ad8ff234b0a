package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartgwiza/reports-cli/internal/analytics"
	"github.com/smartgwiza/reports-cli/internal/config"
	"github.com/smartgwiza/reports-cli/internal/dashboard"
)

var (
	analyticsJSON   bool
	analyticsCached bool
	analyticsInput  string
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show submission, district and yield analytics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		o, err := loadOverview(cmd.Context())
		if err != nil {
			return err
		}
		if analyticsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(o)
		}
		formatOverview(cmd.OutOrStdout(), o)
		return nil
	},
}

// loadOverview refreshes every admin dataset, or reads submissions from
// --input, and derives the overview. Partial failures are reported inside
// the overview.
func loadOverview(ctx context.Context) (dashboard.Overview, error) {
	if err := cfg.Validate(config.ModeExport); err != nil {
		return dashboard.Overview{}, err
	}
	n, loc, err := newNormalizer()
	if err != nil {
		return dashboard.Overview{}, err
	}
	state := dashboard.NewStore(dashboard.State{})

	if analyticsInput != "" {
		data, err := os.ReadFile(analyticsInput)
		if err != nil {
			return dashboard.Overview{}, err
		}
		if err := newLoader(nil, nil, n, loc, false).LoadFile(state, dashboard.SourceSubmissions, data); err != nil {
			return dashboard.Overview{}, err
		}
		return state.State().Overview(time.Now().In(loc)), nil
	}

	st, err := initStore(ctx)
	if err != nil {
		return dashboard.Overview{}, err
	}
	defer st.Close() //nolint:errcheck

	ss, err := adminSession()
	if err != nil && !analyticsCached {
		return dashboard.Overview{}, err
	}
	loader := newLoader(nil, st, n, loc, analyticsCached)
	if err == nil {
		loader.Client = newBackendClient(ss)
	}
	if err := loader.Refresh(ctx, state); err != nil {
		zap.L().Warn("analytics: partial refresh", zap.Error(err))
		if len(state.State().LoadedAt) == 0 {
			return dashboard.Overview{}, err
		}
	}
	return state.State().Overview(time.Now().In(loc)), nil
}

func formatOverview(out io.Writer, o dashboard.Overview) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total submissions:\t%d\n", o.Submissions.Total)
	_, _ = fmt.Fprintf(w, "Yield data:\t%d\n", o.Submissions.YieldSubmissions)
	_, _ = fmt.Fprintf(w, "Predictions:\t%d\n", o.Submissions.Predictions)
	_, _ = fmt.Fprintf(w, "Today:\t%d\n", o.Submissions.Today)
	if o.AverageYield != nil {
		_, _ = fmt.Fprintf(w, "Average yield:\t%s t/ha\n", analytics.Fixed(*o.AverageYield, 2))
	}
	if o.Farmers.Total > 0 {
		_, _ = fmt.Fprintf(w, "Farmers:\t%d (%d active)\n", o.Farmers.Total, o.Farmers.Active)
	}
	if o.Trends != nil {
		_, _ = fmt.Fprintf(w, "Trend:\t%+.2f t/ha over %d submissions\n", o.Trends.Trending, o.Trends.TotalSubmissions)
	}
	if o.Comparison != nil {
		_, _ = fmt.Fprintf(w, "Avg improvement:\t%s%% (%d comparisons)\n", analytics.Fixed(o.Comparison.AvgImprovement, 1), o.Comparison.Count)
	}
	_ = w.Flush()

	if len(o.Districts) > 0 {
		_, _ = fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "DISTRICT\tSUBMISSIONS\tAVG_YIELD\tFARMERS")
		for _, d := range o.Districts {
			_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", d.District, d.Submissions, analytics.Fixed(d.AverageYield, 2), d.Farmers)
		}
		_ = w.Flush()
	}

	if len(o.Distribution) > 0 {
		_, _ = fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "YIELD_RANGE\tFARMS")
		for _, b := range o.Distribution {
			_, _ = fmt.Fprintf(w, "%s\t%d\n", b.Name, b.Count)
		}
		_ = w.Flush()
	}

	for src, msg := range o.Errors {
		_, _ = fmt.Fprintf(out, "warning: %s unavailable: %s\n", src, msg)
	}
}

func init() {
	analyticsCmd.Flags().BoolVar(&analyticsJSON, "json", false, "print the overview as JSON")
	analyticsCmd.Flags().BoolVar(&analyticsCached, "cached", false, "serve from the snapshot cache when fresh")
	analyticsCmd.Flags().StringVar(&analyticsInput, "input", "", "read submissions from a JSON file instead of the backend")
	rootCmd.AddCommand(analyticsCmd)
}
