package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartgwiza/reports-cli/internal/config"
	"github.com/smartgwiza/reports-cli/internal/dashboard"
	"github.com/smartgwiza/reports-cli/internal/model"
	"github.com/smartgwiza/reports-cli/internal/report"
	"github.com/smartgwiza/reports-cli/pkg/backend"
)

// stdoutPath sends the report to standard output.
const stdoutPath = "-"

type exportOptions struct {
	Input    string
	Output   string
	Format   string
	Type     string
	District string
	From     string
	To       string
	Cached   bool
}

type exportResult struct {
	Report *report.Report
	Path   string
	Source string
}

var exportOpts exportOptions

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Generate a report file",
	Long:  "Builds a CSV or XLSX report from the backend, the local snapshot cache (--cached) or a JSON file (--input).",
}

func newExportKindCmd(use string, kind model.ReportKind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := runExport(cmd.Context(), kind, exportOpts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if res.Path != stdoutPath {
				fmt.Fprintf(os.Stderr, "Wrote %d rows to %s\n", res.Report.DataRows, res.Path)
			}
			return nil
		},
	}
}

// runExport builds the report of kind and writes it to opts.Output, or to
// the configured output directory under the standard filename.
func runExport(ctx context.Context, kind model.ReportKind, opts exportOptions, stdout io.Writer) (*exportResult, error) {
	if err := cfg.Validate(config.ModeExport); err != nil {
		return nil, err
	}
	if opts.Format == "" {
		opts.Format = "csv"
	}
	if opts.Format != "csv" && opts.Format != "xlsx" {
		return nil, eris.Errorf("unknown format %q: want csv or xlsx", opts.Format)
	}

	n, loc, err := newNormalizer()
	if err != nil {
		return nil, err
	}
	filters, err := report.ParseFilters(opts.Type, opts.District, opts.From, opts.To, loc)
	if err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close() //nolint:errcheck

	required, _ := dashboard.ReportSources(kind)
	state := dashboard.NewStore(dashboard.State{})
	res := &exportResult{}

	if opts.Input != "" {
		data, err := os.ReadFile(opts.Input)
		if err != nil {
			return nil, eris.Wrap(err, "read input")
		}
		loader := newLoader(nil, nil, n, loc, false)
		if err := loader.LoadFile(state, required[0], data); err != nil {
			return nil, err
		}
		res.Report, err = report.Build(kind, state.State().ReportInput(filters, time.Now().In(loc)))
		if err != nil {
			return nil, err
		}
		res.Source = opts.Input
	} else {
		var client backend.Client
		ss, err := adminSession()
		switch {
		case err == nil:
			client = newBackendClient(ss)
		case !opts.Cached:
			return nil, err
		default:
			zap.L().Debug("export: no usable session, cache only", zap.Error(err))
		}
		loader := newLoader(client, st, n, loc, opts.Cached)
		res.Report, err = loader.Export(ctx, state, kind, filters)
		if errors.Is(err, backend.ErrUnauthorized) && ss != nil {
			if cerr := ss.Clear(); cerr != nil {
				zap.L().Warn("export: clear expired session", zap.Error(cerr))
			}
			return nil, eris.Wrap(err, "session expired: run `smartgwiza login` again")
		}
		if err != nil {
			return nil, err
		}
		res.Source = string(state.State().Origins[required[0]])
	}

	res.Path = opts.Output
	if res.Path == "" {
		res.Path = filepath.Join(cfg.Export.OutputDir, report.Filename(cfg.Export.Product, kind, res.Report.Generated, opts.Format))
	}
	if err := writeReport(res.Report, res.Path, opts.Format, stdout); err != nil {
		return nil, err
	}

	name := filepath.Base(res.Path)
	if res.Path == stdoutPath {
		name = report.Filename(cfg.Export.Product, kind, res.Report.Generated, opts.Format)
	}
	if _, err := st.RecordExport(ctx, model.ExportRecord{
		ID:        uuid.NewString(),
		Kind:      kind,
		Filename:  name,
		Rows:      res.Report.DataRows,
		Source:    res.Source,
		CreatedAt: res.Report.Generated,
	}); err != nil {
		zap.L().Warn("export: record history failed", zap.Error(err))
	}
	zap.L().Info("export written",
		zap.String("kind", string(kind)),
		zap.String("path", res.Path),
		zap.Int("rows", res.Report.DataRows),
		zap.String("source", res.Source),
	)
	return res, nil
}

func writeReport(rep *report.Report, path, format string, stdout io.Writer) error {
	encode := func(w io.Writer) error {
		if format == "xlsx" {
			return rep.WriteXLSX(w)
		}
		_, err := io.WriteString(w, rep.CSV())
		return err
	}
	if path == stdoutPath {
		return eris.Wrap(encode(stdout), "write report")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "create output dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "create output file")
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "write %s", path)
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}

func init() {
	f := exportCmd.PersistentFlags()
	f.StringVar(&exportOpts.Input, "input", "", "read records from a JSON file instead of the backend")
	f.StringVarP(&exportOpts.Output, "output", "o", "", "output path, - for stdout (default <output_dir>/<product>-<kind>-<date>.<format>)")
	f.StringVar(&exportOpts.Format, "format", "csv", "output format: csv or xlsx")
	f.BoolVar(&exportOpts.Cached, "cached", false, "serve from the snapshot cache when fresh")

	filtered := newExportKindCmd("filtered", model.ReportFiltered, "Export submissions matching filters")
	filtered.Flags().StringVar(&exportOpts.Type, "type", report.TypeAll, "submission type: all, yield or prediction")
	filtered.Flags().StringVar(&exportOpts.District, "district", report.DistrictAll, "district name, case-insensitive")
	filtered.Flags().StringVar(&exportOpts.From, "from", "", "first day, YYYY-MM-DD")
	filtered.Flags().StringVar(&exportOpts.To, "to", "", "last day, YYYY-MM-DD")

	exportCmd.AddCommand(
		newExportKindCmd("submissions", model.ReportSubmissions, "Export all submissions"),
		filtered,
		newExportKindCmd("stats", model.ReportStats, "Export the statistics summary with regional breakdown"),
		newExportKindCmd("farmers", model.ReportFarmers, "Export the farmer listing"),
		newExportKindCmd("comparison", model.ReportComparison, "Export before/after yield comparisons"),
	)
	rootCmd.AddCommand(exportCmd)
}
