package report

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/smartgwiza/reports-cli/internal/analytics"
	"github.com/smartgwiza/reports-cli/internal/model"
)

// Input carries every dataset a report kind may draw on. Callers fill what
// they have; each kind reads only its own fields.
type Input struct {
	Raw         []model.RawRecord
	Submissions []model.NormalizedSubmission
	Farmers     []model.Farmer
	Stats       *model.AdminStats
	Filters     Filters
	Now         time.Time
}

// Report is a laid-out export ready to be encoded.
type Report struct {
	Kind      model.ReportKind
	Rows      [][]any
	DataRows  int
	Generated time.Time
}

// CSV encodes the report.
func (r *Report) CSV() string { return BuildCSV(r.Rows) }

// Filename returns the CSV download name for product.
func (r *Report) Filename(product string) string {
	return Filename(product, r.Kind, r.Generated, "csv")
}

// Filename builds "<product>-<kind>-<YYYY-MM-DD>.<ext>" from the generation
// date.
func Filename(product string, kind model.ReportKind, generated time.Time, ext string) string {
	return fmt.Sprintf("%s-%s-%s.%s", product, kind, generated.Format("2006-01-02"), ext)
}

// Kinds lists every report kind in presentation order.
var Kinds = []model.ReportKind{
	model.ReportSubmissions,
	model.ReportFiltered,
	model.ReportStats,
	model.ReportFarmers,
	model.ReportComparison,
}

// ParseKind maps short names used on the command line and in URLs.
func ParseKind(s string) (model.ReportKind, error) {
	switch s {
	case "submissions":
		return model.ReportSubmissions, nil
	case "filtered", string(model.ReportFiltered):
		return model.ReportFiltered, nil
	case "stats", string(model.ReportStats):
		return model.ReportStats, nil
	case "farmers":
		return model.ReportFarmers, nil
	case "comparison", string(model.ReportComparison):
		return model.ReportComparison, nil
	}
	return "", eris.Errorf("report: unknown kind %q", s)
}

// Build lays out the report of the given kind.
func Build(kind model.ReportKind, in Input) (*Report, error) {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	var (
		rows [][]any
		data int
		err  error
	)
	switch kind {
	case model.ReportSubmissions:
		rows, err = SubmissionsTable(in.Submissions)
		data = len(rows) - 1
	case model.ReportFiltered:
		rows, err = FilteredTable(in.Submissions, in.Filters)
		data = len(rows) - 1
	case model.ReportStats:
		rows, err = StatsTable(in.Submissions, in.Stats, now)
		data = len(analytics.AggregateByDistrict(in.Submissions))
	case model.ReportFarmers:
		rows, err = FarmersTable(in.Farmers)
		data = len(rows) - 1
	case model.ReportComparison:
		set := analytics.BuildComparisonSet(in.Raw)
		rows, err = ComparisonTable(set)
		data = len(set)
	default:
		return nil, eris.Errorf("report: unknown kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return &Report{Kind: kind, Rows: rows, DataRows: data, Generated: now}, nil
}
