package report

import (
	"time"

	"github.com/smartgwiza/reports-cli/internal/analytics"
	"github.com/smartgwiza/reports-cli/internal/model"
)

// StatsTitle heads the statistics export.
const StatsTitle = "Submissions Statistics Report"

// GeneratedLayout formats the generation timestamp.
const GeneratedLayout = "2006-01-02 15:04"

// RegionalHeader is the column layout of the regional block.
var RegionalHeader = []string{"District", "Submissions", "Avg Yield", "Farmers"}

const statsWidth = 4

func padded(cells ...any) []any {
	row := make([]any, statsWidth)
	for i := range row {
		row[i] = ""
	}
	copy(row, cells)
	return row
}

// StatsTable lays out the title, overall and regional blocks. stats may be
// nil; its non-zero counts take precedence over locally computed ones.
// Districts appear in order of first appearance.
func StatsTable(subs []model.NormalizedSubmission, stats *model.AdminStats, generated time.Time) ([][]any, error) {
	if len(subs) == 0 {
		return nil, noData(model.ReportStats, "submission")
	}

	total := len(subs)
	if stats != nil && stats.TotalSubmissions > 0 {
		total = stats.TotalSubmissions
	}
	avg, _ := analytics.AverageYield(subs)
	if stats != nil && stats.AverageYield > 0 {
		avg = stats.AverageYield
	}

	rows := [][]any{
		padded(StatsTitle),
		padded("Generated on:", generated.Format(GeneratedLayout)),
		padded(),
		padded("Overall Statistics"),
		padded("Total Submissions", total),
		padded("Yield Data Submissions", analytics.CountByType(subs, model.SubmissionYieldData)),
		padded("Prediction Submissions", analytics.CountByType(subs, model.SubmissionPrediction)),
		padded("Average Yield", analytics.Fixed(avg, 2)+" t/ha"),
		padded(),
		padded("Regional Distribution"),
		stringsRow(RegionalHeader),
	}
	for _, d := range analytics.AggregateByDistrict(subs) {
		rows = append(rows, []any{d.District, d.Count, analytics.Fixed(d.AverageYield(), 2), d.FarmerCount()})
	}
	return rows, nil
}

// BuildStatsReport renders the statistics export stamped with generated.
func BuildStatsReport(subs []model.NormalizedSubmission, stats *model.AdminStats, generated time.Time) (string, error) {
	rows, err := StatsTable(subs, stats, generated)
	if err != nil {
		return "", err
	}
	return BuildCSV(rows), nil
}
