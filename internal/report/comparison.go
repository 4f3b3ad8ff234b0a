package report

import (
	"github.com/smartgwiza/reports-cli/internal/analytics"
	"github.com/smartgwiza/reports-cli/internal/model"
)

// ComparisonHeader is the column layout of the comparison export.
var ComparisonHeader = []string{"Farmer", "District", "Yield Before (t/ha)", "Yield After (t/ha)", "Improvement (%)", "Submission Date"}

// ComparisonTable lists each comparison followed by a summary block. An
// empty set is reported as missing data, never as 0% improvement.
func ComparisonTable(set []analytics.ComparisonRecord) ([][]any, error) {
	sum, ok := analytics.SummarizeComparisons(set)
	if !ok {
		return nil, noData(model.ReportComparison, "comparison")
	}
	rows := make([][]any, 0, len(set)+9)
	rows = append(rows, stringsRow(ComparisonHeader))
	for _, c := range set {
		rows = append(rows, []any{
			c.Farmer,
			c.District,
			c.YieldBefore,
			c.YieldAfter,
			analytics.Fixed(c.Improvement, 1),
			c.SubmissionDate,
		})
	}
	rows = append(rows,
		[]any{},
		[]any{"Summary"},
		[]any{"Total Comparisons", sum.Count},
		[]any{"Average Improvement (%)", analytics.Fixed(sum.AvgImprovement, 1)},
		[]any{"Min Improvement (%)", analytics.Fixed(sum.MinImprovement, 1)},
		[]any{"Max Improvement (%)", analytics.Fixed(sum.MaxImprovement, 1)},
		[]any{"Average Yield Before (t/ha)", analytics.Fixed(sum.AvgYieldBefore, 2)},
		[]any{"Average Yield After (t/ha)", analytics.Fixed(sum.AvgYieldAfter, 2)},
		[]any{"Average Yield Increase (t/ha)", analytics.Fixed(sum.TotalYieldIncrease, 2)},
	)
	return rows, nil
}

// BuildComparisonReport derives the comparison set from raw records and
// renders it.
func BuildComparisonReport(raws []model.RawRecord) (string, error) {
	rows, err := ComparisonTable(analytics.BuildComparisonSet(raws))
	if err != nil {
		return "", err
	}
	return BuildCSV(rows), nil
}
