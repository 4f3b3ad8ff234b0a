package report

import "github.com/smartgwiza/reports-cli/internal/model"

// SubmissionsHeader is the column layout of submission exports.
var SubmissionsHeader = []string{
	"Submission Type",
	"District",
	"Yield Value (t/ha)",
	"Rainfall (mm)",
	"Temperature (°C)",
	"Soil pH",
	"Fertilizer Used (kg/ha)",
	"Pesticide Used (l/ha)",
	"Irrigation Type",
	"Submission Date",
}

func submissionRow(s model.NormalizedSubmission) []any {
	return []any{
		string(s.Type),
		s.District,
		s.DisplayValue,
		s.Rainfall,
		s.Temperature,
		s.SoilPH,
		s.Fertilizer,
		s.Pesticide,
		s.IrrigationType,
		s.SubmissionDate,
	}
}

// SubmissionsTable returns the header plus one row per submission in input
// order.
func SubmissionsTable(subs []model.NormalizedSubmission) ([][]any, error) {
	if len(subs) == 0 {
		return nil, noData(model.ReportSubmissions, "submission")
	}
	rows := make([][]any, 0, len(subs)+1)
	rows = append(rows, stringsRow(SubmissionsHeader))
	for _, s := range subs {
		rows = append(rows, submissionRow(s))
	}
	return rows, nil
}

// BuildSubmissionsReport renders the flat submissions export.
func BuildSubmissionsReport(subs []model.NormalizedSubmission) (string, error) {
	rows, err := SubmissionsTable(subs)
	if err != nil {
		return "", err
	}
	return BuildCSV(rows), nil
}
