package report

import "github.com/smartgwiza/reports-cli/internal/model"

// FarmersHeader is the column layout of the farmers export.
var FarmersHeader = []string{"Name", "Phone", "Email", "Location", "Yield (t/ha)", "Status", "Last Updated"}

// FarmersTable returns the header plus one row per farmer.
func FarmersTable(farmers []model.Farmer) ([][]any, error) {
	if len(farmers) == 0 {
		return nil, noData(model.ReportFarmers, "farmer")
	}
	rows := make([][]any, 0, len(farmers)+1)
	rows = append(rows, stringsRow(FarmersHeader))
	for _, f := range farmers {
		rows = append(rows, []any{f.Name, f.Phone, f.Email, f.Location, f.LatestYield, f.Status, f.LastUpdated})
	}
	return rows, nil
}

// BuildFarmersReport renders the farmers export.
func BuildFarmersReport(farmers []model.Farmer) (string, error) {
	rows, err := FarmersTable(farmers)
	if err != nil {
		return "", err
	}
	return BuildCSV(rows), nil
}
