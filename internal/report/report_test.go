package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/smartgwiza/reports-cli/internal/model"
	"github.com/smartgwiza/reports-cli/internal/normalize"
)

var generated = time.Date(2025, 2, 3, 14, 5, 0, 0, time.UTC)

func subs(raws ...model.RawRecord) []model.NormalizedSubmission {
	return normalize.New().NormalizeAll(raws)
}

func parse(t *testing.T, s string) [][]string {
	t.Helper()
	r := csv.NewReader(strings.NewReader(s))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestBuildSubmissionsReport_SingleYieldRecord(t *testing.T) {
	out, err := BuildSubmissionsReport(subs(model.RawRecord{
		"actual_yield_tons_per_ha": 2.3,
		"district":                 "Huye",
		"created_at":               "2025-01-10T10:00:00Z",
	}))
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Submission Type","District","Yield Value (t/ha)","Rainfall (mm)","Temperature (°C)","Soil pH","Fertilizer Used (kg/ha)","Pesticide Used (l/ha)","Irrigation Type","Submission Date"`, lines[0])
	assert.Equal(t, `"Yield Data","Huye","2.3","N/A","N/A","N/A","N/A","N/A","N/A","2025-01-10 10:00"`, lines[1])
}

func TestBuildSubmissionsReport_PreservesOrderAndZero(t *testing.T) {
	out, err := BuildSubmissionsReport(subs(
		model.RawRecord{"predicted_yield": 3, "district": "B", "rainfall_mm": 0},
		model.RawRecord{"district": "A"},
	))
	require.NoError(t, err)

	records := parse(t, out)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Prediction", "B", "3", "0"}, records[1][:4])
	assert.Equal(t, []string{"Unknown", "A", "N/A", "N/A"}, records[2][:4])
	assert.Equal(t, "Unknown", records[2][9])
}

func TestBuildSubmissionsReport_NoData(t *testing.T) {
	for _, in := range [][]model.NormalizedSubmission{nil, {}} {
		out, err := BuildSubmissionsReport(in)
		assert.Empty(t, out)
		require.ErrorIs(t, err, ErrNoData)
		assert.False(t, errors.Is(err, ErrNoMatch))
		assert.Equal(t, "No submission data available to export.", UserMessage(err))
	}
}

func TestBuildFilteredSubmissionsReport(t *testing.T) {
	data := subs(
		model.RawRecord{"actual_yield_tons_per_ha": 2, "district": "Huye", "created_at": "2025-01-10T10:00:00Z"},
		model.RawRecord{"predicted_yield": 3, "district": "Musanze", "created_at": "2025-01-12T10:00:00Z"},
		model.RawRecord{"actual_yield_tons_per_ha": 4, "district": "HUYE", "created_at": "2025-01-20T00:00:00Z"},
		model.RawRecord{"actual_yield_tons_per_ha": 5, "district": "Huye"},
	)

	tests := []struct {
		name     string
		filters  Filters
		wantRows []string // district column of data rows
	}{
		{"no filters", Filters{}, []string{"Huye", "Musanze", "HUYE", "Huye"}},
		{"all", Filters{SubmissionType: TypeAll, District: DistrictAll}, []string{"Huye", "Musanze", "HUYE", "Huye"}},
		{"yield only", Filters{SubmissionType: TypeYield}, []string{"Huye", "HUYE", "Huye"}},
		{"prediction only", Filters{SubmissionType: TypePrediction}, []string{"Musanze"}},
		{"district case-insensitive", Filters{District: "huye"}, []string{"Huye", "HUYE", "Huye"}},
		{
			"inclusive date range",
			Filters{DateRange: &DateRange{
				Start: time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC),
				End:   time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
			}},
			[]string{"Huye", "Musanze", "HUYE"},
		},
		{
			"combined",
			Filters{SubmissionType: TypeYield, District: "Huye", DateRange: &DateRange{
				Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			}},
			[]string{"Huye"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := BuildFilteredSubmissionsReport(data, tt.filters)
			require.NoError(t, err)
			records := parse(t, out)
			var got []string
			for _, r := range records[1:] {
				got = append(got, r[1])
			}
			assert.Equal(t, tt.wantRows, got)
		})
	}
}

func TestBuildFilteredSubmissionsReport_DistrictCaseFold(t *testing.T) {
	out, err := BuildFilteredSubmissionsReport(subs(model.RawRecord{"district": "Huye", "predicted_yield": 1}), Filters{District: "huye"})
	require.NoError(t, err)
	assert.Len(t, parse(t, out), 2)
}

func TestBuildFilteredSubmissionsReport_MissingDistrict(t *testing.T) {
	in := subs(
		model.RawRecord{"predicted_yield": 1},
		model.RawRecord{"district": "", "predicted_yield": 2},
		model.RawRecord{"district": "Unknown", "predicted_yield": 3},
	)
	require.Equal(t, "Unknown", in[0].District)

	out, err := BuildFilteredSubmissionsReport(in, Filters{District: "unknown"})
	require.NoError(t, err)
	rows := parse(t, out)
	require.Len(t, rows, 2, "only the record that named the district matches")
	assert.Equal(t, "3", rows[1][2])

	_, err = BuildFilteredSubmissionsReport(in[:2], Filters{District: "UNKNOWN"})
	require.ErrorIs(t, err, ErrNoMatch)

	out, err = BuildFilteredSubmissionsReport(in, Filters{District: DistrictAll})
	require.NoError(t, err)
	assert.Len(t, parse(t, out), 4)
}

func TestBuildFilteredSubmissionsReport_Errors(t *testing.T) {
	_, err := BuildFilteredSubmissionsReport(nil, Filters{District: "Huye"})
	require.ErrorIs(t, err, ErrNoData)

	_, err = BuildFilteredSubmissionsReport(subs(model.RawRecord{"district": "Huye"}), Filters{District: "Rubavu"})
	require.ErrorIs(t, err, ErrNoMatch)
	assert.False(t, errors.Is(err, ErrNoData))
	assert.Equal(t, "No submissions match the selected filters.", UserMessage(err))

	_, err = BuildFilteredSubmissionsReport(subs(model.RawRecord{"district": "Huye"}), Filters{SubmissionType: "harvest"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoMatch))

	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	_, err = BuildFilteredSubmissionsReport(subs(model.RawRecord{"district": "Huye"}), Filters{DateRange: &DateRange{Start: start, End: start.Add(-time.Hour)}})
	require.Error(t, err)
}

func TestBuildStatsReport_RegionalAverages(t *testing.T) {
	out, err := BuildStatsReport(subs(
		model.RawRecord{"district": "A", "actual_yield_tons_per_ha": 2, "user_name": "Alice"},
		model.RawRecord{"district": "A", "predicted_yield": 3, "user_name": "Bob"},
		model.RawRecord{"district": "B", "actual_yield_tons_per_ha": 4},
	), nil, generated)
	require.NoError(t, err)

	records := parse(t, out)
	assert.Equal(t, []string{StatsTitle, "", "", ""}, records[0])
	assert.Equal(t, []string{"Generated on:", "2025-02-03 14:05", "", ""}, records[1])
	assert.Equal(t, []string{"Total Submissions", "3", "", ""}, records[4])
	assert.Equal(t, []string{"Yield Data Submissions", "2", "", ""}, records[5])
	assert.Equal(t, []string{"Prediction Submissions", "1", "", ""}, records[6])
	assert.Equal(t, []string{"Average Yield", "3.00 t/ha", "", ""}, records[7])
	assert.Equal(t, RegionalHeader, records[10])

	regional := records[11:]
	require.Len(t, regional, 2)
	assert.Equal(t, []string{"A", "2", "2.50", "2"}, regional[0])
	assert.Equal(t, []string{"B", "1", "4.00", "0"}, regional[1])
}

func TestBuildStatsReport_PrefersSuppliedStats(t *testing.T) {
	out, err := BuildStatsReport(subs(model.RawRecord{"district": "A", "actual_yield_tons_per_ha": 2}),
		&model.AdminStats{TotalSubmissions: 120, AverageYield: 2.756}, generated)
	require.NoError(t, err)

	records := parse(t, out)
	assert.Equal(t, "120", records[4][1])
	assert.Equal(t, "2.76 t/ha", records[7][1])
}

func TestBuildStatsReport_NoData(t *testing.T) {
	_, err := BuildStatsReport(nil, &model.AdminStats{TotalSubmissions: 5}, generated)
	require.ErrorIs(t, err, ErrNoData)
}

func TestBuildFarmersReport(t *testing.T) {
	n := normalize.New()
	farmers := n.NormalizeFarmers([]model.RawRecord{
		{"fullname": `Jean "JD" Doe`, "phone_number": "+250788123456", "district": "Huye", "yield": 2.4, "is_active": true},
	})
	out, err := BuildFarmersReport(farmers)
	require.NoError(t, err)

	records := parse(t, out)
	require.Len(t, records, 2)
	assert.Equal(t, FarmersHeader, records[0])
	assert.Equal(t, `Jean "JD" Doe`, records[1][0])
	assert.Equal(t, "Active", records[1][5])

	_, err = BuildFarmersReport(nil)
	require.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, "No farmer data available to export.", UserMessage(err))
}

func TestBuildComparisonReport(t *testing.T) {
	out, err := BuildComparisonReport([]model.RawRecord{
		{"yield_before": 2, "actual_yield_tons_per_ha": 3, "user_name": "Alice", "district": "Huye"},
		{"yield_before": 0, "actual_yield_tons_per_ha": 5, "user_name": "Zero"},
	})
	require.NoError(t, err)

	records := parse(t, out)
	assert.Equal(t, ComparisonHeader, records[0])
	assert.Equal(t, []string{"Alice", "Huye", "2", "3", "50.0", "Unknown"}, records[1])
	assert.NotContains(t, out, "Zero")
	assert.Contains(t, out, `"Average Improvement (%)","50.0"`)
}

func TestBuildComparisonReport_EmptyIsNoData(t *testing.T) {
	_, err := BuildComparisonReport([]model.RawRecord{{"yield_before": 0, "actual_yield_tons_per_ha": 5}})
	require.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, "No comparison data available to export.", UserMessage(err))
}

func TestBuild_DispatchAndFilename(t *testing.T) {
	in := Input{
		Raw:         []model.RawRecord{{"district": "A", "actual_yield_tons_per_ha": 2, "yield_before": 1}},
		Submissions: subs(model.RawRecord{"district": "A", "actual_yield_tons_per_ha": 2}),
		Farmers:     []model.Farmer{{Name: "Alice"}},
		Now:         generated,
	}
	for _, kind := range Kinds {
		t.Run(string(kind), func(t *testing.T) {
			rep, err := Build(kind, in)
			require.NoError(t, err)
			assert.Equal(t, 1, rep.DataRows)
			assert.Equal(t, "smartgwiza-"+string(kind)+"-2025-02-03.csv", rep.Filename("smartgwiza"))
			assert.NotEmpty(t, rep.CSV())
		})
	}

	_, err := Build("bogus", in)
	require.Error(t, err)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("stats")
	require.NoError(t, err)
	assert.Equal(t, model.ReportStats, k)

	k, err = ParseKind("submissions-filtered")
	require.NoError(t, err)
	assert.Equal(t, model.ReportFiltered, k)

	_, err = ParseKind("nope")
	require.Error(t, err)
}

func TestWriteXLSX(t *testing.T) {
	rep, err := Build(model.ReportStats, Input{
		Submissions: subs(model.RawRecord{"district": "A", "actual_yield_tons_per_ha": 2}),
		Now:         generated,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteXLSX(&buf))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	assert.Equal(t, "submissions-stats", f.Sheets[0].Name)
	assert.Equal(t, StatsTitle, f.Sheets[0].Rows[0].Cells[0].String())
	assert.Equal(t, "A", f.Sheets[0].Rows[11].Cells[0].String())
}

func TestParseFilters(t *testing.T) {
	kigali := time.FixedZone("CAT", 2*60*60)

	f, err := ParseFilters("", "", "", "", nil)
	require.NoError(t, err)
	assert.Nil(t, f.DateRange)

	f, err = ParseFilters(TypeYield, "Huye", "2024-01-10", "2024-01-12", kigali)
	require.NoError(t, err)
	assert.Equal(t, TypeYield, f.SubmissionType)
	assert.Equal(t, "Huye", f.District)
	require.NotNil(t, f.DateRange)
	assert.True(t, f.DateRange.Contains(time.Date(2024, 1, 12, 23, 59, 0, 0, kigali)), "to is inclusive of the whole day")
	assert.False(t, f.DateRange.Contains(time.Date(2024, 1, 13, 0, 0, 0, 0, kigali)))
	assert.False(t, f.DateRange.Contains(time.Date(2024, 1, 9, 23, 59, 0, 0, kigali)))

	f, err = ParseFilters("", "", "", "2024-01-12", nil)
	require.NoError(t, err)
	assert.True(t, f.DateRange.Contains(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)), "missing from is open")

	_, err = ParseFilters("", "", "12/01/2024", "", nil)
	assert.Error(t, err)
	_, err = ParseFilters("harvest", "", "", "", nil)
	assert.Error(t, err)
	_, err = ParseFilters("", "", "2024-02-01", "2024-01-01", nil)
	assert.Error(t, err)
}
