package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartgwiza/reports-cli/internal/analytics"
	"github.com/smartgwiza/reports-cli/internal/dashboard"
	"github.com/smartgwiza/reports-cli/internal/model"
)

func TestLoadOverview_FromInput(t *testing.T) {
	dir := useTestConfig(t, "")
	analyticsInput = writeInput(t, dir, submissionsJSON)
	t.Cleanup(func() { analyticsInput = "" })

	o, err := loadOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, o.Submissions.Total)
	require.Len(t, o.Districts, 2)
	require.NotNil(t, o.Comparison)
	assert.InDelta(t, 25.0, o.Comparison.AvgImprovement, 0.001)

	b, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"districts"`)
}

func TestLoadOverview_RequiresSession(t *testing.T) {
	useTestConfig(t, "http://127.0.0.1:1")
	_, err := loadOverview(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestFormatOverview(t *testing.T) {
	avg := 2.456
	o := dashboard.Overview{
		Submissions:  analytics.SubmissionSummary{Total: 12, YieldSubmissions: 8, Predictions: 4, Today: 1},
		AverageYield: &avg,
		Districts:    []dashboard.DistrictRow{{District: "Huye", Submissions: 3, AverageYield: 2.5, Farmers: 2}},
		Distribution: []analytics.YieldBucket{{Name: "2-3 t/ha", Count: 5}},
		Trends:       &analytics.TrendSummary{Trending: 0.4, TotalSubmissions: 30},
		Farmers:      dashboard.FarmerCounts{Total: 10, Active: 7},
		Errors:       map[dashboard.Source]string{dashboard.SourceStats: "timeout"},
	}

	var buf bytes.Buffer
	formatOverview(&buf, o)
	out := buf.String()
	assert.Contains(t, out, "Total submissions:")
	assert.Contains(t, out, "2.46 t/ha")
	assert.Contains(t, out, "10 (7 active)")
	assert.Contains(t, out, "+0.40 t/ha over 30 submissions")
	assert.Contains(t, out, "DISTRICT")
	assert.Contains(t, out, "Huye")
	assert.Contains(t, out, "2.50")
	assert.Contains(t, out, "2-3 t/ha")
	assert.Contains(t, out, "warning: stats unavailable: timeout")
}

func TestFormatExports(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	recs := []model.ExportRecord{{
		ID:        "abc12345-6789-0000-0000-000000000000",
		Kind:      model.ReportStats,
		Filename:  "smartgwiza-submissions-stats-2025-06-15.csv",
		Rows:      4,
		Source:    "cache",
		CreatedAt: now,
	}}

	var buf bytes.Buffer
	formatExports(&buf, recs)
	out := buf.String()
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "abc12345")
	assert.NotContains(t, out, "abc12345-6789")
	assert.Contains(t, out, "submissions-stats")
	assert.Contains(t, out, "cache")
	assert.Contains(t, out, "2025-06-15 10:30")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc", truncateID("abc"))
	assert.Equal(t, "12345678", truncateID("1234567890"))
}
