package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartgwiza/reports-cli/internal/model"
)

func TestNormalizeFarmer(t *testing.T) {
	n := New()

	got := n.NormalizeFarmer(model.RawRecord{
		"fullname":      "Jean Bosco",
		"phone_number":  "+250788000111",
		"district":      "Musanze",
		"latest_yield":  3.2,
		"is_active":     true,
		"updated_at":    "2025-02-01T09:15:00Z",
		"average_yield": "2.9",
	})
	assert.Equal(t, "Jean Bosco", got.Name)
	assert.Equal(t, "+250788000111", got.Phone)
	assert.Equal(t, "N/A", got.Email)
	assert.Equal(t, "Musanze", got.Location)
	assert.Equal(t, "3.2", got.LatestYield)
	assert.Equal(t, "Active", got.Status)
	assert.True(t, got.Active)
	assert.Equal(t, "2025-02-01 09:15", got.LastUpdated)
	assert.InDelta(t, 2.9, got.YieldValue, 1e-9)
}

func TestNormalizeFarmer_Defaults(t *testing.T) {
	got := New().NormalizeFarmer(nil)
	assert.Equal(t, "N/A", got.Name)
	assert.Equal(t, "Inactive", got.Status)
	assert.False(t, got.Active)
	assert.Equal(t, DateUnknown, got.LastUpdated)
	assert.Zero(t, got.YieldValue)
}

func TestNormalizeFarmer_ExplicitStatusWins(t *testing.T) {
	got := New().NormalizeFarmer(model.RawRecord{"status": "Pending", "is_active": true})
	assert.Equal(t, "Pending", got.Status)
	assert.True(t, got.Active)
}

func TestFarmerYield_FirstTruthy(t *testing.T) {
	assert.InDelta(t, 1.5, FarmerYield(model.RawRecord{"yield": 0, "average_yield": 1.5, "predicted_yield": 9}), 1e-9)
	assert.InDelta(t, 9, FarmerYield(model.RawRecord{"predicted_yield": "9"}), 1e-9)
	assert.Zero(t, FarmerYield(model.RawRecord{"yield": "high"}))
}

func TestNormalizeTrends_SortsAndCoerces(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	raws := []model.RawRecord{
		{"date": "2025-01-03", "average_yield": "2.5", "submission_count": 4, "min_yield": 1, "max_yield": "3.5"},
		{"date": "bogus", "average_yield": 1},
		{"date": "2025-01-01", "average_yield": 2.0, "submission_count": "2"},
	}
	got := NormalizeTrends(raws, now)
	require.Len(t, got, 3)

	assert.Equal(t, "Jan 01", got[0].Label)
	assert.Equal(t, 2, got[0].SubmissionCount)
	assert.Equal(t, "Jan 03", got[1].Label)
	assert.InDelta(t, 2.5, got[1].AverageYield, 1e-9)
	assert.InDelta(t, 3.5, got[1].MaxYield, 1e-9)
	assert.Equal(t, DateInvalid, got[2].Label)
	assert.Equal(t, now, got[2].Date)
}

func TestPhone(t *testing.T) {
	tests := []struct {
		in        string
		valid     bool
		formatted string
	}{
		{"078 123 4567", true, "+250781234567"},
		{"781234567", true, "+250781234567"},
		{"+250 781 234 567", true, "+250781234567"},
		{"250781234567", true, "+250781234567"},
		{"0612345678", false, "+250612345678"},
		{"12345", false, "+25012345"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateRwandanPhone(tt.in))
			assert.Equal(t, tt.formatted, FormatPhoneForBackend(tt.in))
		})
	}
}
