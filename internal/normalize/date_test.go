package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartgwiza/reports-cli/internal/model"
)

func TestParseDateSafely(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		layout string
		want   string
	}{
		{"nil", nil, DefaultDateLayout, DateUnknown},
		{"empty", "", DefaultDateLayout, DateUnknown},
		{"whitespace", "   ", DefaultDateLayout, DateUnknown},
		{"garbage", "not a date", DefaultDateLayout, DateInvalid},
		{"bool", true, DefaultDateLayout, DateInvalid},
		{"rfc3339", "2025-01-10T10:00:00Z", DefaultDateLayout, "2025-01-10 10:00"},
		{"offset", "2025-01-10T12:00:00+02:00", DefaultDateLayout, "2025-01-10 10:00"},
		{"fractional no zone", "2025-01-10T10:00:00.123456", DefaultDateLayout, "2025-01-10 10:00"},
		{"space separated", "2025-01-10 10:00:00", DefaultDateLayout, "2025-01-10 10:00"},
		{"date only", "2025-01-10", DefaultDateLayout, "2025-01-10 00:00"},
		{"epoch millis", 1736503200000.0, DefaultDateLayout, "2025-01-10 10:00"},
		{"epoch json number", json.Number("1736503200000"), DefaultDateLayout, "2025-01-10 10:00"},
		{"out of range millis", 1e17, DefaultDateLayout, DateInvalid},
		{"short layout", "2025-01-10T10:00:00Z", ShortDateLayout, "Jan 10"},
		{"empty layout", "2025-01-10T10:00:00Z", "", DateError},
		{"time value", time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), DefaultDateLayout, "2025-01-10 10:00"},
		{"zero time", time.Time{}, DefaultDateLayout, DateUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDateSafely(tt.input, tt.layout))
		})
	}
}

func TestParseDate_Status(t *testing.T) {
	_, status := ParseDate(nil)
	assert.Equal(t, model.DateMissing, status)

	_, status = ParseDate("31/31/2025")
	assert.Equal(t, model.DateInvalid, status)

	got, status := ParseDate("2025-02-03")
	require.Equal(t, model.DateValid, status)
	assert.Equal(t, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), got)
}

func TestFormatDate_NilLocation(t *testing.T) {
	out, err := FormatDate(time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), DefaultDateLayout, nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10 10:00", out)

	_, err = FormatDate(time.Now(), "", nil)
	assert.Error(t, err)
}
