package normalize

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartgwiza/reports-cli/internal/model"
)

func TestClassify_Precedence(t *testing.T) {
	tests := []struct {
		name        string
		raw         model.RawRecord
		wantType    model.SubmissionType
		wantDisplay string
		wantValue   float64
	}{
		{"actual only", model.RawRecord{"actual_yield_tons_per_ha": 2.3}, model.SubmissionYieldData, "2.3", 2.3},
		{"predicted only", model.RawRecord{"predicted_yield": 3.0}, model.SubmissionPrediction, "3", 3},
		{"both prefers actual", model.RawRecord{"actual_yield_tons_per_ha": 4.0, "predicted_yield": 3.1}, model.SubmissionYieldData, "4", 4},
		{"zero actual falls through", model.RawRecord{"actual_yield_tons_per_ha": 0.0, "predicted_yield": 1.5}, model.SubmissionPrediction, "1.5", 1.5},
		{"neither", model.RawRecord{"district": "Huye"}, model.SubmissionUnknown, "N/A", 0},
		{"null actual", model.RawRecord{"actual_yield_tons_per_ha": nil}, model.SubmissionUnknown, "N/A", 0},
		{"empty string actual", model.RawRecord{"actual_yield_tons_per_ha": ""}, model.SubmissionUnknown, "N/A", 0},
		{"numeric string", model.RawRecord{"predicted_yield": "2.75"}, model.SubmissionPrediction, "2.75", 2.75},
		{"json number", model.RawRecord{"actual_yield_tons_per_ha": json.Number("1.20")}, model.SubmissionYieldData, "1.20", 1.2},
		{"integer", model.RawRecord{"actual_yield_tons_per_ha": 5}, model.SubmissionYieldData, "5", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, display, value := Classify(tt.raw)
			assert.Equal(t, tt.wantType, typ)
			assert.Equal(t, tt.wantDisplay, display)
			assert.InDelta(t, tt.wantValue, value, 1e-9)
		})
	}
}

func TestNormalize_TypeIsExclusive(t *testing.T) {
	values := []any{nil, "", 0.0, 1.0, "x", false, true}
	for _, a := range values {
		for _, p := range values {
			raw := model.RawRecord{"actual_yield_tons_per_ha": a, "predicted_yield": p}
			got := Normalize(raw).Type
			switch {
			case truthy(a):
				assert.Equal(t, model.SubmissionYieldData, got, "actual=%v predicted=%v", a, p)
			case truthy(p):
				assert.Equal(t, model.SubmissionPrediction, got, "actual=%v predicted=%v", a, p)
			default:
				assert.Equal(t, model.SubmissionUnknown, got, "actual=%v predicted=%v", a, p)
			}
		}
	}
}

func TestNormalize_ZeroIsNotAbsent(t *testing.T) {
	got := Normalize(model.RawRecord{"rainfall_mm": 0.0, "soil_ph": 0})
	assert.Equal(t, "0", got.Rainfall)
	assert.Equal(t, "0", got.SoilPH)

	got = Normalize(model.RawRecord{})
	assert.Equal(t, NotAvailable, got.Rainfall)
	assert.Equal(t, NotAvailable, got.SoilPH)
}

func TestNormalize_Defaults(t *testing.T) {
	got := Normalize(nil)

	assert.Equal(t, model.SubmissionUnknown, got.Type)
	assert.Equal(t, "N/A", got.DisplayValue)
	assert.Equal(t, "Unknown", got.District)
	for _, f := range []string{got.Rainfall, got.Temperature, got.SoilPH, got.Fertilizer, got.Pesticide, got.IrrigationType, got.Phone} {
		assert.Equal(t, "N/A", f)
	}
	assert.Equal(t, "Unknown Farmer", got.FarmerName)
	assert.False(t, got.HasFarmerName)
	assert.Equal(t, DateUnknown, got.SubmissionDate)
	assert.Equal(t, model.DateMissing, got.DateStatus)
	assert.True(t, got.SubmittedAt.IsZero())
}

func TestNormalize_FieldAliases(t *testing.T) {
	got := Normalize(model.RawRecord{
		"fertilizer_kg_per_ha": 50,
		"fullname":             "Alice Uwase",
		"phone_number":         "+250781234567",
		"irrigation_type":      "Drip",
		"pesticide_l_per_ha":   "1.5",
		"temperature_c":        21.4,
	})
	assert.Equal(t, "50", got.Fertilizer)
	assert.Equal(t, "Alice Uwase", got.FarmerName)
	assert.True(t, got.HasFarmerName)
	assert.Equal(t, "+250781234567", got.Phone)
	assert.Equal(t, "Drip", got.IrrigationType)
	assert.Equal(t, "1.5", got.Pesticide)
	assert.Equal(t, "21.4", got.Temperature)

	// Primary key wins over alias.
	got = Normalize(model.RawRecord{"fertilizer_used_kg_per_ha": 10, "fertilizer_kg_per_ha": 20})
	assert.Equal(t, "10", got.Fertilizer)
}

func TestNormalize_DatePrecedence(t *testing.T) {
	got := Normalize(model.RawRecord{
		"created_at":      "",
		"submission_date": "2025-03-01T08:30:00Z",
		"timestamp":       "2024-01-01T00:00:00Z",
	})
	assert.Equal(t, "2025-03-01 08:30", got.SubmissionDate)
	assert.Equal(t, model.DateValid, got.DateStatus)
	assert.Equal(t, time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC), got.SubmittedAt)

	got = Normalize(model.RawRecord{"created_at": "yesterday-ish"})
	assert.Equal(t, DateInvalid, got.SubmissionDate)
	assert.Equal(t, model.DateInvalid, got.DateStatus)
}

func TestNormalize_FalsyDateFallsThrough(t *testing.T) {
	got := Normalize(model.RawRecord{"created_at": 0, "submission_date": "2024-01-05T09:00:00Z"})
	assert.Equal(t, "2024-01-05 09:00", got.SubmissionDate)
	assert.Equal(t, model.DateValid, got.DateStatus)

	got = Normalize(model.RawRecord{"created_at": false, "timestamp": json.Number("0"), "submitted_at": "2024-02-01T00:00:00Z"})
	assert.Equal(t, "2024-02-01 00:00", got.SubmissionDate)

	for _, v := range []any{0, 0.0, false, json.Number("0")} {
		got = Normalize(model.RawRecord{"created_at": v})
		assert.Equal(t, DateUnknown, got.SubmissionDate, "%#v", v)
		assert.True(t, got.SubmittedAt.IsZero())
	}

	// Non-zero epochs are still dates.
	got = Normalize(model.RawRecord{"created_at": 1704067200000})
	assert.Equal(t, "2024-01-01 00:00", got.SubmissionDate)
}

func TestNormalize_YieldRecordDefaults(t *testing.T) {
	got := Normalize(model.RawRecord{
		"actual_yield_tons_per_ha": 2.3,
		"district":                 "Huye",
		"created_at":               "2025-01-10T10:00:00Z",
	})
	assert.Equal(t, model.SubmissionYieldData, got.Type)
	assert.Equal(t, "2.3", got.DisplayValue)
	assert.Equal(t, "Huye", got.District)
	assert.True(t, got.HasDistrict)
	assert.Equal(t, "2025-01-10 10:00", got.SubmissionDate)

	got = Normalize(model.RawRecord{"predicted_yield": 1})
	assert.Equal(t, UnknownDistrict, got.District)
	assert.False(t, got.HasDistrict)
}

func TestNormalizer_Options(t *testing.T) {
	kigali := time.FixedZone("CAT", 2*60*60)
	n := New(WithDateLayout("02/01/2006 15:04"), WithLocation(kigali), WithLocation(nil))

	got := n.Normalize(model.RawRecord{"created_at": "2025-01-10T10:00:00Z"})
	assert.Equal(t, "10/01/2025 12:00", got.SubmissionDate)
}

func TestNormalizer_EmptyLayoutIsDateError(t *testing.T) {
	n := New(WithDateLayout(""))

	got := n.Normalize(model.RawRecord{"created_at": "2025-01-10T10:00:00Z"})
	assert.Equal(t, DateError, got.SubmissionDate)
	assert.Equal(t, model.DateFailed, got.DateStatus)
	assert.False(t, got.SubmittedAt.IsZero())

	got = n.Normalize(model.RawRecord{})
	assert.Equal(t, DateUnknown, got.SubmissionDate)
}

func TestNormalizeAll_PreservesOrder(t *testing.T) {
	raws := []model.RawRecord{{"district": "B"}, {"district": "A"}, {"district": "C"}}
	got := New().NormalizeAll(raws)
	require.Len(t, got, 3)
	var districts []string
	for _, s := range got {
		districts = append(districts, s.District)
	}
	assert.Equal(t, "B,A,C", strings.Join(districts, ","))
}
