package model

import "time"

// RawRecord is a single JSON object as returned by the backend. No key is
// guaranteed to be present and values may be strings, numbers, bools or nil.
type RawRecord map[string]any

// SubmissionType classifies a submission by which yield field it carries.
type SubmissionType string

const (
	SubmissionYieldData  SubmissionType = "Yield Data"
	SubmissionPrediction SubmissionType = "Prediction"
	SubmissionUnknown    SubmissionType = "Unknown"
)

// DateStatus records how a submission date was resolved.
type DateStatus int

const (
	DateValid   DateStatus = iota // parsed and formatted
	DateMissing                   // no date field present
	DateInvalid                   // present but unparseable
	DateFailed                    // parsed but formatting failed
)

// NormalizedSubmission is the canonical shape of a submission after
// defaults and sentinels have been applied. Display fields are text.
type NormalizedSubmission struct {
	Type         SubmissionType `json:"submission_type"`
	DisplayValue string         `json:"display_value"`
	YieldValue   float64        `json:"yield_value"` // 0 when Type is Unknown

	District       string `json:"district"`
	HasDistrict    bool   `json:"-"` // false when District is the fallback
	Rainfall       string `json:"rainfall_mm"`
	Temperature    string `json:"temperature_c"`
	SoilPH         string `json:"soil_ph"`
	Fertilizer     string `json:"fertilizer_kg_per_ha"`
	Pesticide      string `json:"pesticide_l_per_ha"`
	IrrigationType string `json:"irrigation_type"`

	SubmissionDate string     `json:"submission_date"`
	SubmittedAt    time.Time  `json:"submitted_at,omitzero"` // zero when the date is missing or invalid
	DateStatus     DateStatus `json:"date_status"`

	FarmerName    string `json:"farmer_name"`
	HasFarmerName bool   `json:"-"`
	Phone         string `json:"phone"`
}
