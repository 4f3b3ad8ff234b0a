package model

// AdminStats is the authoritative summary served by the backend. Zero
// values mean "not supplied" and callers fall back to local computation.
type AdminStats struct {
	TotalFarmers     int     `json:"total_farmers"`
	ActiveFarmers    int     `json:"active_farmers"`
	TotalPredictions int     `json:"total_predictions"`
	AverageYield     float64 `json:"average_yield"`
	ActiveRate       float64 `json:"active_rate"`
	TotalSubmissions int     `json:"total_submissions"`
}
