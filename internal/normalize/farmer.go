package normalize

import (
	"github.com/smartgwiza/reports-cli/internal/model"
)

// firstTruthy returns the first key holding a truthy value.
func firstTruthy(raw model.RawRecord, keys ...string) (any, bool) {
	for _, k := range keys {
		if truthy(raw[k]) {
			return raw[k], true
		}
	}
	return nil, false
}

// FarmerYield returns yield, average_yield or predicted_yield, whichever is
// truthy first, as a number. Non-numeric values yield 0.
func FarmerYield(raw model.RawRecord) float64 {
	v, ok := firstTruthy(raw, "yield", "average_yield", "predicted_yield")
	if !ok {
		return 0
	}
	f, _ := toFloat(v)
	return f
}

// NormalizeFarmer converts a farmer record from the admin listing.
func (n *Normalizer) NormalizeFarmer(raw model.RawRecord) model.Farmer {
	if raw == nil {
		raw = model.RawRecord{}
	}
	active := truthy(raw["is_active"])
	status := displayField(raw, "", "status")
	if status == "" {
		status = "Inactive"
		if active {
			status = "Active"
		}
	}
	updated, _ := lookup(raw, "lastPrediction", "updated_at", "created_at")

	return model.Farmer{
		Name:        displayField(raw, NotAvailable, "name", "fullname"),
		Phone:       displayField(raw, NotAvailable, "phone", "phone_number"),
		Email:       displayField(raw, NotAvailable, "email"),
		Location:    displayField(raw, NotAvailable, "location", "district"),
		LatestYield: displayField(raw, NotAvailable, "latest_yield"),
		Status:      status,
		Active:      status == "Active" || active,
		LastUpdated: n.FormatDate(updated),
		YieldValue:  FarmerYield(raw),
	}
}

// NormalizeFarmers normalizes a farmer listing preserving order.
func (n *Normalizer) NormalizeFarmers(raws []model.RawRecord) []model.Farmer {
	out := make([]model.Farmer, len(raws))
	for i, r := range raws {
		out[i] = n.NormalizeFarmer(r)
	}
	return out
}
