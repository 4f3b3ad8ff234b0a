package normalize

import (
	"cmp"
	"time"

	"github.com/smartgwiza/reports-cli/internal/model"
)

// yieldRule classifies a record when match holds. Rules are evaluated in
// order and the first match wins.
type yieldRule struct {
	typ     model.SubmissionType
	match   func(model.RawRecord) bool
	extract func(model.RawRecord) (string, float64)
}

// fieldRule builds a rule keyed on a single truthy field.
func fieldRule(typ model.SubmissionType, key string) yieldRule {
	return yieldRule{
		typ:   typ,
		match: func(r model.RawRecord) bool { return truthy(r[key]) },
		extract: func(r model.RawRecord) (string, float64) {
			f, _ := toFloat(r[key])
			return stringify(r[key]), f
		},
	}
}

var yieldRules = []yieldRule{
	fieldRule(model.SubmissionYieldData, "actual_yield_tons_per_ha"),
	fieldRule(model.SubmissionPrediction, "predicted_yield"),
}

// Classify returns the submission type, the bare display value and the
// numeric yield for raw.
func Classify(raw model.RawRecord) (model.SubmissionType, string, float64) {
	for _, rule := range yieldRules {
		if rule.match(raw) {
			display, value := rule.extract(raw)
			return rule.typ, display, value
		}
	}
	return model.SubmissionUnknown, NotAvailable, 0
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithDateLayout sets the layout used for submission dates.
func WithDateLayout(layout string) Option {
	return func(n *Normalizer) { n.layout = layout }
}

// WithLocation sets the zone dates are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.loc = loc
		}
	}
}

// Normalizer converts raw records into canonical shapes. It holds only
// immutable formatting settings and is safe for concurrent use.
type Normalizer struct {
	layout string
	loc    *time.Location
}

// New creates a Normalizer rendering dates as DefaultDateLayout in UTC.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{layout: DefaultDateLayout, loc: time.UTC}
	for _, o := range opts {
		o(n)
	}
	return n
}

var defaultNormalizer = New()

// Normalize converts raw with the default Normalizer.
func Normalize(raw model.RawRecord) model.NormalizedSubmission {
	return defaultNormalizer.Normalize(raw)
}

// Normalize converts a single raw submission. It never fails.
func (n *Normalizer) Normalize(raw model.RawRecord) model.NormalizedSubmission {
	if raw == nil {
		raw = model.RawRecord{}
	}
	typ, display, value := Classify(raw)

	// Epoch zero and false are placeholders, not dates.
	dateInput, _ := firstTruthy(raw, dateKeys...)
	dateText, at, status := resolveDate(dateInput, n.layout, n.loc)

	_, hasName := lookup(raw, "user_name", "fullname")
	district := displayField(raw, "", "district")

	return model.NormalizedSubmission{
		Type:           typ,
		DisplayValue:   display,
		YieldValue:     value,
		District:       cmp.Or(district, UnknownDistrict),
		HasDistrict:    district != "",
		Rainfall:       displayField(raw, NotAvailable, "rainfall_mm"),
		Temperature:    displayField(raw, NotAvailable, "temperature_c"),
		SoilPH:         displayField(raw, NotAvailable, "soil_ph"),
		Fertilizer:     displayField(raw, NotAvailable, "fertilizer_used_kg_per_ha", "fertilizer_kg_per_ha"),
		Pesticide:      displayField(raw, NotAvailable, "pesticide_l_per_ha"),
		IrrigationType: displayField(raw, NotAvailable, "irrigation_type"),
		SubmissionDate: dateText,
		SubmittedAt:    at,
		DateStatus:     status,
		FarmerName:     displayField(raw, UnknownFarmer, "user_name", "fullname"),
		HasFarmerName:  hasName,
		Phone:          displayField(raw, NotAvailable, "phone", "phone_number"),
	}
}

// NormalizeAll normalizes records preserving order.
func (n *Normalizer) NormalizeAll(raws []model.RawRecord) []model.NormalizedSubmission {
	out := make([]model.NormalizedSubmission, len(raws))
	for i, r := range raws {
		out[i] = n.Normalize(r)
	}
	return out
}

// FormatDate renders input with the Normalizer's layout and zone using the
// same sentinels as submission dates.
func (n *Normalizer) FormatDate(input any) string {
	s, _, _ := resolveDate(input, n.layout, n.loc)
	return s
}
