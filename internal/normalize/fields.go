// Package normalize turns loosely-typed backend records into canonical,
// display-ready values. Nothing here returns an error: missing or malformed
// input is replaced by sentinel strings.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/smartgwiza/reports-cli/internal/model"
)

// Fallback strings substituted for absent fields.
const (
	NotAvailable    = "N/A"
	UnknownDistrict = "Unknown"
	UnknownFarmer   = "Unknown Farmer"
)

// present reports whether v counts as a supplied value. nil and the empty
// string are absent; numeric zero and false are present.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case json.Number:
		return t != ""
	}
	return true
}

// lookup returns the value of the first key that is present in raw.
func lookup(raw model.RawRecord, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && present(v) {
			return v, true
		}
	}
	return nil, false
}

// truthy mirrors loose truthiness of JSON values: non-empty strings,
// non-zero numbers and true are truthy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case map[string]any, []any:
		return true
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return true
	}
	return f != 0 && !math.IsNaN(f)
}

// stringify renders a value the way it appears in reports.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// toFloat coerces numbers and numeric strings. ok is false for absent or
// non-numeric values.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return 0, false
		}
		v = t
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// displayField returns the first present value among keys as text, or
// fallback. Numeric zero is preserved.
func displayField(raw model.RawRecord, fallback string, keys ...string) string {
	v, ok := lookup(raw, keys...)
	if !ok {
		return fallback
	}
	s := stringify(v)
	if s == "" {
		return fallback
	}
	return s
}

// Float coerces the first present key to a float. Exported for packages
// that read numeric fields straight off raw records.
func Float(raw model.RawRecord, keys ...string) (float64, bool) {
	v, ok := lookup(raw, keys...)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Text returns the first present key as text, or fallback.
func Text(raw model.RawRecord, fallback string, keys ...string) string {
	return displayField(raw, fallback, keys...)
}

// Truthy reports whether key holds a truthy value.
func Truthy(raw model.RawRecord, key string) bool {
	return truthy(raw[key])
}
