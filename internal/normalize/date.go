package normalize

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/smartgwiza/reports-cli/internal/model"
)

// Date sentinels.
const (
	DateUnknown = "Unknown"
	DateInvalid = "Invalid Date"
	DateError   = "Date Error"
)

// DefaultDateLayout renders dates as "2025-01-10 10:00".
const DefaultDateLayout = "2006-01-02 15:04"

// ShortDateLayout renders chart labels such as "Jan 10".
const ShortDateLayout = "Jan 02"

// dateKeys lists submission date fields in precedence order.
var dateKeys = []string{"created_at", "submission_date", "timestamp", "submitted_at"}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2, 2006 15:04",
}

// maxEpochMillis is the largest magnitude a millisecond timestamp may have.
const maxEpochMillis = 8.64e15

// ParseDate interprets input as a date. Strings are tried against common
// ISO-8601 and human layouts (no zone means UTC); numbers are epoch
// milliseconds. The status is DateMissing or DateInvalid on failure.
func ParseDate(input any) (time.Time, model.DateStatus) {
	if !present(input) {
		return time.Time{}, model.DateMissing
	}
	switch v := input.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, model.DateMissing
		}
		return v, model.DateValid
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, model.DateMissing
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, model.DateValid
			}
		}
		return time.Time{}, model.DateInvalid
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, model.DateInvalid
		}
		return fromMillis(f)
	case bool:
		return time.Time{}, model.DateInvalid
	}
	f, ok := toFloat(input)
	if !ok {
		return time.Time{}, model.DateInvalid
	}
	return fromMillis(f)
}

func fromMillis(ms float64) (time.Time, model.DateStatus) {
	if math.Abs(ms) > maxEpochMillis {
		return time.Time{}, model.DateInvalid
	}
	return time.UnixMilli(int64(ms)).UTC(), model.DateValid
}

// FormatDate renders t with layout in loc. It never panics; a panic or an
// unusable layout is reported as an error.
func FormatDate(t time.Time, layout string, loc *time.Location) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", eris.Errorf("normalize: format date: %v", r)
		}
	}()
	if layout == "" {
		return "", eris.New("normalize: format date: empty layout")
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(layout), nil
}

// ParseDateSafely parses input and formats it with layout in UTC. It returns
// DateUnknown for absent input, DateInvalid for unparseable input and
// DateError when formatting fails.
func ParseDateSafely(input any, layout string) string {
	s, _, _ := resolveDate(input, layout, time.UTC)
	return s
}

func resolveDate(input any, layout string, loc *time.Location) (string, time.Time, model.DateStatus) {
	t, status := ParseDate(input)
	switch status {
	case model.DateMissing:
		return DateUnknown, time.Time{}, status
	case model.DateInvalid:
		return DateInvalid, time.Time{}, status
	}
	out, err := FormatDate(t, layout, loc)
	if err != nil {
		zap.L().Debug("date format failed", zap.Any("input", input), zap.Error(err))
		return DateError, t, model.DateFailed
	}
	return out, t, model.DateValid
}
