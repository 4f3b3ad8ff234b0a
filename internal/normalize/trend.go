package normalize

import (
	"sort"
	"time"

	"github.com/smartgwiza/reports-cli/internal/model"
)

// NormalizeTrends coerces the numeric fields of each trend point, labels it
// and sorts the series by date. Points without a usable date are placed at
// now.
func NormalizeTrends(raws []model.RawRecord, now time.Time) []model.YieldTrend {
	out := make([]model.YieldTrend, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			raw = model.RawRecord{}
		}
		label, at, status := resolveDate(raw["date"], ShortDateLayout, time.UTC)
		if status != model.DateValid {
			at = now
		}
		avg, _ := toFloat(raw["average_yield"])
		count, _ := toFloat(raw["submission_count"])
		minY, _ := toFloat(raw["min_yield"])
		maxY, _ := toFloat(raw["max_yield"])
		out = append(out, model.YieldTrend{
			Date:            at,
			Label:           label,
			AverageYield:    avg,
			SubmissionCount: int(count),
			MinYield:        minY,
			MaxYield:        maxY,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
