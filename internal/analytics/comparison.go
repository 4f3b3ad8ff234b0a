package analytics

import (
	"github.com/rotisserie/eris"

	"github.com/smartgwiza/reports-cli/internal/model"
	"github.com/smartgwiza/reports-cli/internal/normalize"
)

// ErrDivisionByZero is returned when an improvement is requested against a
// zero baseline.
var ErrDivisionByZero = eris.New("analytics: improvement undefined for zero baseline")

// ComputeImprovement returns the percentage change from before to after,
// rounded to one decimal.
func ComputeImprovement(before, after float64) (float64, error) {
	if before == 0 {
		return 0, ErrDivisionByZero
	}
	return Round((after-before)/before*100, 1), nil
}

// ComparisonRecord pairs a farmer's yield before and after adopting the
// platform.
type ComparisonRecord struct {
	Farmer         string  `json:"farmer"`
	District       string  `json:"district"`
	YieldBefore    float64 `json:"yield_before"`
	YieldAfter     float64 `json:"yield_after"`
	Improvement    float64 `json:"improvement"`
	SubmissionDate string  `json:"submission_date"`
}

// comparable reports whether raw carries positive before and after yields.
func comparable(raw model.RawRecord) (before, after float64, ok bool) {
	if !normalize.Truthy(raw, "yield_before") || !normalize.Truthy(raw, "actual_yield_tons_per_ha") {
		return 0, 0, false
	}
	before, okB := normalize.Float(raw, "yield_before")
	after, okA := normalize.Float(raw, "actual_yield_tons_per_ha")
	if !okB || !okA || before <= 0 || after <= 0 {
		return 0, 0, false
	}
	return before, after, true
}

// BuildComparisonSet keeps only records with positive yield_before and
// actual_yield_tons_per_ha. Other records are dropped, not zero-filled.
func BuildComparisonSet(raws []model.RawRecord) []ComparisonRecord {
	var out []ComparisonRecord
	for _, raw := range raws {
		before, after, ok := comparable(raw)
		if !ok {
			continue
		}
		improvement, err := ComputeImprovement(before, after)
		if err != nil {
			continue
		}
		out = append(out, ComparisonRecord{
			Farmer:         normalize.Text(raw, normalize.UnknownFarmer, "user_name", "fullname"),
			District:       normalize.Text(raw, normalize.UnknownDistrict, "district"),
			YieldBefore:    before,
			YieldAfter:     after,
			Improvement:    improvement,
			SubmissionDate: normalize.ParseDateSafely(raw["submission_date"], normalize.ShortDateLayout),
		})
	}
	return out
}

// ComparisonSummary aggregates a comparison set.
type ComparisonSummary struct {
	Count              int     `json:"total_comparisons"`
	AvgImprovement     float64 `json:"avg_improvement"`
	MinImprovement     float64 `json:"min_improvement"`
	MaxImprovement     float64 `json:"max_improvement"`
	AvgYieldBefore     float64 `json:"avg_yield_before"`
	AvgYieldAfter      float64 `json:"avg_yield_after"`
	TotalYieldIncrease float64 `json:"total_yield_increase"`
}

// SummarizeComparisons reduces a comparison set. ok is false for an empty
// set; there is no meaningful zero summary.
func SummarizeComparisons(set []ComparisonRecord) (ComparisonSummary, bool) {
	if len(set) == 0 {
		return ComparisonSummary{}, false
	}
	var sumImp, sumBefore, sumAfter float64
	minImp, maxImp := set[0].Improvement, set[0].Improvement
	for _, c := range set {
		sumImp += c.Improvement
		sumBefore += c.YieldBefore
		sumAfter += c.YieldAfter
		minImp = min(minImp, c.Improvement)
		maxImp = max(maxImp, c.Improvement)
	}
	n := float64(len(set))
	avgBefore, avgAfter := sumBefore/n, sumAfter/n
	return ComparisonSummary{
		Count:              len(set),
		AvgImprovement:     Round(sumImp/n, 1),
		MinImprovement:     Round(minImp, 1),
		MaxImprovement:     Round(maxImp, 1),
		AvgYieldBefore:     Round(avgBefore, 2),
		AvgYieldAfter:      Round(avgAfter, 2),
		TotalYieldIncrease: Round(avgAfter-avgBefore, 2),
	}, true
}
