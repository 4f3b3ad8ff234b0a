package analytics

import (
	"time"

	"github.com/smartgwiza/reports-cli/internal/model"
)

// CountByType counts submissions of the given type.
func CountByType(subs []model.NormalizedSubmission, typ model.SubmissionType) int {
	n := 0
	for _, s := range subs {
		if s.Type == typ {
			n++
		}
	}
	return n
}

// AverageYield is the mean of positive YieldValues. ok is false when no
// submission carries a yield.
func AverageYield(subs []model.NormalizedSubmission) (float64, bool) {
	var sum float64
	var n int
	for _, s := range subs {
		if s.YieldValue <= 0 {
			continue
		}
		sum += s.YieldValue
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// SubmissionSummary backs the submissions overview counters.
type SubmissionSummary struct {
	Total            int `json:"total"`
	YieldSubmissions int `json:"yield_submissions"`
	Predictions      int `json:"predictions"`
	Today            int `json:"today"`
}

// SummarizeSubmissions counts submissions, preferring the backend's totals
// when supplied. Today is evaluated in now's location.
func SummarizeSubmissions(subs []model.NormalizedSubmission, stats *model.AdminStats, now time.Time) SubmissionSummary {
	sum := SubmissionSummary{
		Total:            len(subs),
		YieldSubmissions: CountByType(subs, model.SubmissionYieldData),
		Predictions:      CountByType(subs, model.SubmissionPrediction),
	}
	if stats != nil {
		if stats.TotalSubmissions > 0 {
			sum.Total = stats.TotalSubmissions
		}
		if stats.TotalPredictions > 0 {
			sum.Predictions = stats.TotalPredictions
		}
	}
	y, m, d := now.Date()
	for _, s := range subs {
		if s.SubmittedAt.IsZero() {
			continue
		}
		sy, sm, sd := s.SubmittedAt.In(now.Location()).Date()
		if sy == y && sm == m && sd == d {
			sum.Today++
		}
	}
	return sum
}

// TrendSummary describes a yield-trend series.
type TrendSummary struct {
	TotalSubmissions int     `json:"total_submissions"`
	AverageYield     float64 `json:"avg_yield_all_time"`
	MaxYield         float64 `json:"max_yield"`
	Trending         float64 `json:"trending"` // last average minus first
}

// SummarizeTrends reduces a date-sorted series. ok is false when empty.
func SummarizeTrends(trends []model.YieldTrend) (TrendSummary, bool) {
	if len(trends) == 0 {
		return TrendSummary{}, false
	}
	var sum TrendSummary
	var avgTotal float64
	sum.MaxYield = trends[0].MaxYield
	for _, t := range trends {
		sum.TotalSubmissions += t.SubmissionCount
		avgTotal += t.AverageYield
		sum.MaxYield = max(sum.MaxYield, t.MaxYield)
	}
	sum.AverageYield = Round(avgTotal/float64(len(trends)), 2)
	if len(trends) > 1 {
		sum.Trending = Round(trends[len(trends)-1].AverageYield-trends[0].AverageYield, 2)
	}
	return sum, true
}
