package dashboard

import (
	"time"

	"github.com/smartgwiza/reports-cli/internal/analytics"
)

// Overview is the analytics view derived from a snapshot. Sections whose
// data is absent are nil.
type Overview struct {
	Submissions  analytics.SubmissionSummary  `json:"submissions"`
	AverageYield *float64                     `json:"average_yield,omitempty"`
	Districts    []DistrictRow                `json:"districts"`
	Distribution []analytics.YieldBucket      `json:"distribution"`
	FarmerYields *analytics.YieldStats        `json:"farmer_yields,omitempty"`
	Trends       *analytics.TrendSummary      `json:"trends,omitempty"`
	Comparison   *analytics.ComparisonSummary `json:"comparison,omitempty"`
	Farmers      FarmerCounts                 `json:"farmers"`
	Errors       map[Source]string            `json:"errors,omitempty"`
}

// DistrictRow is one regional line of the overview.
type DistrictRow struct {
	District     string  `json:"district"`
	Submissions  int     `json:"submissions"`
	AverageYield float64 `json:"average_yield"`
	Farmers      int     `json:"farmers"`
}

// FarmerCounts summarizes the farmer listing.
type FarmerCounts struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// Overview computes the analytics view at now.
func (s State) Overview(now time.Time) Overview {
	o := Overview{
		Submissions: analytics.SummarizeSubmissions(s.Submissions, s.Stats, now),
		Errors:      s.Errors,
	}

	if s.Stats != nil && s.Stats.AverageYield > 0 {
		avg := analytics.Round(s.Stats.AverageYield, 2)
		o.AverageYield = &avg
	} else if avg, ok := analytics.AverageYield(s.Submissions); ok {
		avg = analytics.Round(avg, 2)
		o.AverageYield = &avg
	}

	for _, d := range analytics.AggregateByDistrict(s.Submissions) {
		o.Districts = append(o.Districts, DistrictRow{
			District:     d.District,
			Submissions:  d.Count,
			AverageYield: analytics.Round(d.AverageYield(), 2),
			Farmers:      d.FarmerCount(),
		})
	}

	yields := analytics.FarmerYields(s.Farmers)
	o.Distribution = analytics.YieldDistribution(yields)
	if st := analytics.ComputeYieldStats(yields); st.Count > 0 {
		o.FarmerYields = &st
	}

	if ts, ok := analytics.SummarizeTrends(s.Trends); ok {
		o.Trends = &ts
	}
	if cs, ok := analytics.SummarizeComparisons(analytics.BuildComparisonSet(s.RawSubmissions)); ok {
		o.Comparison = &cs
	}

	o.Farmers.Total = max(s.FarmerTotal, len(s.Farmers))
	for _, f := range s.Farmers {
		if f.Active {
			o.Farmers.Active++
		}
	}
	if s.Stats != nil {
		if s.Stats.TotalFarmers > 0 {
			o.Farmers.Total = s.Stats.TotalFarmers
		}
		if s.Stats.ActiveFarmers > 0 {
			o.Farmers.Active = s.Stats.ActiveFarmers
		}
	}
	return o
}
