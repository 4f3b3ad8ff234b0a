package analytics

import (
	"github.com/smartgwiza/reports-cli/internal/model"
	"github.com/smartgwiza/reports-cli/internal/normalize"
)

// DistrictAggregate is the rollup of all submissions from one district.
type DistrictAggregate struct {
	District   string   `json:"district"`
	Count      int      `json:"count"`
	TotalYield float64  `json:"total_yield"`
	Farmers    []string `json:"farmers"` // distinct names in first-seen order
}

// AverageYield returns TotalYield / Count, or 0 for an empty bucket.
func (d DistrictAggregate) AverageYield() float64 {
	if d.Count == 0 {
		return 0
	}
	return d.TotalYield / float64(d.Count)
}

// FarmerCount returns the number of distinct farmers seen.
func (d DistrictAggregate) FarmerCount() int { return len(d.Farmers) }

// AggregateByDistrict folds submissions into one bucket per district, in
// order of first appearance. Every submission lands in exactly one bucket;
// a missing district is already "Unknown" after normalization.
func AggregateByDistrict(subs []model.NormalizedSubmission) []DistrictAggregate {
	var out []DistrictAggregate
	index := make(map[string]int)
	seen := make(map[string]map[string]struct{})

	for _, s := range subs {
		district := s.District
		if district == "" {
			district = normalize.UnknownDistrict
		}
		i, ok := index[district]
		if !ok {
			i = len(out)
			index[district] = i
			seen[district] = make(map[string]struct{})
			out = append(out, DistrictAggregate{District: district})
		}
		agg := &out[i]
		agg.Count++
		agg.TotalYield += s.YieldValue
		if s.HasFarmerName {
			if _, dup := seen[district][s.FarmerName]; !dup {
				seen[district][s.FarmerName] = struct{}{}
				agg.Farmers = append(agg.Farmers, s.FarmerName)
			}
		}
	}
	return out
}
