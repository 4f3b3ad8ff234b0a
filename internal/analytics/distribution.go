package analytics

import (
	"math"

	"github.com/smartgwiza/reports-cli/internal/model"
)

// YieldBucket counts values in [Min, Max).
type YieldBucket struct {
	Name  string  `json:"name"`
	Min   float64 `json:"min"`
	Max   float64 `json:"-"`
	Count int     `json:"count"`
}

// YieldRanges are the distribution buckets in t/ha.
var YieldRanges = []YieldBucket{
	{Name: "0-1 t/ha", Min: 0, Max: 1},
	{Name: "1-2 t/ha", Min: 1, Max: 2},
	{Name: "2-3 t/ha", Min: 2, Max: 3},
	{Name: "3-4 t/ha", Min: 3, Max: 4},
	{Name: "4+ t/ha", Min: 4, Max: math.Inf(1)},
}

// YieldDistribution counts positive values per bucket and drops empty
// buckets.
func YieldDistribution(values []float64) []YieldBucket {
	var out []YieldBucket
	for _, r := range YieldRanges {
		b := r
		for _, v := range values {
			if v > 0 && v >= b.Min && v < b.Max {
				b.Count++
			}
		}
		if b.Count > 0 {
			out = append(out, b)
		}
	}
	return out
}

// YieldStats summarises positive yield values.
type YieldStats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"total_farms"`
}

// ComputeYieldStats ignores non-positive values and returns the zero value
// when none remain.
func ComputeYieldStats(values []float64) YieldStats {
	var st YieldStats
	var sum float64
	for _, v := range values {
		if v <= 0 {
			continue
		}
		if st.Count == 0 {
			st.Min, st.Max = v, v
		}
		st.Count++
		sum += v
		st.Min = min(st.Min, v)
		st.Max = max(st.Max, v)
	}
	if st.Count == 0 {
		return YieldStats{}
	}
	st.Average = Round(sum/float64(st.Count), 2)
	st.Min = Round(st.Min, 2)
	st.Max = Round(st.Max, 2)
	return st
}

// FarmerYields extracts the yield value of each farmer.
func FarmerYields(farmers []model.Farmer) []float64 {
	out := make([]float64, len(farmers))
	for i, f := range farmers {
		out[i] = f.YieldValue
	}
	return out
}
