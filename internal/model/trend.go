package model

import "time"

// YieldTrend is one point of the yield-trends series.
type YieldTrend struct {
	Date            time.Time `json:"date"`
	Label           string    `json:"label"`
	AverageYield    float64   `json:"average_yield"`
	SubmissionCount int       `json:"submission_count"`
	MinYield        float64   `json:"min_yield"`
	MaxYield        float64   `json:"max_yield"`
}
