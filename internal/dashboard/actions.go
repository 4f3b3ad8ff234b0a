package dashboard

import (
	"time"

	"github.com/smartgwiza/reports-cli/internal/model"
)

// Action is a discrete state transition.
type Action interface {
	apply(State) State
}

// Reduce applies a to s and returns the new state. s is left untouched.
func Reduce(s State, a Action) State {
	return a.apply(s.clone())
}

// FarmersLoaded replaces the farmer listing.
type FarmersLoaded struct {
	Farmers []model.Farmer
	Total   int
	Origin  Origin
	At      time.Time
}

func (a FarmersLoaded) apply(s State) State {
	s.Farmers = a.Farmers
	s.FarmerTotal = max(a.Total, len(a.Farmers))
	s.loaded(SourceFarmers, a.Origin, a.At)
	return s
}

// SubmissionsLoaded replaces recent submissions. Raw is kept for the
// before/after comparison, which reads fields normalization drops.
type SubmissionsLoaded struct {
	Raw         []model.RawRecord
	Submissions []model.NormalizedSubmission
	Origin      Origin
	At          time.Time
}

func (a SubmissionsLoaded) apply(s State) State {
	s.RawSubmissions = a.Raw
	s.Submissions = a.Submissions
	s.loaded(SourceSubmissions, a.Origin, a.At)
	return s
}

// PredictionsLoaded replaces the prediction history.
type PredictionsLoaded struct {
	Predictions []model.NormalizedSubmission
	Origin      Origin
	At          time.Time
}

func (a PredictionsLoaded) apply(s State) State {
	s.Predictions = a.Predictions
	s.loaded(SourcePredictions, a.Origin, a.At)
	return s
}

// TrendsLoaded replaces the yield trend series.
type TrendsLoaded struct {
	Trends []model.YieldTrend
	Origin Origin
	At     time.Time
}

func (a TrendsLoaded) apply(s State) State {
	s.Trends = a.Trends
	s.loaded(SourceTrends, a.Origin, a.At)
	return s
}

// StatsLoaded replaces the backend summary.
type StatsLoaded struct {
	Stats  *model.AdminStats
	Origin Origin
	At     time.Time
}

func (a StatsLoaded) apply(s State) State {
	s.Stats = a.Stats
	s.loaded(SourceStats, a.Origin, a.At)
	return s
}

// LoadFailed records a failure. Previously loaded data for the source is
// kept and nothing is substituted for it.
type LoadFailed struct {
	Source Source
	Err    error
}

func (a LoadFailed) apply(s State) State {
	msg := "unknown error"
	if a.Err != nil {
		msg = a.Err.Error()
	}
	s.Errors[a.Source] = msg
	return s
}

// LoggedOut clears every dataset.
type LoggedOut struct{}

func (LoggedOut) apply(State) State {
	return State{LoggedOut: true}.clone()
}
