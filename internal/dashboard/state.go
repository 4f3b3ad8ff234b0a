// Package dashboard holds the admin dashboard data as an immutable snapshot
// updated through reducer actions.
package dashboard

import (
	"maps"
	"time"

	"github.com/smartgwiza/reports-cli/internal/model"
)

// Source identifies one backend dataset.
type Source string

const (
	SourceFarmers     Source = "farmers"
	SourceSubmissions Source = "submissions"
	SourceTrends      Source = "trends"
	SourceStats       Source = "stats"
	SourcePredictions Source = "predictions"
)

// AdminSources are fetched by a full admin refresh.
var AdminSources = []Source{SourceFarmers, SourceSubmissions, SourceTrends, SourceStats}

// Origin says where a dataset came from.
type Origin string

const (
	OriginBackend Origin = "backend"
	OriginCache   Origin = "cache"
	OriginFile    Origin = "file"
)

// State is a point-in-time view of every dataset. Values are never mutated
// after construction; Reduce returns a new State.
type State struct {
	Farmers        []model.Farmer
	FarmerTotal    int
	RawSubmissions []model.RawRecord
	Submissions    []model.NormalizedSubmission
	Predictions    []model.NormalizedSubmission
	Trends         []model.YieldTrend
	Stats          *model.AdminStats

	Errors    map[Source]string
	Origins   map[Source]Origin
	LoadedAt  map[Source]time.Time
	LoggedOut bool
}

// Err returns the last failure recorded for src.
func (s State) Err(src Source) (string, bool) {
	msg, ok := s.Errors[src]
	return msg, ok
}

// Loaded reports whether src has been loaded at least once.
func (s State) Loaded(src Source) bool {
	_, ok := s.LoadedAt[src]
	return ok
}

func (s State) clone() State {
	s.Errors = maps.Clone(s.Errors)
	s.Origins = maps.Clone(s.Origins)
	s.LoadedAt = maps.Clone(s.LoadedAt)
	if s.Errors == nil {
		s.Errors = map[Source]string{}
	}
	if s.Origins == nil {
		s.Origins = map[Source]Origin{}
	}
	if s.LoadedAt == nil {
		s.LoadedAt = map[Source]time.Time{}
	}
	return s
}

func (s *State) loaded(src Source, origin Origin, at time.Time) {
	delete(s.Errors, src)
	s.Origins[src] = origin
	s.LoadedAt[src] = at
}
