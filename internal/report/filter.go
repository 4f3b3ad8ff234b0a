package report

import (
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"

	"github.com/smartgwiza/reports-cli/internal/model"
)

// Submission type filter values.
const (
	TypeAll        = "all"
	TypeYield      = "yield"
	TypePrediction = "prediction"
)

// DistrictAll disables the district filter.
const DistrictAll = "all"

// DateRange bounds submission dates inclusively.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Filters selects a subset of submissions. Zero values select everything.
type Filters struct {
	SubmissionType string
	District       string
	DateRange      *DateRange
}

// Validate rejects unknown type values and inverted ranges.
func (f Filters) Validate() error {
	switch f.SubmissionType {
	case "", TypeAll, TypeYield, TypePrediction:
	default:
		return eris.Errorf("report: unknown submission type %q", f.SubmissionType)
	}
	if f.DateRange != nil && f.DateRange.End.Before(f.DateRange.Start) {
		return eris.New("report: date range end is before start")
	}
	return nil
}

// Apply runs the type, district and date predicates in that order.
// Submissions without a district or a resolvable date never match those
// predicates.
func (f Filters) Apply(subs []model.NormalizedSubmission) []model.NormalizedSubmission {
	out := subs
	switch f.SubmissionType {
	case TypeYield:
		out = keep(out, func(s model.NormalizedSubmission) bool { return s.Type == model.SubmissionYieldData })
	case TypePrediction:
		out = keep(out, func(s model.NormalizedSubmission) bool { return s.Type == model.SubmissionPrediction })
	}
	if f.District != "" && f.District != DistrictAll {
		fold := cases.Fold()
		want := fold.String(f.District)
		out = keep(out, func(s model.NormalizedSubmission) bool {
			return s.HasDistrict && fold.String(s.District) == want
		})
	}
	if f.DateRange != nil {
		r := *f.DateRange
		out = keep(out, func(s model.NormalizedSubmission) bool {
			return !s.SubmittedAt.IsZero() && r.Contains(s.SubmittedAt)
		})
	}
	return out
}

// FilterDateLayout is the day format accepted by ParseFilters.
const FilterDateLayout = "2006-01-02"

// ParseFilters builds Filters from query or flag values. Empty values select
// everything. from and to are whole days in loc; a missing bound is open.
func ParseFilters(typ, district, from, to string, loc *time.Location) (Filters, error) {
	if loc == nil {
		loc = time.UTC
	}
	f := Filters{SubmissionType: typ, District: district}
	if from == "" && to == "" {
		return f, f.Validate()
	}

	r := DateRange{End: time.Date(9999, 12, 31, 0, 0, 0, 0, loc)}
	if from != "" {
		start, err := time.ParseInLocation(FilterDateLayout, from, loc)
		if err != nil {
			return Filters{}, eris.Wrapf(err, "report: parse from date %q", from)
		}
		r.Start = start
	}
	if to != "" {
		end, err := time.ParseInLocation(FilterDateLayout, to, loc)
		if err != nil {
			return Filters{}, eris.Wrapf(err, "report: parse to date %q", to)
		}
		r.End = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	f.DateRange = &r
	return f, f.Validate()
}

func keep(subs []model.NormalizedSubmission, pred func(model.NormalizedSubmission) bool) []model.NormalizedSubmission {
	var out []model.NormalizedSubmission
	for _, s := range subs {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}

// FilteredTable applies filters and lays out the survivors like
// SubmissionsTable.
func FilteredTable(subs []model.NormalizedSubmission, f Filters) ([][]any, error) {
	if len(subs) == 0 {
		return nil, noData(model.ReportFiltered, "submission")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	matched := f.Apply(subs)
	if len(matched) == 0 {
		return nil, noMatch(model.ReportFiltered)
	}
	return SubmissionsTable(matched)
}

// BuildFilteredSubmissionsReport renders the filtered submissions export.
func BuildFilteredSubmissionsReport(subs []model.NormalizedSubmission, f Filters) (string, error) {
	rows, err := FilteredTable(subs, f)
	if err != nil {
		return "", err
	}
	return BuildCSV(rows), nil
}
