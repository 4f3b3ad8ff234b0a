package report

import (
	"errors"

	"github.com/rotisserie/eris"

	"github.com/smartgwiza/reports-cli/internal/model"
)

var (
	// ErrNoData means the report had no input rows at all.
	ErrNoData = eris.New("report: no data to export")
	// ErrNoMatch means input existed but the filters removed every row.
	ErrNoMatch = eris.New("report: no records match the filters")
)

// EmptyError is returned instead of an empty export. Notice is the text
// shown to the user.
type EmptyError struct {
	Kind   model.ReportKind
	Notice string
	cause  error
}

func (e *EmptyError) Error() string { return e.Notice }

// Unwrap exposes ErrNoData or ErrNoMatch to errors.Is.
func (e *EmptyError) Unwrap() error { return e.cause }

func noData(kind model.ReportKind, subject string) error {
	return &EmptyError{
		Kind:   kind,
		Notice: "No " + subject + " data available to export.",
		cause:  ErrNoData,
	}
}

func noMatch(kind model.ReportKind) error {
	return &EmptyError{
		Kind:   kind,
		Notice: "No submissions match the selected filters.",
		cause:  ErrNoMatch,
	}
}

// UserMessage returns the notice for an empty-report error and the plain
// error text for anything else.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var empty *EmptyError
	if errors.As(err, &empty) {
		return empty.Notice
	}
	return err.Error()
}
