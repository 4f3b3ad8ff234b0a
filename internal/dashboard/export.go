package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/smartgwiza/reports-cli/internal/model"
	"github.com/smartgwiza/reports-cli/internal/report"
	"github.com/smartgwiza/reports-cli/pkg/backend"
)

// ReportSources returns the datasets a report kind is built from. Optional
// sources improve the report but their failure does not block it.
func ReportSources(kind model.ReportKind) (required, optional []Source) {
	switch kind {
	case model.ReportFarmers:
		return []Source{SourceFarmers}, nil
	case model.ReportStats:
		return []Source{SourceSubmissions}, []Source{SourceStats}
	default:
		return []Source{SourceSubmissions}, nil
	}
}

// ReportInput assembles a report input from the snapshot.
func (s State) ReportInput(filters report.Filters, now time.Time) report.Input {
	return report.Input{
		Raw:         s.RawSubmissions,
		Submissions: s.Submissions,
		Farmers:     s.Farmers,
		Stats:       s.Stats,
		Filters:     filters,
		Now:         now,
	}
}

// Prepare refreshes the sources kind needs. A failed required source is an
// error even when older data is still held; a failed optional one is logged.
// Auth failures always abort, whichever source reported them.
func (l *Loader) Prepare(ctx context.Context, st *Store, kind model.ReportKind) error {
	required, optional := ReportSources(kind)
	err := l.Refresh(ctx, st, append(required, optional...)...)
	if err == nil {
		return nil
	}

	state := st.State()
	if state.LoggedOut || errors.Is(err, backend.ErrUnauthorized) || errors.Is(err, backend.ErrForbidden) {
		return err
	}
	for _, src := range required {
		if _, failed := state.Err(src); failed {
			return err
		}
	}
	zap.L().Warn("dashboard: optional source failed, continuing",
		zap.String("kind", string(kind)), zap.Error(err))
	return nil
}

// Export prepares the sources for kind and builds the report.
func (l *Loader) Export(ctx context.Context, st *Store, kind model.ReportKind, filters report.Filters) (*report.Report, error) {
	if err := l.Prepare(ctx, st, kind); err != nil {
		return nil, eris.Wrapf(err, "dashboard: prepare %s", kind)
	}
	return report.Build(kind, st.State().ReportInput(filters, l.now()))
}
