// Package store caches backend payloads and records generated exports.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/smartgwiza/reports-cli/internal/model"
)

// Snapshot sources, one per backend listing.
const (
	SourceSubmissions = "submissions"
	SourceFarmers     = "farmers"
	SourceTrends      = "trends"
	SourceStats       = "stats"
	SourcePredictions = "predictions"
)

// Snapshot is a cached raw endpoint payload.
type Snapshot struct {
	Source    string    `json:"source"`
	Payload   []byte    `json:"payload"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportFilter narrows ListExports.
type ExportFilter struct {
	Kind  model.ReportKind `json:"kind,omitempty"`
	Limit int              `json:"limit,omitempty"`
}

// Store persists snapshots and export history.
type Store interface {
	// Snapshots. GetSnapshot returns nil, nil when missing or expired.
	SaveSnapshot(ctx context.Context, source string, payload []byte, ttl time.Duration) error
	GetSnapshot(ctx context.Context, source string) (*Snapshot, error)
	DeleteExpiredSnapshots(ctx context.Context) (int, error)

	// Export history, newest first.
	RecordExport(ctx context.Context, rec model.ExportRecord) (*model.ExportRecord, error)
	ListExports(ctx context.Context, filter ExportFilter) ([]model.ExportRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the configured driver and runs migrations.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case "", "sqlite":
		s, err = NewSQLite(dsn)
	case "postgres":
		s, err = NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

const defaultListLimit = 50

func listLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}
