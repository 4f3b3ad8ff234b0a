package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/smartgwiza/reports-cli/internal/model"
)

// pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool so several hosts can share
// one cache.
type PostgresStore struct {
	pool pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 5
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: p}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	source     TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS exports (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	kind       TEXT NOT NULL,
	filename   TEXT NOT NULL,
	row_count  INTEGER NOT NULL,
	source     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_snapshots_expires_at ON snapshots(expires_at);
CREATE INDEX IF NOT EXISTS idx_exports_kind_created ON exports(kind, created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, source string, payload []byte, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO snapshots (source, payload, fetched_at, expires_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (source) DO UPDATE SET payload = $2, fetched_at = $3, expires_at = $4`,
		source, payload, now, now.Add(ttl),
	)
	return eris.Wrapf(err, "postgres: save snapshot %s", source)
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, source string) (*Snapshot, error) {
	var snap Snapshot
	err := s.pool.QueryRow(ctx,
		`SELECT source, payload, fetched_at, expires_at FROM snapshots
		 WHERE source = $1 AND expires_at > now()`,
		source,
	).Scan(&snap.Source, &snap.Payload, &snap.FetchedAt, &snap.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get snapshot %s", source)
	}
	return &snap, nil
}

func (s *PostgresStore) DeleteExpiredSnapshots(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM snapshots WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired snapshots")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) RecordExport(ctx context.Context, rec model.ExportRecord) (*model.ExportRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO exports (id, kind, filename, row_count, source, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, string(rec.Kind), rec.Filename, rec.Rows, rec.Source, rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert export")
	}
	return &rec, nil
}

func (s *PostgresStore) ListExports(ctx context.Context, filter ExportFilter) ([]model.ExportRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, kind, filename, row_count, source, created_at FROM exports
		 WHERE ($1 = '' OR kind = $1)
		 ORDER BY created_at DESC LIMIT $2`,
		string(filter.Kind), listLimit(filter.Limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list exports")
	}
	defer rows.Close()

	var out []model.ExportRecord
	for rows.Next() {
		var rec model.ExportRecord
		var kind string
		if err := rows.Scan(&rec.ID, &kind, &rec.Filename, &rec.Rows, &rec.Source, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan export")
		}
		rec.Kind = model.ReportKind(kind)
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate exports")
}
