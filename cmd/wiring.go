package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/smartgwiza/reports-cli/internal/dashboard"
	"github.com/smartgwiza/reports-cli/internal/normalize"
	"github.com/smartgwiza/reports-cli/internal/session"
	"github.com/smartgwiza/reports-cli/internal/store"
	"github.com/smartgwiza/reports-cli/pkg/backend"
)

// newBackendClient builds the API client from config. tokens may be nil for
// unauthenticated calls such as login.
func newBackendClient(tokens backend.TokenSource) backend.Client {
	opts := []backend.Option{
		backend.WithBaseURL(cfg.Backend.BaseURL),
		backend.WithHTTPClient(&http.Client{Timeout: cfg.Backend.Timeout()}),
		backend.WithRateLimit(cfg.Backend.RatePerSec, cfg.Backend.Burst),
		backend.WithRetryPolicy(cfg.Backend.RetryPolicy()),
		backend.WithBreaker(cfg.Backend.Breaker()),
	}
	if tokens != nil {
		opts = append(opts, backend.WithTokenSource(tokens))
	}
	return backend.NewClient(opts...)
}

// sessionStore opens the configured session file.
func sessionStore() *session.Store {
	return session.NewStore(cfg.Session.ResolvedPath())
}

// adminSession returns the session store after checking that the stored
// user may call the admin endpoints.
func adminSession() (*session.Store, error) {
	ss := sessionStore()
	sess, err := ss.Get()
	if errors.Is(err, session.ErrNoSession) {
		return nil, eris.New("not logged in: run `smartgwiza login` first")
	}
	if err != nil {
		return nil, err
	}
	if !sess.IsAdmin() {
		return nil, eris.Errorf("admin role required, signed in as %q", sess.Role)
	}
	return ss, nil
}

// initStore opens the snapshot cache and export history.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return st, nil
}

// newNormalizer renders dates with the configured layout and zone.
func newNormalizer() (*normalize.Normalizer, *time.Location, error) {
	loc := exportZone
	if loc == nil {
		var err error
		if loc, err = cfg.Export.Location(); err != nil {
			return nil, nil, err
		}
	}
	return normalize.New(normalize.WithDateLayout(cfg.Export.DateFormat), normalize.WithLocation(loc)), loc, nil
}

// newLoader wires the dashboard loader. client and cache may be nil.
func newLoader(client backend.Client, cache store.Store, n *normalize.Normalizer, loc *time.Location, preferCache bool) *dashboard.Loader {
	return &dashboard.Loader{
		Now:         func() time.Time { return time.Now().In(loc) },
		Client:      client,
		Normalizer:  n,
		Cache:       cache,
		CacheTTL:    cfg.Store.SnapshotTTL(),
		PreferCache: preferCache,
		Limits: dashboard.Limits{
			Submissions: cfg.Export.SubmissionLimit,
			FarmersPage: cfg.Export.FarmerPageLimit,
			TrendDays:   cfg.Export.TrendDays,
			Predictions: dashboard.DefaultLimits().Predictions,
		},
	}
}
