package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smartgwiza/reports-cli/internal/model"
	"github.com/smartgwiza/reports-cli/internal/normalize"
	"github.com/smartgwiza/reports-cli/internal/store"
	"github.com/smartgwiza/reports-cli/pkg/backend"
)

// maxFarmerPages bounds paging through the farmer listing.
const maxFarmerPages = 50

// Limits sizes each backend request.
type Limits struct {
	Submissions int
	FarmersPage int
	TrendDays   int
	Predictions int
}

// DefaultLimits mirror the admin dashboard.
func DefaultLimits() Limits {
	return Limits{Submissions: 200, FarmersPage: 100, TrendDays: 30, Predictions: 100}
}

// Loader fetches datasets concurrently and dispatches the results. With a
// cache configured, successful fetches are written through and PreferCache
// serves unexpired snapshots without calling the backend.
type Loader struct {
	Client      backend.Client
	Normalizer  *normalize.Normalizer
	Cache       store.Store
	CacheTTL    time.Duration
	PreferCache bool
	Limits      Limits
	Now         func() time.Time
}

func (l *Loader) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Loader) normalizer() *normalize.Normalizer {
	if l.Normalizer != nil {
		return l.Normalizer
	}
	return normalize.New()
}

// Refresh loads sources (AdminSources when empty) in parallel. Each failure
// is recorded in the state for its own source and the others still load.
// The returned error joins all failures; an unauthorized response also
// dispatches LoggedOut.
func (l *Loader) Refresh(ctx context.Context, st *Store, sources ...Source) error {
	if len(sources) == 0 {
		sources = AdminSources
	}

	g, gctx := errgroup.WithContext(ctx)
	errs := make([]error, len(sources))
	for i, src := range sources {
		g.Go(func() error {
			action, err := l.load(gctx, src)
			if err != nil {
				zap.L().Warn("dashboard: load failed", zap.String("source", string(src)), zap.Error(err))
				st.Dispatch(LoadFailed{Source: src, Err: err})
				errs[i] = eris.Wrapf(err, "load %s", src)
				return nil
			}
			st.Dispatch(action)
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	if errors.Is(err, backend.ErrUnauthorized) {
		st.Dispatch(LoggedOut{})
	}
	return err
}

func (l *Loader) load(ctx context.Context, src Source) (Action, error) {
	at := l.now()
	payload, origin, err := l.payload(ctx, src)
	if err != nil {
		return nil, err
	}
	return l.action(src, payload, origin, at)
}

// LoadFile dispatches src from a local JSON export instead of the backend.
// Lists may be bare arrays or wrapped in the backend's envelopes.
func (l *Loader) LoadFile(st *Store, src Source, data []byte) error {
	if src != SourceStats {
		var err error
		if data, err = rewrapList(src, data); err != nil {
			return err
		}
	}
	action, err := l.action(src, data, OriginFile, l.now())
	if err != nil {
		return err
	}
	st.Dispatch(action)
	return nil
}

func (l *Loader) action(src Source, payload []byte, origin Origin, at time.Time) (Action, error) {
	n := l.normalizer()

	switch src {
	case SourceSubmissions:
		var raws []model.RawRecord
		if err := decode(payload, &raws); err != nil {
			return nil, err
		}
		return SubmissionsLoaded{Raw: raws, Submissions: n.NormalizeAll(raws), Origin: origin, At: at}, nil
	case SourcePredictions:
		var raws []model.RawRecord
		if err := decode(payload, &raws); err != nil {
			return nil, err
		}
		return PredictionsLoaded{Predictions: n.NormalizeAll(raws), Origin: origin, At: at}, nil
	case SourceTrends:
		var raws []model.RawRecord
		if err := decode(payload, &raws); err != nil {
			return nil, err
		}
		return TrendsLoaded{Trends: normalize.NormalizeTrends(raws, at), Origin: origin, At: at}, nil
	case SourceFarmers:
		var fp model.FarmerPage
		if err := decode(payload, &fp); err != nil {
			return nil, err
		}
		return FarmersLoaded{Farmers: n.NormalizeFarmers(fp.Farmers), Total: fp.Total, Origin: origin, At: at}, nil
	case SourceStats:
		var stats model.AdminStats
		if err := decode(payload, &stats); err != nil {
			return nil, err
		}
		return StatsLoaded{Stats: &stats, Origin: origin, At: at}, nil
	}
	return nil, eris.Errorf("dashboard: unknown source %q", src)
}

// envelopeKeys are tried in order when a list arrives wrapped in an object.
var envelopeKeys = map[Source][]string{
	SourceSubmissions: {"submissions", "data"},
	SourcePredictions: {"predictions", "data"},
	SourceTrends:      {"trends", "data"},
	SourceFarmers:     {"farmers", "data"},
}

// rewrapList converts a file payload into the shape action expects.
func rewrapList(src Source, data []byte) ([]byte, error) {
	var v any
	if err := decode(data, &v); err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if obj, isObj := v.(map[string]any); isObj {
		for _, key := range envelopeKeys[src] {
			if list, ok = obj[key].([]any); ok {
				break
			}
		}
	}
	if !ok {
		return nil, eris.Errorf("dashboard: %s file holds no list", src)
	}

	var out any = list
	if src == SourceFarmers {
		out = map[string]any{"farmers": list, "total": len(list), "page": 1, "total_pages": 1}
	}
	b, err := json.Marshal(out)
	return b, eris.Wrapf(err, "dashboard: re-encode %s", src)
}

// payload returns the JSON for src from the cache or the backend.
func (l *Loader) payload(ctx context.Context, src Source) ([]byte, Origin, error) {
	if l.Cache != nil && l.PreferCache {
		snap, err := l.Cache.GetSnapshot(ctx, string(src))
		if err != nil {
			zap.L().Warn("dashboard: cache read failed", zap.String("source", string(src)), zap.Error(err))
		} else if snap != nil {
			return snap.Payload, OriginCache, nil
		}
	}
	if l.Client == nil {
		return nil, "", eris.Errorf("dashboard: no cached %s and no backend client", src)
	}

	v, err := l.fetch(ctx, src)
	if err != nil {
		return nil, "", err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, "", eris.Wrapf(err, "dashboard: marshal %s", src)
	}
	if l.Cache != nil {
		if err := l.Cache.SaveSnapshot(ctx, string(src), data, l.CacheTTL); err != nil {
			zap.L().Warn("dashboard: cache write failed", zap.String("source", string(src)), zap.Error(err))
		}
	}
	return data, OriginBackend, nil
}

func (l *Loader) fetch(ctx context.Context, src Source) (any, error) {
	lim := l.Limits
	switch src {
	case SourceSubmissions:
		return l.Client.RecentSubmissions(ctx, lim.Submissions)
	case SourcePredictions:
		return l.Client.PredictionHistory(ctx, lim.Predictions)
	case SourceTrends:
		return l.Client.YieldTrends(ctx, lim.TrendDays)
	case SourceStats:
		return l.Client.Stats(ctx)
	case SourceFarmers:
		return l.allFarmers(ctx)
	}
	return nil, eris.Errorf("dashboard: unknown source %q", src)
}

// allFarmers walks the paged listing into a single page.
func (l *Loader) allFarmers(ctx context.Context) (*model.FarmerPage, error) {
	out := &model.FarmerPage{Page: 1, TotalPages: 1}
	for page := 1; page <= maxFarmerPages; page++ {
		fp, err := l.Client.Farmers(ctx, page, l.Limits.FarmersPage)
		if err != nil {
			return nil, err
		}
		out.Farmers = append(out.Farmers, fp.Farmers...)
		out.Total = max(fp.Total, len(out.Farmers))
		if page >= fp.TotalPages || len(fp.Farmers) == 0 {
			break
		}
	}
	return out, nil
}

func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return eris.Wrap(dec.Decode(v), "dashboard: decode payload")
}
