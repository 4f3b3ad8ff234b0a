// Package server exposes report downloads and the analytics overview over
// HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/smartgwiza/reports-cli/internal/dashboard"
	"github.com/smartgwiza/reports-cli/internal/model"
	"github.com/smartgwiza/reports-cli/internal/report"
	"github.com/smartgwiza/reports-cli/internal/store"
	"github.com/smartgwiza/reports-cli/pkg/backend"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Server serves exports built from a dashboard snapshot.
type Server struct {
	loader  *dashboard.Loader
	state   *dashboard.Store
	history store.Store
	metrics *Metrics
	product string
	loc     *time.Location
	origins []string
}

// Option configures a Server.
type Option func(*Server)

// WithHistory records every served export.
func WithHistory(s store.Store) Option {
	return func(srv *Server) { srv.history = s }
}

// WithProduct sets the filename prefix.
func WithProduct(product string) Option {
	return func(srv *Server) { srv.product = product }
}

// WithLocation sets the zone used to read from/to filter dates.
func WithLocation(loc *time.Location) Option {
	return func(srv *Server) { srv.loc = loc }
}

// WithAllowedOrigins sets the CORS origins.
func WithAllowedOrigins(origins []string) Option {
	return func(srv *Server) { srv.origins = origins }
}

// WithMetrics replaces the default collectors.
func WithMetrics(m *Metrics) Option {
	return func(srv *Server) { srv.metrics = m }
}

// New creates a server that loads data through loader.
func New(loader *dashboard.Loader, opts ...Option) *Server {
	srv := &Server{
		loader:  loader,
		state:   dashboard.NewStore(dashboard.State{}),
		product: "smartgwiza",
		loc:     time.UTC,
		origins: []string{"*"},
	}
	for _, o := range opts {
		o(srv)
	}
	if srv.metrics == nil {
		srv.metrics = NewMetrics()
	}
	return srv
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Get("/analytics", s.analytics)
	r.Route("/exports", func(r chi.Router) {
		r.Get("/", s.listExports)
		r.Get("/{kind}.csv", s.export("csv"))
		r.Get("/{kind}.xlsx", s.export("xlsx"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) analytics(w http.ResponseWriter, r *http.Request) {
	err := s.loader.Refresh(r.Context(), s.state)
	state := s.state.State()
	if err != nil && len(state.LoadedAt) == 0 {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, state.Overview(time.Now().In(s.loc)))
}

func (s *Server) listExports(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		render.JSON(w, r, []model.ExportRecord{})
		return
	}
	filter := store.ExportFilter{}
	if k := r.URL.Query().Get("kind"); k != "" {
		kind, err := report.ParseKind(k)
		if err != nil {
			s.badRequest(w, r, err)
			return
		}
		filter.Kind = kind
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			s.badRequest(w, r, err)
			return
		}
		filter.Limit = n
	}
	recs, err := s.history.ListExports(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if recs == nil {
		recs = []model.ExportRecord{}
	}
	render.JSON(w, r, recs)
}

func (s *Server) export(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := report.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			s.metrics.ExportsTotal.WithLabelValues("unknown", format, "bad_request").Inc()
			s.badRequest(w, r, err)
			return
		}
		q := r.URL.Query()
		filters, err := report.ParseFilters(q.Get("type"), q.Get("district"), q.Get("from"), q.Get("to"), s.loc)
		if err != nil {
			s.metrics.ExportsTotal.WithLabelValues(string(kind), format, "bad_request").Inc()
			s.badRequest(w, r, err)
			return
		}

		start := time.Now()
		rep, err := s.loader.Export(r.Context(), s.state, kind, filters)
		s.metrics.ExportDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
		if err != nil {
			s.metrics.ExportsTotal.WithLabelValues(string(kind), format, resultLabel(err)).Inc()
			s.fail(w, r, err)
			return
		}

		var (
			body        []byte
			contentType string
		)
		switch format {
		case "xlsx":
			var buf bytes.Buffer
			if err := rep.WriteXLSX(&buf); err != nil {
				s.fail(w, r, err)
				return
			}
			body, contentType = buf.Bytes(), xlsxContentType
		default:
			body, contentType = []byte(rep.CSV()), report.ContentType
		}
		filename := report.Filename(s.product, rep.Kind, rep.Generated.In(s.loc), format)

		s.metrics.ExportsTotal.WithLabelValues(string(kind), format, "ok").Inc()
		s.metrics.ExportRows.WithLabelValues(string(kind)).Add(float64(rep.DataRows))
		s.record(r.Context(), rep, filename)

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

// record stores an audit entry. A failure is logged and never fails the
// download.
func (s *Server) record(ctx context.Context, rep *report.Report, filename string) {
	if s.history == nil {
		return
	}
	source := string(dashboard.OriginBackend)
	if o, ok := s.state.State().Origins[dashboard.SourceSubmissions]; ok && rep.Kind != model.ReportFarmers {
		source = string(o)
	}
	_, err := s.history.RecordExport(ctx, model.ExportRecord{
		ID:        uuid.NewString(),
		Kind:      rep.Kind,
		Filename:  filename,
		Rows:      rep.DataRows,
		Source:    source,
		CreatedAt: rep.Generated,
	})
	if err != nil {
		zap.L().Warn("server: record export failed", zap.String("filename", filename), zap.Error(err))
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, report.ErrNoData):
		return "no_data"
	case errors.Is(err, report.ErrNoMatch):
		return "no_match"
	default:
		return "error"
	}
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

// fail maps err onto a status code and writes the user-facing message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, report.ErrNoData):
		status = http.StatusNotFound
	case errors.Is(err, report.ErrNoMatch):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, backend.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, backend.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error("server: request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: report.UserMessage(err)})
}
