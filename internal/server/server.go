// Package server serves the persona dashboard over HTTP: the auto-loaded
// dataset, per-request uploads, JSON views of both, and exports.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jgoulah/personadash/internal/config"
	"github.com/jgoulah/personadash/internal/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server holds the router and everything the handlers read. The auto-loaded
// result is built once before New and never modified; uploads produce their
// own result per request and nothing from them is retained.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	current  *pipeline.Result
	metrics  *Metrics
	pages    *template.Template
	validate *validator.Validate
	router   chi.Router
}

// New builds the server. current may be nil when no data file is configured,
// in which case the dashboard starts on the upload page.
func New(cfg *config.Config, logger *slog.Logger, current *pipeline.Result, reg *prometheus.Registry) (*Server, error) {
	pages, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "server")),
		current:  current,
		metrics:  NewMetrics(reg),
		pages:    pages,
		validate: validator.New(),
	}
	if current != nil {
		s.metrics.SetHouseholds(current.Summary)
	}

	s.router = s.routes(reg)
	return s, nil
}

func (s *Server) routes(reg *prometheus.Registry) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(Recoverer(s.logger))
	r.Use(s.metrics.Middleware)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Get("/upload", s.handleUploadPage)
	r.Group(func(r chi.Router) {
		if s.cfg.Server.UploadRPS > 0 {
			r.Use(NewRateLimiter(s.cfg.Server.UploadRPS, s.cfg.Server.UploadBurst, s.logger).Handler)
		}
		r.Post("/upload", s.handleUploadForm)
		r.Post("/api/upload", s.handleAPIUpload)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/charts", s.handleCharts)
		r.Get("/table", s.handleTable)
	})
	r.Get("/charts/{group}.png", s.handleChartPNG)
	r.Get("/export.xlsx", s.handleExport)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, ErrNotFound)
	})
	return r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
