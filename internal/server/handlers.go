package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/jgoulah/personadash/internal/aggregate"
	"github.com/jgoulah/personadash/internal/charts"
	"github.com/jgoulah/personadash/internal/dataset"
	"github.com/jgoulah/personadash/internal/export"
	"github.com/jgoulah/personadash/internal/pipeline"
	"github.com/jgoulah/personadash/pkg/models"
)

var templateFuncs = template.FuncMap{
	"kwh": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"comma": func(n int) string {
		return humanize.Comma(int64(n))
	},
}

// pageView is the data behind dashboard.html
type pageView struct {
	Title    string
	Error    string
	Uploaded bool
	HasData  bool
	Source   string
	Summary  models.Summary
	Charts   []charts.Spec
	Notes    []string
	Columns  []string
	Rows     [][]string
	PageSize int
}

func (s *Server) view(res *pipeline.Result, uploaded bool) pageView {
	v := pageView{
		Title:    s.cfg.Dashboard.Title,
		Uploaded: uploaded,
		PageSize: s.cfg.Dashboard.PageSize,
		Charts:   []charts.Spec{},
	}
	if res == nil {
		return v
	}

	v.HasData = true
	v.Source = res.Source
	v.Summary = res.Summary
	v.Charts = res.Charts
	v.Notes = res.Notes
	v.Columns = res.Table.Columns()
	v.Rows = make([][]string, res.Table.Len())
	for i := range v.Rows {
		v.Rows[i] = res.Table.Row(i)
	}
	return v
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, v pageView) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "dashboard.html", v); err != nil {
		s.logger.ErrorContext(r.Context(), "rendering page", slog.String("error", err.Error()))
		s.renderError(w, r, ErrInternalServer)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	s.writeBody(w, r, buf.Bytes())
}

// writeBody sends an already rendered body. A failed write means the client
// went away, so it is only logged at debug level.
func (s *Server) writeBody(w http.ResponseWriter, r *http.Request, body []byte) {
	if _, err := w.Write(body); err != nil {
		s.logger.DebugContext(r.Context(), "writing response",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, apiErr *APIError) {
	e := *apiErr
	e.RequestID = middleware.GetReqID(r.Context())
	render.Render(w, r, &e)
}

// run classifies one upload. The result lives only as long as the request.
func (s *Server) run(ctx context.Context, src dataset.Source) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, src, pipeline.NewOptions(s.cfg, s.cfg.Upload))
	s.metrics.ObserveRun(src.Kind(), err)
	if err != nil {
		s.logger.WarnContext(ctx, "upload rejected",
			slog.String("source", src.Name()),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(ctx)),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "upload classified",
		slog.String("run_id", res.RunID),
		slog.String("source", res.Source),
		slog.Int("records", res.Summary.Records),
		slog.Int("charts", len(res.Charts)),
		slog.String("request_id", middleware.GetReqID(ctx)),
	)
	return res, nil
}

// formError maps a failure to read the submission itself
func formError(err error) *APIError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrFileTooLarge
	}
	return ErrBadFile
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, s.view(s.current, s.current == nil))
}

func (s *Server) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, s.view(nil, true))
}

func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	fail := func(apiErr *APIError) {
		v := s.view(nil, true)
		v.Error = apiErr.Message
		s.renderPage(w, r, apiErr.StatusCode, v)
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.Server.MaxUploadBytes); err != nil {
		fail(formError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(formError(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(formError(err))
		return
	}

	res, err := s.run(r.Context(), dataset.BytesSource{Filename: header.Filename, Data: data})
	if err != nil {
		fail(runError(err))
		return
	}

	s.renderPage(w, r, http.StatusOK, s.view(res, true))
}

// uploadRequest is a file sent as a data URI, the way browser upload widgets
// deliver it
type uploadRequest struct {
	Filename string `json:"filename" validate:"required,max=255"`
	Contents string `json:"contents" validate:"required,startswith=data:"`
}

// resultResponse is the JSON form of one classified dataset
type resultResponse struct {
	Summary models.Summary `json:"summary"`
	Charts  []charts.Spec  `json:"charts"`
	Table   dataset.Page   `json:"table"`
	Notes   []string       `json:"notes,omitempty"`
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func validationDetails(err error) []fieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]fieldError, len(verrs))
	for i, fe := range verrs {
		out[i] = fieldError{Field: fe.Field(), Rule: fe.Tag()}
	}
	return out
}

func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	// Base64 inflates the payload by a third
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes*4/3+1024)

	var req uploadRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.renderError(w, r, formError(err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.renderError(w, r, ErrBadFile.WithDetails(validationDetails(err)))
		return
	}

	res, err := s.run(r.Context(), dataset.DataURISource{Filename: req.Filename, URI: req.Contents})
	if err != nil {
		s.renderError(w, r, runError(err))
		return
	}

	render.JSON(w, r, resultResponse{
		Summary: res.Summary,
		Charts:  res.Charts,
		Table:   res.Table.Page(1, s.cfg.Dashboard.PageSize),
		Notes:   res.Notes,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if s.current == nil {
		s.renderError(w, r, ErrNoDataset)
		return
	}
	render.JSON(w, r, s.current.Summary)
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	if s.current == nil {
		s.renderError(w, r, ErrNoDataset)
		return
	}
	render.JSON(w, r, s.current.Charts)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	if s.current == nil {
		s.renderError(w, r, ErrNoDataset)
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.renderError(w, r, ErrInvalidArgument.WithDetails(fmt.Sprintf("page: %q is not a number", raw)))
			return
		}
		page = n
	}

	render.JSON(w, r, s.current.Table.Page(page, s.cfg.Dashboard.PageSize))
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	if s.current == nil {
		s.renderError(w, r, ErrNoDataset)
		return
	}

	var title string
	var groups []aggregate.Group
	switch chi.URLParam(r, "group") {
	case "persona":
		title, groups = "Consumption by Persona", s.current.PersonaGroups()
	case "cluster":
		title, groups = "Consumption by Cluster", s.current.ClusterGroups()
	default:
		s.renderError(w, r, ErrNotFound)
		return
	}
	if len(groups) == 0 {
		s.renderError(w, r, ErrNotFound.WithDetails("the dataset lacks the columns this chart needs"))
		return
	}

	var buf bytes.Buffer
	if err := charts.WriteBoxPlotPNG(&buf, title, groups); err != nil {
		s.logger.ErrorContext(r.Context(), "rendering png", slog.String("error", err.Error()))
		s.renderError(w, r, ErrInternalServer)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	s.writeBody(w, r, buf.Bytes())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.current == nil {
		s.renderError(w, r, ErrNoDataset)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, s.current); err != nil {
		s.logger.ErrorContext(r.Context(), "exporting xlsx", slog.String("error", err.Error()))
		s.renderError(w, r, ErrInternalServer)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="personas.xlsx"`)
	s.writeBody(w, r, buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":  "ok",
		"dataset": s.current != nil,
	})
}
