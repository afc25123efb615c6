package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yuin/goldmark"

	"github.com/deckmuse/deckmuse/pkg/domain/interfaces"
	"github.com/deckmuse/deckmuse/pkg/domain/model"
	"github.com/deckmuse/deckmuse/pkg/usecase"
	"github.com/deckmuse/deckmuse/pkg/utils/errutil"
	"github.com/deckmuse/deckmuse/pkg/utils/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Server is the web shell around the advice pipeline: a decklist form, a
// background job per submission, and a polling endpoint for progress.
type Server struct {
	router   *chi.Mux
	uc       *usecase.UseCases
	searcher interfaces.CardSearcher
	markdown goldmark.Markdown
}

// New creates the HTTP handler
func New(uc *usecase.UseCases, searcher interfaces.CardSearcher) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		uc:       uc,
		searcher: searcher,
		markdown: goldmark.New(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(accessLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/", s.handleIndex)
	s.router.Post("/advice", s.handleSubmit)
	s.router.Get("/advice/{jobID}", s.handleJobPage)
	s.router.Get("/api/advice/{jobID}", s.handleJobStatus)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data := map[string]any{
		"Formats": s.searcher.Formats(ctx),
	}
	if err := pageTemplates.ExecuteTemplate(w, "index.html", data); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to render index"), http.StatusInternalServerError)
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid form data"), http.StatusBadRequest)
		return
	}

	req := &model.AdviceRequest{
		Decklist:       r.PostFormValue("decklist"),
		Format:         r.PostFormValue("format"),
		AdditionalInfo: r.PostFormValue("additional_info"),
	}

	job, err := s.uc.Job.Start(ctx, req)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, "/advice/"+job.ID.String(), http.StatusSeeOther)
}

func (s *Server) handleJobPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := model.JobID(chi.URLParam(r, "jobID"))

	job, err := s.uc.Job.Get(ctx, jobID)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
		return
	}

	if err := pageTemplates.ExecuteTemplate(w, "job.html", map[string]any{
		"JobID": job.ID.String(),
	}); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to render job page"), http.StatusInternalServerError)
	}
}

// jobStatusResponse is the polling payload. AdviceHTML is only set once the
// job completes.
type jobStatusResponse struct {
	Status     string   `json:"status"`
	Progress   []string `json:"progress"`
	AdviceHTML string   `json:"advice_html,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := model.JobID(chi.URLParam(r, "jobID"))

	job, err := s.uc.Job.Get(ctx, jobID)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
		return
	}

	resp := jobStatusResponse{
		Status:   string(job.Status),
		Progress: job.Progress,
		Error:    job.Error,
	}

	if job.Status == model.JobStatusCompleted {
		var buf bytes.Buffer
		if err := s.markdown.Convert([]byte(job.Advice), &buf); err != nil {
			logging.From(ctx).Error("failed to render advice markdown", "jobID", job.ID, "error", err.Error())
			resp.AdviceHTML = "<pre>" + template.HTMLEscapeString(job.Advice) + "</pre>"
		} else {
			resp.AdviceHTML = buf.String()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.From(ctx).Error("failed to encode job status", "error", err.Error())
	}
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
