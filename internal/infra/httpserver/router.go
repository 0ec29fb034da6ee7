package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hashicorp/go-hclog"

	appscans "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/application/scans"
	domai "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/ai"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/infra/report"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/middleware"
)

// Options wiring for the HTTP surface
type Options struct {
	Logger      hclog.Logger
	APIKeys     []string
	CORSOrigins []string
	Limiter     *middleware.RateLimiter
	Checkers    map[string]middleware.HealthChecker
}

type Router struct {
	scansSvc *appscans.Service
	logger   hclog.Logger
}

func NewRouter(scansSvc *appscans.Service, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	r := &Router{scansSvc: scansSvc, logger: opts.Logger.Named("http")}
	mux := chi.NewRouter()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logging(opts.Logger))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/ready", middleware.ReadinessHandler(opts.Checkers))
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Group(func(g chi.Router) {
			if opts.Limiter != nil {
				g.Use(middleware.RateLimitMiddleware(opts.Limiter))
			}
			g.Post("/scans", r.wrap(r.handleSubmit))
		})
		rt.Get("/scans/current", r.wrap(r.handleCurrent))
		rt.Delete("/scans/current", r.wrap(r.handleAbandon))
		rt.Get("/scans/current/results", r.wrap(r.handleResults))
		rt.Get("/scans/current/sarif", r.wrap(r.handleSARIF))
		rt.Get("/scans/current/files/{name}/correction", r.wrap(r.handleCorrection))
		rt.Post("/scans/current/files/{name}/export", r.wrap(r.handleExport))
		rt.Get("/history", r.wrap(r.handleLatest))
		rt.Get("/history/{id}", r.wrap(r.handleGet))
		rt.Get("/history/{id}/failures", r.wrap(r.handleFailures))
		rt.Get("/exports", r.wrap(r.handleExportList))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest malformed input caught by the HTTP layer
type badRequest struct{ err error }

func (b badRequest) Error() string { return b.err.Error() }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status := StatusFor(err)
		if status >= 500 {
			r.logger.Error("request failed", "path", req.URL.Path, "status", status, "error", err)
		}
		http.Error(w, err.Error(), status)
	}
}

// StatusFor maps service errors to HTTP status codes
func StatusFor(err error) int {
	var (
		br badRequest
		se *analysis.SubmissionError
		pe *analysis.ProtocolError
		te *analysis.TransportError
	)
	switch {
	case errors.As(err, &br), errors.As(err, &se):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrNoScan),
		errors.Is(err, analysis.ErrFileNotFound),
		errors.Is(err, analysis.ErrNoCorrection),
		errors.Is(err, analysis.ErrHistoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, analysis.ErrScanNotCompleted), errors.Is(err, analysis.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, domai.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, analysis.ErrExportDisabled):
		return http.StatusServiceUnavailable
	case errors.As(err, &pe), errors.As(err, &te):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/scans
// Body: {"repo_url": "...", "code": "...", "check_dependencies": false, "language": "python"}
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		RepoURL           string `json:"repo_url"`
		Code              string `json:"code"`
		CheckDependencies bool   `json:"check_dependencies"`
		Language          string `json:"language"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{fmt.Errorf("invalid JSON body: %w", err)}
	}
	lang, err := middleware.ValidateLanguage(body.Language)
	if err != nil {
		return badRequest{err}
	}
	repoURL := middleware.SanitizeString(body.RepoURL)
	if repoURL != "" {
		if err := middleware.ValidateURL(repoURL); err != nil {
			return badRequest{err}
		}
	}

	id, gen, err := r.scansSvc.Submit(req.Context(), analysis.ScanRequest{
		RepositoryURL:     repoURL,
		InlineSource:      body.Code,
		Language:          lang,
		CheckDependencies: body.CheckDependencies,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusAccepted, map[string]any{
		"scan_id":    id,
		"generation": gen,
	})
}

// GET /v1/scans/current
func (r *Router) handleCurrent(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, r.scansSvc.Current())
}

// DELETE /v1/scans/current
func (r *Router) handleAbandon(w http.ResponseWriter, req *http.Request) error {
	r.scansSvc.Abandon()
	w.WriteHeader(http.StatusNoContent)
	return nil
}

type fileView struct {
	FileName       string             `json:"file_name"`
	FilePath       string             `json:"file_path"`
	OriginalSource []string           `json:"original_source"`
	Findings       []analysis.Finding `json:"findings"`
	Narrative      string             `json:"narrative,omitempty"`
}

// GET /v1/scans/current/results
func (r *Router) handleResults(w http.ResponseWriter, req *http.Request) error {
	res, err := r.scansSvc.Results()
	if err != nil {
		return err
	}
	files := make([]fileView, 0, len(res.Files))
	for _, f := range res.Files {
		files = append(files, fileView{
			FileName:       f.FileName(),
			FilePath:       f.FilePath,
			OriginalSource: f.OriginalSource,
			Findings:       f.Findings,
			Narrative:      f.Narrative,
		})
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"files":                      files,
		"dependency_vulnerabilities": res.Dependencies,
		"summary":                    res.Summary,
	})
}

// GET /v1/scans/current/sarif
func (r *Router) handleSARIF(w http.ResponseWriter, req *http.Request) error {
	res, err := r.scansSvc.Results()
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/sarif+json")
	return report.WriteSARIF(w, res)
}

// GET /v1/scans/current/files/{name}/correction
func (r *Router) handleCorrection(w http.ResponseWriter, req *http.Request) error {
	name := chi.URLParam(req, "name")
	if err := middleware.ValidateFileName(name); err != nil {
		return badRequest{err}
	}
	corr, err := r.scansSvc.Correction(name)
	if err != nil {
		return err
	}
	middleware.IncrementCorrections()
	return writeJSON(w, http.StatusOK, corr)
}

// POST /v1/scans/current/files/{name}/export
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) error {
	name := chi.URLParam(req, "name")
	if err := middleware.ValidateFileName(name); err != nil {
		return badRequest{err}
	}
	e, err := r.scansSvc.Export(req.Context(), name)
	if err != nil {
		if e == nil {
			return err
		}
		// uploaded, only the record failed
		r.logger.Warn("export not recorded", "file", name, "error", err)
	}
	middleware.IncrementExports()
	return writeJSON(w, http.StatusCreated, map[string]any{
		"id":               e.ID,
		"url":              e.ObjectURL,
		"has_explicit_fix": e.HasExplicitFix,
		"created_at":       e.CreatedAt.Format(time.RFC3339),
	})
}

// GET /v1/history?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.scansSvc.Latest(req.Context(), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	if list == nil {
		return writeJSON(w, http.StatusOK, []any{})
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/history/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateScanID(id); err != nil {
		return badRequest{err}
	}
	scan, err := r.scansSvc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, scan)
}

// GET /v1/history/{id}/failures?limit=20
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateScanID(id); err != nil {
		return badRequest{err}
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.scansSvc.FailuresOf(req.Context(), id, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	if list == nil {
		return writeJSON(w, http.StatusOK, []any{})
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/exports?page=&page_size=
func (r *Router) handleExportList(w http.ResponseWriter, req *http.Request) error {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.scansSvc.ListExports(req.Context(), middleware.ValidatePage(page), middleware.ValidateLimit(size))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}
