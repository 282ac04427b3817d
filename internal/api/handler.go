// Package api exposes extraction and live analysis over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/marcosevegrand/footwear-promo/internal/extractor"
	"github.com/marcosevegrand/footwear-promo/internal/navigator"
	"github.com/marcosevegrand/footwear-promo/internal/output"
	"github.com/marcosevegrand/footwear-promo/internal/scraper"
)

const (
	// MaxPagesLimit bounds the pages a single analyze request may visit.
	MaxPagesLimit = 20
	maxBodyBytes  = 20 << 20
	serviceName   = "footscan"
)

// Analyzer is the part of scraper.Analyzer the handlers need.
type Analyzer interface {
	Analyze(ctx context.Context, url string, opts scraper.FetchOptions) (*scraper.Analysis, error)
	AnalyzeHTML(html, sourceURL string) (*scraper.Analysis, error)
}

// Handler serves the HTTP API.
type Handler struct {
	analyzer        Analyzer
	logger          logrus.FieldLogger
	defaultMaxPages int
	started         time.Time
}

// NewHandler creates a handler. defaultMaxPages applies when an analyze
// request leaves maxPages unset.
func NewHandler(analyzer Analyzer, defaultMaxPages int, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		analyzer:        analyzer,
		logger:          logger,
		defaultMaxPages: defaultMaxPages,
		started:         time.Now(),
	}
}

// Routes registers every endpoint on a new router.
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/extract", h.Extract).Methods(http.MethodPost)
	v1.HandleFunc("/analyze", h.Analyze).Methods(http.MethodPost)

	return r
}

// NewRouter wraps the handler's routes in request logging and CORS for the
// given origins. Logging wraps the whole router rather than being registered
// with Use, so method mismatches on the subrouter still answer 405.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(h.loggingMiddleware(h.Routes()))
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":   serviceName,
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
	})
}

type extractRequest struct {
	HTML      string `json:"html"`
	SourceURL string `json:"sourceUrl"`
}

type analyzeRequest struct {
	URL          string `json:"url"`
	AutoPaginate *bool  `json:"autoPaginate"`
	MaxPages     int    `json:"maxPages"`
}

type analysisResponse struct {
	RunID      string              `json:"runId"`
	Products   []extractor.Product `json:"products"`
	Promotions []string            `json:"promotions"`
	Stats      extractor.Stats     `json:"stats"`
	Warnings   []string            `json:"warnings"`
	Summary    output.Summary      `json:"summary"`
	Meta       *scraper.Meta       `json:"meta,omitempty"`
}

func newAnalysisResponse(a *scraper.Analysis, withMeta bool) analysisResponse {
	resp := analysisResponse{
		RunID:      a.RunID,
		Products:   a.Result.Products,
		Promotions: a.Result.Promotions,
		Stats:      a.Result.Stats,
		Warnings:   a.Result.Warnings,
		Summary:    a.Summary,
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	if withMeta {
		meta := a.Meta
		resp.Meta = &meta
	}
	return resp
}

// Extract runs the engine over markup supplied in the request body.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.HTML == "" {
		writeError(w, http.StatusBadRequest, "html is required")
		return
	}

	analysis, err := h.analyzer.AnalyzeHTML(req.HTML, req.SourceURL)
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAnalysisResponse(analysis, false))
}

// Analyze fetches a live listing and extracts it.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if !navigator.IsValidURL(req.URL) {
		writeError(w, http.StatusBadRequest, "A valid http(s) url is required")
		return
	}

	opts := scraper.FetchOptions{
		AutoPaginate: req.AutoPaginate == nil || *req.AutoPaginate,
		MaxPages:     h.clampPages(req.MaxPages),
	}

	analysis, err := h.analyzer.Analyze(r.Context(), req.URL, opts)
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAnalysisResponse(analysis, true))
}

func (h *Handler) clampPages(n int) int {
	if n == 0 {
		n = h.defaultMaxPages
	}
	switch {
	case n < 1:
		return 1
	case n > MaxPagesLimit:
		return MaxPagesLimit
	default:
		return n
	}
}

func (h *Handler) writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scraper.ErrNoContent), errors.Is(err, extractor.ErrUnparseable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.WithError(err).Warn("Analysis failed")
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if r.URL.Path == "/health" {
			return
		}
		h.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("API request")
	})
}
