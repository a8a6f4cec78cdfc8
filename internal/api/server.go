// Package api exposes the HTTP interface for the contact crawler service.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/resodo/contact-crawler/internal/config"
	"github.com/resodo/contact-crawler/internal/legal"
	"github.com/resodo/contact-crawler/internal/pipeline"
	"github.com/resodo/contact-crawler/internal/ratelimit"
	"github.com/resodo/contact-crawler/internal/report"
	"github.com/resodo/contact-crawler/internal/telemetry"
)

const genericErrorMessage = "An unexpected error occurred. Please try again later."

// Server wires HTTP handlers to the request pipeline and report store.
type Server struct {
	router   chi.Router
	pipeline *pipeline.Pipeline
	store    report.Store
	limiter  *ratelimit.Limiter
	cfg      config.Config
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	p *pipeline.Pipeline,
	store report.Store,
	limiter *ratelimit.Limiter,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		pipeline: p,
		store:    store,
		limiter:  limiter,
		cfg:      cfg,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(telemetry.Middleware)
	// The crawl plus two chat calls can legitimately take minutes.
	r.Use(timeoutMiddleware(5 * time.Minute))
	if cfg.Auth.Enabled {
		r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
	}

	r.Get("/", s.root)
	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", telemetry.Handler())

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(rateLimitMiddleware(limiter, cfg.RateLimit.RequestsPerMinute))
		}
		r.Get("/contact-info", s.getContactInfo)
	})

	r.Get("/reports/{report_id}", s.getReport)

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "ALL SYSTEMS ONLINE",
		"status":  "running",
	})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) getContactInfo(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.logger.Info("processing resolution request",
		zap.String("website", req.Website), zap.String("respondent", req.Respondent))

	outcome, err := s.pipeline.Process(r.Context(), req)
	if err != nil {
		s.logger.Error("resolution pipeline failed",
			zap.String("website", req.Website), zap.Error(err))
		writeError(w, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	if len(outcome.PDF) > 0 {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", legal.Filename(req.Respondent)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(outcome.PDF); err != nil {
			s.logger.Error("write pdf response failed", zap.Error(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, outcome.Report)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "report_id")
	rep, err := s.store.GetReport(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func rateLimitMessage(perMinute int) string {
	return fmt.Sprintf("Rate limit exceeded. Maximum %d requests per minute.", perMinute)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
