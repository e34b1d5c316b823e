// Package api exposes the consultation service over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/models"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service is the consultation surface the handlers depend on.
type Service interface {
	RunConsultation(ctx context.Context, pet models.PetProfile, symptoms string) (*models.CaseRecord, error)
	ListRecent(ctx context.Context, limit int) ([]models.Consultation, error)
	ListSupplements(ctx context.Context, filter models.SupplementFilter) ([]models.Supplement, error)
	ResetAll(ctx context.Context) error
}

type Options struct {
	Service Service
	Logger  logger.Logger
	// Ready reports whether backing stores are reachable. Nil means always
	// ready.
	Ready func(ctx context.Context) error
	// RequestTimeout bounds each API request. Zero disables the bound.
	RequestTimeout time.Duration
}

func NewRouter(opts Options) http.Handler {
	h := &handlers{svc: opts.Service, logger: opts.Logger.WithFields(map[string]interface{}{"component": "api"})}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		if opts.RequestTimeout > 0 {
			api.Use(chimw.Timeout(opts.RequestTimeout))
		}
		api.Route("/consultations", func(cr chi.Router) {
			cr.Post("/", h.createConsultation)
			cr.Get("/", h.listConsultations)
		})
		api.Get("/supplements", h.listSupplements)
		api.Post("/admin/reset", h.reset)
	})

	return r
}
