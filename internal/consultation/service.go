// Package consultation is the entrypoint for running consultations and for
// the history, catalog and reset operations around them.
package consultation

import (
	"context"
	"strings"
	"sync"
	"time"

	"pet-doctor/internal/common/config"
	apperrors "pet-doctor/internal/common/errors"
	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/common/observability"
	"pet-doctor/internal/common/validation"
	"pet-doctor/internal/generator"
	"pet-doctor/internal/knowledge"
	"pet-doctor/internal/models"
	"pet-doctor/internal/pipeline"
	"pet-doctor/internal/storage"
	analyzesymptoms "pet-doctor/internal/workers/consultation/analyze-symptoms"
	emergencycheck "pet-doctor/internal/workers/consultation/emergency-check"
	recommendsupplements "pet-doctor/internal/workers/consultation/recommend-supplements"
	saveconsultation "pet-doctor/internal/workers/consultation/save-consultation"

	"github.com/google/uuid"
)

// Dependencies are the collaborators shared by every run.
type Dependencies struct {
	Store         storage.ConsultationStore
	Catalog       storage.SupplementCatalog
	Retriever     knowledge.Retriever
	Generator     generator.Generator
	Observability *observability.Observability
}

type Options struct {
	RetrievalK         int
	PerCategoryLimit   int
	MaxRecommendations int
	ScanAnalysisText   bool
	GeneratorTimeout   time.Duration
	// PersistenceReserve is withheld from generator calls so the catalog
	// lookup and the save still fit in the caller's deadline.
	PersistenceReserve time.Duration
	HistoryLimit       int
	MaxHistoryLimit    int
}

func DefaultOptions() Options {
	return Options{
		RetrievalK:         3,
		PerCategoryLimit:   2,
		MaxRecommendations: 3,
		GeneratorTimeout:   30 * time.Second,
		PersistenceReserve: 2 * time.Second,
		HistoryLimit:       10,
		MaxHistoryLimit:    100,
	}
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		RetrievalK:         cfg.Pipeline.RetrievalK,
		PerCategoryLimit:   cfg.Pipeline.PerCategoryLimit,
		MaxRecommendations: cfg.Pipeline.MaxRecommendations,
		ScanAnalysisText:   cfg.Pipeline.ScanAnalysisText,
		GeneratorTimeout:   config.GetDuration(cfg.Generator.Timeout),
		PersistenceReserve: config.GetDuration(cfg.Pipeline.PersistenceReserve),
		HistoryLimit:       cfg.Pipeline.HistoryLimit,
		MaxHistoryLimit:    cfg.Pipeline.MaxHistoryLimit,
	}
}

// Service serializes full resets against everything else: runs, history
// reads and catalog reads share the read lock, ResetAll holds the write lock.
type Service struct {
	mu       sync.RWMutex
	pipeline *pipeline.Pipeline
	store    storage.ConsultationStore
	catalog  storage.SupplementCatalog
	obs      *observability.Observability
	opts     Options
	logger   logger.Logger
	newRunID func() string
}

func NewService(deps Dependencies, opts Options, log logger.Logger) (*Service, error) {
	p, err := pipeline.New(pipeline.Stages{
		EmergencyCheck: emergencycheck.NewHandler(emergencycheck.LoadConfig(), log),
		AnalyzeSymptoms: analyzesymptoms.NewHandler(&analyzesymptoms.Config{
			RetrievalK: opts.RetrievalK,
			Timeout:    opts.GeneratorTimeout,
			Reserve:    opts.PersistenceReserve,
		}, deps.Retriever, deps.Generator, log),
		RecommendSupplements: recommendsupplements.NewHandler(&recommendsupplements.Config{
			PerCategoryLimit:   opts.PerCategoryLimit,
			MaxRecommendations: opts.MaxRecommendations,
			ScanAnalysisText:   opts.ScanAnalysisText,
			Timeout:            opts.GeneratorTimeout,
			Reserve:            opts.PersistenceReserve,
		}, deps.Catalog, deps.Generator, log),
		SaveConsultation: saveconsultation.NewHandler(deps.Store, log),
	}, log)
	if err != nil {
		return nil, err
	}

	return &Service{
		pipeline: p,
		store:    deps.Store,
		catalog:  deps.Catalog,
		obs:      deps.Observability,
		opts:     opts,
		logger:   log.WithFields(map[string]interface{}{"component": "consultation-service"}),
		newRunID: uuid.NewString,
	}, nil
}

type submission struct {
	Pet      models.PetProfile `json:"pet"`
	Symptoms string            `json:"symptoms"`
}

// RunConsultation validates the submission and runs the full pipeline. The
// case record is returned only when the consultation was persisted.
func (s *Service) RunConsultation(ctx context.Context, pet models.PetProfile, symptoms string) (*models.CaseRecord, error) {
	if err := validateSubmission(pet, symptoms); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c := models.NewCaseRecord(s.newRunID(), pet, strings.TrimSpace(symptoms))
	start := time.Now()

	if err := s.pipeline.Run(ctx, c); err != nil {
		s.obs.RecordConsultation(ctx, "failed", time.Since(start))
		s.logger.Error("consultation failed", map[string]interface{}{
			"runId": c.RunID,
			"error": err.Error(),
		})
		return nil, err
	}

	s.obs.RecordConsultation(ctx, "completed", time.Since(start))
	s.logger.Info("consultation completed", map[string]interface{}{
		"runId":           c.RunID,
		"consultationId":  *c.ConsultationID,
		"emergencyLevel":  c.Emergency.Level,
		"analysisSource":  string(c.AnalysisSource),
		"recommendations": len(c.Recommendations),
		"duration":        time.Since(start).String(),
	})
	return c, nil
}

func validateSubmission(pet models.PetProfile, symptoms string) error {
	result, err := validation.ValidateConsultation(submission{Pet: pet, Symptoms: symptoms})
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !result.Valid {
		stdErr := apperrors.NewValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
		return stdErr.WithMetadata("fields", result.Fields())
	}
	return nil
}

// ListRecent returns the most recent consultations. A non-positive limit
// selects the default; larger limits are capped.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]models.Consultation, error) {
	if limit <= 0 {
		limit = s.opts.HistoryLimit
	}
	if s.opts.MaxHistoryLimit > 0 && limit > s.opts.MaxHistoryLimit {
		limit = s.opts.MaxHistoryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.NewStorageFailedError("list consultations", err)
	}
	if records == nil {
		records = []models.Consultation{}
	}
	return records, nil
}

// ListSupplements browses the catalog.
func (s *Service) ListSupplements(ctx context.Context, filter models.SupplementFilter) ([]models.Supplement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, err := s.catalog.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewCatalogQueryFailedError(string(filter.Category), err)
	}
	if items == nil {
		items = []models.Supplement{}
	}
	return items, nil
}

// ResetAll clears the consultation history and restores the catalog seed.
// It waits for in-flight runs and blocks new ones until it returns.
func (s *Service) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Reset(ctx); err != nil {
		return apperrors.NewStorageFailedError("reset consultations", err)
	}
	if err := s.catalog.Reset(ctx); err != nil {
		return apperrors.NewStorageFailedError("reset catalog", err)
	}

	s.logger.Warn("all consultations and catalog data reset", nil)
	return nil
}
