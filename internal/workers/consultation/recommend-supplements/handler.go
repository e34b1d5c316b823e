// internal/workers/consultation/recommend-supplements/handler.go
package recommendsupplements

import (
	"context"

	apperrors "pet-doctor/internal/common/errors"
	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/common/metrics"
	"pet-doctor/internal/generator"
	"pet-doctor/internal/models"
	"pet-doctor/internal/storage"
)

const (
	TaskType = "recommend-supplements"

	// DefaultRationale is attached to every record when no generated
	// rationale is available.
	DefaultRationale = "default recommendation"
)

type Handler struct {
	config    *Config
	catalog   storage.SupplementCatalog
	generator generator.Generator
	logger    logger.Logger
}

func NewHandler(config *Config, catalog storage.SupplementCatalog, gen generator.Generator, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return &Handler{
		config:    config,
		catalog:   catalog,
		generator: gen,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Name() string { return TaskType }

// Execute fills c.Recommendations. Only catalog failures are returned;
// rationale generation is fail-soft.
func (h *Handler) Execute(ctx context.Context, c *models.CaseRecord) error {
	if c.IsEmergency() {
		c.Recommendations = []models.Recommendation{}
		h.logger.Debug("skipping recommendations for emergency case", map[string]interface{}{"runId": c.RunID})
		return nil
	}

	categories := SelectCategories(c, h.config.ScanAnalysisText)

	var candidates []models.Supplement
	for _, category := range categories {
		items, err := h.catalog.TopRated(ctx, category, h.config.PerCategoryLimit)
		if err != nil {
			return apperrors.NewCatalogQueryFailedError(string(category), err)
		}
		candidates = append(candidates, items...)
	}
	if h.config.MaxRecommendations >= 0 && len(candidates) > h.config.MaxRecommendations {
		candidates = candidates[:h.config.MaxRecommendations]
	}

	rationale := h.rationale(ctx, c, candidates)

	recs := make([]models.Recommendation, 0, len(candidates))
	for _, s := range candidates {
		recs = append(recs, models.Recommendation{Supplement: s, Rationale: rationale})
	}
	c.Recommendations = recs

	h.logger.Info("supplements recommended", map[string]interface{}{
		"runId":      c.RunID,
		"categories": categories,
		"count":      len(recs),
	})
	return nil
}

func (h *Handler) rationale(ctx context.Context, c *models.CaseRecord, candidates []models.Supplement) string {
	if len(candidates) == 0 {
		return DefaultRationale
	}

	prompt, err := renderPrompt(c.Analysis, c.Pet, candidates)
	if err == nil {
		var text string
		text, err = generator.CallWithin(ctx, h.generator, h.config.Timeout, h.config.Reserve, prompt, systemPrompt)
		if err == nil {
			return text
		}
	}

	reason := generator.FallbackReason(err)
	metrics.GeneratorFallbacks.WithLabelValues(TaskType, reason).Inc()
	h.logger.Warn("generator failed, using default rationale", map[string]interface{}{
		"runId":  c.RunID,
		"reason": reason,
		"error":  err.Error(),
	})
	return DefaultRationale
}
