// internal/workers/consultation/save-consultation/handler.go
package saveconsultation

import (
	"context"
	"encoding/json"

	apperrors "pet-doctor/internal/common/errors"
	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/common/metrics"
	"pet-doctor/internal/models"
	"pet-doctor/internal/storage"
)

const (
	TaskType = "save-consultation"
)

type Handler struct {
	store  storage.ConsultationStore
	logger logger.Logger
}

func NewHandler(store storage.ConsultationStore, log logger.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Name() string { return TaskType }

// Execute appends one consultation record and writes the assigned id back
// into c.
func (h *Handler) Execute(ctx context.Context, c *models.CaseRecord) error {
	recs := c.Recommendations
	if recs == nil {
		recs = []models.Recommendation{}
	}
	payload, err := json.Marshal(recs)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	record := &models.Consultation{
		Pet:             c.Pet,
		Symptoms:        c.Symptoms,
		Analysis:        c.Analysis,
		Recommendations: string(payload),
		EmergencyLevel:  c.Emergency.Level,
	}

	id, err := h.store.Append(ctx, record)
	if err != nil {
		return apperrors.NewStorageFailedError("append consultation", err)
	}
	c.ConsultationID = &id

	metrics.ConsultationsCompleted.WithLabelValues(outcome(c)).Inc()
	h.logger.Info("consultation saved", map[string]interface{}{
		"runId":          c.RunID,
		"consultationId": id,
		"emergencyLevel": c.Emergency.Level,
	})
	return nil
}

func outcome(c *models.CaseRecord) string {
	if c.IsEmergency() {
		return "emergency"
	}
	return string(c.AnalysisSource)
}

// DecodeRecommendations parses a persisted recommendation snapshot.
func DecodeRecommendations(snapshot string) ([]models.Recommendation, error) {
	var recs []models.Recommendation
	if err := json.Unmarshal([]byte(snapshot), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
