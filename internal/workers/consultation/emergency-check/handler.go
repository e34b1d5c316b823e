// internal/workers/consultation/emergency-check/handler.go
package emergencycheck

import (
	"context"
	"strings"

	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/models"
)

const (
	TaskType = "emergency-check"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Name() string { return TaskType }

// Execute triages c and, at emergency level, writes the emergency notice as
// the analysis and sets the marker that later stages skip on. It never fails.
func (h *Handler) Execute(_ context.Context, c *models.CaseRecord) error {
	c.Emergency = h.Assess(c.Pet, c.Symptoms)

	if c.Emergency.Active {
		c.Analysis = Notice(c.Emergency)
		c.AnalysisSource = models.AnalysisSourceEmergency
		h.logger.Warn("emergency suspected", map[string]interface{}{
			"runId":   c.RunID,
			"level":   c.Emergency.Level,
			"reasons": c.Emergency.Reasons,
		})
		return nil
	}

	h.logger.Debug("triage completed", map[string]interface{}{
		"runId": c.RunID,
		"level": c.Emergency.Level,
	})
	return nil
}

// Assess computes the emergency level for the given pet and symptoms.
func (h *Handler) Assess(pet models.PetProfile, symptoms string) models.EmergencyAssessment {
	lower := strings.ToLower(symptoms)
	a := models.EmergencyAssessment{Reasons: []string{}}

	for _, phrase := range h.config.RedFlags {
		if strings.Contains(lower, phrase) {
			a.Level = max(a.Level, models.EmergencyLevelThreshold)
			a.Reasons = append(a.Reasons, phrase+" detected")
		}
	}

	if pet.Age > h.config.SeniorAge && containsAny(lower, h.config.SeniorPhrases) {
		a.Level = max(a.Level, 3)
		a.Reasons = append(a.Reasons, seniorReason)
	}

	a.Active = a.Level >= models.EmergencyLevelThreshold
	return a
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
