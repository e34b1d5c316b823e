// internal/workers/consultation/analyze-symptoms/handler.go
package analyzesymptoms

import (
	"context"
	"strings"
	"time"

	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/common/metrics"
	"pet-doctor/internal/generator"
	"pet-doctor/internal/knowledge"
	"pet-doctor/internal/models"
)

const (
	TaskType = "analyze-symptoms"
)

type Handler struct {
	config    *Config
	retriever knowledge.Retriever
	generator generator.Generator
	logger    logger.Logger
}

func NewHandler(config *Config, retriever knowledge.Retriever, gen generator.Generator, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return &Handler{
		config:    config,
		retriever: retriever,
		generator: gen,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Name() string { return TaskType }

// Execute writes the health analysis into c. Generator failures fall back to
// the rule-based analysis, so Execute returns nil for every non-emergency
// case as well.
func (h *Handler) Execute(ctx context.Context, c *models.CaseRecord) error {
	if c.IsEmergency() {
		h.logger.Debug("skipping analysis for emergency case", map[string]interface{}{"runId": c.RunID})
		return nil
	}

	c.Findings = DetectFindings(c.Symptoms)

	var passages []string
	if h.retriever != nil {
		passages = h.retriever.Retrieve(ctx, c.Symptoms, h.config.RetrievalK)
	}
	supporting := strings.Join(passages, "\n")

	start := time.Now()
	text, err := h.generate(ctx, c, supporting)
	if err == nil {
		c.Analysis = text
		c.AnalysisSource = models.AnalysisSourceGenerator
		h.logger.Info("analysis generated", map[string]interface{}{
			"runId":     c.RunID,
			"generator": h.generatorName(),
			"passages":  len(passages),
			"duration":  time.Since(start).String(),
		})
		return nil
	}

	reason := generator.FallbackReason(err)
	metrics.GeneratorFallbacks.WithLabelValues(TaskType, reason).Inc()
	h.logger.Warn("generator failed, using rule-based analysis", map[string]interface{}{
		"runId":  c.RunID,
		"reason": reason,
		"error":  err.Error(),
	})

	c.Analysis = RuleBasedAnalysis(c.Pet, c.Findings)
	c.AnalysisSource = models.AnalysisSourceRules
	return nil
}

func (h *Handler) generate(ctx context.Context, c *models.CaseRecord, supporting string) (string, error) {
	prompt, err := renderPrompt(c.Pet, c.Symptoms, supporting)
	if err != nil {
		return "", err
	}
	return generator.CallWithin(ctx, h.generator, h.config.Timeout, h.config.Reserve, prompt, supporting)
}

func (h *Handler) generatorName() string {
	if h.generator == nil {
		return "none"
	}
	return h.generator.Name()
}
