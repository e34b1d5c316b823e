// internal/workers/consultation/run-consultation/handler.go
package runconsultation

import (
	"context"
	"encoding/json"
	"time"

	apperrors "pet-doctor/internal/common/errors"
	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/common/metrics"
	"pet-doctor/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "run-consultation"

	// commandTimeout bounds the complete/fail command sent after the job
	// body has run.
	commandTimeout = 10 * time.Second
)

// Consulter runs one consultation end to end.
type Consulter interface {
	RunConsultation(ctx context.Context, pet models.PetProfile, symptoms string) (*models.CaseRecord, error)
}

type Handler struct {
	config       *Config
	service      Consulter
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, service Consulter, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		service:      service,
		errorHandler: apperrors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	metrics.JobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.JobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		cmdCtx, cancelCmd := commandContext(ctx)
		defer cancelCmd()
		h.errorHandler.HandleJobError(cmdCtx, client, job, apperrors.NewValidationFailedError("parse input: "+err.Error()))
		return
	}

	output, err := h.Execute(ctx, &input)

	// The job deadline may have passed while the consultation ran; the broker
	// still has to hear the outcome.
	cmdCtx, cancelCmd := commandContext(ctx)
	defer cancelCmd()

	if err != nil {
		h.errorHandler.HandleJobError(cmdCtx, client, job, err)
		return
	}

	h.completeJob(cmdCtx, client, job, output)
}

func commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), commandTimeout)
}

// Execute runs the consultation described by input.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	pet := models.PetProfile{
		Name:    input.PetName,
		Species: models.NormalizeSpecies(input.PetType),
		Age:     input.PetAge,
		Weight:  input.PetWeight,
	}

	c, err := h.service.RunConsultation(ctx, pet, input.Symptoms)
	if err != nil {
		return nil, err
	}

	out := &Output{
		EmergencyLevel:  c.Emergency.Level,
		HealthAnalysis:  c.Analysis,
		Recommendations: c.Recommendations,
	}
	if c.ConsultationID != nil {
		out.ConsultationID = *c.ConsultationID
	}

	h.logger.Info("consultation job completed", map[string]interface{}{
		"consultationId": out.ConsultationID,
		"emergencyLevel": out.EmergencyLevel,
	})
	return out, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
