// internal/pipeline/pipeline_test.go
package pipeline

import (
	"context"
	"errors"
	"testing"

	apperrors "pet-doctor/internal/common/errors"
	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStage struct {
	name  string
	trace *[]string
	err   error
	apply func(c *models.CaseRecord)
}

func (s *recordingStage) Name() string { return s.name }

func (s *recordingStage) Execute(_ context.Context, c *models.CaseRecord) error {
	*s.trace = append(*s.trace, s.name)
	if s.apply != nil {
		s.apply(c)
	}
	return s.err
}

func stagesWithTrace(trace *[]string) Stages {
	return Stages{
		EmergencyCheck:       &recordingStage{name: "emergency", trace: trace},
		AnalyzeSymptoms:      &recordingStage{name: "analyze", trace: trace},
		RecommendSupplements: &recordingStage{name: "recommend", trace: trace},
		SaveConsultation:     &recordingStage{name: "save", trace: trace},
	}
}

func newCase() *models.CaseRecord {
	return models.NewCaseRecord("run-1", models.PetProfile{Name: "Rex", Species: models.SpeciesDog, Age: 3, Weight: 8}, "cough")
}

func TestRun_FixedOrder(t *testing.T) {
	var trace []string
	p, err := New(stagesWithTrace(&trace), logger.NewTestLogger(t))
	require.NoError(t, err)

	require.NoError(t, p.Run(context.Background(), newCase()))
	assert.Equal(t, []string{"emergency", "analyze", "recommend", "save"}, trace)
}

func TestRun_EmergencyStillReachesSave(t *testing.T) {
	var trace []string
	stages := stagesWithTrace(&trace)
	stages.EmergencyCheck = &recordingStage{name: "emergency", trace: &trace, apply: func(c *models.CaseRecord) {
		c.Emergency = models.EmergencyAssessment{Level: 4, Active: true}
	}}
	p, err := New(stages, logger.NewNoOpLogger())
	require.NoError(t, err)

	c := newCase()
	require.NoError(t, p.Run(context.Background(), c))
	assert.Equal(t, []string{"emergency", "analyze", "recommend", "save"}, trace)
	assert.True(t, c.IsEmergency())
}

func TestRun_StageErrorAborts(t *testing.T) {
	var trace []string
	stages := stagesWithTrace(&trace)
	stages.RecommendSupplements = &recordingStage{
		name:  "recommend",
		trace: &trace,
		err:   apperrors.NewCatalogQueryFailedError("joint-health", errors.New("db down")),
	}
	p, err := New(stages, logger.NewNoOpLogger())
	require.NoError(t, err)

	err = p.Run(context.Background(), newCase())
	require.Error(t, err)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StateRecommendSupplements, stageErr.State)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCatalogQueryFailed))
	assert.Equal(t, []string{"emergency", "analyze", "recommend"}, trace)
}

func TestRun_CancelledContext(t *testing.T) {
	var trace []string
	p, err := New(stagesWithTrace(&trace), logger.NewNoOpLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.Run(ctx, newCase())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, trace)
}

func TestNew_RequiresEveryStage(t *testing.T) {
	var trace []string
	stages := stagesWithTrace(&trace)
	stages.SaveConsultation = nil

	_, err := New(stages, logger.NewNoOpLogger())
	assert.Error(t, err)
}
