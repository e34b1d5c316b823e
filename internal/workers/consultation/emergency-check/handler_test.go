// internal/workers/consultation/emergency-check/handler_test.go
package emergencycheck

import (
	"context"
	"strings"
	"testing"

	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCase(age int, symptoms string) *models.CaseRecord {
	return models.NewCaseRecord("run-test", models.PetProfile{
		Name:    "Rex",
		Species: models.SpeciesDog,
		Age:     age,
		Weight:  8,
	}, symptoms)
}

func newHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

// ==========================
// Assessment Tests
// ==========================

func TestAssess(t *testing.T) {
	tests := []struct {
		name        string
		age         int
		symptoms    string
		wantLevel   int
		wantActive  bool
		wantReasons []string
	}{
		{
			name:        "no red flags",
			age:         3,
			symptoms:    "limping for 3 days, refuses stairs",
			wantLevel:   0,
			wantReasons: []string{},
		},
		{
			name:        "multiple red flags in table order",
			age:         3,
			symptoms:    "Seizing and then UNCONSCIOUS",
			wantLevel:   4,
			wantActive:  true,
			wantReasons: []string{"unconscious detected", "seizing detected"},
		},
		{
			name:        "senior with cough",
			age:         11,
			symptoms:    "occasional cough at night",
			wantLevel:   3,
			wantReasons: []string{"senior pet with concerning symptoms"},
		},
		{
			name:        "age ten is not senior",
			age:         10,
			symptoms:    "loss of appetite",
			wantLevel:   0,
			wantReasons: []string{},
		},
		{
			name:        "senior rule never lowers red flag level",
			age:         13,
			symptoms:    "difficulty breathing and cough",
			wantLevel:   4,
			wantActive:  true,
			wantReasons: []string{"difficulty breathing detected", "senior pet with concerning symptoms"},
		},
		{
			name:        "temperature phrase",
			age:         2,
			symptoms:    "fever of 41 degrees",
			wantLevel:   4,
			wantActive:  true,
			wantReasons: []string{"41 degrees detected"},
		},
	}

	h := newHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := h.Assess(models.PetProfile{Age: tt.age}, tt.symptoms)
			assert.Equal(t, tt.wantLevel, a.Level)
			assert.Equal(t, tt.wantActive, a.Active)
			assert.Equal(t, tt.wantReasons, a.Reasons)
		})
	}
}

func TestAssess_EveryRedFlagIsAnEmergency(t *testing.T) {
	h := newHandler(t)
	for _, phrase := range LoadConfig().RedFlags {
		a := h.Assess(models.PetProfile{Age: 1}, "owner reports "+strings.ToUpper(phrase)+" since morning")
		assert.GreaterOrEqual(t, a.Level, 4, phrase)
		assert.True(t, a.Active, phrase)
	}
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_EmergencyWritesNotice(t *testing.T) {
	c := newCase(4, "unconscious and seizing")

	require.NoError(t, newHandler(t).Execute(context.Background(), c))

	assert.True(t, c.IsEmergency())
	assert.Equal(t, models.AnalysisSourceEmergency, c.AnalysisSource)
	assert.True(t, strings.HasPrefix(c.Analysis, "**EMERGENCY SUSPECTED**"))
	assert.Contains(t, c.Analysis, "Emergency level: 4/5")
	assert.Contains(t, c.Analysis, "• unconscious detected")
	assert.Contains(t, c.Analysis, "• seizing detected")
	assert.Contains(t, c.Analysis, "1. Go to the nearest 24-hour veterinary emergency clinic immediately.")
	assert.Contains(t, c.Analysis, "4. Call the clinic ahead to describe the situation.")
	assert.Contains(t, c.Analysis, "emergency care takes priority over supplement recommendations")
}

func TestExecute_NonEmergencyLeavesAnalysisEmpty(t *testing.T) {
	c := newCase(12, "cough and loss of appetite")

	require.NoError(t, newHandler(t).Execute(context.Background(), c))

	assert.False(t, c.IsEmergency())
	assert.Equal(t, 3, c.Emergency.Level)
	assert.Empty(t, c.Analysis)
	assert.Equal(t, models.AnalysisSourceNone, c.AnalysisSource)
}
