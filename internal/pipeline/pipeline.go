// Package pipeline runs the fixed consultation state machine over one case
// record.
package pipeline

import (
	"context"
	"fmt"
	"time"

	apperrors "pet-doctor/internal/common/errors"
	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/common/metrics"
	"pet-doctor/internal/models"
)

// State names a pipeline position.
type State string

const (
	StateEmergencyCheck       State = "emergency-check"
	StateAnalyzeSymptoms      State = "analyze-symptoms"
	StateRecommendSupplements State = "recommend-supplements"
	StateSaveConsultation     State = "save-consultation"
	StateDone                 State = "done"
)

// transitions are unconditional; stages short-circuit themselves from the
// case's emergency marker.
var transitions = map[State]State{
	StateEmergencyCheck:       StateAnalyzeSymptoms,
	StateAnalyzeSymptoms:      StateRecommendSupplements,
	StateRecommendSupplements: StateSaveConsultation,
	StateSaveConsultation:     StateDone,
}

// Stage transforms the case record in place.
type Stage interface {
	Name() string
	Execute(ctx context.Context, c *models.CaseRecord) error
}

// Stages binds one implementation to every state.
type Stages struct {
	EmergencyCheck       Stage
	AnalyzeSymptoms      Stage
	RecommendSupplements Stage
	SaveConsultation     Stage
}

type Pipeline struct {
	stages map[State]Stage
	logger logger.Logger
}

func New(stages Stages, log logger.Logger) (*Pipeline, error) {
	bound := map[State]Stage{
		StateEmergencyCheck:       stages.EmergencyCheck,
		StateAnalyzeSymptoms:      stages.AnalyzeSymptoms,
		StateRecommendSupplements: stages.RecommendSupplements,
		StateSaveConsultation:     stages.SaveConsultation,
	}
	for state, stage := range bound {
		if stage == nil {
			return nil, fmt.Errorf("pipeline: no stage bound to %s", state)
		}
	}
	return &Pipeline{
		stages: bound,
		logger: log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}, nil
}

// Run drives c from StateEmergencyCheck to StateDone. The first stage error
// aborts the run and is returned with the state it occurred in.
func (p *Pipeline) Run(ctx context.Context, c *models.CaseRecord) error {
	state := StateEmergencyCheck
	for state != StateDone {
		if err := ctx.Err(); err != nil {
			return &StageError{State: state, Err: err}
		}

		stage := p.stages[state]
		start := time.Now()
		err := stage.Execute(ctx, c)
		elapsed := time.Since(start)
		metrics.StageDuration.WithLabelValues(string(state)).Observe(elapsed.Seconds())

		if err != nil {
			code := apperrors.Normalize(err).Code
			metrics.StageFailures.WithLabelValues(string(state), string(code)).Inc()
			p.logger.Error("stage failed", map[string]interface{}{
				"runId":     c.RunID,
				"state":     string(state),
				"errorCode": string(code),
				"error":     err.Error(),
			})
			return &StageError{State: state, Err: err}
		}

		next := transitions[state]
		p.logger.Debug("stage completed", map[string]interface{}{
			"runId":     c.RunID,
			"state":     string(state),
			"next":      string(next),
			"emergency": c.IsEmergency(),
			"duration":  elapsed.String(),
		})
		state = next
	}
	return nil
}

// StageError reports which state aborted a run.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.State, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
