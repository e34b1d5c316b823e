package models

import "time"

// AnalysisSource records which path produced a case's analysis text.
type AnalysisSource string

const (
	AnalysisSourceNone      AnalysisSource = ""
	AnalysisSourceEmergency AnalysisSource = "emergency"
	AnalysisSourceGenerator AnalysisSource = "generator"
	AnalysisSourceRules     AnalysisSource = "rules"
)

// EmergencyLevelThreshold is the level at which a case is treated as an
// emergency and downstream stages stand down.
const EmergencyLevelThreshold = 4

// EmergencyAssessment is the triage result. Active is the marker later
// stages consult to skip their work.
type EmergencyAssessment struct {
	Level   int      `json:"level"`
	Reasons []string `json:"reasons"`
	Active  bool     `json:"active"`
}

// CaseRecord is the mutable working state of one pipeline run. It is owned
// by exactly one run and must not be shared between goroutines.
type CaseRecord struct {
	RunID           string              `json:"runId"`
	Pet             PetProfile          `json:"pet"`
	Symptoms        string              `json:"symptoms"`
	Emergency       EmergencyAssessment `json:"emergency"`
	Findings        []string            `json:"findings,omitempty"`
	Analysis        string              `json:"analysis"`
	AnalysisSource  AnalysisSource      `json:"analysisSource"`
	Recommendations []Recommendation    `json:"recommendations"`
	ConsultationID  *int64              `json:"consultationId,omitempty"`
}

// NewCaseRecord starts a case for the given pet and symptoms.
func NewCaseRecord(runID string, pet PetProfile, symptoms string) *CaseRecord {
	return &CaseRecord{
		RunID:           runID,
		Pet:             pet,
		Symptoms:        symptoms,
		Emergency:       EmergencyAssessment{Reasons: []string{}},
		Recommendations: []Recommendation{},
	}
}

// IsEmergency reports whether the emergency marker is set.
func (c *CaseRecord) IsEmergency() bool {
	return c.Emergency.Active
}

// HasFinding reports whether key was recorded by the symptom analyzer.
func (c *CaseRecord) HasFinding(key string) bool {
	for _, f := range c.Findings {
		if f == key {
			return true
		}
	}
	return false
}

// Consultation is a persisted, append-only consultation record.
// Recommendations holds the JSON serialization of the recommendation list.
type Consultation struct {
	ID              int64      `json:"id"`
	Pet             PetProfile `json:"pet"`
	Symptoms        string     `json:"symptoms"`
	Analysis        string     `json:"analysis"`
	Recommendations string     `json:"recommendations"`
	EmergencyLevel  int        `json:"emergencyLevel"`
	CreatedAt       time.Time  `json:"createdAt"`
}
