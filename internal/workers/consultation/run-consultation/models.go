// internal/workers/consultation/run-consultation/models.go
package runconsultation

import "pet-doctor/internal/models"

type Input struct {
	PetName   string  `json:"petName"`
	PetType   string  `json:"petType"`
	PetAge    int     `json:"petAge"`
	PetWeight float64 `json:"petWeight"`
	Symptoms  string  `json:"symptoms"`
}

type Output struct {
	ConsultationID  int64                   `json:"consultationId"`
	EmergencyLevel  int                     `json:"emergencyLevel"`
	HealthAnalysis  string                  `json:"healthAnalysis"`
	Recommendations []models.Recommendation `json:"recommendations"`
}
