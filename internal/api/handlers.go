package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	apperrors "pet-doctor/internal/common/errors"
	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/models"
	saveconsultation "pet-doctor/internal/workers/consultation/save-consultation"
)

type handlers struct {
	svc    Service
	logger logger.Logger
}

type petRequest struct {
	Name    string  `json:"name"`
	Species string  `json:"species"`
	Age     int     `json:"age"`
	Weight  float64 `json:"weight"`
}

type consultationRequest struct {
	Pet      petRequest `json:"pet"`
	Symptoms string     `json:"symptoms"`
}

type emergencyResponse struct {
	Level   int      `json:"level"`
	Reasons []string `json:"reasons"`
}

type consultationResponse struct {
	ConsultationID  int64                   `json:"consultationId"`
	RunID           string                  `json:"runId"`
	Pet             models.PetProfile       `json:"pet"`
	Symptoms        string                  `json:"symptoms"`
	Emergency       emergencyResponse       `json:"emergency"`
	Analysis        string                  `json:"analysis"`
	AnalysisSource  models.AnalysisSource   `json:"analysisSource"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

type historyEntry struct {
	ID              int64                   `json:"id"`
	Pet             models.PetProfile       `json:"pet"`
	Symptoms        string                  `json:"symptoms"`
	Analysis        string                  `json:"analysis"`
	EmergencyLevel  int                     `json:"emergencyLevel"`
	Recommendations []models.Recommendation `json:"recommendations"`
	CreatedAt       string                  `json:"createdAt"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (h *handlers) createConsultation(w http.ResponseWriter, r *http.Request) {
	var req consultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.NewValidationFailedError("invalid json: "+err.Error()))
		return
	}

	pet := models.PetProfile{
		Name:    req.Pet.Name,
		Species: models.NormalizeSpecies(req.Pet.Species),
		Age:     req.Pet.Age,
		Weight:  req.Pet.Weight,
	}

	c, err := h.svc.RunConsultation(r.Context(), pet, req.Symptoms)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := consultationResponse{
		RunID:           c.RunID,
		Pet:             c.Pet,
		Symptoms:        c.Symptoms,
		Emergency:       emergencyResponse{Level: c.Emergency.Level, Reasons: c.Emergency.Reasons},
		Analysis:        c.Analysis,
		AnalysisSource:  c.AnalysisSource,
		Recommendations: c.Recommendations,
	}
	if c.ConsultationID != nil {
		resp.ConsultationID = *c.ConsultationID
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *handlers) listConsultations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, apperrors.NewValidationFailedError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	records, err := h.svc.ListRecent(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		recs, err := saveconsultation.DecodeRecommendations(rec.Recommendations)
		if err != nil {
			h.logger.Warn("undecodable recommendation snapshot", map[string]interface{}{
				"consultationId": rec.ID,
				"error":          err.Error(),
			})
			recs = []models.Recommendation{}
		}
		out = append(out, historyEntry{
			ID:              rec.ID,
			Pet:             rec.Pet,
			Symptoms:        rec.Symptoms,
			Analysis:        rec.Analysis,
			EmergencyLevel:  rec.EmergencyLevel,
			Recommendations: recs,
			CreatedAt:       rec.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) listSupplements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.SupplementFilter{Category: models.Category(q.Get("category"))}
	if filter.Category != "" && !filter.Category.Valid() {
		h.writeError(w, apperrors.NewValidationFailedError("unknown category "+string(filter.Category)))
		return
	}

	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"min_price", &filter.MinPrice},
		{"max_price", &filter.MaxPrice},
		{"min_rating", &filter.MinRating},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			h.writeError(w, apperrors.NewValidationFailedError(p.name+" must be a non-negative number"))
			return
		}
		*p.dst = v
	}

	items, err := h.svc.ListSupplements(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetAll(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) writeError(w http.ResponseWriter, err error) {
	stdErr := apperrors.Normalize(err)

	status := http.StatusInternalServerError
	if stdErr.Code == apperrors.ErrCodeValidationFailed {
		status = http.StatusBadRequest
	}
	if status >= 500 {
		h.logger.Error("request failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     err.Error(),
		})
	}

	writeJSON(w, status, errorResponse{
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
		Details: stdErr.Details,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
