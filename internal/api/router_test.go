// internal/api/router_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/consultation"
	"pet-doctor/internal/generator"
	"pet-doctor/internal/knowledge"
	"pet-doctor/internal/models"
	"pet-doctor/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================================
// Test Helper Functions
// ==========================================

func newTestServer(t *testing.T, store storage.ConsultationStore, ready func(context.Context) error) *httptest.Server {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryConsultationStore()
	}

	corpus, err := knowledge.DefaultCorpus()
	require.NoError(t, err)
	catalog := storage.NewMemoryCatalog()
	require.NoError(t, catalog.Seed(context.Background()))

	svc, err := consultation.NewService(consultation.Dependencies{
		Store:     store,
		Catalog:   catalog,
		Retriever: knowledge.NewKeywordRetriever(corpus),
		Generator: generator.Unavailable{},
	}, consultation.DefaultOptions(), logger.NewNoOpLogger())
	require.NoError(t, err)

	ts := httptest.NewServer(NewRouter(Options{Service: svc, Logger: logger.NewNoOpLogger(), Ready: ready}))
	t.Cleanup(ts.Close)
	return ts
}

func doReq(t *testing.T, method, url string, body any) (int, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func consultationBody(symptoms string) map[string]any {
	return map[string]any{
		"pet": map[string]any{
			"name":    "Rex",
			"species": "Dog",
			"age":     12,
			"weight":  8.0,
		},
		"symptoms": symptoms,
	}
}

type brokenStore struct {
	*storage.MemoryConsultationStore
}

func (brokenStore) Append(context.Context, *models.Consultation) (int64, error) {
	return 0, errors.New("disk full")
}

// ==========================================
// Consultation Endpoint Tests
// ==========================================

func TestCreateConsultation(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	status, body := doReq(t, http.MethodPost, ts.URL+"/api/v1/consultations", consultationBody("limping for 3 days, refuses stairs, reduced activity"))
	require.Equal(t, http.StatusCreated, status, string(body))

	var resp consultationResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, int64(1), resp.ConsultationID)
	assert.Equal(t, models.SpeciesDog, resp.Pet.Species)
	assert.Equal(t, 0, resp.Emergency.Level)
	assert.Equal(t, models.AnalysisSourceRules, resp.AnalysisSource)
	require.NotEmpty(t, resp.Recommendations)
	assert.Equal(t, models.CategoryJointHealth, resp.Recommendations[0].Category)
}

func TestCreateConsultation_Emergency(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	status, body := doReq(t, http.MethodPost, ts.URL+"/api/v1/consultations", consultationBody("unconscious and seizing"))
	require.Equal(t, http.StatusCreated, status)

	var resp consultationResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.GreaterOrEqual(t, resp.Emergency.Level, 4)
	assert.Contains(t, resp.Emergency.Reasons, "unconscious detected")
	assert.Empty(t, resp.Recommendations)
}

func TestCreateConsultation_BadRequests(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	status, body := doReq(t, http.MethodPost, ts.URL+"/api/v1/consultations", consultationBody(""))
	assert.Equal(t, http.StatusBadRequest, status)
	var errResp errorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "VALIDATION_FAILED", errResp.Code)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/consultations", bytes.NewBufferString("{not json"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	unknown := consultationBody("cough")
	unknown["pet"].(map[string]any)["species"] = " Hamster "
	status, body = doReq(t, http.MethodPost, ts.URL+"/api/v1/consultations", unknown)
	assert.Equal(t, http.StatusBadRequest, status, "unknown species must not be coerced to other")
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "VALIDATION_FAILED", errResp.Code)

	status, _ = doReq(t, http.MethodGet, ts.URL+"/api/v1/consultations", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestCreateConsultation_StorageFailure(t *testing.T) {
	ts := newTestServer(t, brokenStore{storage.NewMemoryConsultationStore()}, nil)

	status, body := doReq(t, http.MethodPost, ts.URL+"/api/v1/consultations", consultationBody("cough"))
	assert.Equal(t, http.StatusInternalServerError, status)

	var errResp errorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "STORAGE_FAILED", errResp.Code)
}

func TestListConsultations(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	for _, s := range []string{"cough", "itching", "diarrhea"} {
		status, _ := doReq(t, http.MethodPost, ts.URL+"/api/v1/consultations", consultationBody(s))
		require.Equal(t, http.StatusCreated, status)
	}

	status, body := doReq(t, http.MethodGet, ts.URL+"/api/v1/consultations?limit=2", nil)
	require.Equal(t, http.StatusOK, status)

	var entries []historyEntry
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "diarrhea", entries[0].Symptoms)
	assert.Equal(t, "itching", entries[1].Symptoms)
	require.NotEmpty(t, entries[1].Recommendations)
	assert.Equal(t, models.CategorySkinCoat, entries[1].Recommendations[0].Category)

	status, _ = doReq(t, http.MethodGet, ts.URL+"/api/v1/consultations?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

// ==========================================
// Catalog and Admin Endpoint Tests
// ==========================================

func TestListSupplements(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	status, body := doReq(t, http.MethodGet, ts.URL+"/api/v1/supplements", nil)
	require.Equal(t, http.StatusOK, status)
	var all []models.Supplement
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Len(t, all, 8)

	status, body = doReq(t, http.MethodGet, ts.URL+"/api/v1/supplements?category=liver&min_rating=4", nil)
	require.Equal(t, http.StatusOK, status)
	var liver []models.Supplement
	require.NoError(t, json.Unmarshal(body, &liver))
	require.Len(t, liver, 1)
	assert.Equal(t, "Liver Silymarin", liver[0].Name)

	status, _ = doReq(t, http.MethodGet, ts.URL+"/api/v1/supplements?category=joint", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doReq(t, http.MethodGet, ts.URL+"/api/v1/supplements?max_price=cheap", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestReset(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	status, _ := doReq(t, http.MethodPost, ts.URL+"/api/v1/consultations", consultationBody("cough"))
	require.Equal(t, http.StatusCreated, status)

	status, _ = doReq(t, http.MethodPost, ts.URL+"/api/v1/admin/reset", nil)
	assert.Equal(t, http.StatusNoContent, status)

	_, body := doReq(t, http.MethodGet, ts.URL+"/api/v1/consultations", nil)
	var entries []historyEntry
	require.NoError(t, json.Unmarshal(body, &entries))
	assert.Empty(t, entries)
}

// ==========================================
// Health Endpoint Tests
// ==========================================

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	status, _ := doReq(t, http.MethodGet, ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = doReq(t, http.MethodGet, ts.URL+"/ready", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = doReq(t, http.MethodGet, ts.URL+"/metrics", nil)
	assert.Equal(t, http.StatusOK, status)

	notReady := newTestServer(t, nil, func(context.Context) error { return errors.New("postgres down") })
	status, body := doReq(t, http.MethodGet, notReady.URL+"/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, string(body), "postgres down")
}
