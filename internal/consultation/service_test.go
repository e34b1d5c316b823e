// internal/consultation/service_test.go
package consultation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "pet-doctor/internal/common/errors"
	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/generator"
	"pet-doctor/internal/knowledge"
	"pet-doctor/internal/models"
	"pet-doctor/internal/storage"
	saveconsultation "pet-doctor/internal/workers/consultation/save-consultation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================================
// Test Helper Functions
// ==========================================

type fixture struct {
	service *Service
	store   storage.ConsultationStore
	catalog *storage.MemoryCatalog
}

func newFixture(t *testing.T, store storage.ConsultationStore, gen generator.Generator) *fixture {
	t.Helper()
	return newFixtureWith(t, store, gen, DefaultOptions())
}

func newFixtureWith(t *testing.T, store storage.ConsultationStore, gen generator.Generator, opts Options) *fixture {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryConsultationStore()
	}
	if gen == nil {
		gen = generator.Unavailable{}
	}

	corpus, err := knowledge.DefaultCorpus()
	require.NoError(t, err)

	catalog := storage.NewMemoryCatalog()
	require.NoError(t, catalog.Seed(context.Background()))

	svc, err := NewService(Dependencies{
		Store:     store,
		Catalog:   catalog,
		Retriever: knowledge.NewKeywordRetriever(corpus),
		Generator: gen,
	}, opts, logger.NewNoOpLogger())
	require.NoError(t, err)

	return &fixture{service: svc, store: store, catalog: catalog}
}

func rex() models.PetProfile {
	return models.PetProfile{Name: "Rex", Species: models.SpeciesDog, Age: 12, Weight: 8.0}
}

// gatedStore blocks Append until release is closed.
type gatedStore struct {
	*storage.MemoryConsultationStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) Append(ctx context.Context, c *models.Consultation) (int64, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.MemoryConsultationStore.Append(ctx, c)
}

// hungGenerator blocks until the call's context ends.
type hungGenerator struct{}

func (hungGenerator) Generate(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (hungGenerator) Name() string { return "hung" }

type brokenStore struct {
	storage.ConsultationStore
}

func (brokenStore) Append(context.Context, *models.Consultation) (int64, error) {
	return 0, errors.New("disk full")
}

func (brokenStore) ListRecent(context.Context, int) ([]models.Consultation, error) {
	return nil, nil
}

// ==========================================
// RunConsultation Tests
// ==========================================

func TestRunConsultation_HungGeneratorWithinCallerDeadline(t *testing.T) {
	opts := DefaultOptions()
	opts.GeneratorTimeout = 50 * time.Millisecond
	opts.PersistenceReserve = 30 * time.Millisecond
	f := newFixtureWith(t, nil, hungGenerator{}, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*opts.GeneratorTimeout)
	defer cancel()

	c, err := f.service.RunConsultation(ctx, rex(), "limping for 3 days, refuses stairs")
	require.NoError(t, err)
	require.NotNil(t, c.ConsultationID)

	assert.Equal(t, models.AnalysisSourceRules, c.AnalysisSource)
	require.NotEmpty(t, c.Recommendations)
	for _, r := range c.Recommendations {
		assert.Equal(t, "default recommendation", r.Rationale)
	}

	records, err := f.store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRunConsultation_JointExample(t *testing.T) {
	f := newFixture(t, nil, nil)

	c, err := f.service.RunConsultation(context.Background(), rex(), "limping for 3 days, refuses stairs, reduced activity")
	require.NoError(t, err)

	assert.NotEmpty(t, c.RunID)
	assert.Equal(t, 0, c.Emergency.Level)
	assert.Equal(t, models.AnalysisSourceRules, c.AnalysisSource)
	assert.Contains(t, c.Analysis, "Possible joint problem")

	require.NotEmpty(t, c.Recommendations)
	assert.LessOrEqual(t, len(c.Recommendations), 3)
	assert.Equal(t, models.CategoryJointHealth, c.Recommendations[0].Category)
	for i := 1; i < len(c.Recommendations); i++ {
		if c.Recommendations[i].Category == c.Recommendations[i-1].Category {
			assert.GreaterOrEqual(t, c.Recommendations[i-1].Rating, c.Recommendations[i].Rating)
		}
	}

	require.NotNil(t, c.ConsultationID)
	history, err := f.service.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, *c.ConsultationID, history[0].ID)

	decoded, err := saveconsultation.DecodeRecommendations(history[0].Recommendations)
	require.NoError(t, err)
	assert.Equal(t, c.Recommendations, decoded)
}

func TestRunConsultation_EmergencyExample(t *testing.T) {
	f := newFixture(t, nil, nil)

	c, err := f.service.RunConsultation(context.Background(), rex(), "unconscious and seizing")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, c.Emergency.Level, 4)
	assert.True(t, strings.HasPrefix(c.Analysis, "**EMERGENCY SUSPECTED**"))
	assert.Empty(t, c.Recommendations)
	require.NotNil(t, c.ConsultationID)

	history, _ := f.service.ListRecent(context.Background(), 1)
	require.Len(t, history, 1)
	assert.Equal(t, "[]", history[0].Recommendations)
	assert.Equal(t, c.Emergency.Level, history[0].EmergencyLevel)
}

func TestRunConsultation_GeneralDefault(t *testing.T) {
	f := newFixture(t, nil, nil)

	c, err := f.service.RunConsultation(context.Background(), rex(), "seems a bit tired lately")
	require.NoError(t, err)

	require.NotEmpty(t, c.Recommendations)
	assert.LessOrEqual(t, len(c.Recommendations), 3)
	for _, r := range c.Recommendations {
		assert.Equal(t, models.CategoryGeneral, r.Category)
	}
	assert.Contains(t, c.Analysis, "General health care")
}

func TestRunConsultation_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		pet       models.PetProfile
		symptoms  string
		wantField string
	}{
		{name: "empty symptoms", pet: rex(), symptoms: "", wantField: "symptoms"},
		{name: "blank symptoms", pet: rex(), symptoms: "   \t", wantField: "symptoms"},
		{name: "blank name", pet: models.PetProfile{Name: " ", Species: models.SpeciesDog, Age: 1, Weight: 2}, symptoms: "cough", wantField: "pet.name"},
		{name: "unknown species", pet: models.PetProfile{Name: "Rex", Species: "hamster", Age: 1, Weight: 2}, symptoms: "cough", wantField: "pet.species"},
		{name: "negative age", pet: models.PetProfile{Name: "Rex", Species: models.SpeciesCat, Age: -1, Weight: 2}, symptoms: "cough", wantField: "pet.age"},
		{name: "zero weight", pet: models.PetProfile{Name: "Rex", Species: models.SpeciesCat, Age: 1, Weight: 0}, symptoms: "cough", wantField: "pet.weight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)

			c, err := f.service.RunConsultation(context.Background(), tt.pet, tt.symptoms)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed), err.Error())

			stdErr, _ := apperrors.AsStandard(err)
			assert.Contains(t, stdErr.Metadata["fields"], tt.wantField)

			history, _ := f.service.ListRecent(context.Background(), 10)
			assert.Empty(t, history, "nothing persisted")
		})
	}
}

func TestRunConsultation_StorageFailureDiscardsCase(t *testing.T) {
	f := newFixture(t, brokenStore{}, nil)

	c, err := f.service.RunConsultation(context.Background(), rex(), "cough")
	require.Error(t, err)
	assert.Nil(t, c)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeStorageFailed))
}

func TestRunConsultation_ConcurrentIDsAreUnique(t *testing.T) {
	f := newFixture(t, nil, nil)

	const n = 20
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := f.service.RunConsultation(context.Background(), rex(), fmt.Sprintf("itching, day %d", i))
			if assert.NoError(t, err) {
				ids <- *c.ConsultationID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

// ==========================================
// History and Catalog Tests
// ==========================================

func TestListRecent_LimitHandling(t *testing.T) {
	f := newFixture(t, nil, nil)
	for i := 0; i < 12; i++ {
		_, err := f.service.RunConsultation(context.Background(), rex(), "cough")
		require.NoError(t, err)
	}

	def, err := f.service.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, def, 10)
	assert.Greater(t, def[0].ID, def[1].ID, "most recent first")

	f.service.opts.MaxHistoryLimit = 5
	capped, err := f.service.ListRecent(context.Background(), 50)
	require.NoError(t, err)
	assert.Len(t, capped, 5)
}

func TestListSupplements(t *testing.T) {
	f := newFixture(t, nil, nil)

	all, err := f.service.ListSupplements(context.Background(), models.SupplementFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 8)

	none, err := f.service.ListSupplements(context.Background(), models.SupplementFilter{MinRating: 4.9})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

// ==========================================
// ResetAll Tests
// ==========================================

func TestResetAll_RestoresSeedAndClearsHistory(t *testing.T) {
	f := newFixture(t, nil, nil)
	_, err := f.service.RunConsultation(context.Background(), rex(), "cough")
	require.NoError(t, err)

	require.NoError(t, f.service.ResetAll(context.Background()))

	history, err := f.service.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, history)

	items, err := f.service.ListSupplements(context.Background(), models.SupplementFilter{})
	require.NoError(t, err)
	seed, err := storage.SeedSupplements()
	require.NoError(t, err)
	assert.ElementsMatch(t, seed, items)
}

func TestResetAll_WaitsForInFlightRun(t *testing.T) {
	gated := &gatedStore{
		MemoryConsultationStore: storage.NewMemoryConsultationStore(),
		entered:                 make(chan struct{}),
		release:                 make(chan struct{}),
	}
	f := newFixture(t, gated, nil)

	runDone := make(chan error, 1)
	go func() {
		_, err := f.service.RunConsultation(context.Background(), rex(), "cough")
		runDone <- err
	}()
	<-gated.entered

	resetDone := make(chan error, 1)
	go func() { resetDone <- f.service.ResetAll(context.Background()) }()

	select {
	case <-resetDone:
		t.Fatal("reset completed while a run was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(gated.release)
	require.NoError(t, <-runDone)
	require.NoError(t, <-resetDone)

	history, err := f.service.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, history, "reset ran after the in-flight run committed")
}
