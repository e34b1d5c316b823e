package storage

import (
	"context"
	"sync"
	"time"

	"pet-doctor/internal/models"
)

var (
	_ ConsultationStore = (*MemoryConsultationStore)(nil)
	_ SupplementCatalog = (*MemoryCatalog)(nil)
)

// MemoryConsultationStore keeps consultations in process memory.
type MemoryConsultationStore struct {
	mu      sync.Mutex
	nextID  int64
	records []models.Consultation
	now     func() time.Time
}

func NewMemoryConsultationStore() *MemoryConsultationStore {
	return &MemoryConsultationStore{nextID: 1, now: time.Now}
}

func (s *MemoryConsultationStore) Append(ctx context.Context, c *models.Consultation) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.nextID
	c.CreatedAt = s.now().UTC()
	s.nextID++
	s.records = append(s.records, *c)
	return c.ID, nil
}

func (s *MemoryConsultationStore) ListRecent(ctx context.Context, limit int) ([]models.Consultation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]models.Consultation, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func (s *MemoryConsultationStore) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.nextID = 1
	return nil
}

// MemoryCatalog keeps the supplement catalog in process memory.
type MemoryCatalog struct {
	mu    sync.RWMutex
	items []models.Supplement
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{}
}

// NewMemoryCatalogWith returns a catalog holding exactly items.
func NewMemoryCatalogWith(items []models.Supplement) *MemoryCatalog {
	return &MemoryCatalog{items: append([]models.Supplement(nil), items...)}
}

func (c *MemoryCatalog) TopRated(_ context.Context, category models.Category, limit int) ([]models.Supplement, error) {
	c.mu.RLock()
	var out []models.Supplement
	for _, s := range c.items {
		if s.Category == category {
			out = append(out, s)
		}
	}
	c.mu.RUnlock()

	sortByRating(out)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *MemoryCatalog) List(_ context.Context, filter models.SupplementFilter) ([]models.Supplement, error) {
	c.mu.RLock()
	out := make([]models.Supplement, 0, len(c.items))
	for _, s := range c.items {
		if matchesFilter(s, filter) {
			out = append(out, s)
		}
	}
	c.mu.RUnlock()

	sortForListing(out)
	return out, nil
}

func (c *MemoryCatalog) Seed(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) > 0 {
		return nil
	}
	return c.loadSeedLocked()
}

func (c *MemoryCatalog) Reset(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	return c.loadSeedLocked()
}

func (c *MemoryCatalog) loadSeedLocked() error {
	seed, err := SeedSupplements()
	if err != nil {
		return err
	}
	c.items = seed
	return nil
}
