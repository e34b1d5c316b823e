// Package storage holds the consultation record store and the supplement
// catalog, with in-memory and Postgres backends and a Redis cache decorator
// for catalog lookups.
package storage

import (
	"context"
	_ "embed"
	"fmt"
	"sort"

	"pet-doctor/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedData []byte

// ConsultationStore is the append-only consultation history.
type ConsultationStore interface {
	// Append assigns the next id and persists c atomically. c.ID and
	// c.CreatedAt are set on success.
	Append(ctx context.Context, c *models.Consultation) (int64, error)
	// ListRecent returns up to limit records, most recent first.
	ListRecent(ctx context.Context, limit int) ([]models.Consultation, error)
	// Reset removes every record and restarts id assignment.
	Reset(ctx context.Context) error
}

// SupplementCatalog is the read-mostly supplement catalog.
type SupplementCatalog interface {
	// TopRated returns up to limit records of category ordered by rating
	// descending then id ascending.
	TopRated(ctx context.Context, category models.Category, limit int) ([]models.Supplement, error)
	// List returns records matching filter ordered by category, then rating
	// descending, then id.
	List(ctx context.Context, filter models.SupplementFilter) ([]models.Supplement, error)
	// Seed loads the seed dataset if the catalog is empty.
	Seed(ctx context.Context) error
	// Reset clears the catalog and reloads the seed dataset.
	Reset(ctx context.Context) error
}

// SeedSupplements returns the catalog seed dataset with ids 1..8.
func SeedSupplements() ([]models.Supplement, error) {
	var f struct {
		Supplements []models.Supplement `yaml:"supplements"`
	}
	if err := yaml.Unmarshal(seedData, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for i := range f.Supplements {
		f.Supplements[i].ID = int64(i + 1)
		if !f.Supplements[i].Category.Valid() {
			return nil, fmt.Errorf("parse seed: %s has unknown category %q", f.Supplements[i].Name, f.Supplements[i].Category)
		}
	}
	return f.Supplements, nil
}

func matchesFilter(s models.Supplement, f models.SupplementFilter) bool {
	if f.Category != "" && s.Category != f.Category {
		return false
	}
	if f.MinPrice > 0 && s.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && s.Price > f.MaxPrice {
		return false
	}
	if f.MinRating > 0 && s.Rating < f.MinRating {
		return false
	}
	return true
}

func sortByRating(items []models.Supplement) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Rating != items[j].Rating {
			return items[i].Rating > items[j].Rating
		}
		return items[i].ID < items[j].ID
	})
}

func sortForListing(items []models.Supplement) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		if items[i].Rating != items[j].Rating {
			return items[i].Rating > items[j].Rating
		}
		return items[i].ID < items[j].ID
	})
}
