package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pet-doctor/internal/models"

	sq "github.com/Masterminds/squirrel"
)

var (
	_ ConsultationStore = (*PostgresConsultationStore)(nil)
	_ SupplementCatalog = (*PostgresCatalog)(nil)
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var consultationColumns = []string{
	"id", "pet_name", "pet_type", "pet_age", "pet_weight",
	"symptoms", "health_analysis", "recommendations", "emergency_level", "timestamp",
}

var supplementColumns = []string{
	"id", "name", "brand", "category", "description", "ingredients",
	"recommended_for", "dosage", "price", "rating", "side_effects", "contraindications",
}

// PostgresConsultationStore persists consultations in the consultations table.
// Ids come from the BIGSERIAL column, so assignment is atomic with the insert.
type PostgresConsultationStore struct {
	db *sql.DB
}

func NewPostgresConsultationStore(db *sql.DB) *PostgresConsultationStore {
	return &PostgresConsultationStore{db: db}
}

func (s *PostgresConsultationStore) Append(ctx context.Context, c *models.Consultation) (int64, error) {
	query, args, err := psql.Insert("consultations").
		Columns("pet_name", "pet_type", "pet_age", "pet_weight", "symptoms",
			"health_analysis", "recommendations", "emergency_level").
		Values(c.Pet.Name, string(c.Pet.Species), c.Pet.Age, c.Pet.Weight, c.Symptoms,
			c.Analysis, c.Recommendations, c.EmergencyLevel).
		Suffix("RETURNING id, timestamp").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	var (
		id int64
		ts time.Time
	)
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id, &ts); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert consultation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit consultation: %w", err)
	}

	c.ID = id
	c.CreatedAt = ts.UTC()
	return id, nil
}

func (s *PostgresConsultationStore) ListRecent(ctx context.Context, limit int) ([]models.Consultation, error) {
	builder := psql.Select(consultationColumns...).From("consultations").OrderBy("id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query consultations: %w", err)
	}
	defer rows.Close()

	var out []models.Consultation
	for rows.Next() {
		var (
			c       models.Consultation
			species string
		)
		if err := rows.Scan(&c.ID, &c.Pet.Name, &species, &c.Pet.Age, &c.Pet.Weight,
			&c.Symptoms, &c.Analysis, &c.Recommendations, &c.EmergencyLevel, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan consultation: %w", err)
		}
		c.Pet.Species = models.Species(species)
		c.CreatedAt = c.CreatedAt.UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

func (s *PostgresConsultationStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "TRUNCATE consultations RESTART IDENTITY"); err != nil {
		return fmt.Errorf("truncate consultations: %w", err)
	}
	return nil
}

// PostgresCatalog reads and reseeds the supplements table.
type PostgresCatalog struct {
	db *sql.DB
}

func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

func (c *PostgresCatalog) TopRated(ctx context.Context, category models.Category, limit int) ([]models.Supplement, error) {
	builder := psql.Select(supplementColumns...).
		From("supplements").
		Where(sq.Eq{"category": string(category)}).
		OrderBy("rating DESC", "id ASC")
	if limit >= 0 {
		builder = builder.Limit(uint64(limit))
	}
	return c.query(ctx, builder)
}

func (c *PostgresCatalog) List(ctx context.Context, filter models.SupplementFilter) ([]models.Supplement, error) {
	builder := psql.Select(supplementColumns...).From("supplements")
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": string(filter.Category)})
	}
	if filter.MinPrice > 0 {
		builder = builder.Where(sq.GtOrEq{"price": filter.MinPrice})
	}
	if filter.MaxPrice > 0 {
		builder = builder.Where(sq.LtOrEq{"price": filter.MaxPrice})
	}
	if filter.MinRating > 0 {
		builder = builder.Where(sq.GtOrEq{"rating": filter.MinRating})
	}
	return c.query(ctx, builder.OrderBy("category ASC", "rating DESC", "id ASC"))
}

func (c *PostgresCatalog) query(ctx context.Context, builder sq.SelectBuilder) ([]models.Supplement, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query supplements: %w", err)
	}
	defer rows.Close()

	var out []models.Supplement
	for rows.Next() {
		var (
			s        models.Supplement
			category string
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Brand, &category, &s.Description, &s.Ingredients,
			&s.Indications, &s.Dosage, &s.Price, &s.Rating, &s.SideEffects, &s.Contraindications); err != nil {
			return nil, fmt.Errorf("scan supplement: %w", err)
		}
		s.Category = models.Category(category)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

func (c *PostgresCatalog) Seed(ctx context.Context) error {
	var count int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM supplements").Scan(&count); err != nil {
		return fmt.Errorf("count supplements: %w", err)
	}
	if count > 0 {
		return nil
	}
	return c.reload(ctx, false)
}

func (c *PostgresCatalog) Reset(ctx context.Context) error {
	return c.reload(ctx, true)
}

// reload inserts the seed rows in one transaction, truncating first when
// asked, so readers never observe a half-seeded catalog.
func (c *PostgresCatalog) reload(ctx context.Context, truncate bool) error {
	seed, err := SeedSupplements()
	if err != nil {
		return err
	}

	insert := psql.Insert("supplements").Columns(supplementColumns...)
	for _, s := range seed {
		insert = insert.Values(s.ID, s.Name, s.Brand, string(s.Category), s.Description, s.Ingredients,
			s.Indications, s.Dosage, s.Price, s.Rating, s.SideEffects, s.Contraindications)
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build seed insert: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if truncate {
		if _, err := tx.ExecContext(ctx, "TRUNCATE supplements RESTART IDENTITY"); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("truncate supplements: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert seed: %w", err)
	}
	// Explicit ids bypass the sequence; move it past the seed.
	if _, err := tx.ExecContext(ctx, "SELECT setval(pg_get_serial_sequence('supplements', 'id'), (SELECT MAX(id) FROM supplements))"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("advance sequence: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}
