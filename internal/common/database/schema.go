package database

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS supplements (
		id                BIGSERIAL PRIMARY KEY,
		name              TEXT NOT NULL,
		brand             TEXT NOT NULL,
		category          TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		ingredients       TEXT NOT NULL DEFAULT '',
		recommended_for   TEXT NOT NULL DEFAULT '',
		dosage            TEXT NOT NULL DEFAULT '',
		price             NUMERIC(12,2) NOT NULL CHECK (price > 0),
		rating            NUMERIC(3,2) NOT NULL CHECK (rating >= 0 AND rating <= 5),
		side_effects      TEXT NOT NULL DEFAULT '',
		contraindications TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_supplements_category_rating
		ON supplements (category, rating DESC, id)`,
	`CREATE TABLE IF NOT EXISTS consultations (
		id              BIGSERIAL PRIMARY KEY,
		pet_name        TEXT NOT NULL,
		pet_type        TEXT NOT NULL,
		pet_age         INTEGER NOT NULL,
		pet_weight      DOUBLE PRECISION NOT NULL,
		symptoms        TEXT NOT NULL,
		health_analysis TEXT NOT NULL,
		recommendations TEXT NOT NULL,
		emergency_level INTEGER NOT NULL DEFAULT 0,
		timestamp       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}
