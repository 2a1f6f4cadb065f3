package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kavach-app/kavach/internal/domain"
)

// LocationRepository handles live location persistence. One row per user;
// the upsert relies on Postgres row-level atomicity, so concurrent updates
// for the same user resolve last-writer-wins.
type LocationRepository struct {
	db *DB
}

func NewLocationRepository(db *DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Upsert overwrites the user's live location, creating the row on first use
func (r *LocationRepository) Upsert(ctx context.Context, userID uuid.UUID, lat, lon float64) (*domain.LiveLocation, error) {
	loc := &domain.LiveLocation{}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO live_locations (user_id, latitude, longitude, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET latitude = EXCLUDED.latitude,
		              longitude = EXCLUDED.longitude,
		              updated_at = NOW()
		RETURNING user_id, latitude, longitude, updated_at
	`, userID, lat, lon).Scan(&loc.UserID, &loc.Latitude, &loc.Longitude, &loc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return loc, nil
}

// Get returns the user's last stored location
func (r *LocationRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.LiveLocation, error) {
	loc := &domain.LiveLocation{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT user_id, latitude, longitude, updated_at
		FROM live_locations WHERE user_id = $1
	`, userID).Scan(&loc.UserID, &loc.Latitude, &loc.Longitude, &loc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLocationNotFound
	}
	return loc, err
}
