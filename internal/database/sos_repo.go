package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/kavach-app/kavach/internal/domain"
)

// SOSRepository persists SOS events. The table is append-only from this
// service's perspective.
type SOSRepository struct {
	db *DB
}

func NewSOSRepository(db *DB) *SOSRepository {
	return &SOSRepository{db: db}
}

// Create inserts a new SOS event row
func (r *SOSRepository) Create(ctx context.Context, event *domain.SOSEvent) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO sos_events (id, user_id, latitude, longitude, status, triggered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, event.ID, event.UserID, event.Latitude, event.Longitude, event.Status, event.TriggeredAt)
	return err
}

// ListByUser returns a user's SOS history, newest first
func (r *SOSRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SOSEvent, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, user_id, latitude, longitude, status, triggered_at
		FROM sos_events WHERE user_id = $1
		ORDER BY triggered_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.SOSEvent
	for rows.Next() {
		var e domain.SOSEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Latitude, &e.Longitude, &e.Status, &e.TriggeredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
