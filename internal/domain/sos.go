package domain

import (
	"time"

	"github.com/google/uuid"
)

type SOSStatus string

const (
	SOSStatusTriggered SOSStatus = "triggered"
	SOSStatusResolved  SOSStatus = "resolved"
)

// SOSEvent records one SOS trigger with the location it fired from.
// Rows are append-only; this service never mutates or deletes them.
type SOSEvent struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Status      SOSStatus `json:"status"`
	TriggeredAt time.Time `json:"triggered_at"`
}
