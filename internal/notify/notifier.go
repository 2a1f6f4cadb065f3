// Package notify delivers SOS alert messages to emergency contacts through
// an out-of-band channel (SMS/email gateway). Delivery is best-effort:
// callers fire and forget, and a failure for one contact never affects the
// others.
package notify

import (
	"context"
	"time"

	"github.com/kavach-app/kavach/internal/domain"
)

// Alert is one queued notification for one contact.
type Alert struct {
	ContactName  string    `json:"contact_name"`
	ContactEmail string    `json:"contact_email"`
	ContactPhone string    `json:"contact_phone"`
	UserID       string    `json:"user_id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Message      string    `json:"message"`
	QueuedAt     time.Time `json:"queued_at"`
}

// Sender pushes one alert toward a contact.
type Sender interface {
	SendAlert(ctx context.Context, contact domain.Contact, location domain.LiveLocation, message string) error
}

func newAlert(contact domain.Contact, location domain.LiveLocation, message string) Alert {
	return Alert{
		ContactName:  contact.Name,
		ContactEmail: contact.Email,
		ContactPhone: contact.PhoneNumber,
		UserID:       location.UserID.String(),
		Latitude:     location.Latitude,
		Longitude:    location.Longitude,
		Message:      message,
		QueuedAt:     time.Now(),
	}
}
