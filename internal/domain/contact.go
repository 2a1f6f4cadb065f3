package domain

import (
	"time"

	"github.com/google/uuid"
)

// Contact is an emergency contact registered by a user.
// The email links the contact back to an account so that person can open
// the contact-view presence channel for the owning user.
type Contact struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Relation    string    `json:"relation,omitempty"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}
