package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
	RoleNGO   UserRole = "ngo"
)

// User represents a registered user
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"` // omit in public responses
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicUser is the safe-to-expose version of User
type PublicUser struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:   u.ID,
		Name: u.Name,
	}
}

// CanModerate reports whether the user may publish awareness content.
func (u *User) CanModerate() bool {
	return u.Role == RoleAdmin || u.Role == RoleNGO
}
