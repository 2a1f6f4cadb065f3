package domain

import (
	"time"

	"github.com/google/uuid"
)

type MentorRole string

const (
	MentorRoleCounselor MentorRole = "counselor"
	MentorRoleLegal     MentorRole = "legal_advisor"
	MentorRoleCareer    MentorRole = "career_guide"
)

type MentorshipTopic string

const (
	TopicEmotionalSupport MentorshipTopic = "emotional_support"
	TopicLegalAid         MentorshipTopic = "legal_aid"
	TopicCareerGuidance   MentorshipTopic = "career_guidance"
)

func (t MentorshipTopic) Valid() bool {
	switch t {
	case TopicEmotionalSupport, TopicLegalAid, TopicCareerGuidance:
		return true
	}
	return false
}

// MentorRoleForTopic maps a requested topic to the mentor role that serves it.
func MentorRoleForTopic(t MentorshipTopic) MentorRole {
	switch t {
	case TopicLegalAid:
		return MentorRoleLegal
	case TopicCareerGuidance:
		return MentorRoleCareer
	default:
		return MentorRoleCounselor
	}
}

type MentorshipStatus string

const (
	MentorshipPending MentorshipStatus = "pending"
	MentorshipActive  MentorshipStatus = "active"
	MentorshipClosed  MentorshipStatus = "closed"
)

type MessageRole string

const (
	MessageRoleUser   MessageRole = "user"
	MessageRoleMentor MessageRole = "mentor"
)

// Mentor is a verified human mentor available for sessions.
type Mentor struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Role      MentorRole `json:"role"`
	Active    bool       `json:"active"`
	Verified  bool       `json:"verified"`
	CreatedAt time.Time  `json:"created_at"`
}

// MentorshipSession pairs a user with a mentor for one topic.
// Lifecycle: pending -> active (first mentor reply) -> closed. One
// non-closed session per user at a time.
type MentorshipSession struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	MentorID  uuid.UUID        `json:"mentor_id"`
	Topic     MentorshipTopic  `json:"topic"`
	Status    MentorshipStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	ClosedAt  *time.Time       `json:"closed_at,omitempty"`

	// Populated on fetch
	MentorName string              `json:"mentor_name,omitempty"`
	Messages   []MentorshipMessage `json:"messages,omitempty"`
}

// MentorshipMessage is one reply inside a session.
type MentorshipMessage struct {
	ID        uuid.UUID   `json:"id"`
	SessionID uuid.UUID   `json:"session_id"`
	SenderID  uuid.UUID   `json:"sender_id"`
	Role      MessageRole `json:"role"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"created_at"`
}
