package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kavach-app/kavach/internal/domain"
)

// Message types for server -> client
const (
	TypeLocationUpdate    = "location_update"
	TypeLastKnownLocation = "last_known_location"
	TypeAck               = "ack"
)

// Group keys. A group is a named broadcast audience; it exists only while it
// has at least one live subscriber.
const (
	GroupSOSResponders  = "sos_responders"
	GroupAdminDashboard = "admin_dashboard"
)

// GroupUser is the group carrying a user's own location stream.
func GroupUser(id uuid.UUID) string {
	return "user:" + id.String()
}

// GroupContacts is the group for emergency contacts watching a user.
func GroupContacts(id uuid.UUID) string {
	return "emergency_contacts:" + id.String()
}

// Message is one outbound frame, pre-encoded once per broadcast so every
// member receives identical bytes.
type Message struct {
	Type string
	data []byte
}

// NewMessage encodes a payload for delivery.
func NewMessage(msgType string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", msgType, err)
	}
	return &Message{Type: msgType, data: data}, nil
}

// Bytes returns the encoded frame.
func (m *Message) Bytes() []byte {
	return m.data
}

// LocationSample is the inbound payload on the self-location channel.
// Latitude/longitude are pointers so missing fields are distinguishable
// from zero values during schema validation.
type LocationSample struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timestamp string   `json:"timestamp,omitempty"` // optional, RFC 3339

	// reportedAt holds the parsed Timestamp; Validate is the only place the
	// string is parsed.
	reportedAt time.Time
}

// Validate enforces the location schema: both coordinates present and in
// range, and the timestamp (when given) parseable. The parsed timestamp is
// retained for ReportedAt.
func (s *LocationSample) Validate() error {
	if s.Latitude == nil || s.Longitude == nil {
		return fmt.Errorf("latitude and longitude are required")
	}
	if !domain.ValidCoordinates(*s.Latitude, *s.Longitude) {
		return fmt.Errorf("coordinates out of range")
	}
	if s.Timestamp != "" {
		t, err := time.Parse(time.RFC3339, s.Timestamp)
		if err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
		s.reportedAt = t
	}
	return nil
}

// ReportedAt resolves the sample's timestamp as parsed by Validate,
// defaulting to now when none was given.
func (s *LocationSample) ReportedAt(now time.Time) time.Time {
	if !s.reportedAt.IsZero() {
		return s.reportedAt
	}
	return now
}

// LocationUpdatePayload is broadcast to contacts, responders, and admins
// when a user's accepted location changes.
type LocationUpdatePayload struct {
	Type      string    `json:"type"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// LastKnownLocationPayload is delivered to a subscriber on connect.
type LastKnownLocationPayload struct {
	Type      string    `json:"type"`
	UserID    uuid.UUID `json:"user_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// AckPayload acknowledges inbound messages on the view-only channels.
type AckPayload struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}
