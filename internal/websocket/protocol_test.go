package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Message Encoding Tests
// =============================================================================

func TestNewMessage_EncodesOnce(t *testing.T) {
	userID := uuid.New()
	msg, err := NewMessage(TypeLocationUpdate, LocationUpdatePayload{
		Type:      TypeLocationUpdate,
		UserID:    userID,
		Username:  "asha",
		Latitude:  28.6139,
		Longitude: 77.2090,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, TypeLocationUpdate, msg.Type)

	var decoded LocationUpdatePayload
	require.NoError(t, json.Unmarshal(msg.Bytes(), &decoded))
	assert.Equal(t, userID, decoded.UserID)
	assert.Equal(t, "asha", decoded.Username)
}

func TestNewMessage_UnencodablePayload(t *testing.T) {
	msg, err := NewMessage("bad", make(chan int))
	assert.Error(t, err)
	assert.Nil(t, msg)
}

// =============================================================================
// Location Sample Validation Tests
// =============================================================================

func ptr(v float64) *float64 { return &v }

func TestLocationSample_Valid(t *testing.T) {
	s := LocationSample{Latitude: ptr(28.6139), Longitude: ptr(77.2090)}
	assert.NoError(t, s.Validate())
}

func TestLocationSample_MissingCoordinates(t *testing.T) {
	assert.Error(t, (&LocationSample{Longitude: ptr(77.0)}).Validate())
	assert.Error(t, (&LocationSample{Latitude: ptr(28.0)}).Validate())
	assert.Error(t, (&LocationSample{}).Validate())
}

func TestLocationSample_OutOfRange(t *testing.T) {
	assert.Error(t, (&LocationSample{Latitude: ptr(91), Longitude: ptr(0)}).Validate())
	assert.Error(t, (&LocationSample{Latitude: ptr(-91), Longitude: ptr(0)}).Validate())
	assert.Error(t, (&LocationSample{Latitude: ptr(0), Longitude: ptr(181)}).Validate())
	assert.Error(t, (&LocationSample{Latitude: ptr(0), Longitude: ptr(-181)}).Validate())
}

func TestLocationSample_BoundaryCoordinates(t *testing.T) {
	assert.NoError(t, (&LocationSample{Latitude: ptr(90), Longitude: ptr(180)}).Validate())
	assert.NoError(t, (&LocationSample{Latitude: ptr(-90), Longitude: ptr(-180)}).Validate())
	assert.NoError(t, (&LocationSample{Latitude: ptr(0), Longitude: ptr(0)}).Validate())
}

func TestLocationSample_Timestamp(t *testing.T) {
	valid := LocationSample{Latitude: ptr(1), Longitude: ptr(1), Timestamp: "2026-08-30T10:00:00Z"}
	assert.NoError(t, valid.Validate())

	invalid := LocationSample{Latitude: ptr(1), Longitude: ptr(1), Timestamp: "yesterday"}
	assert.Error(t, invalid.Validate())
}

func TestLocationSample_ReportedAt(t *testing.T) {
	now := time.Now()

	withTS := LocationSample{Latitude: ptr(1), Longitude: ptr(1), Timestamp: "2026-08-30T10:00:00Z"}
	require.NoError(t, withTS.Validate())
	want, _ := time.Parse(time.RFC3339, "2026-08-30T10:00:00Z")
	assert.Equal(t, want, withTS.ReportedAt(now))

	// Without a timestamp the server clock is authoritative.
	withoutTS := LocationSample{Latitude: ptr(1), Longitude: ptr(1)}
	require.NoError(t, withoutTS.Validate())
	assert.Equal(t, now, withoutTS.ReportedAt(now))
}

// =============================================================================
// Group Key Tests
// =============================================================================

func TestGroupKeys(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "user:"+id.String(), GroupUser(id))
	assert.Equal(t, "emergency_contacts:"+id.String(), GroupContacts(id))
	assert.NotEqual(t, GroupUser(id), GroupUser(uuid.New()))
}
