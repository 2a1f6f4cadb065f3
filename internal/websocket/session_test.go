package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavach-app/kavach/internal/domain"
)

// stubLocations records upserts; set fail to simulate a down database.
type stubLocations struct {
	mu      sync.Mutex
	upserts []domain.LiveLocation
	fail    bool
}

func (s *stubLocations) Upsert(_ context.Context, userID uuid.UUID, lat, lon float64) (*domain.LiveLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("db down")
	}
	loc := domain.LiveLocation{UserID: userID, Latitude: lat, Longitude: lon}
	s.upserts = append(s.upserts, loc)
	return &loc, nil
}

func (s *stubLocations) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.upserts)
}

// stubContacts authorizes the emails registered for each owner.
type stubContacts struct {
	allowed map[uuid.UUID]string
}

func (s *stubContacts) GetByOwnerAndEmail(_ context.Context, ownerID uuid.UUID, email string) (*domain.Contact, error) {
	if s.allowed[ownerID] == email {
		return &domain.Contact{UserID: ownerID, Email: email}, nil
	}
	return nil, errors.New("not found")
}

func newTestDeps(locations *stubLocations, contacts *stubContacts) *Deps {
	return &Deps{
		Locations: locations,
		Contacts:  contacts,
		Registry:  NewRegistry(testLogger()),
		Filter:    DefaultMotionFilter(),
		Logger:    testLogger(),
	}
}

func newTestClient() *Client {
	return &Client{
		send:   make(chan []byte, 64),
		done:   make(chan struct{}),
		logger: testLogger(),
	}
}

func newTestSession(deps *Deps, channel *Channel, user *domain.User, target uuid.UUID) *Session {
	s := NewSession(deps, channel, newTestClient(), "token", target)
	s.identity = user
	return s
}

// receivedFrame pops one queued outbound frame, failing the test if none is
// pending.
func receivedFrame(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.send:
		return data
	default:
		t.Fatal("no frame queued")
		return nil
	}
}

// =============================================================================
// Authorization Tests
// =============================================================================

func TestSelfLocation_Authorize(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Name: "asha"}
	deps := newTestDeps(&stubLocations{}, &stubContacts{})

	owner := newTestSession(deps, SelfLocation, user, user.ID)
	assert.NoError(t, SelfLocation.Authorize(context.Background(), owner))

	intruder := newTestSession(deps, SelfLocation, user, uuid.New())
	err := SelfLocation.Authorize(context.Background(), intruder)
	require.Error(t, err)
	assert.Equal(t, "user ID mismatch", err.Error())
}

func TestContactView_Authorize(t *testing.T) {
	target := uuid.New()
	contacts := &stubContacts{allowed: map[uuid.UUID]string{target: "mom@example.com"}}
	deps := newTestDeps(&stubLocations{}, contacts)

	mom := &domain.User{ID: uuid.New(), Email: "mom@example.com"}
	s := newTestSession(deps, ContactView, mom, target)
	assert.NoError(t, ContactView.Authorize(context.Background(), s))

	stranger := &domain.User{ID: uuid.New(), Email: "stranger@example.com"}
	s = newTestSession(deps, ContactView, stranger, target)
	err := ContactView.Authorize(context.Background(), s)
	require.Error(t, err)
	assert.Equal(t, "not an emergency contact", err.Error())
}

func TestSharedChannels_AdmitAnyAuthenticatedUser(t *testing.T) {
	assert.Nil(t, SOSResponder.Authorize)
	assert.Nil(t, AdminDashboard.Authorize)
	assert.Equal(t, GroupSOSResponders, SOSResponder.Group(uuid.Nil))
	assert.Equal(t, GroupAdminDashboard, AdminDashboard.Group(uuid.Nil))
}

// =============================================================================
// Location Sample Handling Tests
// =============================================================================

func TestHandleLocationSample_AcceptAndFanOut(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Name: "asha"}
	locations := &stubLocations{}
	deps := newTestDeps(locations, &stubContacts{})
	s := newTestSession(deps, SelfLocation, user, user.ID)

	contact := &stubConn{}
	responder := &stubConn{}
	admin := &stubConn{}
	deps.Registry.Connect(contact, GroupContacts(user.ID))
	deps.Registry.Connect(responder, GroupSOSResponders)
	deps.Registry.Connect(admin, GroupAdminDashboard)

	payload := []byte(`{"latitude": 28.6139, "longitude": 77.2090}`)
	require.NoError(t, handleLocationSample(context.Background(), s, payload))

	assert.Equal(t, 1, locations.count())

	cached, ok := deps.Registry.LastKnownLocation(user.ID)
	require.True(t, ok)
	assert.Equal(t, 28.6139, cached.Latitude)

	// All three audiences receive the same frame.
	require.Equal(t, 1, contact.count())
	require.Equal(t, 1, responder.count())
	require.Equal(t, 1, admin.count())

	var update LocationUpdatePayload
	require.NoError(t, json.Unmarshal(contact.received[0].Bytes(), &update))
	assert.Equal(t, TypeLocationUpdate, update.Type)
	assert.Equal(t, user.ID, update.UserID)
	assert.Equal(t, "asha", update.Username)
}

func TestHandleLocationSample_InsignificantMotionDropped(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Name: "asha"}
	locations := &stubLocations{}
	deps := newTestDeps(locations, &stubContacts{})
	s := newTestSession(deps, SelfLocation, user, user.ID)

	responder := &stubConn{}
	deps.Registry.Connect(responder, GroupSOSResponders)

	payload := []byte(`{"latitude": 28.6139, "longitude": 77.2090}`)
	require.NoError(t, handleLocationSample(context.Background(), s, payload))
	// Same coordinates right away: filtered, not an error.
	require.NoError(t, handleLocationSample(context.Background(), s, payload))

	assert.Equal(t, 1, locations.count())
	assert.Equal(t, 1, responder.count())
}

func TestHandleLocationSample_InvalidData(t *testing.T) {
	user := &domain.User{ID: uuid.New()}
	deps := newTestDeps(&stubLocations{}, &stubContacts{})
	s := newTestSession(deps, SelfLocation, user, user.ID)

	cases := [][]byte{
		[]byte(`{"latitude": "not a number", "longitude": 77.0}`),
		[]byte(`{"longitude": 77.0}`),
		[]byte(`{"latitude": 95.0, "longitude": 77.0}`),
		[]byte(`{"latitude": 28.0, "longitude": 77.0, "timestamp": "noon"}`),
	}
	for _, payload := range cases {
		err := handleLocationSample(context.Background(), s, payload)
		var ce *closeError
		require.ErrorAs(t, err, &ce, "payload %s", payload)
		assert.Equal(t, websocket.CloseUnsupportedData, ce.code)
	}
}

func TestHandleLocationSample_StoreFailure(t *testing.T) {
	user := &domain.User{ID: uuid.New()}
	deps := newTestDeps(&stubLocations{fail: true}, &stubContacts{})
	s := newTestSession(deps, SelfLocation, user, user.ID)

	err := handleLocationSample(context.Background(), s, []byte(`{"latitude": 28.0, "longitude": 77.0}`))
	var ce *closeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, websocket.CloseInternalServerErr, ce.code)

	// Nothing cached when persistence failed.
	_, ok := deps.Registry.LastKnownLocation(user.ID)
	assert.False(t, ok)
}

// =============================================================================
// On-Connect Delivery Tests
// =============================================================================

func TestSendTargetLastLocation(t *testing.T) {
	target := uuid.New()
	deps := newTestDeps(&stubLocations{}, &stubContacts{})
	s := newTestSession(deps, ContactView, &domain.User{ID: uuid.New()}, target)

	// Nothing cached yet: connect succeeds with no frame.
	require.NoError(t, sendTargetLastLocation(context.Background(), s))
	select {
	case <-s.client.send:
		t.Fatal("unexpected frame for unknown location")
	default:
	}

	deps.Registry.UpdateLastLocation(target, Sample{UserID: target, Latitude: 19.0760, Longitude: 72.8777})
	require.NoError(t, sendTargetLastLocation(context.Background(), s))

	var payload LastKnownLocationPayload
	require.NoError(t, json.Unmarshal(receivedFrame(t, s.client), &payload))
	assert.Equal(t, TypeLastKnownLocation, payload.Type)
	assert.Equal(t, target, payload.UserID)
	assert.Equal(t, 19.0760, payload.Latitude)
}

func TestSendAllLastLocations(t *testing.T) {
	deps := newTestDeps(&stubLocations{}, &stubContacts{})
	s := newTestSession(deps, SOSResponder, &domain.User{ID: uuid.New()}, uuid.Nil)

	u1, u2 := uuid.New(), uuid.New()
	deps.Registry.UpdateLastLocation(u1, Sample{UserID: u1, Latitude: 1})
	deps.Registry.UpdateLastLocation(u2, Sample{UserID: u2, Latitude: 2})

	require.NoError(t, sendAllLastLocations(context.Background(), s))

	seen := map[uuid.UUID]bool{}
	for i := 0; i < 2; i++ {
		var payload LastKnownLocationPayload
		require.NoError(t, json.Unmarshal(receivedFrame(t, s.client), &payload))
		seen[payload.UserID] = true
	}
	assert.True(t, seen[u1])
	assert.True(t, seen[u2])
}

func TestAcknowledge(t *testing.T) {
	deps := newTestDeps(&stubLocations{}, &stubContacts{})
	s := newTestSession(deps, AdminDashboard, &domain.User{ID: uuid.New()}, uuid.Nil)

	require.NoError(t, acknowledge(context.Background(), s, []byte(`{"ping": true}`)))

	var ack AckPayload
	require.NoError(t, json.Unmarshal(receivedFrame(t, s.client), &ack))
	assert.Equal(t, TypeAck, ack.Type)
	assert.Equal(t, "connected", ack.Status)
}
