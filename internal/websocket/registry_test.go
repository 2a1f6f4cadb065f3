package websocket

import (
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConn records everything sent to it; set fail to simulate a dead peer.
type stubConn struct {
	mu       sync.Mutex
	received []*Message
	fail     bool
}

func (c *stubConn) Send(msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("connection gone")
	}
	c.received = append(c.received, msg)
	return nil
}

func (c *stubConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.received)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// =============================================================================
// Membership Tests
// =============================================================================

func TestRegistry_ConnectDisconnect(t *testing.T) {
	r := NewRegistry(testLogger())
	c := &stubConn{}
	key := GroupUser(uuid.New())

	r.Connect(c, key)
	assert.Equal(t, 1, r.Members(key))
	assert.Equal(t, 1, r.Groups())

	r.Disconnect(c, key)
	assert.Equal(t, 0, r.Members(key))
	// Last member leaving destroys the group.
	assert.Equal(t, 0, r.Groups())
}

func TestRegistry_Connect_Idempotent(t *testing.T) {
	r := NewRegistry(testLogger())
	c := &stubConn{}
	key := GroupSOSResponders

	r.Connect(c, key)
	r.Connect(c, key)
	assert.Equal(t, 1, r.Members(key))
}

func TestRegistry_Disconnect_AbsentIsNoOp(t *testing.T) {
	r := NewRegistry(testLogger())

	assert.NotPanics(t, func() {
		r.Disconnect(&stubConn{}, GroupAdminDashboard)
	})

	// Disconnecting a connection that never joined an existing group.
	member := &stubConn{}
	r.Connect(member, GroupAdminDashboard)
	r.Disconnect(&stubConn{}, GroupAdminDashboard)
	assert.Equal(t, 1, r.Members(GroupAdminDashboard))
}

func TestRegistry_SameConnInMultipleGroups(t *testing.T) {
	r := NewRegistry(testLogger())
	c := &stubConn{}

	r.Connect(c, GroupSOSResponders)
	r.Connect(c, GroupAdminDashboard)
	assert.Equal(t, 2, r.Groups())

	r.Disconnect(c, GroupSOSResponders)
	assert.Equal(t, 0, r.Members(GroupSOSResponders))
	assert.Equal(t, 1, r.Members(GroupAdminDashboard))
}

// =============================================================================
// Broadcast Tests
// =============================================================================

func TestRegistry_Broadcast_DeliversToAllMembers(t *testing.T) {
	r := NewRegistry(testLogger())
	key := GroupContacts(uuid.New())
	c1, c2, c3 := &stubConn{}, &stubConn{}, &stubConn{}

	r.Connect(c1, key)
	r.Connect(c2, key)
	r.Connect(c3, key)

	msg, err := NewMessage(TypeAck, AckPayload{Type: TypeAck, Status: "connected"})
	require.NoError(t, err)

	delivered := r.Broadcast(msg, key)
	assert.Equal(t, 3, delivered)
	assert.Equal(t, 1, c1.count())
	assert.Equal(t, 1, c2.count())
	assert.Equal(t, 1, c3.count())
}

func TestRegistry_Broadcast_AbsentGroup(t *testing.T) {
	r := NewRegistry(testLogger())
	msg, _ := NewMessage(TypeAck, AckPayload{Type: TypeAck, Status: "connected"})

	assert.Zero(t, r.Broadcast(msg, "emergency_contacts:nobody"))
}

func TestRegistry_Broadcast_FailureIsolation(t *testing.T) {
	r := NewRegistry(testLogger())
	key := GroupSOSResponders
	healthy := &stubConn{}
	dead := &stubConn{fail: true}
	alsoHealthy := &stubConn{}

	r.Connect(healthy, key)
	r.Connect(dead, key)
	r.Connect(alsoHealthy, key)

	msg, _ := NewMessage(TypeAck, AckPayload{Type: TypeAck, Status: "connected"})
	delivered := r.Broadcast(msg, key)

	// The dead connection is skipped, not fatal; it also stays registered.
	assert.Equal(t, 2, delivered)
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 1, alsoHealthy.count())
	assert.Equal(t, 3, r.Members(key))
}

func TestRegistry_Broadcast_ExcludesDisconnected(t *testing.T) {
	r := NewRegistry(testLogger())
	key := GroupAdminDashboard
	stays, leaves := &stubConn{}, &stubConn{}

	r.Connect(stays, key)
	r.Connect(leaves, key)
	r.Disconnect(leaves, key)

	msg, _ := NewMessage(TypeAck, AckPayload{Type: TypeAck, Status: "connected"})
	assert.Equal(t, 1, r.Broadcast(msg, key))
	assert.Zero(t, leaves.count())
}

// =============================================================================
// Location Cache Delegation Tests
// =============================================================================

func TestRegistry_LastKnownLocation(t *testing.T) {
	r := NewRegistry(testLogger())
	userID := uuid.New()

	_, ok := r.LastKnownLocation(userID)
	assert.False(t, ok)

	r.UpdateLastLocation(userID, Sample{UserID: userID, Latitude: 28.6, Longitude: 77.2})

	got, ok := r.LastKnownLocation(userID)
	require.True(t, ok)
	assert.Equal(t, 28.6, got.Latitude)
	assert.Len(t, r.AllKnownLocations(), 1)
}

// =============================================================================
// Metric Label Tests
// =============================================================================

func TestGroupKind(t *testing.T) {
	assert.Equal(t, "user", groupKind(GroupUser(uuid.New())))
	assert.Equal(t, "emergency_contacts", groupKind(GroupContacts(uuid.New())))
	assert.Equal(t, "sos_responders", groupKind(GroupSOSResponders))
	assert.Equal(t, "admin_dashboard", groupKind(GroupAdminDashboard))
}
