package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kavach-app/kavach/internal/domain"
	"github.com/kavach-app/kavach/internal/metrics"
)

// TokenVerifier resolves a bearer token to the user it was issued for.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.User, error)
}

// LocationStore is the durable side of accepted location samples.
type LocationStore interface {
	Upsert(ctx context.Context, userID uuid.UUID, lat, lon float64) (*domain.LiveLocation, error)
}

// ContactResolver checks whether an email belongs to a user's contact list.
type ContactResolver interface {
	GetByOwnerAndEmail(ctx context.Context, ownerID uuid.UUID, email string) (*domain.Contact, error)
}

// Deps are the collaborators shared by every presence session.
type Deps struct {
	Verifier  TokenVerifier
	Locations LocationStore
	Contacts  ContactResolver
	Registry  *Registry
	Filter    *MotionFilter
	Logger    *slog.Logger
}

// Channel parametrizes the session state machine for one endpoint kind.
// Group derivation and authorization are supplied as data so the four
// channel variants share a single code path.
type Channel struct {
	Name string

	// NeedsTarget marks channels addressed at a specific user via the
	// {user_id} path parameter.
	NeedsTarget bool

	// Group derives the broadcast group this session subscribes to.
	Group func(target uuid.UUID) string

	// Authorize runs after token verification. A nil predicate admits any
	// authenticated identity. The returned error's message becomes the
	// close reason.
	Authorize func(ctx context.Context, s *Session) error

	// OnConnect runs once after the session joins its group.
	OnConnect func(ctx context.Context, s *Session) error

	// OnMessage handles one well-formed inbound frame.
	OnMessage func(ctx context.Context, s *Session, data []byte) error
}

// closeError carries the websocket close code a failure maps to.
type closeError struct {
	code   int
	reason string
}

func (e *closeError) Error() string { return e.reason }

// Session drives one connection through handshake, the authenticated
// message loop, and teardown.
type Session struct {
	deps     *Deps
	channel  *Channel
	client   *Client
	token    string
	target   uuid.UUID
	identity *domain.User
	group    string
	logger   *slog.Logger
}

func NewSession(deps *Deps, channel *Channel, client *Client, token string, target uuid.UUID) *Session {
	return &Session{
		deps:    deps,
		channel: channel,
		client:  client,
		token:   token,
		target:  target,
		logger:  deps.Logger.With("channel", channel.Name),
	}
}

// Run blocks until the session terminates. Group membership is removed on
// every exit path, including panics in message handling; the deferred
// cleanup is the only place deregistration happens, so it runs exactly once.
func (s *Session) Run(ctx context.Context) {
	joined := false
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("session panic", "panic", p)
			s.client.Close(websocket.CloseInternalServerErr, "internal server error")
		}
		if joined {
			s.deps.Registry.Disconnect(s.client, s.group)
		}
		s.client.Close(websocket.CloseNormalClosure, "")
	}()

	// Handshaking
	if s.token == "" {
		s.client.Close(websocket.ClosePolicyViolation, "no token provided")
		return
	}

	identity, err := s.deps.Verifier.VerifyToken(ctx, s.token)
	if err != nil {
		s.client.Close(websocket.ClosePolicyViolation, "invalid token")
		return
	}
	s.identity = identity

	if s.channel.Authorize != nil {
		if err := s.channel.Authorize(ctx, s); err != nil {
			s.client.Close(websocket.ClosePolicyViolation, err.Error())
			return
		}
	}

	s.group = s.channel.Group(s.target)
	s.deps.Registry.Connect(s.client, s.group)
	joined = true
	s.logger.Info("session joined", "user_id", s.identity.ID, "group", s.group)

	if s.channel.OnConnect != nil {
		if err := s.channel.OnConnect(ctx, s); err != nil {
			s.logger.Warn("on-connect delivery failed", "user_id", s.identity.ID, "error", err)
		}
	}

	// Authenticated loop: inbound frames are processed strictly in receipt
	// order; any terminal failure closes with its mapped code.
	s.client.prepare()
	for {
		data, err := s.client.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Warn("read error", "user_id", s.identity.ID, "error", err)
			}
			return
		}

		if !json.Valid(data) {
			s.client.Close(websocket.CloseUnsupportedData, "invalid JSON")
			return
		}

		if err := s.channel.OnMessage(ctx, s, data); err != nil {
			var ce *closeError
			if errors.As(err, &ce) {
				s.client.Close(ce.code, ce.reason)
			} else {
				s.logger.Error("message handling failed", "user_id", s.identity.ID, "error", err)
				s.client.Close(websocket.CloseInternalServerErr, "internal server error")
			}
			return
		}
	}
}

// ============================================================================
// Channel definitions
// ============================================================================

// SelfLocation is the channel a user streams their own position on.
var SelfLocation = &Channel{
	Name:        "self_location",
	NeedsTarget: true,
	Group:       GroupUser,
	Authorize: func(ctx context.Context, s *Session) error {
		if s.identity.ID != s.target {
			return errors.New("user ID mismatch")
		}
		return nil
	},
	OnMessage: handleLocationSample,
}

// ContactView lets a registered emergency contact watch one user.
var ContactView = &Channel{
	Name:        "contact_view",
	NeedsTarget: true,
	Group:       GroupContacts,
	Authorize: func(ctx context.Context, s *Session) error {
		if _, err := s.deps.Contacts.GetByOwnerAndEmail(ctx, s.target, s.identity.Email); err != nil {
			return errors.New("not an emergency contact")
		}
		return nil
	},
	OnConnect: sendTargetLastLocation,
	OnMessage: acknowledge,
}

// SOSResponder is the shared channel for responders. Any authenticated user
// may subscribe today; restricting this to a responder role needs a role
// model on users first.
var SOSResponder = &Channel{
	Name:      "sos_responder",
	Group:     func(uuid.UUID) string { return GroupSOSResponders },
	OnConnect: sendAllLastLocations,
	OnMessage: acknowledge,
}

// AdminDashboard feeds the monitoring dashboard. Same authenticated-only
// caveat as SOSResponder.
var AdminDashboard = &Channel{
	Name:      "admin_dashboard",
	Group:     func(uuid.UUID) string { return GroupAdminDashboard },
	OnMessage: acknowledge,
}

// handleLocationSample validates an inbound sample, gates it through the
// motion filter, then persists, caches, and fans it out.
func handleLocationSample(ctx context.Context, s *Session, data []byte) error {
	var sample LocationSample
	if err := json.Unmarshal(data, &sample); err != nil {
		return &closeError{code: websocket.CloseUnsupportedData, reason: "invalid data"}
	}
	if err := sample.Validate(); err != nil {
		return &closeError{code: websocket.CloseUnsupportedData, reason: "invalid data"}
	}

	lat, lon := *sample.Latitude, *sample.Longitude
	now := time.Now()

	var prev *Sample
	if cached, ok := s.deps.Registry.LastKnownLocation(s.identity.ID); ok {
		prev = &cached
	}
	if !s.deps.Filter.Significant(prev, lat, lon, now) {
		// Insignificant motion: drop silently, keep looping.
		metrics.LocationUpdatesDropped.Inc()
		return nil
	}

	if _, err := s.deps.Locations.Upsert(ctx, s.identity.ID, lat, lon); err != nil {
		s.logger.Error("location upsert failed", "user_id", s.identity.ID, "error", err)
		return &closeError{code: websocket.CloseInternalServerErr, reason: "internal server error"}
	}

	reportedAt := sample.ReportedAt(now)
	s.deps.Registry.UpdateLastLocation(s.identity.ID, Sample{
		UserID:     s.identity.ID,
		Latitude:   lat,
		Longitude:  lon,
		Timestamp:  reportedAt,
		ObservedAt: now,
	})
	metrics.LocationUpdatesAccepted.Inc()

	msg, err := NewMessage(TypeLocationUpdate, LocationUpdatePayload{
		Type:      TypeLocationUpdate,
		UserID:    s.identity.ID,
		Username:  s.identity.Name,
		Latitude:  lat,
		Longitude: lon,
		Timestamp: reportedAt,
	})
	if err != nil {
		return err
	}

	s.deps.Registry.Broadcast(msg, GroupContacts(s.identity.ID))
	s.deps.Registry.Broadcast(msg, GroupSOSResponders)
	s.deps.Registry.Broadcast(msg, GroupAdminDashboard)
	return nil
}

// sendTargetLastLocation delivers the watched user's cached position to a
// freshly connected contact, if one is known.
func sendTargetLastLocation(ctx context.Context, s *Session) error {
	sample, ok := s.deps.Registry.LastKnownLocation(s.target)
	if !ok {
		return nil
	}
	return sendLastKnown(s.client, sample)
}

// sendAllLastLocations delivers every cached position to a freshly
// connected responder.
func sendAllLastLocations(ctx context.Context, s *Session) error {
	for _, sample := range s.deps.Registry.AllKnownLocations() {
		if err := sendLastKnown(s.client, sample); err != nil {
			return err
		}
	}
	return nil
}

func sendLastKnown(c *Client, sample Sample) error {
	msg, err := NewMessage(TypeLastKnownLocation, LastKnownLocationPayload{
		Type:      TypeLastKnownLocation,
		UserID:    sample.UserID,
		Latitude:  sample.Latitude,
		Longitude: sample.Longitude,
		Timestamp: sample.Timestamp,
	})
	if err != nil {
		return err
	}
	return c.Send(msg)
}

// acknowledge answers inbound frames on the view-only channels.
func acknowledge(ctx context.Context, s *Session, data []byte) error {
	msg, err := NewMessage(TypeAck, AckPayload{Type: TypeAck, Status: "connected"})
	if err != nil {
		return err
	}
	return s.client.Send(msg)
}
