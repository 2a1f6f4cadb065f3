package alert

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavach-app/kavach/internal/domain"
)

type stubLocations struct {
	location *domain.LiveLocation
	err      error
}

func (s *stubLocations) Get(context.Context, uuid.UUID) (*domain.LiveLocation, error) {
	return s.location, s.err
}

type stubContacts struct {
	contacts []domain.Contact
	err      error
}

func (s *stubContacts) ListByUser(context.Context, uuid.UUID) ([]domain.Contact, error) {
	return s.contacts, s.err
}

type stubEvents struct {
	created []*domain.SOSEvent
	err     error
}

func (s *stubEvents) Create(_ context.Context, event *domain.SOSEvent) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, event)
	return nil
}

// stubSender fails delivery to any contact whose email is in failFor.
type stubSender struct {
	sent     []string
	messages []string
	failFor  map[string]bool
}

func (s *stubSender) SendAlert(_ context.Context, contact domain.Contact, _ domain.LiveLocation, message string) error {
	if s.failFor[contact.Email] {
		return errors.New("gateway timeout")
	}
	s.sent = append(s.sent, contact.Email)
	s.messages = append(s.messages, message)
	return nil
}

func testUser() *domain.User {
	return &domain.User{ID: uuid.New(), Name: "Asha", Email: "asha@example.com"}
}

func testContacts(n int) []domain.Contact {
	contacts := make([]domain.Contact, n)
	for i := range contacts {
		contacts[i] = domain.Contact{
			ID:     uuid.New(),
			Name:   "Contact",
			Email:  uuid.NewString() + "@example.com",
			UserID: uuid.Nil,
		}
	}
	return contacts
}

func TestTrigger_NoLiveLocation(t *testing.T) {
	d := NewDispatcher(
		&stubLocations{err: domain.ErrLocationNotFound},
		&stubContacts{contacts: testContacts(1)},
		&stubEvents{},
		&stubSender{},
	)

	result, err := d.Trigger(context.Background(), testUser())
	assert.ErrorIs(t, err, domain.ErrNoLiveLocation)
	assert.Nil(t, result)
}

func TestTrigger_NoContacts(t *testing.T) {
	events := &stubEvents{}
	d := NewDispatcher(
		&stubLocations{location: &domain.LiveLocation{Latitude: 28.6, Longitude: 77.2}},
		&stubContacts{},
		events,
		&stubSender{},
	)

	result, err := d.Trigger(context.Background(), testUser())
	assert.ErrorIs(t, err, domain.ErrNoContacts)
	assert.Nil(t, result)
	// Nothing recorded when the trigger was refused.
	assert.Empty(t, events.created)
}

func TestTrigger_RecordsEventAndAlertsEveryone(t *testing.T) {
	user := testUser()
	location := &domain.LiveLocation{UserID: user.ID, Latitude: 28.6139, Longitude: 77.2090}
	contacts := testContacts(3)
	events := &stubEvents{}
	sender := &stubSender{}

	d := NewDispatcher(&stubLocations{location: location}, &stubContacts{contacts: contacts}, events, sender)

	result, err := d.Trigger(context.Background(), user)
	require.NoError(t, err)

	require.Len(t, events.created, 1)
	event := events.created[0]
	assert.Equal(t, user.ID, event.UserID)
	assert.Equal(t, domain.SOSStatusTriggered, event.Status)
	assert.Equal(t, location.Latitude, event.Latitude)
	assert.Equal(t, location.Longitude, event.Longitude)
	assert.False(t, event.TriggeredAt.IsZero())

	assert.Equal(t, contacts, result.Contacts)
	assert.Equal(t, 3, result.ContactsTotal)
	assert.Equal(t, 3, result.Alerted)
	assert.Len(t, sender.sent, 3)

	// The alert message names the user and carries a maps link.
	require.NotEmpty(t, sender.messages)
	assert.Contains(t, sender.messages[0], "Asha")
	assert.Contains(t, sender.messages[0], "https://www.google.com/maps?q=")
}

func TestTrigger_PartialDeliveryStillSucceeds(t *testing.T) {
	user := testUser()
	contacts := testContacts(3)
	sender := &stubSender{failFor: map[string]bool{contacts[1].Email: true}}

	d := NewDispatcher(
		&stubLocations{location: &domain.LiveLocation{UserID: user.ID, Latitude: 1, Longitude: 1}},
		&stubContacts{contacts: contacts},
		&stubEvents{},
		sender,
	)

	result, err := d.Trigger(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, contacts, result.Contacts)
	assert.Equal(t, 3, result.ContactsTotal)
	assert.Equal(t, 2, result.Alerted)
}

func TestTrigger_EventWriteFailureAborts(t *testing.T) {
	sender := &stubSender{}
	d := NewDispatcher(
		&stubLocations{location: &domain.LiveLocation{Latitude: 1, Longitude: 1}},
		&stubContacts{contacts: testContacts(2)},
		&stubEvents{err: errors.New("db down")},
		sender,
	)

	_, err := d.Trigger(context.Background(), testUser())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "record SOS event"))
	// No alerts go out if the audit row could not be written.
	assert.Empty(t, sender.sent)
}
