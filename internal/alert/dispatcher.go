// Package alert implements the SOS dispatch pipeline: resolve the user's
// last known location, load their emergency contacts, record the event and
// fan alerts out to every contact.
package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kavach-app/kavach/internal/domain"
	"github.com/kavach-app/kavach/internal/metrics"
	"github.com/kavach-app/kavach/internal/notify"
)

// LocationReader provides the user's last stored location.
type LocationReader interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.LiveLocation, error)
}

// ContactLister provides the user's emergency contacts.
type ContactLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error)
}

// EventRecorder appends SOS events to the audit trail.
type EventRecorder interface {
	Create(ctx context.Context, event *domain.SOSEvent) error
}

// Dispatcher coordinates one SOS trigger end to end.
type Dispatcher struct {
	locations LocationReader
	contacts  ContactLister
	events    EventRecorder
	notifier  notify.Sender
	logger    *slog.Logger
}

func NewDispatcher(locations LocationReader, contacts ContactLister, events EventRecorder, notifier notify.Sender) *Dispatcher {
	return &Dispatcher{
		locations: locations,
		contacts:  contacts,
		events:    events,
		notifier:  notifier,
		logger:    slog.Default().With("component", "alert_dispatcher"),
	}
}

// Result describes a completed trigger: the recorded event, the location it
// was raised from, the contacts that were notified and how many of them were
// actually reached.
type Result struct {
	Event         *domain.SOSEvent
	Location      *domain.LiveLocation
	Contacts      []domain.Contact
	ContactsTotal int
	Alerted       int
}

// Trigger raises an SOS for the user. It fails before recording anything if
// the user has never shared a location or has no emergency contacts; once
// the event row is written, notification failures only reduce the Alerted
// count and never fail the trigger.
func (d *Dispatcher) Trigger(ctx context.Context, user *domain.User) (*Result, error) {
	location, err := d.locations.Get(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrLocationNotFound) {
			return nil, domain.ErrNoLiveLocation
		}
		return nil, fmt.Errorf("load location: %w", err)
	}

	contacts, err := d.contacts.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	if len(contacts) == 0 {
		return nil, domain.ErrNoContacts
	}

	event := &domain.SOSEvent{
		ID:          uuid.New(),
		UserID:      user.ID,
		Latitude:    location.Latitude,
		Longitude:   location.Longitude,
		Status:      domain.SOSStatusTriggered,
		TriggeredAt: time.Now(),
	}
	if err := d.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("record SOS event: %w", err)
	}
	metrics.SOSTriggered.Inc()

	message := alertMessage(user.Name, location)
	alerted := 0
	for _, contact := range contacts {
		if err := d.notifier.SendAlert(ctx, contact, *location, message); err != nil {
			d.logger.Error("alert delivery failed",
				"user_id", user.ID,
				"contact_email", contact.Email,
				"error", err)
			continue
		}
		alerted++
	}

	d.logger.Info("SOS triggered",
		"user_id", user.ID,
		"event_id", event.ID,
		"contacts", len(contacts),
		"alerted", alerted)

	return &Result{
		Event:         event,
		Location:      location,
		Contacts:      contacts,
		ContactsTotal: len(contacts),
		Alerted:       alerted,
	}, nil
}

func alertMessage(name string, loc *domain.LiveLocation) string {
	return fmt.Sprintf(
		"Emergency Alert: %s has triggered an SOS alert from location (%v, %v). Please reach out to them immediately. Location Link: https://www.google.com/maps?q=%v,%v",
		name, loc.Latitude, loc.Longitude, loc.Latitude, loc.Longitude,
	)
}
