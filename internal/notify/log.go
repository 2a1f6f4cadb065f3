package notify

import (
	"context"
	"log/slog"

	"github.com/kavach-app/kavach/internal/domain"
)

// LogNotifier writes alerts to the structured log instead of an external
// queue. It is the default in development so the server runs without Redis.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{
		logger: slog.Default().With("component", "notifier", "backend", "log"),
	}
}

func (n *LogNotifier) SendAlert(_ context.Context, contact domain.Contact, location domain.LiveLocation, message string) error {
	alert := newAlert(contact, location, message)
	n.logger.Info("SOS alert",
		"contact_name", alert.ContactName,
		"contact_email", alert.ContactEmail,
		"contact_phone", alert.ContactPhone,
		"user_id", alert.UserID,
		"latitude", alert.Latitude,
		"longitude", alert.Longitude,
		"message", alert.Message,
	)
	return nil
}
