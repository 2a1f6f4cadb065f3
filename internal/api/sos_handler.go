package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kavach-app/kavach/internal/alert"
	"github.com/kavach-app/kavach/internal/auth"
	"github.com/kavach-app/kavach/internal/database"
	"github.com/kavach-app/kavach/internal/domain"
)

// SOSHandler handles SOS trigger and history endpoints.
type SOSHandler struct {
	dispatcher *alert.Dispatcher
	users      *database.UserRepository
	events     *database.SOSRepository
	logger     *slog.Logger
}

func NewSOSHandler(dispatcher *alert.Dispatcher, users *database.UserRepository, events *database.SOSRepository, logger *slog.Logger) *SOSHandler {
	return &SOSHandler{
		dispatcher: dispatcher,
		users:      users,
		events:     events,
		logger:     logger,
	}
}

// Trigger godoc
//
//	@Summary		Trigger SOS
//	@Description	Raise an SOS alert from the user's last known location and notify all their emergency contacts
//	@Tags			sos
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	map[string]interface{}
//	@Failure		400	{object}	map[string]string	"No live location or no contacts"
//	@Router			/api/sos/trigger [post]
func (h *SOSHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	result, err := h.dispatcher.Trigger(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoLiveLocation):
			writeError(w, http.StatusBadRequest, "no live location found, share your location first")
		case errors.Is(err, domain.ErrNoContacts):
			writeError(w, http.StatusBadRequest, "no emergency contacts registered")
		default:
			h.logger.Error("SOS trigger failed", "error", err, "user_id", userID)
			writeError(w, http.StatusInternalServerError, "failed to trigger SOS")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"message":  fmt.Sprintf("SOS alert triggered and notifications sent to %d contacts.", result.ContactsTotal),
		"location": fmt.Sprintf("%v, %v", result.Location.Latitude, result.Location.Longitude),
		"event_id": result.Event.ID,
	})
}

// History godoc
//
//	@Summary		SOS history
//	@Description	List the authenticated user's past SOS events, newest first
//	@Tags			sos
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	map[string]interface{}
//	@Router			/api/sos/history [get]
func (h *SOSHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	events, err := h.events.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("list SOS events failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to retrieve SOS history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}
