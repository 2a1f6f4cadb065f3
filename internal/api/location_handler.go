package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/kavach-app/kavach/internal/auth"
	"github.com/kavach-app/kavach/internal/database"
	"github.com/kavach-app/kavach/internal/domain"
)

// LocationHandler handles the REST side of location sharing. Live streaming
// goes over the websocket endpoints; these exist for clients that can only
// poll or push occasionally.
type LocationHandler struct {
	locations *database.LocationRepository
	logger    *slog.Logger
}

func NewLocationHandler(locations *database.LocationRepository, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{
		locations: locations,
		logger:    logger,
	}
}

// Update godoc
//
//	@Summary		Update location
//	@Description	Store the authenticated user's current location
//	@Tags			location
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	map[string]interface{}
//	@Failure		400	{object}	map[string]string
//	@Router			/api/location/update [post]
func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var input struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Latitude == nil || input.Longitude == nil {
		writeError(w, http.StatusBadRequest, "latitude and longitude required")
		return
	}
	if !domain.ValidCoordinates(*input.Latitude, *input.Longitude) {
		writeError(w, http.StatusBadRequest, "coordinates out of range")
		return
	}

	location, err := h.locations.Upsert(r.Context(), userID, *input.Latitude, *input.Longitude)
	if err != nil {
		h.logger.Error("location upsert failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to update location")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Location updated successfully",
		"location": location,
	})
}

// Get godoc
//
//	@Summary		Get last known location
//	@Description	Fetch the last stored location for a user
//	@Tags			location
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	domain.LiveLocation
//	@Failure		404	{object}	map[string]string
//	@Router			/api/location/{user_id} [get]
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.GetUserID(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	targetID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	location, err := h.locations.Get(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, domain.ErrLocationNotFound) {
			writeError(w, http.StatusNotFound, "Location not found")
			return
		}
		h.logger.Error("location fetch failed", "error", err, "user_id", targetID)
		writeError(w, http.StatusInternalServerError, "failed to fetch location")
		return
	}

	writeJSON(w, http.StatusOK, location)
}
