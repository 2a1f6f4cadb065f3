package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kavach-app/kavach/internal/auth"
	"github.com/kavach-app/kavach/internal/database"
	"github.com/kavach-app/kavach/internal/domain"
)

// ContactHandler handles emergency contact endpoints.
type ContactHandler struct {
	contacts *database.ContactRepository
	logger   *slog.Logger
}

func NewContactHandler(contacts *database.ContactRepository, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		contacts: contacts,
		logger:   logger,
	}
}

// Create godoc
//
//	@Summary		Add emergency contact
//	@Description	Add a new emergency contact for the authenticated user
//	@Tags			contacts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		201	{object}	domain.Contact
//	@Failure		400	{object}	map[string]string
//	@Failure		409	{object}	map[string]string	"Contact already exists"
//	@Router			/contacts [post]
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var input struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
		Relation    string `json:"relation"`
		Message     string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" {
		writeError(w, http.StatusBadRequest, "contact name required")
		return
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		writeError(w, http.StatusBadRequest, "valid contact email required")
		return
	}
	if input.PhoneNumber == "" {
		writeError(w, http.StatusBadRequest, "contact phone number required")
		return
	}

	contact := &domain.Contact{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        input.Name,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Relation:    input.Relation,
		Message:     input.Message,
		CreatedAt:   time.Now(),
	}

	if err := h.contacts.Create(r.Context(), contact); err != nil {
		if errors.Is(err, domain.ErrContactExists) {
			writeError(w, http.StatusConflict, "contact already exists")
			return
		}
		h.logger.Error("create contact failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to create contact")
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

// List godoc
//
//	@Summary		List emergency contacts
//	@Description	Get all emergency contacts for the authenticated user
//	@Tags			contacts
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	map[string]interface{}
//	@Router			/contacts [get]
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	contacts, err := h.contacts.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("list contacts failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to retrieve contacts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contacts": contacts,
		"count":    len(contacts),
	})
}
