package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/kavach-app/kavach/internal/auth"
	"github.com/kavach-app/kavach/internal/domain"
	"github.com/kavach-app/kavach/internal/mentorship"
)

// MentorshipHandler handles mentorship session endpoints.
type MentorshipHandler struct {
	service *mentorship.Service
	logger  *slog.Logger
}

func NewMentorshipHandler(service *mentorship.Service, logger *slog.Logger) *MentorshipHandler {
	return &MentorshipHandler{
		service: service,
		logger:  logger,
	}
}

// Request godoc
//
//	@Summary		Request mentorship
//	@Description	Open a mentorship session on a topic; a verified mentor is auto-assigned
//	@Tags			mentorship
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		201	{object}	domain.MentorshipSession
//	@Failure		400	{object}	map[string]string	"Active session already exists"
//	@Failure		503	{object}	map[string]string	"No mentor available"
//	@Router			/mentorship/request [post]
func (h *MentorshipHandler) Request(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var input struct {
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.service.Request(r.Context(), userID, domain.MentorshipTopic(input.Topic))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrActiveSessionExists):
			writeError(w, http.StatusBadRequest, "user already has an active mentorship session")
		case errors.Is(err, domain.ErrNoMentorAvailable):
			writeError(w, http.StatusServiceUnavailable, "no available mentors right now, try again later")
		default:
			h.logger.Error("request mentorship failed", "error", err, "user_id", userID)
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// Sessions godoc
//
//	@Summary	List my sessions
//	@Tags		mentorship
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]interface{}
//	@Router		/mentorship/sessions [get]
func (h *MentorshipHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessions, err := h.service.Sessions(r.Context(), userID)
	if err != nil {
		h.logger.Error("list sessions failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to load sessions")
		return
	}

	active := 0
	for _, s := range sessions {
		if s.Status == domain.MentorshipActive {
			active++
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions":     sessions,
		"total":        len(sessions),
		"active_count": active,
	})
}

// UserReply godoc
//
//	@Summary	Reply as user
//	@Tags		mentorship
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	domain.MentorshipMessage
//	@Failure	400	{object}	map[string]string	"Rejected by content filter or session closed"
//	@Router		/mentorship/{session_id}/user-reply [post]
func (h *MentorshipHandler) UserReply(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r, false)
}

// MentorReply godoc
//
//	@Summary	Reply as mentor
//	@Tags		mentorship
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	domain.MentorshipMessage
//	@Router		/mentorship/{session_id}/mentor-reply [post]
func (h *MentorshipHandler) MentorReply(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r, true)
}

func (h *MentorshipHandler) reply(w http.ResponseWriter, r *http.Request, asMentor bool) {
	senderID, ok := auth.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessionID, err := uuid.Parse(r.PathValue("session_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	var input struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var msg *domain.MentorshipMessage
	if asMentor {
		msg, err = h.service.MentorReply(r.Context(), sessionID, senderID, input.Message)
	} else {
		msg, err = h.service.UserReply(r.Context(), sessionID, senderID, input.Message)
	}
	if err != nil {
		h.handleSessionError(w, err, sessionID)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

// Close godoc
//
//	@Summary	Close session
//	@Tags		mentorship
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]string
//	@Router		/mentorship/{session_id}/close [post]
func (h *MentorshipHandler) Close(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessionID, err := uuid.Parse(r.PathValue("session_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	if err := h.service.Close(r.Context(), sessionID, userID); err != nil {
		h.handleSessionError(w, err, sessionID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Session closed successfully"})
}

func (h *MentorshipHandler) handleSessionError(w http.ResponseWriter, err error, sessionID uuid.UUID) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, domain.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "not a participant of this session")
	case mentorship.IsUserFacing(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("mentorship error", "error", err, "session_id", sessionID)
		writeError(w, http.StatusInternalServerError, "mentorship operation failed")
	}
}
