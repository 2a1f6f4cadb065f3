// Package mentorship pairs users with verified mentors for one-topic
// support sessions and moderates the messages exchanged in them.
package mentorship

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kavach-app/kavach/internal/database"
	"github.com/kavach-app/kavach/internal/domain"
	"github.com/kavach-app/kavach/internal/safety"
)

const (
	userMessageMaxLen = 500
	inactivityWindow  = 7 * 24 * time.Hour
)

// User messages may not carry links; mentors are trusted with them.
var linkMarkers = []string{"http", "www", ".com", ".in"}

type Service struct {
	repo   *database.MentorshipRepository
	logger *slog.Logger
}

func NewService(repo *database.MentorshipRepository) *Service {
	return &Service{
		repo:   repo,
		logger: slog.Default().With("component", "mentorship"),
	}
}

// Request opens a new session for the user on the given topic, auto-assigning
// an available verified mentor for the matching role. A user can hold at most
// one non-closed session.
func (s *Service) Request(ctx context.Context, userID uuid.UUID, topic domain.MentorshipTopic) (*domain.MentorshipSession, error) {
	if !topic.Valid() {
		return nil, fmt.Errorf("unknown topic %q", topic)
	}

	open, err := s.repo.HasOpenSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check open sessions: %w", err)
	}
	if open {
		return nil, domain.ErrActiveSessionExists
	}

	mentor, err := s.repo.PickAvailableMentor(ctx, domain.MentorRoleForTopic(topic))
	if err != nil {
		return nil, err
	}

	session := &domain.MentorshipSession{
		ID:         uuid.New(),
		UserID:     userID,
		MentorID:   mentor.ID,
		Topic:      topic,
		Status:     domain.MentorshipPending,
		CreatedAt:  time.Now(),
		MentorName: mentor.Name,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("mentorship session opened",
		"session_id", session.ID, "user_id", userID, "mentor_id", mentor.ID, "topic", topic)
	return session, nil
}

// UserReply appends a user message. User messages are strictly filtered:
// no links, capped length, and the common content checks.
func (s *Service) UserReply(ctx context.Context, sessionID, userID uuid.UUID, body string) (*domain.MentorshipMessage, error) {
	session, err := s.authorizedSession(ctx, sessionID, userID, false)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(body)
	for _, marker := range linkMarkers {
		if strings.Contains(lower, marker) {
			return nil, domain.ErrLinksNotAllowed
		}
	}
	if ok, reason := safety.CheckContent(body); !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrContentRejected, reason)
	}

	body = strings.TrimSpace(body)
	if len(body) > userMessageMaxLen {
		body = body[:userMessageMaxLen]
	}

	return s.appendMessage(ctx, session, userID, domain.MessageRoleUser, body)
}

// MentorReply appends a mentor message and activates a pending session.
func (s *Service) MentorReply(ctx context.Context, sessionID, mentorID uuid.UUID, body string) (*domain.MentorshipMessage, error) {
	session, err := s.authorizedSession(ctx, sessionID, mentorID, true)
	if err != nil {
		return nil, err
	}

	if ok, reason := safety.CheckContent(body); !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrContentRejected, reason)
	}

	msg, err := s.appendMessage(ctx, session, mentorID, domain.MessageRoleMentor, strings.TrimSpace(body))
	if err != nil {
		return nil, err
	}

	// First mentor reply activates the session.
	if session.Status == domain.MentorshipPending {
		if err := s.repo.UpdateSessionStatus(ctx, session.ID, domain.MentorshipActive); err != nil {
			s.logger.Error("activate session failed", "error", err, "session_id", session.ID)
		}
	}
	return msg, nil
}

// Close ends a session. Either participant may close it.
func (s *Service) Close(ctx context.Context, sessionID, closerID uuid.UUID) error {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.UserID != closerID && session.MentorID != closerID {
		return domain.ErrNotAuthorized
	}
	if session.Status == domain.MentorshipClosed {
		return nil
	}
	return s.repo.UpdateSessionStatus(ctx, sessionID, domain.MentorshipClosed)
}

// Sessions returns the user's sessions, newest first, with messages. Active
// sessions idle past the inactivity window are closed on read.
func (s *Service) Sessions(ctx context.Context, userID uuid.UUID) ([]domain.MentorshipSession, error) {
	sessions, err := s.repo.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range sessions {
		if sessions[i].Status != domain.MentorshipActive {
			continue
		}
		last, err := s.repo.LastMessageAt(ctx, sessions[i].ID)
		if err != nil || last.IsZero() {
			continue
		}
		if time.Since(last) > inactivityWindow {
			if err := s.repo.UpdateSessionStatus(ctx, sessions[i].ID, domain.MentorshipClosed); err == nil {
				sessions[i].Status = domain.MentorshipClosed
			}
		}
	}
	return sessions, nil
}

func (s *Service) authorizedSession(ctx context.Context, sessionID, senderID uuid.UUID, asMentor bool) (*domain.MentorshipSession, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if asMentor {
		if session.MentorID != senderID {
			return nil, domain.ErrNotAuthorized
		}
	} else if session.UserID != senderID {
		return nil, domain.ErrNotAuthorized
	}

	if session.Status == domain.MentorshipClosed {
		return nil, domain.ErrSessionClosed
	}
	return session, nil
}

func (s *Service) appendMessage(ctx context.Context, session *domain.MentorshipSession, senderID uuid.UUID, role domain.MessageRole, body string) (*domain.MentorshipMessage, error) {
	msg := &domain.MentorshipMessage{
		ID:        uuid.New(),
		SessionID: session.ID,
		SenderID:  senderID,
		Role:      role,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}
	return msg, nil
}

// IsUserFacing reports whether err should surface to the client as a 4xx.
func IsUserFacing(err error) bool {
	return errors.Is(err, domain.ErrActiveSessionExists) ||
		errors.Is(err, domain.ErrLinksNotAllowed) ||
		errors.Is(err, domain.ErrContentRejected) ||
		errors.Is(err, domain.ErrSessionClosed)
}
