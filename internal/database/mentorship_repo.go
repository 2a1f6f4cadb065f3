package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kavach-app/kavach/internal/domain"
)

// MentorshipRepository handles mentors, sessions, and session messages
type MentorshipRepository struct {
	db *DB
}

func NewMentorshipRepository(db *DB) *MentorshipRepository {
	return &MentorshipRepository{db: db}
}

// PickAvailableMentor returns a random verified, active mentor for a role
func (r *MentorshipRepository) PickAvailableMentor(ctx context.Context, role domain.MentorRole) (*domain.Mentor, error) {
	m := &domain.Mentor{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, role, active, verified, created_at
		FROM mentors
		WHERE role = $1 AND active AND verified
		ORDER BY random()
		LIMIT 1
	`, role).Scan(&m.ID, &m.Name, &m.Role, &m.Active, &m.Verified, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoMentorAvailable
	}
	return m, err
}

// GetMentor returns one mentor by ID
func (r *MentorshipRepository) GetMentor(ctx context.Context, id uuid.UUID) (*domain.Mentor, error) {
	m := &domain.Mentor{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, role, active, verified, created_at
		FROM mentors WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.Role, &m.Active, &m.Verified, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// HasOpenSession reports whether the user has a pending or active session
func (r *MentorshipRepository) HasOpenSession(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM mentorship_sessions
			WHERE user_id = $1 AND status IN ('pending', 'active')
		)
	`, userID).Scan(&exists)
	return exists, err
}

// CreateSession inserts a new session
func (r *MentorshipRepository) CreateSession(ctx context.Context, s *domain.MentorshipSession) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO mentorship_sessions (id, user_id, mentor_id, topic, status)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, s.UserID, s.MentorID, s.Topic, s.Status)
	return err
}

// GetSession returns one session by ID
func (r *MentorshipRepository) GetSession(ctx context.Context, id uuid.UUID) (*domain.MentorshipSession, error) {
	s := &domain.MentorshipSession{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, mentor_id, topic, status, created_at, closed_at
		FROM mentorship_sessions WHERE id = $1
	`, id).Scan(&s.ID, &s.UserID, &s.MentorID, &s.Topic, &s.Status, &s.CreatedAt, &s.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	return s, err
}

// UpdateSessionStatus moves a session to a new status; closing stamps closed_at
func (r *MentorshipRepository) UpdateSessionStatus(ctx context.Context, id uuid.UUID, status domain.MentorshipStatus) error {
	if status == domain.MentorshipClosed {
		_, err := r.db.Pool.Exec(ctx, `
			UPDATE mentorship_sessions SET status = $2, closed_at = NOW() WHERE id = $1
		`, id, status)
		return err
	}
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE mentorship_sessions SET status = $2 WHERE id = $1
	`, id, status)
	return err
}

// ListSessionsByUser returns all of a user's sessions, newest first, with
// mentor names and messages populated.
func (r *MentorshipRepository) ListSessionsByUser(ctx context.Context, userID uuid.UUID) ([]domain.MentorshipSession, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT s.id, s.user_id, s.mentor_id, s.topic, s.status, s.created_at, s.closed_at, m.name
		FROM mentorship_sessions s
		JOIN mentors m ON m.id = s.mentor_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.MentorshipSession
	for rows.Next() {
		var s domain.MentorshipSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.MentorID, &s.Topic, &s.Status,
			&s.CreatedAt, &s.ClosedAt, &s.MentorName); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		msgs, err := r.ListMessages(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Messages = msgs
	}
	return sessions, nil
}

// CreateMessage appends a reply to a session
func (r *MentorshipRepository) CreateMessage(ctx context.Context, msg *domain.MentorshipMessage) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO mentorship_messages (id, session_id, sender_id, role, body)
		VALUES ($1, $2, $3, $4, $5)
	`, msg.ID, msg.SessionID, msg.SenderID, msg.Role, msg.Body)
	return err
}

// ListMessages returns a session's messages in send order
func (r *MentorshipRepository) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]domain.MentorshipMessage, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, session_id, sender_id, role, body, created_at
		FROM mentorship_messages
		WHERE session_id = $1
		ORDER BY created_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.MentorshipMessage
	for rows.Next() {
		var m domain.MentorshipMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.SenderID, &m.Role, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// LastMessageAt returns when the most recent message in a session was sent
func (r *MentorshipRepository) LastMessageAt(ctx context.Context, sessionID uuid.UUID) (time.Time, error) {
	var at time.Time
	err := r.db.Pool.QueryRow(ctx, `
		SELECT created_at FROM mentorship_messages
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, sessionID).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	return at, err
}
