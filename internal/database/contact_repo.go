package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kavach-app/kavach/internal/domain"
)

// ContactRepository handles emergency contact data access
type ContactRepository struct {
	db *DB
}

func NewContactRepository(db *DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create registers a new emergency contact for a user
func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO contacts (id, user_id, name, email, phone_number, relation, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, contact.ID, contact.UserID, contact.Name, contact.Email,
		contact.PhoneNumber, contact.Relation, contact.Message)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrContactExists
	}
	return err
}

// ListByUser returns all emergency contacts registered by a user
func (r *ContactRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, user_id, name, email, phone_number, relation, message, created_at
		FROM contacts WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email,
			&c.PhoneNumber, &c.Relation, &c.Message, &c.CreatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// GetByOwnerAndEmail resolves a contact record by the owning user and the
// contact's email. The contact-view presence channel authorizes against this.
func (r *ContactRepository) GetByOwnerAndEmail(ctx context.Context, ownerID uuid.UUID, email string) (*domain.Contact, error) {
	c := &domain.Contact{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, name, email, phone_number, relation, message, created_at
		FROM contacts WHERE user_id = $1 AND email = $2
	`, ownerID, email).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Email,
		&c.PhoneNumber, &c.Relation, &c.Message, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}
