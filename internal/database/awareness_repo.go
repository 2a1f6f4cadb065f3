package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kavach-app/kavach/internal/domain"
)

// AwarenessRepository handles awareness posts and their reactions
type AwarenessRepository struct {
	db *DB
}

func NewAwarenessRepository(db *DB) *AwarenessRepository {
	return &AwarenessRepository{db: db}
}

// CreatePost inserts a new awareness post
func (r *AwarenessRepository) CreatePost(ctx context.Context, post *domain.AwarenessPost) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO awareness_posts (id, title, content, category, source, media_key, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, post.ID, post.Title, post.Content, post.Category, post.Source, post.MediaKey, post.IsVerified)
	return err
}

// GetPost returns a single verified post
func (r *AwarenessRepository) GetPost(ctx context.Context, id uuid.UUID) (*domain.AwarenessPost, error) {
	post := &domain.AwarenessPost{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, title, content, category, source, media_key, is_verified, created_at
		FROM awareness_posts WHERE id = $1 AND is_verified
	`, id).Scan(
		&post.ID, &post.Title, &post.Content, &post.Category,
		&post.Source, &post.MediaKey, &post.IsVerified, &post.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	return post, err
}

// ListFeed returns verified posts, newest first, optionally filtered by
// category, along with the total count for pagination.
func (r *AwarenessRepository) ListFeed(ctx context.Context, category domain.AwarenessCategory, page, pageSize int) ([]domain.AwarenessPost, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 10
	}

	where := "is_verified"
	args := []any{}
	if category != "" {
		where += " AND category = $1"
		args = append(args, category)
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM awareness_posts WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := "SELECT id, title, content, category, source, media_key, is_verified, created_at FROM awareness_posts WHERE " + where
	if category != "" {
		query += " ORDER BY created_at DESC LIMIT $2 OFFSET $3"
		args = append(args, pageSize, offset)
	} else {
		query += " ORDER BY created_at DESC LIMIT $1 OFFSET $2"
		args = append(args, pageSize, offset)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []domain.AwarenessPost
	for rows.Next() {
		var p domain.AwarenessPost
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Category,
			&p.Source, &p.MediaKey, &p.IsVerified, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

// UpsertReaction adds the user's reaction or replaces its emoji
func (r *AwarenessRepository) UpsertReaction(ctx context.Context, reaction *domain.Reaction) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO reactions (id, post_id, user_id, emoji)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (post_id, user_id)
		DO UPDATE SET emoji = EXCLUDED.emoji
	`, reaction.ID, reaction.PostID, reaction.UserID, reaction.Emoji)
	return err
}

// DeleteReaction removes the user's reaction; reports whether one existed
func (r *AwarenessRepository) DeleteReaction(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		DELETE FROM reactions WHERE post_id = $1 AND user_id = $2
	`, postID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ReactionSummary aggregates emoji counts for a post and whether the given
// user (uuid.Nil for anonymous) has reacted.
func (r *AwarenessRepository) ReactionSummary(ctx context.Context, postID, userID uuid.UUID) (*domain.ReactionSummary, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT emoji, COUNT(*) FROM reactions
		WHERE post_id = $1
		GROUP BY emoji
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := &domain.ReactionSummary{EmojiCounts: make(map[string]int)}
	for rows.Next() {
		var emoji string
		var count int
		if err := rows.Scan(&emoji, &count); err != nil {
			return nil, err
		}
		summary.EmojiCounts[emoji] = count
		summary.TotalReactions += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if userID != uuid.Nil {
		err = r.db.Pool.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM reactions WHERE post_id = $1 AND user_id = $2)
		`, postID, userID).Scan(&summary.UserHasReacted)
		if err != nil {
			return nil, err
		}
	}

	return summary, nil
}
