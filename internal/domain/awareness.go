package domain

import (
	"time"

	"github.com/google/uuid"
)

type AwarenessCategory string

const (
	CategorySelfDefense AwarenessCategory = "self_defense"
	CategoryLegalRights AwarenessCategory = "legal_rights"
	CategoryHelplines   AwarenessCategory = "helplines"
	CategorySafetyTips  AwarenessCategory = "safety_tips"
	CategoryStories     AwarenessCategory = "stories"
)

func (c AwarenessCategory) Valid() bool {
	switch c {
	case CategorySelfDefense, CategoryLegalRights, CategoryHelplines, CategorySafetyTips, CategoryStories:
		return true
	}
	return false
}

// AwarenessPost is a moderated safety-awareness article. Only verified posts
// appear in the public feed.
type AwarenessPost struct {
	ID         uuid.UUID         `json:"id"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	Category   AwarenessCategory `json:"category"`
	Source     string            `json:"source,omitempty"`
	MediaKey   string            `json:"media_key,omitempty"` // object key in the media bucket
	IsVerified bool              `json:"is_verified"`
	CreatedAt  time.Time         `json:"created_at"`

	// Populated on fetch
	MediaURL  string           `json:"media_url,omitempty"`
	Reactions *ReactionSummary `json:"reactions,omitempty"`
}

// AllowedEmojis is the closed set of reactions users may leave on a post.
var AllowedEmojis = map[string]bool{
	"❤️": true,
	"🙏": true,
	"💪": true,
	"😢": true,
	"🔥": true,
}

// Reaction is one user's emoji on one post (at most one per user per post).
type Reaction struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

// ReactionSummary aggregates reactions on a post.
type ReactionSummary struct {
	TotalReactions int            `json:"total_reactions"`
	EmojiCounts    map[string]int `json:"emoji_counts"`
	UserHasReacted bool           `json:"user_has_reacted"`
}
