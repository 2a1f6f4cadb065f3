package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kavach-app/kavach/internal/auth"
	"github.com/kavach-app/kavach/internal/database"
	"github.com/kavach-app/kavach/internal/domain"
	"github.com/kavach-app/kavach/internal/safety"
	"github.com/kavach-app/kavach/internal/storage"
)

// AwarenessHandler handles the awareness feed: posts, reactions and media.
type AwarenessHandler struct {
	posts  *database.AwarenessRepository
	users  *database.UserRepository
	media  *storage.R2Storage // nil when media uploads are disabled
	logger *slog.Logger
}

func NewAwarenessHandler(posts *database.AwarenessRepository, users *database.UserRepository, media *storage.R2Storage, logger *slog.Logger) *AwarenessHandler {
	return &AwarenessHandler{
		posts:  posts,
		users:  users,
		media:  media,
		logger: logger,
	}
}

// Feed godoc
//
//	@Summary		Awareness feed
//	@Description	Paginated feed of verified awareness posts, optionally filtered by category
//	@Tags			awareness
//	@Produce		json
//	@Param			category	query	string	false	"Category filter"
//	@Param			page		query	int		false	"Page (1-based)"
//	@Param			page_size	query	int		false	"Page size (max 50)"
//	@Success		200	{object}	map[string]interface{}
//	@Router			/awareness/feed [get]
func (h *AwarenessHandler) Feed(w http.ResponseWriter, r *http.Request) {
	var category domain.AwarenessCategory
	if c := r.URL.Query().Get("category"); c != "" {
		category = domain.AwarenessCategory(c)
		if !category.Valid() {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 10)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 10
	}

	posts, total, err := h.posts.ListFeed(r.Context(), category, page, pageSize)
	if err != nil {
		h.logger.Error("list feed failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load feed")
		return
	}

	h.attachMediaURLs(r, posts)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"posts":     posts,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetPost godoc
//
//	@Summary	Get awareness post
//	@Tags		awareness
//	@Produce	json
//	@Success	200	{object}	domain.AwarenessPost
//	@Failure	404	{object}	map[string]string
//	@Router		/awareness/{post_id} [get]
func (h *AwarenessHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(r.PathValue("post_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post ID")
		return
	}

	post, err := h.posts.GetPost(r.Context(), postID)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		h.logger.Error("get post failed", "error", err, "post_id", postID)
		writeError(w, http.StatusInternalServerError, "failed to load post")
		return
	}

	// Reaction summary rides along; anonymous readers get UserHasReacted=false.
	viewerID, _ := auth.GetUserID(r.Context())
	if summary, err := h.posts.ReactionSummary(r.Context(), postID, viewerID); err == nil {
		post.Reactions = summary
	}

	if h.media != nil && post.MediaKey != "" {
		if url, err := h.media.MediaURL(r.Context(), post.MediaKey); err == nil {
			post.MediaURL = url
		}
	}

	writeJSON(w, http.StatusOK, post)
}

// CreatePost godoc
//
//	@Summary		Create awareness post
//	@Description	Admin/NGO only. Content passes a safety filter before publication.
//	@Tags			awareness
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		201	{object}	domain.AwarenessPost
//	@Failure		400	{object}	map[string]string	"Content rejected"
//	@Failure		403	{object}	map[string]string
//	@Router			/awareness/create [post]
func (h *AwarenessHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireModerator(w, r)
	if !ok {
		return
	}

	var input struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Category string `json:"category"`
		Source   string `json:"source"`
		MediaKey string `json:"media_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category := domain.AwarenessCategory(input.Category)
	if input.Title == "" || input.Content == "" {
		writeError(w, http.StatusBadRequest, "title and content required")
		return
	}
	if !category.Valid() {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	if ok, reason := safety.CheckContent(input.Title + "\n" + input.Content); !ok {
		writeError(w, http.StatusBadRequest, reason)
		return
	}

	post := &domain.AwarenessPost{
		ID:         uuid.New(),
		Title:      input.Title,
		Content:    input.Content,
		Category:   category,
		Source:     input.Source,
		MediaKey:   input.MediaKey,
		IsVerified: true, // moderator-authored posts publish immediately
		CreatedAt:  time.Now(),
	}

	if err := h.posts.CreatePost(r.Context(), post); err != nil {
		h.logger.Error("create post failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// React godoc
//
//	@Summary		React to post
//	@Description	Add or replace the user's emoji reaction (one per user per post)
//	@Tags			awareness
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	domain.Reaction
//	@Failure		400	{object}	map[string]string	"Emoji not allowed"
//	@Router			/awareness/{post_id}/react [post]
func (h *AwarenessHandler) React(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	postID, err := uuid.Parse(r.PathValue("post_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post ID")
		return
	}

	var input struct {
		Emoji string `json:"emoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.AllowedEmojis[input.Emoji] {
		writeError(w, http.StatusBadRequest, "emoji not allowed")
		return
	}

	if _, err := h.posts.GetPost(r.Context(), postID); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		h.logger.Error("get post failed", "error", err, "post_id", postID)
		writeError(w, http.StatusInternalServerError, "failed to load post")
		return
	}

	reaction := &domain.Reaction{
		ID:        uuid.New(),
		PostID:    postID,
		UserID:    userID,
		Emoji:     input.Emoji,
		CreatedAt: time.Now(),
	}
	if err := h.posts.UpsertReaction(r.Context(), reaction); err != nil {
		h.logger.Error("upsert reaction failed", "error", err, "post_id", postID)
		writeError(w, http.StatusInternalServerError, "failed to save reaction")
		return
	}

	writeJSON(w, http.StatusOK, reaction)
}

// Unreact godoc
//
//	@Summary	Remove reaction
//	@Tags		awareness
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]string
//	@Failure	404	{object}	map[string]string	"No reaction found"
//	@Router		/awareness/{post_id}/react [delete]
func (h *AwarenessHandler) Unreact(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	postID, err := uuid.Parse(r.PathValue("post_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post ID")
		return
	}

	removed, err := h.posts.DeleteReaction(r.Context(), postID, userID)
	if err != nil {
		h.logger.Error("delete reaction failed", "error", err, "post_id", postID)
		writeError(w, http.StatusInternalServerError, "failed to remove reaction")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "no reaction found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Reaction removed successfully"})
}

// Reactions godoc
//
//	@Summary	Reaction summary
//	@Tags		awareness
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	domain.ReactionSummary
//	@Router		/awareness/{post_id}/reactions [get]
func (h *AwarenessHandler) Reactions(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(r.PathValue("post_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post ID")
		return
	}

	viewerID, _ := auth.GetUserID(r.Context())
	summary, err := h.posts.ReactionSummary(r.Context(), postID, viewerID)
	if err != nil {
		h.logger.Error("reaction summary failed", "error", err, "post_id", postID)
		writeError(w, http.StatusInternalServerError, "failed to load reactions")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// MediaUpload godoc
//
//	@Summary		Request media upload URL
//	@Description	Admin/NGO only. Returns a presigned URL the client PUTs the media to.
//	@Tags			awareness
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	storage.MediaUpload
//	@Failure		400	{object}	map[string]string	"Unsupported media type"
//	@Router			/awareness/media/upload [post]
func (h *AwarenessHandler) MediaUpload(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireModerator(w, r)
	if !ok {
		return
	}
	if h.media == nil {
		writeError(w, http.StatusServiceUnavailable, "media uploads disabled")
		return
	}

	var input struct {
		ContentType string `json:"content_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	upload, err := h.media.NewMediaUpload(r.Context(), user.ID, input.ContentType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, upload)
}

// requireModerator loads the caller and checks the admin/NGO role. It writes
// the error response itself when the check fails.
func (h *AwarenessHandler) requireModerator(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	if !user.CanModerate() {
		writeError(w, http.StatusForbidden, "admin or NGO role required")
		return nil, false
	}
	return user, true
}

func (h *AwarenessHandler) attachMediaURLs(r *http.Request, posts []domain.AwarenessPost) {
	if h.media == nil {
		return
	}
	for i := range posts {
		if posts[i].MediaKey == "" {
			continue
		}
		url, err := h.media.MediaURL(r.Context(), posts[i].MediaKey)
		if err != nil {
			h.logger.Warn("presign media failed", "error", err, "post_id", posts[i].ID)
			continue
		}
		posts[i].MediaURL = url
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
