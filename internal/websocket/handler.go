package websocket

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kavach-app/kavach/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins in development (tighten in production)
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades HTTP requests into presence sessions, one per channel
// kind.
type Handler struct {
	deps   *Deps
	logger *slog.Logger
}

func NewHandler(deps *Deps) *Handler {
	return &Handler{deps: deps, logger: deps.Logger}
}

// ServeSelfLocation handles GET /ws/location/{user_id}
func (h *Handler) ServeSelfLocation(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, SelfLocation)
}

// ServeContactView handles GET /ws/contacts/{user_id}
func (h *Handler) ServeContactView(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, ContactView)
}

// ServeSOSResponders handles GET /ws/sos
func (h *Handler) ServeSOSResponders(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, SOSResponder)
}

// ServeAdminDashboard handles GET /ws/admin
func (h *Handler) ServeAdminDashboard(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, AdminDashboard)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, channel *Channel) {
	var target uuid.UUID
	if channel.NeedsTarget {
		id, err := uuid.Parse(r.PathValue("user_id"))
		if err != nil {
			http.Error(w, `{"error":"invalid user id"}`, http.StatusBadRequest)
			return
		}
		target = id
	}

	// Token is read pre-upgrade (headers are gone afterwards) but verified
	// by the session so every rejection surfaces as a close code.
	token := auth.BearerToken(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(conn, h.logger)

	// Use a dedicated context for the connection lifecycle; the request
	// context is cancelled when this handler returns after upgrade.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.WritePump(ctx)
	NewSession(h.deps, channel, client, token, target).Run(ctx) // blocks until disconnect
}
