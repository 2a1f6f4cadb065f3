package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kavach-app/kavach/internal/api"
	"github.com/kavach-app/kavach/internal/auth"
	"github.com/kavach-app/kavach/internal/config"
	"github.com/kavach-app/kavach/internal/database"
	"github.com/kavach-app/kavach/internal/middleware"
	"github.com/kavach-app/kavach/internal/websocket"
)

// Dependencies holds all service dependencies for the server
type Dependencies struct {
	DB                *database.DB
	AuthService       *auth.Service
	AuthHandler       *api.AuthHandler
	ContactHandler    *api.ContactHandler
	LocationHandler   *api.LocationHandler
	SOSHandler        *api.SOSHandler
	AwarenessHandler  *api.AwarenessHandler
	MentorshipHandler *api.MentorshipHandler
	WSHandler         *websocket.Handler
	Logger            *slog.Logger
}

// New creates an HTTP server with all routes configured.
func New(cfg *config.Config, deps *Dependencies) *http.Server {
	mux := http.NewServeMux()

	// Register routes
	registerRoutes(mux, cfg, deps)

	// Wrap with middleware
	handler := chainMiddleware(mux,
		requestIDMiddleware,
		corsMiddleware(cfg),
		loggingMiddleware(deps.Logger),
		recoverMiddleware(deps.Logger),
	)

	return &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config, deps *Dependencies) {
	// Health check - essential for docker, k8s, load balancers
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Ready check - verifies DB connectivity
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.DB.Health(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready","error":"database unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	// =========================================================================
	// Auth routes (public)
	// =========================================================================
	mux.HandleFunc("POST /auth/register", deps.AuthHandler.Register)
	mux.HandleFunc("POST /auth/login", deps.AuthHandler.Login)

	// =========================================================================
	// Protected routes (require auth). SOS trigger and the presence channels
	// are kept off the rate limiter: an emergency must never be throttled.
	// =========================================================================
	authMiddleware := auth.Middleware(deps.AuthService)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMin)
	protected := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(limiter.Middleware(h))
	}

	mux.Handle("GET /auth/me", protected(deps.AuthHandler.Me))

	// =========================================================================
	// Emergency contact routes
	// =========================================================================
	mux.Handle("POST /contacts", protected(deps.ContactHandler.Create))
	mux.Handle("GET /contacts", protected(deps.ContactHandler.List))

	// =========================================================================
	// Location routes (REST fallback for clients that cannot hold a socket)
	// =========================================================================
	mux.Handle("POST /api/location/update", protected(deps.LocationHandler.Update))
	mux.Handle("GET /api/location/{user_id}", protected(deps.LocationHandler.Get))

	// =========================================================================
	// SOS routes
	// =========================================================================
	mux.Handle("POST /api/sos/trigger", authMiddleware(http.HandlerFunc(deps.SOSHandler.Trigger)))
	mux.Handle("GET /api/sos/history", protected(deps.SOSHandler.History))

	// =========================================================================
	// Awareness feed routes (feed and single post are public)
	// =========================================================================
	mux.HandleFunc("GET /awareness/feed", deps.AwarenessHandler.Feed)
	mux.HandleFunc("GET /awareness/{post_id}", deps.AwarenessHandler.GetPost)
	mux.Handle("POST /awareness/create", protected(deps.AwarenessHandler.CreatePost))
	mux.Handle("POST /awareness/media/upload", protected(deps.AwarenessHandler.MediaUpload))
	mux.Handle("POST /awareness/{post_id}/react", protected(deps.AwarenessHandler.React))
	mux.Handle("DELETE /awareness/{post_id}/react", protected(deps.AwarenessHandler.Unreact))
	mux.Handle("GET /awareness/{post_id}/reactions", protected(deps.AwarenessHandler.Reactions))

	// =========================================================================
	// Mentorship routes
	// =========================================================================
	mux.Handle("POST /mentorship/request", protected(deps.MentorshipHandler.Request))
	mux.Handle("GET /mentorship/sessions", protected(deps.MentorshipHandler.Sessions))
	mux.Handle("POST /mentorship/{session_id}/user-reply", protected(deps.MentorshipHandler.UserReply))
	mux.Handle("POST /mentorship/{session_id}/mentor-reply", protected(deps.MentorshipHandler.MentorReply))
	mux.Handle("POST /mentorship/{session_id}/close", protected(deps.MentorshipHandler.Close))

	// =========================================================================
	// WebSocket presence channels (auth happens inside the handshake so a
	// failed token still yields a proper close frame, not a 401)
	// =========================================================================
	mux.HandleFunc("GET /ws/location/{user_id}", deps.WSHandler.ServeSelfLocation)
	mux.HandleFunc("GET /ws/contacts/{user_id}", deps.WSHandler.ServeContactView)
	mux.HandleFunc("GET /ws/sos", deps.WSHandler.ServeSOSResponders)
	mux.HandleFunc("GET /ws/admin", deps.WSHandler.ServeAdminDashboard)
}
