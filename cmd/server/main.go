package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kavach-app/kavach/internal/alert"
	"github.com/kavach-app/kavach/internal/api"
	"github.com/kavach-app/kavach/internal/auth"
	"github.com/kavach-app/kavach/internal/config"
	"github.com/kavach-app/kavach/internal/database"
	"github.com/kavach-app/kavach/internal/mentorship"
	"github.com/kavach-app/kavach/internal/notify"
	"github.com/kavach-app/kavach/internal/server"
	"github.com/kavach-app/kavach/internal/storage"
	"github.com/kavach-app/kavach/internal/websocket"
)

func main() {
	// Structured logging from the start
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Create context for initialization
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to database
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	if err := database.EnsureSchema(ctx, db, "migrations"); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	contactRepo := database.NewContactRepository(db)
	locationRepo := database.NewLocationRepository(db)
	sosRepo := database.NewSOSRepository(db)
	awarenessRepo := database.NewAwarenessRepository(db)
	mentorshipRepo := database.NewMentorshipRepository(db)

	// Initialize token service (use a default key for dev if not set)
	jwtKey := cfg.JWTSigningKey
	if jwtKey == "" {
		if cfg.IsDevelopment() {
			jwtKey = "dev-signing-key-do-not-use-in-production!!" // 44 chars
			slog.Warn("using default JWT signing key - DO NOT USE IN PRODUCTION")
		} else {
			slog.Error("JWT_SIGNING_KEY is required in production")
			os.Exit(1)
		}
	}

	tokenService, err := auth.NewTokenService(jwtKey)
	if err != nil {
		slog.Error("failed to create token service", "error", err)
		os.Exit(1)
	}

	// Initialize auth service
	authService := auth.NewService(userRepo, tokenService)

	// Initialize the alert notifier (Redis queue in production, log in dev)
	var notifier notify.Sender
	switch cfg.NotifierType {
	case "redis":
		redisNotifier, err := notify.NewRedisNotifier(cfg.RedisURL, cfg.AlertQueueKey)
		if err != nil {
			slog.Error("failed to connect alert queue", "error", err)
			os.Exit(1)
		}
		defer redisNotifier.Close()
		notifier = redisNotifier
	default:
		notifier = notify.NewLogNotifier()
	}

	// Initialize R2 media storage (optional - skip if not configured)
	var r2Storage *storage.R2Storage
	if cfg.R2AccountID != "" && cfg.R2AccessKeyID != "" && cfg.R2SecretAccessKey != "" && cfg.R2Bucket != "" {
		r2Storage, err = storage.NewR2Storage(cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2SecretAccessKey, cfg.R2Bucket)
		if err != nil {
			slog.Error("failed to initialize R2 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("R2 storage initialized", "bucket", cfg.R2Bucket)
	} else {
		slog.Warn("R2 storage not configured - awareness media disabled")
	}

	// Initialize the SOS dispatcher
	dispatcher := alert.NewDispatcher(locationRepo, contactRepo, sosRepo, notifier)

	// Initialize the presence registry and websocket handler
	registry := websocket.NewRegistry(logger)
	wsHandler := websocket.NewHandler(&websocket.Deps{
		Verifier:  authService,
		Locations: locationRepo,
		Contacts:  contactRepo,
		Registry:  registry,
		Filter:    websocket.DefaultMotionFilter(),
		Logger:    logger,
	})

	// Initialize services and handlers
	mentorshipService := mentorship.NewService(mentorshipRepo)

	deps := &server.Dependencies{
		DB:                db,
		AuthService:       authService,
		AuthHandler:       api.NewAuthHandler(authService, logger),
		ContactHandler:    api.NewContactHandler(contactRepo, logger),
		LocationHandler:   api.NewLocationHandler(locationRepo, logger),
		SOSHandler:        api.NewSOSHandler(dispatcher, userRepo, sosRepo, logger),
		AwarenessHandler:  api.NewAwarenessHandler(awarenessRepo, userRepo, r2Storage, logger),
		MentorshipHandler: api.NewMentorshipHandler(mentorshipService, logger),
		WSHandler:         wsHandler,
		Logger:            logger,
	}

	srv := server.New(cfg, deps)

	// Graceful shutdown setup
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-shutdownCtx.Done()
	slog.Info("shutting down gracefully...")

	// Give active connections 10 seconds to finish
	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer timeoutCancel()

	if err := srv.Shutdown(timeoutCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
