package domain

import "errors"

// Domain errors - use these for consistent error handling
var (
	// Auth errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrNotAuthorized      = errors.New("not authorized")

	// Contact errors
	ErrContactExists = errors.New("contact already registered")

	// Location / SOS errors
	ErrLocationNotFound = errors.New("location not found")
	ErrNoLiveLocation   = errors.New("no live location")
	ErrNoContacts       = errors.New("no contacts")

	// Awareness errors
	ErrPostNotFound     = errors.New("awareness post not found")
	ErrReactionNotFound = errors.New("reaction not found")
	ErrEmojiNotAllowed  = errors.New("emoji not allowed")
	ErrContentRejected  = errors.New("content rejected")

	// Mentorship errors
	ErrSessionNotFound     = errors.New("mentorship session not found")
	ErrSessionClosed       = errors.New("mentorship session is closed")
	ErrActiveSessionExists = errors.New("user already has an active mentorship session")
	ErrNoMentorAvailable   = errors.New("no available mentors right now")
	ErrLinksNotAllowed     = errors.New("links not allowed")
)
