package storage

import "context"

// Session holds the authenticated session persisted between CLI runs
type Session struct {
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"` // unix seconds
}

//go:generate moq -out session_mock.go . SessionStorage

// SessionStorage defines the durable store for the current session
type SessionStorage interface {
	// SaveSession persists the session, replacing any previous one
	SaveSession(ctx context.Context, session *Session) error

	// GetSession loads the stored session.
	// Returns ErrSessionNotFound if no session exists.
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession removes the stored session
	DeleteSession(ctx context.Context) error
}
