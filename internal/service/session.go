package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mywallet/mywallet/internal/auth"
	"github.com/mywallet/mywallet/internal/metrics"
	"github.com/mywallet/mywallet/internal/model"
	"github.com/mywallet/mywallet/internal/repository"
)

// SessionStore persists at most one session per user.
// UpsertSession must replace the user's previous session atomically.
type SessionStore interface {
	UpsertSession(ctx context.Context, session *model.Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error)
}

// SessionManager issues and resolves opaque bearer tokens.
type SessionManager struct {
	store   SessionStore
	ttl     time.Duration
	now     func() time.Time
	metrics metrics.Recorder
}

// NewSessionManager creates a new SessionManager. A zero ttl issues sessions that never expire.
func NewSessionManager(store SessionStore, ttl time.Duration, recorder metrics.Recorder) *SessionManager {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SessionManager{
		store:   store,
		ttl:     ttl,
		now:     time.Now,
		metrics: recorder,
	}
}

// Create issues a new token for userID. Every earlier token of that user
// stops resolving once Create returns.
func (m *SessionManager) Create(ctx context.Context, userID string) (string, error) {
	token, hash, err := auth.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	now := m.now().UTC()
	session := &model.Session{
		UserID:    userID,
		TokenHash: hash,
		CreatedAt: now,
	}
	if m.ttl > 0 {
		session.ExpiresAt = now.Add(m.ttl)
	}

	if err := m.store.UpsertSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	m.metrics.IncSessionCreated()
	return token, nil
}

// Resolve returns the user ID bound to token, or ErrSessionNotFound when the
// token is unknown, superseded or expired.
func (m *SessionManager) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		m.metrics.IncSessionRejected()
		return "", ErrSessionNotFound
	}

	session, err := m.store.GetSessionByTokenHash(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			m.metrics.IncSessionRejected()
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("failed to resolve session: %w", err)
	}

	if session.IsExpired(m.now()) {
		m.metrics.IncSessionRejected()
		return "", ErrSessionNotFound
	}

	return session.UserID, nil
}
