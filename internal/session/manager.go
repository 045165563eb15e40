package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"condoflow/internal/access"
	"condoflow/internal/model"
)

// Manager creates, refreshes and tears down sessions. Expiry is rolling: every
// successful Get extends the session by the TTL.
type Manager struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

func NewManager(store Store, ttl time.Duration, logger zerolog.Logger) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// TTL returns the session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Login opens a session for an authenticated profile.
func (m *Manager) Login(ctx context.Context, profile model.UserProfile) (*Session, error) {
	now := m.now()
	token := uuid.NewString()
	profile.Token = token

	s := &Session{
		Token:        token,
		Profile:      profile,
		Capabilities: access.For(profile.Role),
		CreatedAt:    now,
		RefreshedAt:  now,
		ExpiresAt:    now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.logger.Info().Str("email", profile.Email).Str("role", string(profile.Role)).Msg("session opened")
	return s, nil
}

// Get loads a live session and extends it.
func (m *Manager) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	s, err := m.store.Load(ctx, token)
	if err != nil {
		return nil, err
	}

	s.ExpiresAt = m.now().Add(m.ttl)
	if err := m.store.Save(ctx, s); err != nil {
		m.logger.Warn().Err(err).Msg("extend session failed")
	}
	return s, nil
}

// Refresh replaces the profile of a session after a profile edit. The role
// and id cannot change through a refresh.
func (m *Manager) Refresh(ctx context.Context, token string, profile model.UserProfile) (*Session, error) {
	s, err := m.store.Load(ctx, token)
	if err != nil {
		return nil, err
	}

	profile.ID = s.Profile.ID
	profile.Role = s.Profile.Role
	profile.Token = s.Token
	s.Profile = profile
	s.Capabilities = access.For(profile.Role)
	s.RefreshedAt = m.now()
	s.ExpiresAt = s.RefreshedAt.Add(m.ttl)

	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Logout removes the session.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if err := m.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	m.logger.Info().Msg("session closed")
	return nil
}
