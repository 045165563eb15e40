package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condoflow/internal/model"
)

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	clock := time.Date(2026, 12, 10, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	store.now = now

	m := NewManager(store, time.Hour, zerolog.Nop())
	m.now = now

	profiles := DefaultProfiles()
	s, err := m.Login(ctx, profiles[1])
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, s.Token, s.Profile.Token)
	assert.False(t, s.Capabilities.CanEdit)
	assert.Equal(t, clock.Add(time.Hour), s.ExpiresAt)

	clock = clock.Add(50 * time.Minute)
	got, err := m.Get(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, clock.Add(time.Hour), got.ExpiresAt)

	edited := got.Profile
	edited.Name = "Ricardo A. Almeida"
	edited.Role = model.RoleAdmin
	edited.ID = "99"
	refreshed, err := m.Refresh(ctx, s.Token, edited)
	require.NoError(t, err)
	assert.Equal(t, "Ricardo A. Almeida", refreshed.Profile.Name)
	assert.Equal(t, model.RoleResident, refreshed.Profile.Role)
	assert.Equal(t, "2", refreshed.Profile.ID)
	assert.False(t, refreshed.Actor().Can.CanApproveReservations)

	require.NoError(t, m.Logout(ctx, s.Token))
	_, err = m.Get(ctx, s.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	clock := time.Date(2026, 12, 10, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	store.now = now

	m := NewManager(store, time.Hour, zerolog.Nop())
	m.now = now

	s, err := m.Login(ctx, DefaultProfiles()[0])
	require.NoError(t, err)
	assert.True(t, s.Capabilities.CanEdit)

	clock = clock.Add(61 * time.Minute)
	_, err = m.Get(ctx, s.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Get(ctx, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
