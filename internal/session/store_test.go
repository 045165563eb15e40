package session

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"condoflow/internal/model"
)

func newSession(token string, expires time.Time) *Session {
	return &Session{
		Token:     token,
		Profile:   model.UserProfile{ID: "1", Email: "admin@condoflow.com", Role: model.RoleAdmin},
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2026, 12, 10, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, newSession("live", now.Add(time.Hour))))
	require.NoError(t, store.Save(ctx, newSession("old", now.Add(-time.Minute))))
	require.NoError(t, store.Save(ctx, newSession("older", now.Add(-time.Hour))))

	s, err := store.Load(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "admin@condoflow.com", s.Profile.Email)

	_, err = store.Load(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, 1, store.Cleanup())
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, "live"))
	_, err = store.Load(ctx, "live")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client)

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Save(ctx, newSession("abc", time.Now().Add(time.Hour))))
	assert.True(t, mr.Exists(redisKeyPrefix+"abc"))

	s, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, s.Profile.Role)

	mr.FastForward(2 * time.Hour)
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, newSession("gone", time.Now().Add(-time.Second))))
	assert.False(t, mr.Exists(redisKeyPrefix+"gone"))

	require.NoError(t, store.Save(ctx, newSession("del", time.Now().Add(time.Hour))))
	require.NoError(t, store.Delete(ctx, "del"))
	_, err = store.Load(ctx, "del")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client)
	mr.Close()

	_, err = store.Load(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Save(ctx context.Context, s *Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockStore) Load(ctx context.Context, token string) (*Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func TestFailoverStore(t *testing.T) {
	primary := new(mockStore)
	fallback := new(mockStore)
	logger := zerolog.New(io.Discard)
	store := NewFailoverStore(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		s := newSession("t1", time.Now().Add(time.Hour))
		primary.On("Load", ctx, "t1").Return(s, nil).Once()

		got, err := store.Load(ctx, "t1")
		assert.NoError(t, err)
		assert.Equal(t, s, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		s := newSession("t2", time.Now().Add(time.Hour))
		primary.On("Save", ctx, s).Return(errors.New("connection refused")).Once()
		fallback.On("Save", ctx, s).Return(nil).Once()

		assert.NoError(t, store.Save(ctx, s))
		assert.True(t, store.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("StaysOnFallbackWhileDown", func(t *testing.T) {
		s := newSession("t3", time.Now().Add(time.Hour))
		fallback.On("Load", ctx, "t3").Return(s, nil).Once()

		got, err := store.Load(ctx, "t3")
		assert.NoError(t, err)
		assert.Equal(t, s, got)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		store.isDown.Store(true)
		store.lastCheck = time.Now().Add(-2 * time.Minute)

		s := newSession("t4", time.Now().Add(time.Hour))
		primary.On("Load", ctx, "t4").Return(s, nil).Once()

		got, err := store.Load(ctx, "t4")
		assert.NoError(t, err)
		assert.Equal(t, s, got)
		assert.False(t, store.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("NotFoundInPrimaryChecksFallback", func(t *testing.T) {
		s := newSession("t5", time.Now().Add(time.Hour))
		primary.On("Load", ctx, "t5").Return(nil, ErrSessionNotFound).Once()
		fallback.On("Load", ctx, "t5").Return(s, nil).Once()

		got, err := store.Load(ctx, "t5")
		assert.NoError(t, err)
		assert.Equal(t, s, got)
		assert.False(t, store.isDown.Load())
	})
}

func TestFailoverStoreLogoutDuringOutage(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	logger := zerolog.New(io.Discard)
	store := NewFailoverStore(NewRedisStore(client), NewMemoryStore(), &logger)

	require.NoError(t, store.Save(ctx, newSession("tok", time.Now().Add(time.Hour))))
	require.True(t, mr.Exists(redisKeyPrefix+"tok"))

	mr.SetError("LOADING redis is loading the dataset in memory")
	require.NoError(t, store.Delete(ctx, "tok"))
	assert.True(t, store.isDown.Load())
	assert.Equal(t, 1, store.Pending())

	t.Run("refused while primary is down", func(t *testing.T) {
		_, err := store.Load(ctx, "tok")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.Equal(t, 1, store.Pending())
	})

	t.Run("delete replayed after recovery", func(t *testing.T) {
		mr.SetError("")
		store.mu.Lock()
		store.lastCheck = time.Now().Add(-2 * store.retryInterval)
		store.mu.Unlock()

		_, err := store.Load(ctx, "tok")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.Equal(t, 0, store.Pending())
		assert.False(t, mr.Exists(redisKeyPrefix+"tok"))

		_, err = store.Load(ctx, "tok")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.False(t, store.isDown.Load())
	})
}

func TestFailoverStoreDeleteMissing(t *testing.T) {
	primary := new(mockStore)
	fallback := new(mockStore)
	logger := zerolog.New(io.Discard)
	store := NewFailoverStore(primary, fallback, &logger)
	ctx := context.Background()

	fallback.On("Delete", ctx, "gone").Return(ErrSessionNotFound).Once()
	primary.On("Delete", ctx, "gone").Return(ErrSessionNotFound).Once()

	require.NoError(t, store.Delete(ctx, "gone"))
	assert.Zero(t, store.Pending())
	assert.False(t, store.isDown.Load())
	primary.AssertExpectations(t)
	fallback.AssertExpectations(t)
}
