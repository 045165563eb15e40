package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// FailoverStore uses primary (Redis) and falls back to a local store while
// primary is failing. After retryInterval the primary is tried again.
//
// A logout that cannot reach the primary leaves a tombstone: Load refuses the
// token even if the primary still holds it, and the delete is replayed once
// the primary answers again.
type FailoverStore struct {
	primary       Store
	fallback      Store
	logger        *zerolog.Logger
	retryInterval time.Duration

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time

	tombMu     sync.Mutex
	tombstones map[string]struct{}
}

func NewFailoverStore(primary, fallback Store, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:       primary,
		fallback:      fallback,
		logger:        logger,
		retryInterval: time.Minute,
		tombstones:    make(map[string]struct{}),
	}
}

func (f *FailoverStore) usePrimary() bool {
	if !f.isDown.Load() {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return time.Since(f.lastCheck) >= f.retryInterval
}

func (f *FailoverStore) markDown(err error) {
	f.mu.Lock()
	f.lastCheck = time.Now()
	f.mu.Unlock()
	if !f.isDown.Swap(true) {
		f.logger.Warn().Err(err).Msg("session store primary down, using fallback")
	}
}

func (f *FailoverStore) markUp(ctx context.Context) {
	if f.isDown.Swap(false) {
		f.logger.Info().Msg("session store primary recovered")
	}
	f.replayDeletes(ctx)
}

func (f *FailoverStore) buried(token string) bool {
	f.tombMu.Lock()
	defer f.tombMu.Unlock()
	_, ok := f.tombstones[token]
	return ok
}

// replayDeletes removes from the primary the sessions closed during an outage.
func (f *FailoverStore) replayDeletes(ctx context.Context) {
	f.tombMu.Lock()
	defer f.tombMu.Unlock()
	for token := range f.tombstones {
		if err := f.primary.Delete(ctx, token); err != nil && !errors.Is(err, ErrSessionNotFound) {
			f.logger.Warn().Err(err).Msg("replay session delete failed")
			return
		}
		delete(f.tombstones, token)
	}
}

// Pending returns the number of logouts not yet applied to the primary.
func (f *FailoverStore) Pending() int {
	f.tombMu.Lock()
	defer f.tombMu.Unlock()
	return len(f.tombstones)
}

func (f *FailoverStore) Save(ctx context.Context, s *Session) error {
	if f.usePrimary() {
		err := f.primary.Save(ctx, s)
		if err == nil {
			f.markUp(ctx)
			return nil
		}
		f.markDown(err)
	}
	return f.fallback.Save(ctx, s)
}

func (f *FailoverStore) Load(ctx context.Context, token string) (*Session, error) {
	if f.buried(token) {
		if f.usePrimary() {
			f.replayDeletes(ctx)
		}
		return nil, ErrSessionNotFound
	}
	if f.usePrimary() {
		s, err := f.primary.Load(ctx, token)
		if err == nil || errors.Is(err, ErrSessionNotFound) {
			f.markUp(ctx)
			if err == nil {
				return s, nil
			}
			// Sessions created during an outage live only in the fallback.
			return f.fallback.Load(ctx, token)
		}
		f.markDown(err)
	}
	return f.fallback.Load(ctx, token)
}

// Delete always tries both stores. When the primary cannot be reached the
// token is tombstoned, so the logout still holds after the primary recovers.
func (f *FailoverStore) Delete(ctx context.Context, token string) error {
	var fallbackErr error
	if err := f.fallback.Delete(ctx, token); err != nil && !errors.Is(err, ErrSessionNotFound) {
		fallbackErr = fmt.Errorf("fallback delete: %w", err)
	}

	if err := f.primary.Delete(ctx, token); err != nil && !errors.Is(err, ErrSessionNotFound) {
		f.markDown(err)
		f.tombMu.Lock()
		f.tombstones[token] = struct{}{}
		f.tombMu.Unlock()
		f.logger.Warn().Err(err).Msg("session delete deferred until primary recovers")
	}
	return fallbackErr
}
