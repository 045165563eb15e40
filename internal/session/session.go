// Package session keeps the signed-in user: credentials check, session
// creation on login, profile refresh and teardown on logout.
package session

import (
	"errors"
	"time"

	"condoflow/internal/access"
	"condoflow/internal/model"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side state behind a session token.
type Session struct {
	Token        string              `json:"token"`
	Profile      model.UserProfile   `json:"profile"`
	Capabilities access.Capabilities `json:"capabilities"`
	CreatedAt    time.Time           `json:"created_at"`
	RefreshedAt  time.Time           `json:"refreshed_at"`
	ExpiresAt    time.Time           `json:"expires_at"`
}

// Actor returns the access view of the session owner.
func (s *Session) Actor() access.Actor {
	return access.Actor{Profile: s.Profile, Can: s.Capabilities}
}

// IsExpired checks if the session has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
