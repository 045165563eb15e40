package model

import "time"

// Role is the permission level of an authenticated user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleResident Role = "resident"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleResident
}

// UserProfile is the profile a session carries for the signed-in user.
type UserProfile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar"`
	Unit   string `json:"unit,omitempty"`
	Block  string `json:"block,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Bio    string `json:"bio,omitempty"`
	Token  string `json:"token,omitempty"`
}

// Notification is an entry of the header notification list.
type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	Audience  Role      `json:"audience,omitempty"`
	Recipient string    `json:"recipient,omitempty"` // profile ID
	CreatedAt time.Time `json:"created_at"`
}

const (
	NotificationInfo    = "info"
	NotificationAlert   = "alert"
	NotificationSuccess = "success"
)

// VisibleTo reports whether the notification targets the given user.
func (n *Notification) VisibleTo(p *UserProfile) bool {
	if n.Recipient != "" {
		return n.Recipient == p.ID
	}
	return n.Audience == "" || n.Audience == p.Role
}
