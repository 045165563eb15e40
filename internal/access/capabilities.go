// Package access derives what a signed-in user may do from their role.
package access

import (
	"errors"
	"strings"

	"condoflow/internal/model"
)

// Capability names a single permission.
type Capability string

const (
	Edit                Capability = "canEdit"
	ApproveReservations Capability = "canApproveReservations"
	SeePrivateContact   Capability = "canSeePrivateContact"
	ViewAllFinancials   Capability = "canViewAllFinancials"
)

// Capabilities is the permission set of a role.
type Capabilities struct {
	CanEdit                bool `json:"canEdit"`
	CanApproveReservations bool `json:"canApproveReservations"`
	CanSeePrivateContact   bool `json:"canSeePrivateContact"`
	CanViewAllFinancials   bool `json:"canViewAllFinancials"`
}

// For derives the capability set of role. Unknown roles get nothing.
func For(role model.Role) Capabilities {
	switch role {
	case model.RoleAdmin:
		return Capabilities{
			CanEdit:                true,
			CanApproveReservations: true,
			CanSeePrivateContact:   true,
			CanViewAllFinancials:   true,
		}
	default:
		return Capabilities{}
	}
}

// Has reports whether the set grants c.
func (c Capabilities) Has(capability Capability) bool {
	switch capability {
	case Edit:
		return c.CanEdit
	case ApproveReservations:
		return c.CanApproveReservations
	case SeePrivateContact:
		return c.CanSeePrivateContact
	case ViewAllFinancials:
		return c.CanViewAllFinancials
	}
	return false
}

// Actor is the user performing an operation.
type Actor struct {
	Profile model.UserProfile
	Can     Capabilities
}

// NewActor derives the capabilities once from the profile role.
func NewActor(p model.UserProfile) Actor {
	return Actor{Profile: p, Can: For(p.Role)}
}

// Require returns an AccessDeniedError when the actor lacks c.
func (a Actor) Require(capability Capability) error {
	if a.Can.Has(capability) {
		return nil
	}
	return &AccessDeniedError{Capability: capability, Reason: "Você não tem permissão para esta ação."}
}

// Owns reports whether a record created by the profile ownerID belongs to the
// actor.
func (a Actor) Owns(ownerID string) bool {
	return ownerID != "" && ownerID == a.Profile.ID
}

// OwnsUnit reports whether unit label refers to the actor's unit, e.g. "302-B"
// or "Unidade 302-B" for a resident of unit 302 block B.
func (a Actor) OwnsUnit(label string) bool {
	unit := a.UnitLabel()
	if unit == "" {
		return false
	}
	l, u := strings.ToLower(strings.TrimSpace(label)), strings.ToLower(unit)
	return l == u || strings.HasSuffix(l, " "+u)
}

// UnitLabel returns the actor's unit in "302-B" form.
func (a Actor) UnitLabel() string {
	if a.Profile.Unit == "" {
		return ""
	}
	if a.Profile.Block == "" {
		return a.Profile.Unit
	}
	return a.Profile.Unit + "-" + a.Profile.Block
}

// AccessDeniedError is returned when the actor lacks a capability.
type AccessDeniedError struct {
	Capability Capability
	Reason     string
}

func (e *AccessDeniedError) Error() string {
	return e.Reason
}

// IsAccessDenied checks if err is an access denial.
func IsAccessDenied(err error) bool {
	var denied *AccessDeniedError
	return errors.As(err, &denied)
}
