// Package booking guards common area reservations against double booking and
// drives their approval lifecycle.
package booking

import "condoflow/internal/model"

// HasConflict reports whether two reservations claim the same area slot.
// A reservation never conflicts with itself, and rejected reservations never
// take part, so the relation is symmetric.
func HasConflict(candidate, existing *model.Reservation) bool {
	if candidate.ID != 0 && candidate.ID == existing.ID {
		return false
	}
	if !candidate.Active() || !existing.Active() {
		return false
	}
	return candidate.OverlapsWith(existing)
}

// FindConflict returns the first reservation in existing that conflicts with
// candidate.
func FindConflict(candidate *model.Reservation, existing []model.Reservation) (*model.Reservation, bool) {
	for i := range existing {
		if HasConflict(candidate, &existing[i]) {
			return &existing[i], true
		}
	}
	return nil, false
}

// FindApprovedConflict is FindConflict restricted to approved reservations.
// Approval only has to protect slots that are already confirmed.
func FindApprovedConflict(candidate *model.Reservation, existing []model.Reservation) (*model.Reservation, bool) {
	for i := range existing {
		if existing[i].Status != model.StatusApproved {
			continue
		}
		if HasConflict(candidate, &existing[i]) {
			return &existing[i], true
		}
	}
	return nil, false
}
