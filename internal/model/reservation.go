package model

import "time"

// ReservationStatus is the lifecycle state of a common area reservation.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusApproved  ReservationStatus = "approved"
	StatusRejected  ReservationStatus = "rejected"
	StatusCompleted ReservationStatus = "completed"
)

// Tab groups reservations the way the reservations screen lists them.
type Tab string

const (
	TabPending  Tab = "pending"
	TabUpcoming Tab = "upcoming"
	TabHistory  Tab = "history"
)

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCompleted, StatusRejected},
}

// Valid reports whether s is a known status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether a reservation may move from s to next.
func (s ReservationStatus) CanTransition(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Reservation is a booking of a common area for a time range on one day.
type Reservation struct {
	ID           int64             `json:"id"`
	Area         string            `json:"area"`
	ResidentName string            `json:"resident_name"`
	Unit         string            `json:"unit"`
	OwnerID      string            `json:"owner_id,omitempty"`
	Date         string            `json:"date"`
	Start        TimeOfDay         `json:"start_time"`
	End          TimeOfDay         `json:"end_time"`
	Guests       int               `json:"guests"`
	Status       ReservationStatus `json:"status"`
	Notes        string            `json:"notes,omitempty"`
	Image        string            `json:"image,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Active reports whether the reservation still holds its slot.
func (r *Reservation) Active() bool {
	return r.Status != StatusRejected
}

// OverlapsWith checks whether two reservations claim the same area at the same time.
// Intervals are half-open, so back-to-back reservations do not overlap.
func (r *Reservation) OverlapsWith(other *Reservation) bool {
	if r.Area != other.Area || r.Date != other.Date {
		return false
	}
	return r.Start < other.End && r.End > other.Start
}

// IsPast reports whether the reservation day is before today.
func (r *Reservation) IsPast(today time.Time) bool {
	return r.Date < today.Format(DateLayout)
}

// Valid accepts the three tabs and the empty tab, which means all of them.
func (t Tab) Valid() bool {
	return t == "" || t == TabPending || t == TabUpcoming || t == TabHistory
}

// Tab returns the list a reservation belongs to on the given day.
func (r *Reservation) Tab(today time.Time) Tab {
	switch r.Status {
	case StatusPending:
		return TabPending
	case StatusApproved:
		if r.IsPast(today) {
			return TabHistory
		}
		return TabUpcoming
	default:
		return TabHistory
	}
}

// Area is a bookable common area.
type Area struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Icon     string    `json:"icon,omitempty"`
	Capacity int       `json:"capacity"`
	Active   bool      `json:"active"`
	OpensAt  TimeOfDay `json:"opens_at"`
	ClosesAt TimeOfDay `json:"closes_at"`
}

// HasHours reports whether the area restricts bookings to opening hours.
func (a *Area) HasHours() bool {
	return a.ClosesAt > a.OpensAt
}

// StartsAt returns the start of the reservation as an instant in loc.
func (r *Reservation) StartsAt(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, r.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(r.Start) * time.Minute), nil
}
