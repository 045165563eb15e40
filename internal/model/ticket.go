package model

import "time"

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketWaiting    TicketStatus = "waiting"
	TicketResolved   TicketStatus = "resolved"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketWaiting, TicketResolved:
		return true
	}
	return false
}

type TicketPriority string

const (
	PriorityLow      TicketPriority = "low"
	PriorityMedium   TicketPriority = "medium"
	PriorityHigh     TicketPriority = "high"
	PriorityCritical TicketPriority = "critical"
)

// Weight orders priorities from low to critical; unknown values sort first.
func (p TicketPriority) Weight() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Ticket is a maintenance request.
type Ticket struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Requester   string         `json:"requester"`
	Date        string         `json:"date"`
	Priority    TicketPriority `json:"priority"`
	Status      TicketStatus   `json:"status"`
	Location    string         `json:"location"`
	AssignedTo  string         `json:"assigned_to,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
