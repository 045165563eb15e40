// Package repository defines the data access interfaces of the dashboard and an
// in-memory implementation seeded with demo data.
package repository

import (
	"context"
	"errors"

	"condoflow/internal/model"
)

var ErrNotFound = errors.New("not found")

// ReservationFilter narrows ListReservations. Zero values match everything.
type ReservationFilter struct {
	Area    string
	Date    string
	OwnerID string
	Status  model.ReservationStatus
}

func (f ReservationFilter) match(r *model.Reservation) bool {
	if f.Area != "" && r.Area != f.Area {
		return false
	}
	if f.Date != "" && r.Date != f.Date {
		return false
	}
	if f.OwnerID != "" && r.OwnerID != f.OwnerID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

type ReservationRepository interface {
	ListReservations(ctx context.Context, filter ReservationFilter) ([]model.Reservation, error)
	GetReservation(ctx context.Context, id int64) (*model.Reservation, error)
	CreateReservation(ctx context.Context, r *model.Reservation) error
	UpdateReservation(ctx context.Context, r *model.Reservation) error
	DeleteReservation(ctx context.Context, id int64) error
}

type AreaRepository interface {
	ListAreas(ctx context.Context) ([]model.Area, error)
	SyncAreas(ctx context.Context, areas []model.Area) error
}

type UnitRepository interface {
	ListUnits(ctx context.Context) ([]model.Unit, error)
	GetUnit(ctx context.Context, id string) (*model.Unit, error)
	CreateUnit(ctx context.Context, u *model.Unit) error
	UpdateUnit(ctx context.Context, u *model.Unit) error
	DeleteUnit(ctx context.Context, id string) error
}

type TransactionRepository interface {
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*model.Transaction, error)
	CreateTransaction(ctx context.Context, t *model.Transaction) error
	UpdateTransaction(ctx context.Context, t *model.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	ChartSeries(ctx context.Context) ([]model.ChartPoint, error)
}

type TicketRepository interface {
	ListTickets(ctx context.Context) ([]model.Ticket, error)
	GetTicket(ctx context.Context, id int64) (*model.Ticket, error)
	CreateTicket(ctx context.Context, t *model.Ticket) error
	UpdateTicket(ctx context.Context, t *model.Ticket) error
	DeleteTicket(ctx context.Context, id int64) error
}

type PostRepository interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
	GetPost(ctx context.Context, id int64) (*model.Post, error)
	CreatePost(ctx context.Context, p *model.Post) error
	UpdatePost(ctx context.Context, p *model.Post) error
	DeletePost(ctx context.Context, id int64) error
}

type NotificationRepository interface {
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	CreateNotification(ctx context.Context, n *model.Notification) error
	MarkNotificationRead(ctx context.Context, id int64) error
}

// Store bundles every repository behind one backend.
type Store interface {
	ReservationRepository
	AreaRepository
	UnitRepository
	TransactionRepository
	TicketRepository
	PostRepository
	NotificationRepository

	PingContext(ctx context.Context) error
	Close() error
}
