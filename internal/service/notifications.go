package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"condoflow/internal/access"
	"condoflow/internal/events"
	"condoflow/internal/model"
	"condoflow/internal/repository"
)

// Inbox is the notification list of the header bell.
type Inbox struct {
	Items  []model.Notification `json:"items"`
	Unread int                  `json:"unread"`
}

// Notifications creates and lists notifications.
type Notifications struct {
	repo   repository.NotificationRepository
	events events.Publisher
	logger zerolog.Logger
	now    func() time.Time
}

func NewNotifications(repo repository.NotificationRepository, publisher events.Publisher, logger zerolog.Logger) *Notifications {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Notifications{
		repo:   repo,
		events: publisher,
		logger: logger.With().Str("component", "notifications").Logger(),
		now:    time.Now,
	}
}

// List returns the notifications addressed to actor, newest first.
func (n *Notifications) List(ctx context.Context, actor access.Actor) (Inbox, error) {
	all, err := n.repo.ListNotifications(ctx)
	if err != nil {
		return Inbox{}, fmt.Errorf("list notifications: %w", err)
	}
	inbox := Inbox{Items: make([]model.Notification, 0, len(all))}
	for i := range all {
		if !all[i].VisibleTo(&actor.Profile) {
			continue
		}
		inbox.Items = append(inbox.Items, all[i])
		if !all[i].Read {
			inbox.Unread++
		}
	}
	return inbox, nil
}

// MarkRead marks one notification visible to actor as read.
func (n *Notifications) MarkRead(ctx context.Context, actor access.Actor, id int64) error {
	inbox, err := n.List(ctx, actor)
	if err != nil {
		return err
	}
	for _, item := range inbox.Items {
		if item.ID == id {
			return n.repo.MarkNotificationRead(ctx, id)
		}
	}
	return repository.ErrNotFound
}

// MarkAllRead marks every notification visible to actor as read.
func (n *Notifications) MarkAllRead(ctx context.Context, actor access.Actor) error {
	inbox, err := n.List(ctx, actor)
	if err != nil {
		return err
	}
	for _, item := range inbox.Items {
		if item.Read {
			continue
		}
		if err := n.repo.MarkNotificationRead(ctx, item.ID); err != nil {
			return fmt.Errorf("mark notification %d: %w", item.ID, err)
		}
	}
	return nil
}

// Notify stores a notification and announces it on the bus.
func (n *Notifications) Notify(ctx context.Context, note *model.Notification) error {
	if note.CreatedAt.IsZero() {
		note.CreatedAt = n.now()
	}
	if note.Type == "" {
		note.Type = model.NotificationInfo
	}
	if err := n.repo.CreateNotification(ctx, note); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	if err := n.events.PublishJSON(events.NotificationCreated, note); err != nil {
		n.logger.Warn().Err(err).Msg("publish notification event")
	}
	return nil
}

// Subscribe turns domain events into notifications.
func (n *Notifications) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.ReservationCreated, n.fromReservation(func(r model.Reservation) *model.Notification {
		return &model.Notification{
			Title:    "Nova Reserva de Área Comum",
			Message:  fmt.Sprintf("A unidade %s solicitou %s para %s.", r.Unit, r.Area, r.Date),
			Type:     model.NotificationInfo,
			Audience: model.RoleAdmin,
		}
	}))
	bus.Subscribe(events.ReservationApproved, n.fromReservation(func(r model.Reservation) *model.Notification {
		return &model.Notification{
			Title:     "Reserva Aprovada",
			Message:   fmt.Sprintf("Sua reserva de %s em %s foi aprovada.", r.Area, r.Date),
			Type:      model.NotificationSuccess,
			Recipient: r.OwnerID,
		}
	}))
	bus.Subscribe(events.ReservationRejected, n.fromReservation(func(r model.Reservation) *model.Notification {
		return &model.Notification{
			Title:     "Reserva Recusada",
			Message:   fmt.Sprintf("Sua reserva de %s em %s foi recusada.", r.Area, r.Date),
			Type:      model.NotificationAlert,
			Recipient: r.OwnerID,
		}
	}))
	bus.Subscribe(events.ReservationReminder, n.fromReservation(func(r model.Reservation) *model.Notification {
		return &model.Notification{
			Title:     "Lembrete de Reserva",
			Message:   fmt.Sprintf("%s reservado para %s às %s.", r.Area, r.Date, r.Start),
			Type:      model.NotificationInfo,
			Recipient: r.OwnerID,
		}
	}))
	bus.Subscribe(events.TicketCreated, func(e events.Event) error {
		var t model.Ticket
		if err := e.Decode(&t); err != nil {
			return err
		}
		kind := model.NotificationInfo
		if t.Priority == model.PriorityCritical || t.Priority == model.PriorityHigh {
			kind = model.NotificationAlert
		}
		return n.Notify(context.Background(), &model.Notification{
			Title:    "Novo Chamado de Manutenção",
			Message:  fmt.Sprintf("%s abriu o chamado #%d: %s.", t.Requester, t.ID, t.Title),
			Type:     kind,
			Audience: model.RoleAdmin,
		})
	})
	bus.Subscribe(events.PostCreated, func(e events.Event) error {
		var p model.Post
		if err := e.Decode(&p); err != nil {
			return err
		}
		if p.Type != model.PostNotice {
			return nil
		}
		kind := model.NotificationInfo
		if p.Urgent {
			kind = model.NotificationAlert
		}
		return n.Notify(context.Background(), &model.Notification{
			Title:   "Novo Aviso",
			Message: p.Title,
			Type:    kind,
		})
	})
}

func (n *Notifications) fromReservation(build func(model.Reservation) *model.Notification) events.EventHandler {
	return func(e events.Event) error {
		var r model.Reservation
		if err := e.Decode(&r); err != nil {
			return err
		}
		note := build(r)
		if note.Audience == "" && note.Recipient == "" {
			return nil
		}
		return n.Notify(context.Background(), note)
	}
}
