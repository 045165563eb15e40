package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"condoflow/internal/access"
	"condoflow/internal/events"
	"condoflow/internal/listview"
	"condoflow/internal/model"
	"condoflow/internal/repository"
)

// TicketSpec drives the maintenance list. Newest tickets come first.
var TicketSpec = &listview.Spec[model.Ticket]{
	Search: []func(model.Ticket) string{
		func(t model.Ticket) string { return t.Title },
		func(t model.Ticket) string { return t.Requester },
		func(t model.Ticket) string { return strconv.FormatInt(t.ID, 10) },
	},
	Filters: map[string]func(model.Ticket) string{
		"status":   func(t model.Ticket) string { return string(t.Status) },
		"priority": func(t model.Ticket) string { return string(t.Priority) },
		"category": func(t model.Ticket) string { return t.Category },
	},
	Sorts: map[string]listview.SortField[model.Ticket]{
		"id":        {Number: func(t model.Ticket) float64 { return float64(t.ID) }},
		"title":     {Text: func(t model.Ticket) string { return t.Title }},
		"category":  {Text: func(t model.Ticket) string { return t.Category }},
		"requester": {Text: func(t model.Ticket) string { return t.Requester }},
		"date":      {Text: func(t model.Ticket) string { return t.Date }},
		"priority":  {Number: func(t model.Ticket) float64 { return float64(t.Priority.Weight()) }},
		"status":    {Text: func(t model.Ticket) string { return string(t.Status) }},
		"location":  {Text: func(t model.Ticket) string { return t.Location }},
	},
	DefaultSort:     "date",
	DefaultDir:      listview.Desc,
	DefaultPageSize: listview.PageSizeLarge,
}

// TicketDraft is the "new ticket" form.
type TicketDraft struct {
	Title       string
	Description string
	Category    string
	Priority    model.TicketPriority
	Location    string
	Requester   string
	ImageURL    string
}

// Tickets manages maintenance requests.
type Tickets struct {
	repo   repository.TicketRepository
	events events.Publisher
	logger zerolog.Logger
	now    func() time.Time
}

func NewTickets(repo repository.TicketRepository, publisher events.Publisher, logger zerolog.Logger) *Tickets {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Tickets{
		repo:   repo,
		events: publisher,
		logger: logger.With().Str("component", "tickets").Logger(),
		now:    time.Now,
	}
}

func requesterOf(actor access.Actor) string {
	if label := actor.UnitLabel(); label != "" {
		return "Unidade " + label
	}
	return actor.Profile.Name
}

func (s *Tickets) visibleTo(actor access.Actor, t *model.Ticket) bool {
	return actor.Can.CanEdit || strings.EqualFold(t.Requester, requesterOf(actor))
}

// List returns a page of tickets. Residents only see the tickets of their unit.
func (s *Tickets) List(ctx context.Context, actor access.Actor, q listview.Query) (listview.View[model.Ticket], error) {
	if err := TicketSpec.Validate(q); err != nil {
		return listview.View[model.Ticket]{}, err
	}
	all, err := s.repo.ListTickets(ctx)
	if err != nil {
		return listview.View[model.Ticket]{}, fmt.Errorf("list tickets: %w", err)
	}
	visible := make([]model.Ticket, 0, len(all))
	for i := range all {
		if s.visibleTo(actor, &all[i]) {
			visible = append(visible, all[i])
		}
	}
	return TicketSpec.Derive(visible, q), nil
}

// Export returns every visible ticket that matches q.
func (s *Tickets) Export(ctx context.Context, actor access.Actor, q listview.Query) ([]model.Ticket, error) {
	if err := TicketSpec.Validate(q); err != nil {
		return nil, err
	}
	all, err := s.repo.ListTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	visible := make([]model.Ticket, 0, len(all))
	for i := range all {
		if s.visibleTo(actor, &all[i]) {
			visible = append(visible, all[i])
		}
	}
	return TicketSpec.Matching(visible, q), nil
}

func (s *Tickets) Get(ctx context.Context, actor access.Actor, id int64) (*model.Ticket, error) {
	t, err := s.repo.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.visibleTo(actor, t) {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

// Create opens a ticket dated today. Residents always file in the name of
// their unit.
func (s *Tickets) Create(ctx context.Context, actor access.Actor, draft TicketDraft) (*model.Ticket, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, required("title", "Informe o título do chamado.")
	}
	priority := draft.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if priority.Weight() == 0 {
		return nil, invalidValue("priority", "Prioridade inválida: %s.", priority)
	}
	category := draft.Category
	if category == "" {
		category = "Manutenção"
	}
	requester := strings.TrimSpace(draft.Requester)
	if !actor.Can.CanEdit {
		requester = requesterOf(actor)
	} else if requester == "" {
		requester = "Administração"
	}

	now := s.now()
	t := &model.Ticket{
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		Category:    category,
		Requester:   requester,
		Date:        now.Format(model.DateLayout),
		Priority:    priority,
		Status:      model.TicketOpen,
		Location:    draft.Location,
		ImageURL:    draft.ImageURL,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateTicket(ctx, t); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.logger.Info().Int64("ticket_id", t.ID).Str("priority", string(t.Priority)).Msg("ticket created")
	s.publish(events.TicketCreated, t)
	return t, nil
}

// UpdateStatus moves a ticket. An empty assignee keeps the current one.
func (s *Tickets) UpdateStatus(ctx context.Context, actor access.Actor, id int64, status model.TicketStatus, assignedTo string) (*model.Ticket, error) {
	if err := actor.Require(access.Edit); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalidValue("status", "Status inválido: %s.", status)
	}
	t, err := s.repo.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	t.Status = status
	if strings.TrimSpace(assignedTo) != "" {
		t.AssignedTo = strings.TrimSpace(assignedTo)
	}
	t.UpdatedAt = s.now()
	if err := s.repo.UpdateTicket(ctx, t); err != nil {
		return nil, fmt.Errorf("update ticket %d: %w", id, err)
	}

	s.logger.Info().Int64("ticket_id", id).Str("status", string(status)).Msg("ticket updated")
	s.publish(events.TicketUpdated, t)
	return t, nil
}

func (s *Tickets) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if err := actor.Require(access.Edit); err != nil {
		return err
	}
	if err := s.repo.DeleteTicket(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("ticket_id", id).Msg("ticket deleted")
	return nil
}

func (s *Tickets) publish(eventType string, t *model.Ticket) {
	if err := s.events.PublishJSON(eventType, t); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("publish ticket event")
	}
}
