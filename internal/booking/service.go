package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"condoflow/internal/access"
	"condoflow/internal/events"
	"condoflow/internal/listview"
	"condoflow/internal/metrics"
	"condoflow/internal/model"
	"condoflow/internal/repository"
)

// Draft is the editable part of a reservation.
type Draft struct {
	Area         string
	ResidentName string
	Unit         string
	Date         string
	Start        model.TimeOfDay
	End          model.TimeOfDay
	Guests       int
	Notes        string
}

// ListQuery selects a tab and the list state of the reservations screen.
type ListQuery struct {
	Tab model.Tab
	listview.Query
}

// ListResult is one page of a tab plus the size of every tab.
type ListResult struct {
	listview.View[model.Reservation]
	Counts map[model.Tab]int `json:"counts"`
}

// Slot is an occupied interval, without the owner.
type Slot struct {
	Start  model.TimeOfDay         `json:"start_time"`
	End    model.TimeOfDay         `json:"end_time"`
	Status model.ReservationStatus `json:"status"`
}

// ListSpec drives the reservations list: newest day first, five per page.
var ListSpec = &listview.Spec[model.Reservation]{
	Search: []func(model.Reservation) string{
		func(r model.Reservation) string { return r.ResidentName },
		func(r model.Reservation) string { return r.Unit },
		func(r model.Reservation) string { return r.Area },
		func(r model.Reservation) string { return r.Notes },
	},
	Filters: map[string]func(model.Reservation) string{
		"area":   func(r model.Reservation) string { return r.Area },
		"status": func(r model.Reservation) string { return string(r.Status) },
	},
	Sorts: map[string]listview.SortField[model.Reservation]{
		"date":     {Text: func(r model.Reservation) string { return r.Date + " " + r.Start.String() }},
		"area":     {Text: func(r model.Reservation) string { return r.Area }},
		"resident": {Text: func(r model.Reservation) string { return r.ResidentName }},
		"guests":   {Number: func(r model.Reservation) float64 { return float64(r.Guests) }},
	},
	DefaultSort:     "date",
	DefaultDir:      listview.Asc,
	DefaultPageSize: listview.PageSizeSmall,
}

// Service runs the reservation lifecycle. Every check-then-write sequence
// holds mu so the no-overlap invariant survives concurrent requests.
type Service struct {
	repo    repository.ReservationRepository
	catalog *Catalog
	events  events.Publisher
	logger  zerolog.Logger
	now     func() time.Time
	loc     *time.Location
	mu      sync.Mutex
}

type Option func(*Service)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone reservation dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func NewService(repo repository.ReservationRepository, catalog *Catalog, publisher events.Publisher, logger zerolog.Logger, opts ...Option) *Service {
	if publisher == nil {
		publisher = events.Discard{}
	}
	s := &Service{
		repo:    repo,
		catalog: catalog,
		events:  publisher,
		logger:  logger.With().Str("component", "booking").Logger(),
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog exposes the area catalog the service validates against.
func (s *Service) Catalog() *Catalog { return s.catalog }

// Submit validates a new reservation and stores it as pending. Residents
// always book in their own name.
func (s *Service) Submit(ctx context.Context, actor access.Actor, d Draft) (*model.Reservation, error) {
	now := s.now()
	r := &model.Reservation{
		Area:         d.Area,
		ResidentName: d.ResidentName,
		Unit:         d.Unit,
		Date:         d.Date,
		Start:        d.Start,
		End:          d.End,
		Guests:       d.Guests,
		Notes:        d.Notes,
		Status:       model.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if !actor.Can.CanEdit {
		r.OwnerID = actor.Profile.ID
		r.ResidentName = actor.Profile.Name
		if unit := actor.UnitLabel(); unit != "" {
			r.Unit = unit
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate(ctx, r); err != nil {
		return nil, err
	}
	if err := s.repo.CreateReservation(ctx, r); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	metrics.IncReservation("submitted")
	s.publish(events.ReservationCreated, r)
	s.logger.Info().
		Int64("reservation_id", r.ID).
		Str("area", r.Area).
		Str("date", r.Date).
		Str("by", actor.Profile.Email).
		Msg("reservation submitted")

	return r, nil
}

// Update edits a reservation keeping its status. The reservation itself is
// excluded from the conflict check.
func (s *Service) Update(ctx context.Context, actor access.Actor, id int64, d Draft) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canModify(actor, current); err != nil {
		return nil, err
	}
	if current.Status == model.StatusRejected || current.Status == model.StatusCompleted {
		return nil, invalid("status", ErrInvalidTransition, "Reservas encerradas não podem ser editadas.")
	}

	updated := *current
	updated.Area = d.Area
	updated.Date = d.Date
	updated.Start = d.Start
	updated.End = d.End
	updated.Guests = d.Guests
	updated.Notes = d.Notes
	if actor.Can.CanEdit {
		updated.ResidentName = d.ResidentName
		updated.Unit = d.Unit
	}
	updated.UpdatedAt = s.now()

	if err := s.validate(ctx, &updated); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateReservation(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update reservation %d: %w", id, err)
	}

	s.publish(events.ReservationUpdated, &updated)
	s.logger.Info().Int64("reservation_id", id).Str("by", actor.Profile.Email).Msg("reservation updated")
	return &updated, nil
}

// Approve confirms a pending reservation. The slot is checked again, but only
// against reservations that are already approved.
func (s *Service) Approve(ctx context.Context, actor access.Actor, id int64) (*model.Reservation, error) {
	if err := actor.Require(access.ApproveReservations); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, model.StatusApproved, func(r *model.Reservation) error {
		existing, err := s.repo.ListReservations(ctx, repository.ReservationFilter{Area: r.Area, Date: r.Date})
		if err != nil {
			return fmt.Errorf("list reservations: %w", err)
		}
		if _, found := FindApprovedConflict(r, existing); found {
			return invalid("approved_conflict", ErrApprovedConflict,
				"Conflito de horário! Já existe uma reserva aprovada neste período.")
		}
		return nil
	})
}

// Reject declines a pending or approved reservation, freeing its slot.
func (s *Service) Reject(ctx context.Context, actor access.Actor, id int64) (*model.Reservation, error) {
	if err := actor.Require(access.ApproveReservations); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, model.StatusRejected, nil)
}

// Complete closes an approved reservation after it took place.
func (s *Service) Complete(ctx context.Context, actor access.Actor, id int64) (*model.Reservation, error) {
	if err := actor.Require(access.Edit); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, model.StatusCompleted, nil)
}

func (s *Service) transition(ctx context.Context, actor access.Actor, id int64, next model.ReservationStatus, check func(*model.Reservation) error) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.Status.CanTransition(next) {
		return nil, invalid("status", ErrInvalidTransition,
			"Não é possível alterar uma reserva %s para %s.", r.Status, next)
	}
	if check != nil {
		if err := check(r); err != nil {
			metrics.IncReservation(reasonOf(err))
			return nil, err
		}
	}

	r.Status = next
	r.UpdatedAt = s.now()
	if err := s.repo.UpdateReservation(ctx, r); err != nil {
		return nil, fmt.Errorf("update reservation %d: %w", id, err)
	}

	metrics.IncReservation(string(next))
	switch next {
	case model.StatusApproved:
		s.publish(events.ReservationApproved, r)
	case model.StatusRejected:
		s.publish(events.ReservationRejected, r)
	default:
		s.publish(events.ReservationUpdated, r)
	}
	s.logger.Info().
		Int64("reservation_id", id).
		Str("status", string(next)).
		Str("by", actor.Profile.Email).
		Msg("reservation status changed")
	return r, nil
}

// Delete removes a reservation. Residents may only cancel their own.
func (s *Service) Delete(ctx context.Context, actor access.Actor, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return err
	}
	if err := s.canModify(actor, r); err != nil {
		return err
	}
	if err := s.repo.DeleteReservation(ctx, id); err != nil {
		return fmt.Errorf("delete reservation %d: %w", id, err)
	}

	metrics.IncReservation("deleted")
	s.publish(events.ReservationDeleted, r)
	s.logger.Info().Int64("reservation_id", id).Str("by", actor.Profile.Email).Msg("reservation deleted")
	return nil
}

// Get returns one reservation the actor may see.
func (s *Service) Get(ctx context.Context, actor access.Actor, id int64) (*model.Reservation, error) {
	r, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Can.CanApproveReservations && !actor.Owns(r.OwnerID) {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

// List returns a page of the requested tab. Residents only see their own
// reservations.
func (s *Service) List(ctx context.Context, actor access.Actor, q ListQuery) (ListResult, error) {
	inTab, counts, err := s.scoped(ctx, actor, q)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{View: ListSpec.Derive(inTab, q.Query), Counts: counts}, nil
}

// Export returns every reservation of the tab matching q, without paging.
func (s *Service) Export(ctx context.Context, actor access.Actor, q ListQuery) ([]model.Reservation, error) {
	inTab, _, err := s.scoped(ctx, actor, q)
	if err != nil {
		return nil, err
	}
	return ListSpec.Matching(inTab, q.Query), nil
}

func (s *Service) scoped(ctx context.Context, actor access.Actor, q ListQuery) ([]model.Reservation, map[model.Tab]int, error) {
	if !q.Tab.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownTab, q.Tab)
	}
	if err := ListSpec.Validate(q.Query); err != nil {
		return nil, nil, err
	}

	var all []model.Reservation
	filter := repository.ReservationFilter{}
	if !actor.Can.CanApproveReservations {
		filter.OwnerID = actor.Profile.ID
	}
	// an empty owner would match every reservation
	if actor.Can.CanApproveReservations || filter.OwnerID != "" {
		var err error
		if all, err = s.repo.ListReservations(ctx, filter); err != nil {
			return nil, nil, fmt.Errorf("list reservations: %w", err)
		}
	}

	today := s.now().In(s.loc)
	counts := map[model.Tab]int{model.TabPending: 0, model.TabUpcoming: 0, model.TabHistory: 0}
	inTab := make([]model.Reservation, 0, len(all))
	for i := range all {
		tab := all[i].Tab(today)
		counts[tab]++
		if q.Tab == "" || tab == q.Tab {
			inTab = append(inTab, all[i])
		}
	}
	return inTab, counts, nil
}

// Availability lists the occupied slots of an area on a day without
// revealing who holds them.
func (s *Service) Availability(ctx context.Context, area, date string) ([]Slot, error) {
	if !model.ValidDate(date) {
		return nil, invalid("date", ErrInvalidDate, "Data inválida. Use o formato AAAA-MM-DD.")
	}
	if _, ok := s.catalog.Area(area); !ok {
		return nil, invalid("area", ErrUnknownArea, "Área comum desconhecida.")
	}

	existing, err := s.repo.ListReservations(ctx, repository.ReservationFilter{Area: area, Date: date})
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	slots := make([]Slot, 0, len(existing))
	for _, r := range existing {
		if !r.Active() {
			continue
		}
		slots = append(slots, Slot{Start: r.Start, End: r.End, Status: r.Status})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	return slots, nil
}

// Upcoming returns approved reservations starting within the next window.
func (s *Service) Upcoming(ctx context.Context, within time.Duration) ([]model.Reservation, error) {
	all, err := s.repo.ListReservations(ctx, repository.ReservationFilter{Status: model.StatusApproved})
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	now := s.now()
	out := make([]model.Reservation, 0)
	for i := range all {
		start, err := all[i].StartsAt(s.loc)
		if err != nil {
			continue
		}
		if !start.Before(now) && start.Sub(now) <= within {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *Service) validate(ctx context.Context, r *model.Reservation) error {
	area, ok := s.catalog.Area(r.Area)
	if !ok {
		if r.Area == "" {
			return s.refuse(CheckRequired(r))
		}
		return s.refuse(invalid("area", ErrUnknownArea, "Área comum desconhecida."))
	}
	r.Image = area.Icon

	existing, err := s.repo.ListReservations(ctx, repository.ReservationFilter{Area: r.Area, Date: r.Date})
	if err != nil {
		return fmt.Errorf("list reservations: %w", err)
	}
	return s.refuse(Validate(r, &area, existing, s.catalog.Holidays()))
}

func (s *Service) refuse(err error) error {
	if err != nil {
		metrics.IncReservation(reasonOf(err))
	}
	return err
}

func (s *Service) canModify(actor access.Actor, r *model.Reservation) error {
	if actor.Can.CanEdit {
		return nil
	}
	if actor.Owns(r.OwnerID) && r.Status == model.StatusPending {
		return nil
	}
	return &access.AccessDeniedError{Capability: access.Edit, Reason: "Você só pode alterar suas próprias reservas pendentes."}
}

func (s *Service) publish(eventType string, r *model.Reservation) {
	if err := s.events.PublishJSON(eventType, r); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("publish failed")
	}
}

func reasonOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Reason != "" {
		return ve.Reason
	}
	return "error"
}
