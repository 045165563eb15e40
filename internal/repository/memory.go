package repository

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"

	"condoflow/internal/model"
)

var errClosed = errors.New("store closed")

// Memory is a Store that keeps everything in process memory. It backs the
// "memory" database driver and the tests of the layers above.
type Memory struct {
	mu sync.RWMutex

	areas         []model.Area
	reservations  []model.Reservation
	units         []model.Unit
	transactions  []model.Transaction
	tickets       []model.Ticket
	posts         []model.Post
	notifications []model.Notification
	chart         []model.ChartPoint

	lastReservation  int64
	lastUnit         int64
	lastTransaction  int64
	lastTicket       int64
	lastPost         int64
	lastNotification int64
	closed           bool
}

// NewMemory returns a store holding a copy of seed.
func NewMemory(seed Seed) *Memory {
	m := &Memory{
		areas:         slices.Clone(seed.Areas),
		reservations:  slices.Clone(seed.Reservations),
		units:         slices.Clone(seed.Units),
		transactions:  slices.Clone(seed.Transactions),
		tickets:       slices.Clone(seed.Tickets),
		notifications: slices.Clone(seed.Notifications),
		chart:         slices.Clone(seed.Chart),
	}
	for i := range seed.Posts {
		m.posts = append(m.posts, clonePost(seed.Posts[i]))
	}

	for _, r := range m.reservations {
		m.lastReservation = max(m.lastReservation, r.ID)
	}
	for _, u := range m.units {
		if n, err := strconv.ParseInt(u.ID, 10, 64); err == nil {
			m.lastUnit = max(m.lastUnit, n)
		}
	}
	for _, t := range m.transactions {
		m.lastTransaction = max(m.lastTransaction, t.ID)
	}
	for _, t := range m.tickets {
		m.lastTicket = max(m.lastTicket, t.ID)
	}
	for _, p := range m.posts {
		m.lastPost = max(m.lastPost, p.ID)
	}
	for _, n := range m.notifications {
		m.lastNotification = max(m.lastNotification, n.ID)
	}
	return m
}

// NewSeededMemory returns a store filled with the demo data.
func NewSeededMemory(now time.Time) *Memory {
	return NewMemory(DemoSeed(now))
}

func (m *Memory) PingContext(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return errClosed
	}
	return ctx.Err()
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Reservations

func (m *Memory) ListReservations(_ context.Context, filter ReservationFilter) ([]model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Reservation, 0, len(m.reservations))
	for i := range m.reservations {
		if filter.match(&m.reservations[i]) {
			out = append(out, m.reservations[i])
		}
	}
	return out, nil
}

func (m *Memory) GetReservation(_ context.Context, id int64) (*model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := slices.IndexFunc(m.reservations, func(r model.Reservation) bool { return r.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	r := m.reservations[i]
	return &r, nil
}

func (m *Memory) CreateReservation(_ context.Context, r *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastReservation++
	r.ID = m.lastReservation
	m.reservations = append(m.reservations, *r)
	return nil
}

func (m *Memory) UpdateReservation(_ context.Context, r *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.reservations, func(x model.Reservation) bool { return x.ID == r.ID })
	if i < 0 {
		return ErrNotFound
	}
	m.reservations[i] = *r
	return nil
}

func (m *Memory) DeleteReservation(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.reservations, func(r model.Reservation) bool { return r.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.reservations = slices.Delete(m.reservations, i, i+1)
	return nil
}

// Areas

func (m *Memory) ListAreas(_ context.Context) ([]model.Area, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.areas), nil
}

// SyncAreas upserts the given areas by ID and deactivates the ones missing
// from the list.
func (m *Memory) SyncAreas(_ context.Context, areas []model.Area) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(areas))
	for _, a := range areas {
		seen[a.ID] = true
		i := slices.IndexFunc(m.areas, func(x model.Area) bool { return x.ID == a.ID })
		if i < 0 {
			m.areas = append(m.areas, a)
			continue
		}
		m.areas[i] = a
	}
	for i := range m.areas {
		if !seen[m.areas[i].ID] {
			m.areas[i].Active = false
		}
	}
	return nil
}

// Units

func (m *Memory) ListUnits(_ context.Context) ([]model.Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Unit, len(m.units))
	for i := range m.units {
		out[i] = cloneUnit(m.units[i])
	}
	return out, nil
}

func (m *Memory) GetUnit(_ context.Context, id string) (*model.Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := slices.IndexFunc(m.units, func(u model.Unit) bool { return u.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	u := cloneUnit(m.units[i])
	return &u, nil
}

func (m *Memory) CreateUnit(_ context.Context, u *model.Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastUnit++
	u.ID = strconv.FormatInt(m.lastUnit, 10)
	m.units = append(m.units, cloneUnit(*u))
	return nil
}

func (m *Memory) UpdateUnit(_ context.Context, u *model.Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.units, func(x model.Unit) bool { return x.ID == u.ID })
	if i < 0 {
		return ErrNotFound
	}
	m.units[i] = cloneUnit(*u)
	return nil
}

func (m *Memory) DeleteUnit(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.units, func(u model.Unit) bool { return u.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.units = slices.Delete(m.units, i, i+1)
	return nil
}

// Transactions

func (m *Memory) ListTransactions(_ context.Context) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.transactions), nil
}

func (m *Memory) GetTransaction(_ context.Context, id int64) (*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := slices.IndexFunc(m.transactions, func(t model.Transaction) bool { return t.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	t := m.transactions[i]
	return &t, nil
}

func (m *Memory) CreateTransaction(_ context.Context, t *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastTransaction++
	t.ID = m.lastTransaction
	// Newest first, like the finance screen adds them.
	m.transactions = slices.Insert(m.transactions, 0, *t)
	return nil
}

func (m *Memory) UpdateTransaction(_ context.Context, t *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.transactions, func(x model.Transaction) bool { return x.ID == t.ID })
	if i < 0 {
		return ErrNotFound
	}
	m.transactions[i] = *t
	return nil
}

func (m *Memory) DeleteTransaction(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.transactions, func(t model.Transaction) bool { return t.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.transactions = slices.Delete(m.transactions, i, i+1)
	return nil
}

func (m *Memory) ChartSeries(_ context.Context) ([]model.ChartPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.chart), nil
}

// Tickets

func (m *Memory) ListTickets(_ context.Context) ([]model.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.tickets), nil
}

func (m *Memory) GetTicket(_ context.Context, id int64) (*model.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := slices.IndexFunc(m.tickets, func(t model.Ticket) bool { return t.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	t := m.tickets[i]
	return &t, nil
}

func (m *Memory) CreateTicket(_ context.Context, t *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastTicket++
	t.ID = m.lastTicket
	m.tickets = slices.Insert(m.tickets, 0, *t)
	return nil
}

func (m *Memory) UpdateTicket(_ context.Context, t *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.tickets, func(x model.Ticket) bool { return x.ID == t.ID })
	if i < 0 {
		return ErrNotFound
	}
	m.tickets[i] = *t
	return nil
}

func (m *Memory) DeleteTicket(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.tickets, func(t model.Ticket) bool { return t.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.tickets = slices.Delete(m.tickets, i, i+1)
	return nil
}

// Posts

func (m *Memory) ListPosts(_ context.Context) ([]model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Post, len(m.posts))
	for i := range m.posts {
		out[i] = clonePost(m.posts[i])
	}
	return out, nil
}

func (m *Memory) GetPost(_ context.Context, id int64) (*model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := slices.IndexFunc(m.posts, func(p model.Post) bool { return p.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	p := clonePost(m.posts[i])
	return &p, nil
}

func (m *Memory) CreatePost(_ context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastPost++
	p.ID = m.lastPost
	m.posts = slices.Insert(m.posts, 0, clonePost(*p))
	return nil
}

func (m *Memory) UpdatePost(_ context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.posts, func(x model.Post) bool { return x.ID == p.ID })
	if i < 0 {
		return ErrNotFound
	}
	m.posts[i] = clonePost(*p)
	return nil
}

func (m *Memory) DeletePost(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.posts, func(p model.Post) bool { return p.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.posts = slices.Delete(m.posts, i, i+1)
	return nil
}

// Notifications

func (m *Memory) ListNotifications(_ context.Context) ([]model.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.notifications), nil
}

func (m *Memory) CreateNotification(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastNotification++
	n.ID = m.lastNotification
	m.notifications = slices.Insert(m.notifications, 0, *n)
	return nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.notifications, func(n model.Notification) bool { return n.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.notifications[i].Read = true
	return nil
}

func cloneUnit(u model.Unit) model.Unit {
	if u.Resident != nil {
		r := *u.Resident
		u.Resident = &r
	}
	if u.Contact != nil {
		c := *u.Contact
		u.Contact = &c
	}
	return u
}

func clonePost(p model.Post) model.Post {
	p.PollOptions = slices.Clone(p.PollOptions)
	p.Comments = slices.Clone(p.Comments)
	if p.Comments == nil {
		p.Comments = []model.Comment{}
	}
	p.LikedBy = maps.Clone(p.LikedBy)
	p.VotedBy = maps.Clone(p.VotedBy)
	return p
}

var _ Store = (*Memory)(nil)
