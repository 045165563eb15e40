// Package notify pushes domain events to connected browsers and sends
// reservation reminders.
package notify

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"condoflow/internal/access"
	"condoflow/internal/events"
	"condoflow/internal/metrics"
	"condoflow/internal/model"
)

const sendBuffer = 64

// Message is the envelope written to websocket clients.
type Message struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Client is one websocket connection of a signed-in user.
type Client struct {
	actor access.Actor
	send  chan []byte
}

func NewClient(actor access.Actor) *Client {
	return &Client{actor: actor, send: make(chan []byte, sendBuffer)}
}

// Send is closed by the hub when the client is dropped.
func (c *Client) Send() <-chan []byte { return c.send }

type delivery struct {
	event events.Event
	data  []byte
}

// Hub maintains the set of active clients and routes events to the ones
// allowed to see them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	logger     zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "hub").Logger(),
	}
}

// Run is the hub event loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			metrics.SetWSClients(0)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			metrics.SetWSClients(n)
			h.logger.Debug().Str("user", c.actor.Profile.Email).Int("total", n).Msg("websocket client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.SetWSClients(n)
			h.logger.Debug().Str("user", c.actor.Profile.Email).Int("total", n).Msg("websocket client disconnected")

		case d := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				if !Visible(d.event, c.actor) {
					continue
				}
				select {
				case c.send <- d.data:
				default:
					// slow consumer
					close(c.send)
					delete(h.clients, c)
				}
			}
			metrics.SetWSClients(len(h.clients))
			h.mu.Unlock()
		}
	}
}

// Stop ends Run and closes every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish queues an event for delivery. It never blocks the publisher: when
// the queue is full the event is dropped and logged.
func (h *Hub) Publish(e events.Event) error {
	data, err := json.Marshal(Message{Type: e.Type, Timestamp: e.CreatedAt.UTC(), Payload: e.Payload})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- delivery{event: e, data: data}:
	case <-h.done:
	default:
		h.logger.Warn().Str("event", e.Type).Msg("broadcast queue full, event dropped")
	}
	return nil
}

// Subscribe forwards every bus event to the hub.
func (h *Hub) Subscribe(bus *events.EventBus) {
	bus.Subscribe("*", h.Publish)
}

// Visible decides whether actor may receive event e.
func Visible(e events.Event, actor access.Actor) bool {
	if actor.Can.CanEdit {
		return true
	}
	switch e.Type {
	case events.PostCreated, events.AreasReloaded:
		return true
	case events.NotificationCreated:
		var n model.Notification
		return e.Decode(&n) == nil && n.VisibleTo(&actor.Profile)
	case events.ReservationCreated, events.ReservationUpdated, events.ReservationApproved,
		events.ReservationRejected, events.ReservationDeleted, events.ReservationReminder:
		var r model.Reservation
		return e.Decode(&r) == nil && actor.Owns(r.OwnerID)
	case events.TicketCreated, events.TicketUpdated:
		var t model.Ticket
		return e.Decode(&t) == nil && actor.UnitLabel() != "" &&
			strings.EqualFold(t.Requester, "Unidade "+actor.UnitLabel())
	}
	return false
}
