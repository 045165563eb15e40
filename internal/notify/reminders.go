package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"condoflow/internal/events"
	"condoflow/internal/metrics"
	"condoflow/internal/model"
)

// UpcomingSource lists approved reservations starting within a window.
type UpcomingSource interface {
	Upcoming(ctx context.Context, within time.Duration) ([]model.Reservation, error)
}

// ReminderConfig holds configuration for the reminder service.
type ReminderConfig struct {
	// CheckInterval is how often to look for upcoming reservations.
	// Default: 15 minutes.
	CheckInterval time.Duration

	// Lead is how long before the start a reminder goes out.
	// Default: 24 hours.
	Lead time.Duration
}

// Reminders publishes one reservation.reminder event per reservation
// entering the lead window.
type Reminders struct {
	config   ReminderConfig
	source   UpcomingSource
	events   events.Publisher
	logger   zerolog.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
	checkMu  sync.Mutex
	reminded map[string]struct{}
}

func NewReminders(cfg ReminderConfig, source UpcomingSource, publisher events.Publisher, logger zerolog.Logger) *Reminders {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 15 * time.Minute
	}
	if cfg.Lead <= 0 {
		cfg.Lead = 24 * time.Hour
	}
	return &Reminders{
		config:   cfg,
		source:   source,
		events:   publisher,
		logger:   logger.With().Str("component", "reminders").Logger(),
		stopCh:   make(chan struct{}),
		reminded: make(map[string]struct{}),
	}
}

// Start begins the check loop.
func (s *Reminders) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop()

	s.logger.Info().
		Dur("check_interval", s.config.CheckInterval).
		Dur("lead", s.config.Lead).
		Msg("Reminder service started")
}

// Stop gracefully stops the loop.
func (s *Reminders) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info().Msg("Reminder service stopped")
}

func (s *Reminders) loop() {
	defer s.wg.Done()

	s.CheckNow()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.CheckNow()
		}
	}
}

// CheckNow runs one pass and returns the number of reminders sent.
func (s *Reminders) CheckNow() int {
	s.checkMu.Lock()
	defer s.checkMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	upcoming, err := s.source.Upcoming(ctx, s.config.Lead)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to get upcoming reservations")
		metrics.IncJob("reminders", err)
		return 0
	}

	current := make(map[string]struct{}, len(upcoming))
	sent := 0
	for i := range upcoming {
		r := &upcoming[i]
		key := reminderKey(r)
		current[key] = struct{}{}
		if _, done := s.reminded[key]; done {
			continue
		}
		if err := s.events.PublishJSON(events.ReservationReminder, r); err != nil {
			s.logger.Error().Err(err).Int64("reservation_id", r.ID).Msg("Failed to send reminder")
			continue
		}
		s.reminded[key] = struct{}{}
		metrics.IncReminder()
		sent++
		s.logger.Info().Int64("reservation_id", r.ID).Str("owner", r.OwnerID).Msg("Reminder sent")
	}

	// reservations that left the window no longer need tracking
	for key := range s.reminded {
		if _, ok := current[key]; !ok {
			delete(s.reminded, key)
		}
	}
	metrics.IncJob("reminders", nil)
	return sent
}

// A rescheduled reservation gets a new key and therefore a new reminder.
func reminderKey(r *model.Reservation) string {
	return fmt.Sprintf("%d@%s %s", r.ID, r.Date, r.Start)
}
