package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"condoflow/internal/events"
	"condoflow/internal/model"
)

type MockUpcoming struct {
	mock.Mock
}

func (m *MockUpcoming) Upcoming(ctx context.Context, within time.Duration) ([]model.Reservation, error) {
	args := m.Called(ctx, within)
	if v := args.Get(0); v != nil {
		return v.([]model.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(eventType string, payload any) error {
	return m.Called(eventType, payload).Error(0)
}

func approved(id int64, date, start string) model.Reservation {
	return model.Reservation{ID: id, Date: date, Start: model.MustTimeOfDay(start), Status: model.StatusApproved, OwnerID: "2"}
}

func TestRemindersSendOncePerReservation(t *testing.T) {
	source := new(MockUpcoming)
	pub := new(MockPublisher)
	svc := NewReminders(ReminderConfig{Lead: 24 * time.Hour}, source, pub, zerolog.Nop())

	first := []model.Reservation{approved(2, "2026-12-11", "12:00")}
	second := []model.Reservation{approved(2, "2026-12-11", "12:00"), approved(5, "2026-12-11", "18:00")}
	source.On("Upcoming", mock.Anything, 24*time.Hour).Return(first, nil).Once()
	source.On("Upcoming", mock.Anything, 24*time.Hour).Return(second, nil).Once()
	pub.On("PublishJSON", events.ReservationReminder, mock.Anything).Return(nil)

	assert.Equal(t, 1, svc.CheckNow())
	assert.Equal(t, 1, svc.CheckNow(), "only the new reservation")

	pub.AssertNumberOfCalls(t, "PublishJSON", 2)
	source.AssertExpectations(t)
}

func TestRemindersRescheduledReservationIsRemindedAgain(t *testing.T) {
	source := new(MockUpcoming)
	pub := new(MockPublisher)
	svc := NewReminders(ReminderConfig{}, source, pub, zerolog.Nop())

	source.On("Upcoming", mock.Anything, 24*time.Hour).Return([]model.Reservation{approved(2, "2026-12-11", "12:00")}, nil).Once()
	source.On("Upcoming", mock.Anything, 24*time.Hour).Return([]model.Reservation{approved(2, "2026-12-11", "15:00")}, nil).Once()
	pub.On("PublishJSON", events.ReservationReminder, mock.Anything).Return(nil)

	assert.Equal(t, 1, svc.CheckNow())
	assert.Equal(t, 1, svc.CheckNow())
	assert.Len(t, svc.reminded, 1, "stale key pruned")
}

func TestRemindersErrors(t *testing.T) {
	t.Run("source failure", func(t *testing.T) {
		source := new(MockUpcoming)
		pub := new(MockPublisher)
		svc := NewReminders(ReminderConfig{}, source, pub, zerolog.Nop())
		source.On("Upcoming", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		assert.Zero(t, svc.CheckNow())
		pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
	})

	t.Run("publish failure retries next pass", func(t *testing.T) {
		source := new(MockUpcoming)
		pub := new(MockPublisher)
		svc := NewReminders(ReminderConfig{}, source, pub, zerolog.Nop())
		source.On("Upcoming", mock.Anything, mock.Anything).Return([]model.Reservation{approved(2, "2026-12-11", "12:00")}, nil)
		pub.On("PublishJSON", events.ReservationReminder, mock.Anything).Return(errors.New("boom")).Once()
		pub.On("PublishJSON", events.ReservationReminder, mock.Anything).Return(nil).Once()

		assert.Zero(t, svc.CheckNow())
		assert.Equal(t, 1, svc.CheckNow())
	})
}

func TestRemindersStartStop(t *testing.T) {
	source := new(MockUpcoming)
	pub := new(MockPublisher)
	svc := NewReminders(ReminderConfig{CheckInterval: time.Hour}, source, pub, zerolog.Nop())
	source.On("Upcoming", mock.Anything, mock.Anything).Return([]model.Reservation{}, nil)

	svc.Start()
	svc.Start()
	svc.Stop()
	svc.Stop()

	// the loop checks once right away
	source.AssertCalled(t, "Upcoming", mock.Anything, 24*time.Hour)
}
